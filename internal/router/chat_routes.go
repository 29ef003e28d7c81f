package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/smartplay/internal/handler"
	"github.com/iliyamo/smartplay/internal/middleware"
)

// RegisterChat registers the question endpoint.  Each question costs an AI
// call, so the route is rate limited per user.
func RegisterChat(e *echo.Echo, h *handler.ChatHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	e.POST("/v1/chat/:videoId", h.Ask, middleware.JWTAuth(jwtSecret), limiter)
}
