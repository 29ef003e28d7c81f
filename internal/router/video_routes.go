package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/smartplay/internal/handler"
	"github.com/iliyamo/smartplay/internal/middleware"
)

// RegisterVideos registers the library endpoints under /v1/videos.  Every
// route requires a valid JWT.  Ingestion calls out to YouTube, so it also
// passes through the rate limiter.
func RegisterVideos(e *echo.Echo, h *handler.VideoHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/videos", middleware.JWTAuth(jwtSecret))
	g.POST("", h.Create, limiter)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete)
}
