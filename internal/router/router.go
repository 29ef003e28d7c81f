package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/smartplay/internal/handler"
	"github.com/iliyamo/smartplay/internal/middleware"
)

// RegisterRoutes registers the routes that need no authentication: the
// liveness probe and the status endpoint.
func RegisterRoutes(e *echo.Echo, s *handler.StatusHandler) {
	e.GET("/healthz", handler.Health)
	e.GET("/v1/status", s.Status)
}

// RegisterAuth registers the authentication routes.  Register, login,
// refresh and logout live under /v1/auth without a session; logout-all and
// /v1/me require a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Logout takes the refresh token in the body, so no JWT is required.
	g.POST("/logout", a.Logout)
	g.POST("/logout-all", a.LogoutAll, middleware.JWTAuth(jwtSecret))

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}
