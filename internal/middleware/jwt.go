// Package middleware holds the echo middleware shared by the API routes:
// bearer token authentication, Redis rate limiting and slog request logging.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/smartplay/internal/utils"
)

// UserIDKey is the echo context key holding the authenticated user id as
// a uint64.
const UserIDKey = "user_id"

// JWTAuth rejects requests without a valid "Authorization: Bearer <jwt>"
// header and stores the token's user id under UserIDKey.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			userID, err := utils.ParseAccessToken(secret, strings.TrimSpace(raw))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(UserIDKey, userID)
			return next(c)
		}
	}
}
