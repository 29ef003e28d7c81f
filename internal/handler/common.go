// Package handler holds the echo handlers of the HTTP API.  Handlers bind
// and validate the request, call a service or repository and translate the
// error kinds of package common into status codes.
package handler

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/smartplay/internal/middleware"
)

var errNoUser = errors.New("no authenticated user in context")

// getUserID returns the id stored by middleware.JWTAuth.
func getUserID(c echo.Context) (uint64, error) {
	if id, ok := c.Get(middleware.UserIDKey).(uint64); ok && id != 0 {
		return id, nil
	}
	return 0, errNoUser
}
