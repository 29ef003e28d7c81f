package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health is the liveness probe.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatusHandler serves GET /v1/status.
type StatusHandler struct {
	DB  Pinger
	Log *slog.Logger
}

func NewStatusHandler(db Pinger, log *slog.Logger) *StatusHandler {
	return &StatusHandler{DB: db, Log: log}
}

// Status reports whether the API and its database are up.  A failed ping
// answers 503 so load balancers can take the instance out.
func (h *StatusHandler) Status(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := h.DB.Ping(ctx); err != nil {
		h.Log.Warn("status: database ping failed", slog.Any("error", err))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded", "database": "down"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "database": "up"})
}
