package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/smartplay/internal/common"
)

// errorKinds maps each error kind to its status and client message, in
// match order.
var errorKinds = []struct {
	kind   error
	status int
	msg    string
}{
	{common.ErrInvalidURL, http.StatusBadRequest, "invalid or unsupported YouTube URL"},
	{common.ErrInvalidInput, http.StatusBadRequest, "question is required and must be a non-empty string"},
	{common.ErrNotFound, http.StatusNotFound, "video not found"},
	{common.ErrNoTranscript, http.StatusBadRequest, "cannot ask questions: the transcript of this video is empty"},
	{common.ErrTranscriptUnavailable, http.StatusBadRequest, "could not process video: no transcript is available for it"},
	{common.ErrSourceUnavailable, http.StatusBadRequest, "could not process video: it is private, removed or otherwise unavailable"},
	{common.ErrTransientFetch, http.StatusServiceUnavailable, "could not reach YouTube, please try again later"},
	{common.ErrServiceUnavailable, http.StatusServiceUnavailable, "the AI service failed to provide an answer, please try again later"},
}

// statusFor returns the HTTP status and client message for err.
func statusFor(err error) (int, string) {
	for _, k := range errorKinds {
		if errors.Is(err, k.kind) {
			return k.status, k.msg
		}
	}
	return http.StatusInternalServerError, "internal server error"
}

// writeError logs err and writes {"error": msg}.  The internal detail never
// reaches the client.
func writeError(c echo.Context, log *slog.Logger, err error) error {
	status, msg := statusFor(err)
	attrs := []any{
		slog.String("method", c.Request().Method),
		slog.String("path", c.Path()),
		slog.Int("status", status),
		slog.Any("error", err),
	}
	if status >= http.StatusInternalServerError {
		log.Error("request failed", attrs...)
	} else {
		log.Info("request rejected", attrs...)
	}
	return c.JSON(status, echo.Map{"error": msg})
}
