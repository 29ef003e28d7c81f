package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/smartplay/internal/model"
)

// VideoService is the library API used by VideoHandler.
// *service.IngestService implements it.
type VideoService interface {
	Ingest(ctx context.Context, userID uint64, rawURL string) (model.VideoRef, bool, error)
	List(ctx context.Context, userID uint64) ([]model.VideoSummary, error)
	Get(ctx context.Context, userID uint64, videoID string) (model.Video, error)
	Delete(ctx context.Context, userID uint64, videoID string) error
}

// VideoHandler serves the /v1/videos routes.
type VideoHandler struct {
	Videos VideoService
	Log    *slog.Logger
}

func NewVideoHandler(videos VideoService, log *slog.Logger) *VideoHandler {
	return &VideoHandler{Videos: videos, Log: log}
}

type ingestReq struct {
	YouTubeURL string `json:"youtube_url"`
}

// Create ingests a YouTube URL: 201 for a new video, 200 when the user
// already has it.  No DB timeout is set here; the transcript fetch carries
// its own.
func (h *VideoHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req ingestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.YouTubeURL) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "youtube_url is required"})
	}

	ref, created, err := h.Videos.Ingest(c.Request().Context(), uid, req.YouTubeURL)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	if !created {
		return c.JSON(http.StatusOK, echo.Map{"message": "video already exists in your library", "video": ref})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "video processed and added successfully", "video": ref})
}

// List returns the caller's library, newest first.
func (h *VideoHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	videos, err := h.Videos.List(ctx, uid)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, videos)
}

// Get returns one video with its transcript and question history.
func (h *VideoHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Videos.Get(ctx, uid, c.Param("id"))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Delete removes a video and its history.
func (h *VideoHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Videos.Delete(ctx, uid, c.Param("id")); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "video deleted"})
}
