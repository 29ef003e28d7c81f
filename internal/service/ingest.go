package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/smartplay/internal/common"
	"github.com/iliyamo/smartplay/internal/model"
	"github.com/iliyamo/smartplay/internal/queue"
	"github.com/iliyamo/smartplay/internal/repository"
	"github.com/iliyamo/smartplay/internal/youtube"
)

// IngestService adds YouTube videos to a user's library and serves the
// library back.
type IngestService struct {
	store   VideoStore
	fetcher TranscriptFetcher
	events  EventPublisher
	log     *slog.Logger
}

// NewIngestService wires an IngestService.  A nil events publisher means
// NoopPublisher.
func NewIngestService(store VideoStore, fetcher TranscriptFetcher, events EventPublisher, log *slog.Logger) *IngestService {
	if events == nil {
		events = NoopPublisher{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &IngestService{store: store, fetcher: fetcher, events: events, log: log}
}

// Ingest resolves rawURL and returns the user's video for it, fetching and
// storing the transcript only when the user does not have the video yet.
// created reports whether a new record was stored.
func (s *IngestService) Ingest(ctx context.Context, userID uint64, rawURL string) (ref model.VideoRef, created bool, err error) {
	ytID, err := youtube.ResolveID(rawURL)
	if err != nil {
		return model.VideoRef{}, false, err
	}

	existing, err := s.store.FindByExternalID(ctx, userID, ytID)
	switch {
	case err == nil:
		return existing.Ref(), false, nil
	case !errors.Is(err, repository.ErrVideoNotFound):
		return model.VideoRef{}, false, storeErr("find video", err)
	}

	res, err := s.fetcher.Fetch(ctx, ytID)
	if err != nil {
		return model.VideoRef{}, false, err
	}

	title := strings.TrimSpace(res.Title)
	if title == "" {
		title = "Video " + ytID
	}
	v := &model.Video{
		ID:             uuid.NewString(),
		UserID:         userID,
		YouTubeVideoID: ytID,
		Title:          title,
		Transcript:     res.Segments,
		Questions:      []model.QAEntry{},
	}
	if err := s.store.Create(ctx, v); err != nil {
		if !errors.Is(err, repository.ErrVideoExists) {
			return model.VideoRef{}, false, storeErr("create video", err)
		}
		// A concurrent request stored the same video first.
		existing, err := s.store.FindByExternalID(ctx, userID, ytID)
		if err != nil {
			return model.VideoRef{}, false, storeErr("find video after conflict", err)
		}
		return existing.Ref(), false, nil
	}

	s.log.Info("video ingested",
		slog.String("video_id", v.ID),
		slog.Uint64("user_id", userID),
		slog.String("youtube_id", ytID),
		slog.Int("segments", len(v.Transcript)))
	s.publish(ctx, v)
	return v.Ref(), true, nil
}

func (s *IngestService) publish(ctx context.Context, v *model.Video) {
	ev := queue.VideoIngestedEvent{
		VideoID:        v.ID,
		UserID:         v.UserID,
		YouTubeVideoID: v.YouTubeVideoID,
		Title:          v.Title,
		Segments:       len(v.Transcript),
		At:             time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.events.VideoIngested(ctx, ev); err != nil {
		s.log.Warn("publish video.ingested failed", slog.String("video_id", v.ID), slog.Any("error", err))
	}
}

// List returns the user's library, newest first.
func (s *IngestService) List(ctx context.Context, userID uint64) ([]model.VideoSummary, error) {
	out, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeErr("list videos", err)
	}
	return out, nil
}

// Get returns the full video, transcript and questions included.
func (s *IngestService) Get(ctx context.Context, userID uint64, videoID string) (model.Video, error) {
	if !validVideoID(videoID) {
		return model.Video{}, fmt.Errorf("%w: malformed video id", common.ErrNotFound)
	}
	v, err := s.store.GetForUser(ctx, videoID, userID)
	if err != nil {
		return model.Video{}, storeErr("get video", err)
	}
	return v, nil
}

// Delete removes the video and its question history.
func (s *IngestService) Delete(ctx context.Context, userID uint64, videoID string) error {
	if !validVideoID(videoID) {
		return fmt.Errorf("%w: malformed video id", common.ErrNotFound)
	}
	if err := s.store.Delete(ctx, videoID, userID); err != nil {
		return storeErr("delete video", err)
	}
	s.log.Info("video deleted", slog.String("video_id", videoID), slog.Uint64("user_id", userID))
	return nil
}
