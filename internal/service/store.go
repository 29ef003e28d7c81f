// Package service implements video ingestion and transcript question
// answering on top of the video store, the transcript fetcher and the AI
// client.  Every error returned wraps one of the kinds in package common.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/iliyamo/smartplay/internal/common"
	"github.com/iliyamo/smartplay/internal/model"
	"github.com/iliyamo/smartplay/internal/repository"
	"github.com/iliyamo/smartplay/internal/transcript"
)

// VideoStore is the persistence contract for Video aggregates.
// *repository.VideoRepo implements it.
type VideoStore interface {
	FindByExternalID(ctx context.Context, userID uint64, youtubeID string) (model.Video, error)
	Create(ctx context.Context, v *model.Video) error
	GetForUser(ctx context.Context, id string, userID uint64) (model.Video, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.VideoSummary, error)
	AppendQuestion(ctx context.Context, videoID string, e model.QAEntry) (model.QAEntry, error)
	Delete(ctx context.Context, id string, userID uint64) error
}

// TranscriptFetcher retrieves and normalizes a transcript.
// *transcript.Fetcher implements it.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, youtubeID string) (transcript.Result, error)
}

// storeErr converts a repository error to its kind.
func storeErr(op string, err error) error {
	if errors.Is(err, repository.ErrVideoNotFound) {
		return fmt.Errorf("%w: %s", common.ErrNotFound, op)
	}
	return fmt.Errorf("%w: %s: %v", common.ErrStore, op, err)
}

// validVideoID reports whether id can name a stored video.  Anything that
// is not a UUID cannot exist and is reported as not found.
func validVideoID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
