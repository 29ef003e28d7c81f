// Package transcript turns a raw caption track into timed segments and
// classifies retrieval failures into the common error kinds.
package transcript

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/smartplay/internal/common"
	"github.com/iliyamo/smartplay/internal/model"
	"github.com/iliyamo/smartplay/internal/youtube"
)

// DefaultTimeout bounds a whole fetch when none is configured.
const DefaultTimeout = 20 * time.Second

// Source returns the raw caption track of a video.  *youtube.Client is the
// production implementation.
type Source interface {
	Fetch(ctx context.Context, videoID string) (youtube.Track, error)
}

// Result is a normalized transcript.  Segments is never empty.
type Result struct {
	Title    string
	Segments []model.TranscriptSegment
}

// Fetcher wraps a Source with a timeout and error classification.
type Fetcher struct {
	src     Source
	timeout time.Duration
	log     *slog.Logger
}

// NewFetcher builds a Fetcher.  A non-positive timeout means DefaultTimeout.
func NewFetcher(src Source, timeout time.Duration, log *slog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Fetcher{src: src, timeout: timeout, log: log}
}

// Fetch retrieves the transcript of videoID.  Errors wrap one of
// common.ErrTranscriptUnavailable, common.ErrSourceUnavailable or
// common.ErrTransientFetch.
func (f *Fetcher) Fetch(ctx context.Context, videoID string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	track, err := f.src.Fetch(ctx, videoID)
	if err != nil {
		kind := classify(err)
		f.log.Warn("transcript fetch failed",
			slog.String("video", videoID),
			slog.String("kind", kind.Error()),
			slog.Duration("took", time.Since(start)),
			slog.Any("error", err))
		return Result{}, fmt.Errorf("%w: %v", kind, err)
	}

	segments := normalize(track.Cues)
	if len(segments) == 0 {
		return Result{}, fmt.Errorf("%w: caption track is empty", common.ErrTranscriptUnavailable)
	}
	f.log.Debug("transcript fetched",
		slog.String("video", videoID),
		slog.Int("segments", len(segments)),
		slog.Duration("took", time.Since(start)))
	return Result{Title: track.Title, Segments: segments}, nil
}

// classify maps a source error to its kind.  Network failures, HTTP
// statuses, parse errors and timeouts are all transient.
func classify(err error) error {
	switch {
	case errors.Is(err, youtube.ErrCaptionsUnavailable):
		return common.ErrTranscriptUnavailable
	case errors.Is(err, youtube.ErrVideoUnavailable):
		return common.ErrSourceUnavailable
	default:
		return common.ErrTransientFetch
	}
}

// normalize converts cues to segments in seconds, keeping source order.
// Cues whose text is empty once unescaped and trimmed are dropped.
func normalize(cues []youtube.Cue) []model.TranscriptSegment {
	out := make([]model.TranscriptSegment, 0, len(cues))
	for _, c := range cues {
		text := strings.TrimSpace(html.UnescapeString(c.Text))
		if text == "" {
			continue
		}
		out = append(out, model.TranscriptSegment{
			Text:     text,
			Start:    msToSeconds(c.StartMs),
			Duration: msToSeconds(c.DurationMs),
		})
	}
	return out
}

func msToSeconds(ms int64) float64 {
	if ms < 0 {
		return 0
	}
	return float64(ms) / 1000
}
