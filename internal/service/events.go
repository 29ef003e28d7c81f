package service

import (
	"context"

	"github.com/iliyamo/smartplay/internal/queue"
)

// EventPublisher announces completed ingestions and answered questions.
// Publishing is best-effort: callers log a failure and carry on.
type EventPublisher interface {
	VideoIngested(ctx context.Context, ev queue.VideoIngestedEvent) error
	QuestionAnswered(ctx context.Context, ev queue.QuestionAnsweredEvent) error
}

// NoopPublisher drops every event.  It is used when events are disabled.
type NoopPublisher struct{}

func (NoopPublisher) VideoIngested(context.Context, queue.VideoIngestedEvent) error { return nil }

func (NoopPublisher) QuestionAnswered(context.Context, queue.QuestionAnsweredEvent) error {
	return nil
}
