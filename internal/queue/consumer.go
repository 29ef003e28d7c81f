package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrUnknownEvent is returned for a message whose type is not recognised.
var ErrUnknownEvent = errors.New("unknown event type")

// ActivityConsumer appends one line per activity event to a log file.
type ActivityConsumer struct {
	url     string
	logPath string
	log     *slog.Logger
}

// NewActivityConsumer builds a consumer writing to logPath, e.g.
// logs/activity.log.
func NewActivityConsumer(url, logPath string, log *slog.Logger) *ActivityConsumer {
	if log == nil {
		log = slog.Default()
	}
	return &ActivityConsumer{url: url, logPath: logPath, log: log}
}

// Run consumes until ctx is cancelled, reconnecting with exponential
// backoff capped at 30s.
func (c *ActivityConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("activity consumer: dial failed", slog.Any("error", err), slog.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("activity consumer: loop ended, reconnecting", slog.Any("error", err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *ActivityConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("activity consumer: set QoS failed", slog.Any("error", err))
	}
	if _, err := ch.QueueDeclare(ActivityQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(ActivityQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handle(d.Type, d.Body); err != nil {
				c.log.Warn("activity consumer: message rejected", slog.String("type", d.Type), slog.Any("error", err))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *ActivityConsumer) handle(kind string, body []byte) error {
	line, err := FormatActivity(kind, body)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.logPath), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(c.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open activity log: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write activity log: %w", err)
	}
	return nil
}

// FormatActivity renders one event as a single newline-terminated line.
func FormatActivity(kind string, body []byte) (string, error) {
	switch kind {
	case TypeVideoIngested:
		var ev VideoIngestedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal %s: %w", kind, err)
		}
		return fmt.Sprintf("[%s] Video ingested | video_id=%s | user_id=%d | youtube_id=%s | title=%q | segments=%d\n",
			ev.At, ev.VideoID, ev.UserID, ev.YouTubeVideoID, ev.Title, ev.Segments), nil
	case TypeQuestionAnswered:
		var ev QuestionAnsweredEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal %s: %w", kind, err)
		}
		return fmt.Sprintf("[%s] Question answered | video_id=%s | user_id=%d | question_len=%d | answer_len=%d\n",
			ev.At, ev.VideoID, ev.UserID, ev.QuestionLen, ev.AnswerLen), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEvent, kind)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
