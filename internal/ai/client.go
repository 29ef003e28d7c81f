// Package ai wraps an OpenAI-compatible chat completion endpoint behind a
// small interface so the question-answering service can be tested without
// a network.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/llm"

	"github.com/iliyamo/smartplay/internal/config"
)

// ErrEmptyCompletion is returned when the model answered with no text.
var ErrEmptyCompletion = errors.New("empty completion")

// Options are per-call sampling settings.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// Completer is the chat completion contract used by the QA service.
type Completer interface {
	Complete(ctx context.Context, system, user string, opts Options) (string, error)
}

type completeFunc func(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error)

// Client is a Completer backed by go-kit's llm client.  Every call is bounded
// by the configured timeout and makes a single attempt.
type Client struct {
	complete completeFunc
	timeout  time.Duration
}

// New builds a Client from cfg.  The API key is fixed for the client's
// lifetime.
func New(cfg config.AIConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	lc := llm.NewClient(cfg.APIBase, cfg.APIKey, cfg.Model,
		llm.WithMaxTokens(cfg.MaxTokens),
		llm.WithTemperature(cfg.Temperature),
		llm.WithHTTPClient(&http.Client{Timeout: timeout}),
	)
	return &Client{
		timeout: timeout,
		complete: func(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error) {
			return lc.Complete(ctx, system, user,
				llm.WithChatTemperature(temperature),
				llm.WithChatMaxTokens(maxTokens),
			)
		},
	}
}

// Complete sends one system + user exchange and returns the trimmed reply.
func (c *Client) Complete(ctx context.Context, system, user string, opts Options) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.complete(ctx, system, user, opts.Temperature, opts.MaxTokens)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyCompletion
	}
	return out, nil
}
