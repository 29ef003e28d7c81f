package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iliyamo/smartplay/internal/ai"
	"github.com/iliyamo/smartplay/internal/common"
	"github.com/iliyamo/smartplay/internal/model"
	"github.com/iliyamo/smartplay/internal/queue"
)

// NotAvailableAnswer is what the model is told to reply when the transcript
// does not contain the answer.  It is a normal, persisted answer.
const NotAvailableAnswer = "The answer is not available in the provided transcript."

const systemPrompt = `You are an AI assistant for the SmartPlay application.
Your task is to answer questions based *only* on the provided video transcript text.
Be concise and directly answer the question using information found in the transcript.
Do not add any information that is not present in the text.
Do not preface your answer with phrases like "Based on the transcript...".
If the answer cannot be found in the transcript, respond with "` + NotAvailableAnswer + `"`

const (
	// DefaultMaxContextChars bounds the transcript text sent to the model.
	DefaultMaxContextChars = 15000
	truncationMarker       = "..."
)

// failureMarkers are the opening words of the canned failure sentences some
// OpenAI-compatible gateways return in place of a completion.
var failureMarkers = []string{
	"ai service",
	"an error occurred while communicating",
	"ai did not return a valid answer",
	"missing transcript or question",
}

// Answer is the result of a successful question.
type Answer struct {
	Text  string
	Entry model.QAEntry
}

// QAOptions tune the prompt and the completion call.
type QAOptions struct {
	MaxContextChars int
	Temperature     float64
	MaxTokens       int
}

// QAService answers questions about a stored video from its transcript.
type QAService struct {
	store  VideoStore
	ai     ai.Completer
	events EventPublisher
	opts   QAOptions
	log    *slog.Logger
	now    func() time.Time
}

// NewQAService wires a QAService.  Zero options fall back to 15000 context
// characters, temperature 0.3 and 150 max tokens.
func NewQAService(store VideoStore, completer ai.Completer, events EventPublisher, opts QAOptions, log *slog.Logger) *QAService {
	if opts.MaxContextChars <= 0 {
		opts.MaxContextChars = DefaultMaxContextChars
	}
	if opts.Temperature <= 0 {
		opts.Temperature = 0.3
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 150
	}
	if events == nil {
		events = NoopPublisher{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &QAService{
		store:  store,
		ai:     completer,
		events: events,
		opts:   opts,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Ask answers question about the user's video.  The exchange is stored only
// when the model produced a usable answer.
func (s *QAService) Ask(ctx context.Context, userID uint64, videoID, question string) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, fmt.Errorf("%w: question is required", common.ErrInvalidInput)
	}
	if !validVideoID(videoID) {
		return Answer{}, fmt.Errorf("%w: malformed video id", common.ErrNotFound)
	}

	v, err := s.store.GetForUser(ctx, videoID, userID)
	if err != nil {
		return Answer{}, storeErr("get video", err)
	}
	if len(v.Transcript) == 0 {
		return Answer{}, fmt.Errorf("%w: video %s", common.ErrNoTranscript, v.ID)
	}

	text, err := s.ai.Complete(ctx, systemPrompt, userPrompt(buildContext(v.Transcript, s.opts.MaxContextChars), question),
		ai.Options{Temperature: s.opts.Temperature, MaxTokens: s.opts.MaxTokens})
	if err != nil {
		s.log.Warn("ai completion failed", slog.String("video_id", v.ID), slog.Any("error", err))
		return Answer{}, fmt.Errorf("%w: %v", common.ErrServiceUnavailable, err)
	}
	if isFailureReply(text) {
		s.log.Warn("ai returned a failure reply", slog.String("video_id", v.ID), slog.String("reply", text))
		return Answer{}, fmt.Errorf("%w: unusable reply", common.ErrServiceUnavailable)
	}

	entry, err := s.store.AppendQuestion(ctx, v.ID, model.QAEntry{
		Question: question,
		Answer:   text,
		AskedAt:  s.now(),
	})
	if err != nil {
		return Answer{}, storeErr("append question", err)
	}

	ev := queue.QuestionAnsweredEvent{
		VideoID:     v.ID,
		UserID:      userID,
		QuestionLen: utf8.RuneCountInString(question),
		AnswerLen:   utf8.RuneCountInString(text),
		At:          entry.AskedAt.Format(time.RFC3339),
	}
	if err := s.events.QuestionAnswered(ctx, ev); err != nil {
		s.log.Warn("publish question.answered failed", slog.String("video_id", v.ID), slog.Any("error", err))
	}
	return Answer{Text: text, Entry: entry}, nil
}

// buildContext joins segment texts with single spaces and keeps at most
// limit runes, appending "..." when anything was cut.
func buildContext(segments []model.TranscriptSegment, limit int) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = s.Text
	}
	return truncate(strings.Join(parts, " "), limit)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i] + truncationMarker
		}
		n++
	}
	return s
}

func userPrompt(transcriptText, question string) string {
	return "Transcript:\n\"\"\"\n" + transcriptText + "\n\"\"\"\n\nQuestion: " + question
}

// isFailureReply reports whether a completion is empty or one of the known
// canned failure sentences.
func isFailureReply(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return true
	}
	for _, m := range failureMarkers {
		if strings.HasPrefix(t, m) {
			return true
		}
	}
	return false
}
