package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/smartplay/internal/ai"
	"github.com/iliyamo/smartplay/internal/model"
	"github.com/iliyamo/smartplay/internal/queue"
	"github.com/iliyamo/smartplay/internal/repository"
	"github.com/iliyamo/smartplay/internal/transcript"
)

// memStore is an in-memory VideoStore enforcing the (user, youtube id)
// uniqueness the MySQL schema enforces.
type memStore struct {
	mu     sync.Mutex
	videos map[string]*model.Video
	nextQ  uint64
	calls  int

	createErr    error
	appendErr    error
	beforeCreate func()
}

func newMemStore() *memStore { return &memStore{videos: map[string]*model.Video{}} }

func (m *memStore) FindByExternalID(_ context.Context, userID uint64, ytID string) (model.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	for _, v := range m.videos {
		if v.UserID == userID && v.YouTubeVideoID == ytID {
			return *v, nil
		}
	}
	return model.Video{}, repository.ErrVideoNotFound
}

func (m *memStore) Create(_ context.Context, v *model.Video) error {
	if m.beforeCreate != nil {
		m.beforeCreate()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.createErr != nil {
		return m.createErr
	}
	for _, e := range m.videos {
		if e.UserID == v.UserID && e.YouTubeVideoID == v.YouTubeVideoID {
			return repository.ErrVideoExists
		}
	}
	now := time.Now().UTC()
	v.CreatedAt, v.UpdatedAt = now, now
	cp := *v
	cp.Transcript = append([]model.TranscriptSegment(nil), v.Transcript...)
	cp.Questions = []model.QAEntry{}
	m.videos[v.ID] = &cp
	return nil
}

func (m *memStore) GetForUser(_ context.Context, id string, userID uint64) (model.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	v, ok := m.videos[id]
	if !ok || v.UserID != userID {
		return model.Video{}, repository.ErrVideoNotFound
	}
	cp := *v
	cp.Questions = append([]model.QAEntry{}, v.Questions...)
	return cp, nil
}

func (m *memStore) ListByUser(_ context.Context, userID uint64) ([]model.VideoSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	out := []model.VideoSummary{}
	for _, v := range m.videos {
		if v.UserID == userID {
			out = append(out, model.VideoSummary{ID: v.ID, Title: v.Title, YouTubeVideoID: v.YouTubeVideoID, CreatedAt: v.CreatedAt})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) AppendQuestion(_ context.Context, videoID string, e model.QAEntry) (model.QAEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.appendErr != nil {
		return model.QAEntry{}, m.appendErr
	}
	v, ok := m.videos[videoID]
	if !ok {
		return model.QAEntry{}, repository.ErrVideoNotFound
	}
	m.nextQ++
	e.ID = m.nextQ
	v.Questions = append(v.Questions, e)
	return e, nil
}

func (m *memStore) Delete(_ context.Context, id string, userID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	v, ok := m.videos[id]
	if !ok || v.UserID != userID {
		return repository.ErrVideoNotFound
	}
	delete(m.videos, id)
	return nil
}

func (m *memStore) questions(id string) []model.QAEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.videos[id]; ok {
		return append([]model.QAEntry{}, v.Questions...)
	}
	return nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.videos)
}

func (m *memStore) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// fakeFetcher returns a fixed result and counts calls.
type fakeFetcher struct {
	mu     sync.Mutex
	result transcript.Result
	err    error
	calls  int
}

func (f *fakeFetcher) Fetch(context.Context, string) (transcript.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.result, f.err
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeAI records the prompts it was given.
type fakeAI struct {
	reply  string
	err    error
	system string
	user   string
	opts   ai.Options
	calls  int
}

func (f *fakeAI) Complete(_ context.Context, system, user string, opts ai.Options) (string, error) {
	f.calls++
	f.system, f.user, f.opts = system, user, opts
	return f.reply, f.err
}

// recordingPublisher keeps every event.
type recordingPublisher struct {
	mu       sync.Mutex
	ingested []queue.VideoIngestedEvent
	answered []queue.QuestionAnsweredEvent
	err      error
}

func (p *recordingPublisher) VideoIngested(_ context.Context, ev queue.VideoIngestedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ingested = append(p.ingested, ev)
	return p.err
}

func (p *recordingPublisher) QuestionAnswered(_ context.Context, ev queue.QuestionAnsweredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.answered = append(p.answered, ev)
	return p.err
}

func segments(texts ...string) []model.TranscriptSegment {
	out := make([]model.TranscriptSegment, len(texts))
	for i, t := range texts {
		out[i] = model.TranscriptSegment{Text: t, Start: float64(i), Duration: 1}
	}
	return out
}
