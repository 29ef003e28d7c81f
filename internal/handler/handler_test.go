package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/smartplay/internal/common"
	"github.com/iliyamo/smartplay/internal/middleware"
	"github.com/iliyamo/smartplay/internal/model"
	"github.com/iliyamo/smartplay/internal/service"
)

var quietLog = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeVideos struct {
	ref     model.VideoRef
	created bool
	list    []model.VideoSummary
	video   model.Video
	err     error

	gotUser uint64
	gotArg  string
}

func (f *fakeVideos) Ingest(_ context.Context, uid uint64, raw string) (model.VideoRef, bool, error) {
	f.gotUser, f.gotArg = uid, raw
	return f.ref, f.created, f.err
}

func (f *fakeVideos) List(_ context.Context, uid uint64) ([]model.VideoSummary, error) {
	f.gotUser = uid
	return f.list, f.err
}

func (f *fakeVideos) Get(_ context.Context, uid uint64, id string) (model.Video, error) {
	f.gotUser, f.gotArg = uid, id
	return f.video, f.err
}

func (f *fakeVideos) Delete(_ context.Context, uid uint64, id string) error {
	f.gotUser, f.gotArg = uid, id
	return f.err
}

type fakeQA struct {
	answer   service.Answer
	err      error
	question string
	videoID  string
}

func (f *fakeQA) Ask(_ context.Context, _ uint64, videoID, q string) (service.Answer, error) {
	f.videoID, f.question = videoID, q
	return f.answer, f.err
}

// asUser injects an authenticated user the way JWTAuth does.
func asUser(id uint64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.UserIDKey, id)
			return next(c)
		}
	}
}

func newServer(videos VideoService, qa QuestionService) *echo.Echo {
	e := echo.New()
	vh := NewVideoHandler(videos, quietLog)
	ch := NewChatHandler(qa, quietLog)
	g := e.Group("/v1", asUser(7))
	g.POST("/videos", vh.Create)
	g.GET("/videos", vh.List)
	g.GET("/videos/:id", vh.Get)
	g.DELETE("/videos/:id", vh.Delete)
	g.POST("/chat/:videoId", ch.Ask)
	return e
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestVideoCreate(t *testing.T) {
	ref := model.VideoRef{ID: "11111111-1111-1111-1111-111111111111", Title: "T", YouTubeVideoID: "abc123XYZ9"}

	videos := &fakeVideos{ref: ref, created: true}
	rec := do(newServer(videos, &fakeQA{}), http.MethodPost, "/v1/videos", `{"youtube_url":"https://youtu.be/abc123XYZ9"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, uint64(7), videos.gotUser)
	assert.Equal(t, "https://youtu.be/abc123XYZ9", videos.gotArg)
	body := decode(t, rec)
	assert.Equal(t, "abc123XYZ9", body["video"].(map[string]any)["youtube_video_id"])
	assert.NotContains(t, rec.Body.String(), "transcript")

	videos = &fakeVideos{ref: ref, created: false}
	rec = do(newServer(videos, &fakeQA{}), http.MethodPost, "/v1/videos", `{"youtube_url":"https://youtu.be/abc123XYZ9"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVideoCreate_MissingURL(t *testing.T) {
	videos := &fakeVideos{}
	rec := do(newServer(videos, &fakeQA{}), http.MethodPost, "/v1/videos", `{"youtube_url":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, videos.gotUser)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{common.ErrInvalidURL, http.StatusBadRequest},
		{common.ErrInvalidInput, http.StatusBadRequest},
		{common.ErrNotFound, http.StatusNotFound},
		{common.ErrNoTranscript, http.StatusBadRequest},
		{common.ErrTranscriptUnavailable, http.StatusBadRequest},
		{common.ErrSourceUnavailable, http.StatusBadRequest},
		{common.ErrTransientFetch, http.StatusServiceUnavailable},
		{common.ErrServiceUnavailable, http.StatusServiceUnavailable},
		{common.ErrStore, http.StatusInternalServerError},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			wrapped := fmt.Errorf("%w: internal detail 10.0.0.5", tt.err)
			rec := do(newServer(&fakeVideos{err: wrapped}, &fakeQA{}), http.MethodPost, "/v1/videos", `{"youtube_url":"x"}`)
			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.NotEmpty(t, body["error"])
			assert.NotContains(t, rec.Body.String(), "10.0.0.5")
		})
	}
}

func TestVideoListGetDelete(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	videos := &fakeVideos{
		list:  []model.VideoSummary{{ID: "b", Title: "B", CreatedAt: now}, {ID: "a", Title: "A", CreatedAt: now.Add(-time.Hour)}},
		video: model.Video{ID: "a", Title: "A", Transcript: []model.TranscriptSegment{{Text: "hi"}}, Questions: []model.QAEntry{}},
	}
	e := newServer(videos, &fakeQA{})

	rec := do(e, http.MethodGet, "/v1/videos", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []model.VideoSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, "b", list[0].ID)

	rec = do(e, http.MethodGet, "/v1/videos/a", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a", videos.gotArg)
	assert.Contains(t, rec.Body.String(), `"transcript":[{"text":"hi"`)

	rec = do(e, http.MethodDelete, "/v1/videos/a", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	videos.err = common.ErrNotFound
	rec = do(e, http.MethodDelete, "/v1/videos/a", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatAsk(t *testing.T) {
	qa := &fakeQA{answer: service.Answer{Text: "It says hello.", Entry: model.QAEntry{AskedAt: time.Now().UTC()}}}
	rec := do(newServer(&fakeVideos{}, qa), http.MethodPost, "/v1/chat/vid-1", `{"question":"What is said?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "It says hello.", decode(t, rec)["answer"])
	assert.Equal(t, "vid-1", qa.videoID)
	assert.Equal(t, "What is said?", qa.question)

	qa = &fakeQA{err: common.ErrServiceUnavailable}
	rec = do(newServer(&fakeVideos{}, qa), http.MethodPost, "/v1/chat/vid-1", `{"question":"q"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(newServer(&fakeVideos{}, qa), http.MethodPost, "/v1/chat/vid-1", `{"question":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnauthenticatedContext(t *testing.T) {
	e := echo.New()
	vh := NewVideoHandler(&fakeVideos{}, quietLog)
	e.GET("/v1/videos", vh.List)
	rec := do(e, http.MethodGet, "/v1/videos", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestHealthAndStatus(t *testing.T) {
	e := echo.New()
	e.GET("/healthz", Health)
	e.GET("/v1/status", NewStatusHandler(pinger{}, quietLog).Status)
	e.GET("/v1/status-down", NewStatusHandler(pinger{err: fmt.Errorf("refused")}, quietLog).Status)

	rec := do(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, "ok", rec.Body.String())

	rec = do(e, http.MethodGet, "/v1/status", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "up", decode(t, rec)["database"])

	rec = do(e, http.MethodGet, "/v1/status-down", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
