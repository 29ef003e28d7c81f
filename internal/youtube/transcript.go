package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the origin used for watch pages.
const DefaultBaseURL = "https://www.youtube.com"

const (
	userAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	maxWatchPage  = 6 << 20
	maxTimedText  = 2 << 20
	errBodySample = 256
)

var (
	// ErrVideoUnavailable means YouTube refused to play the video: it is
	// private, deleted, region-blocked or needs a login.
	ErrVideoUnavailable = errors.New("video unavailable")

	// ErrCaptionsUnavailable means the video plays but has no usable
	// caption track.
	ErrCaptionsUnavailable = errors.New("captions unavailable")
)

// Cue is one caption line as delivered by YouTube, in milliseconds.
type Cue struct {
	Text       string
	StartMs    int64
	DurationMs int64
}

// Track is the caption track chosen for a video plus the video's title.
// Title is empty when the watch page did not carry one.
type Track struct {
	Title string
	Cues  []Cue
}

// Client fetches caption tracks by scraping ytInitialPlayerResponse from the
// watch page.  It makes exactly one attempt per request.
type Client struct {
	baseURL string
	langs   []string
	http    *http.Client
}

// NewClient builds a Client.  An empty baseURL means DefaultBaseURL; langs
// is the caption language preference, most preferred first.
func NewClient(baseURL string, langs []string, hc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: 20 * time.Second}
	}
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), langs: langs, http: hc}
}

// Fetch downloads the watch page for videoID, picks a caption track and
// returns its cues in source order.
func (c *Client) Fetch(ctx context.Context, videoID string) (Track, error) {
	watchURL := c.baseURL + "/watch?" + url.Values{"v": {videoID}}.Encode()
	page, err := c.get(ctx, watchURL, maxWatchPage, func(h http.Header) {
		h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		h.Set("Accept-Language", "en-US,en;q=0.9")
	})
	if err != nil {
		return Track{}, fmt.Errorf("watch page: %w", err)
	}

	player, err := parsePlayerResponse(page)
	if err != nil {
		return Track{}, err
	}
	if ps := player.PlayabilityStatus; ps != nil {
		switch ps.Status {
		case "ERROR", "LOGIN_REQUIRED", "UNPLAYABLE":
			return Track{}, fmt.Errorf("%w: %s %s", ErrVideoUnavailable, ps.Status, ps.Reason)
		}
	}

	var title string
	if player.VideoDetails != nil {
		title = strings.TrimSpace(player.VideoDetails.Title)
	}

	if player.Captions == nil {
		return Track{}, fmt.Errorf("%w: no captions in player response", ErrCaptionsUnavailable)
	}
	tracks := player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return Track{}, fmt.Errorf("%w: no caption tracks", ErrCaptionsUnavailable)
	}
	track, ok := pickBestTrack(tracks, c.langs)
	if !ok {
		return Track{}, fmt.Errorf("%w: all tracks need a browser session", ErrCaptionsUnavailable)
	}

	cues, err := c.fetchTimedText(ctx, track.BaseURL)
	if err != nil {
		return Track{}, err
	}
	return Track{Title: title, Cues: cues}, nil
}

func parsePlayerResponse(page []byte) (playerResponse, error) {
	var pr playerResponse
	idx := bytes.Index(page, []byte(playerResponseMarker))
	if idx < 0 {
		return pr, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	raw := extractJSON(page[idx+len(playerResponseMarker):])
	if raw == nil {
		return pr, errors.New("unterminated ytInitialPlayerResponse")
	}
	if err := json.Unmarshal(raw, &pr); err != nil {
		return pr, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return pr, nil
}

// needsPoToken reports whether a track URL is bound to a browser proof of
// origin token and so cannot be fetched from a server.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack prefers a manual track in the preferred languages, then an
// auto-generated one, then any English track, then the first usable one.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if t.BaseURL != "" && !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, false
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}

func (c *Client) fetchTimedText(ctx context.Context, baseURL string) ([]Cue, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("caption url: %w", err)
	}
	q := u.Query()
	q.Set("fmt", "srv3")
	u.RawQuery = q.Encode()

	body, err := c.get(ctx, u.String(), maxTimedText, nil)
	if err != nil {
		return nil, fmt.Errorf("timedtext: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty timedtext", ErrCaptionsUnavailable)
	}

	var doc srv3Doc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse timedtext: %w", err)
	}
	cues := make([]Cue, 0, len(doc.Body.Paras))
	for _, p := range doc.Body.Paras {
		text := p.Text
		if len(p.Segs) > 0 {
			var sb strings.Builder
			for _, s := range p.Segs {
				sb.WriteString(s.Text)
			}
			text = sb.String()
		}
		cues = append(cues, Cue{Text: text, StartMs: p.T, DurationMs: p.D})
	}
	return cues, nil
}

func (c *Client) get(ctx context.Context, target string, limit int64, decorate func(http.Header)) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	if decorate != nil {
		decorate(req.Header)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errBodySample))
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}
