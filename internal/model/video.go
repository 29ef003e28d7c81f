package model

import "time"

// Video is the aggregate owned by a single user: the fetched transcript plus
// the history of questions asked about it.  Transcript and Questions have no
// identity outside their video and are deleted with it.
type Video struct {
	ID             string              `json:"id"`
	UserID         uint64              `json:"user_id"`
	YouTubeVideoID string              `json:"youtube_video_id"`
	Title          string              `json:"title"`
	Transcript     []TranscriptSegment `json:"transcript"`
	Questions      []QAEntry           `json:"questions"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// TranscriptSegment is one timed caption unit.  Start and Duration are in
// seconds.  Segments keep the order in which the source returned them.
type TranscriptSegment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// QAEntry is one persisted question/answer exchange.  Entries are append-only.
type QAEntry struct {
	ID       uint64    `json:"id"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"asked_at"`
}

// VideoRef is the small reference returned by ingestion.  It never carries
// the transcript.
type VideoRef struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	YouTubeVideoID string `json:"youtube_video_id"`
}

// VideoSummary is one row of a user's library listing.
type VideoSummary struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	YouTubeVideoID string    `json:"youtube_video_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// Ref returns the reference form of v.
func (v Video) Ref() VideoRef {
	return VideoRef{ID: v.ID, Title: v.Title, YouTubeVideoID: v.YouTubeVideoID}
}
