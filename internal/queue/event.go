// Package queue carries activity events over RabbitMQ: a publisher used by
// the services and a consumer that appends each event to an activity log.
package queue

// ActivityQueue is the durable queue every event is published to.  The
// event kind travels in the AMQP message type.
const ActivityQueue = "smartplay.activity"

const (
	TypeVideoIngested    = "video.ingested"
	TypeQuestionAnswered = "question.answered"
)

// VideoIngestedEvent is published after a new video was stored.
type VideoIngestedEvent struct {
	VideoID        string `json:"video_id"`
	UserID         uint64 `json:"user_id"`
	YouTubeVideoID string `json:"youtube_video_id"`
	Title          string `json:"title"`
	Segments       int    `json:"segments"`
	At             string `json:"at"`
}

// QuestionAnsweredEvent is published after a question/answer pair was
// stored.  Only lengths are sent; the text stays in the database.
type QuestionAnsweredEvent struct {
	VideoID     string `json:"video_id"`
	UserID      uint64 `json:"user_id"`
	QuestionLen int    `json:"question_len"`
	AnswerLen   int    `json:"answer_len"`
	At          string `json:"at"`
}
