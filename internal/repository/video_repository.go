package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/smartplay/internal/database"
	"github.com/iliyamo/smartplay/internal/model"
)

// VideoRepo stores Video aggregates.  The transcript lives in a JSON column
// on `videos`; question/answer entries live in `video_questions` and are
// removed by the foreign key cascade when their video is deleted.
type VideoRepo struct {
	db *sql.DB
}

// NewVideoRepo returns a VideoRepo bound to the provided database.
func NewVideoRepo(db *sql.DB) *VideoRepo { return &VideoRepo{db: db} }

// Ping checks database connectivity for the status endpoint.
func (r *VideoRepo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

// Create inserts a new video.  An empty ID is replaced by a random UUID.
// CreatedAt and UpdatedAt are filled in on success.  A second video for the
// same (user, YouTube id) pair is rejected with ErrVideoExists.
func (r *VideoRepo) Create(ctx context.Context, v *model.Video) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.Transcript == nil {
		v.Transcript = []model.TranscriptSegment{}
	}
	transcript, err := json.Marshal(v.Transcript)
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	now := time.Now().UTC().Truncate(time.Second)
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO videos (id, user_id, youtube_video_id, title, transcript, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.UserID, v.YouTubeVideoID, v.Title, transcript, now, now)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrVideoExists
		}
		return err
	}
	v.CreatedAt, v.UpdatedAt = now, now
	if v.Questions == nil {
		v.Questions = []model.QAEntry{}
	}
	return nil
}

// FindByExternalID looks up a user's video by its YouTube id.  Only the
// header columns are loaded; Transcript and Questions stay nil.
func (r *VideoRepo) FindByExternalID(ctx context.Context, userID uint64, youtubeID string) (model.Video, error) {
	var v model.Video
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, youtube_video_id, title, created_at, updated_at
		   FROM videos WHERE user_id = ? AND youtube_video_id = ? LIMIT 1`,
		userID, youtubeID).Scan(&v.ID, &v.UserID, &v.YouTubeVideoID, &v.Title, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Video{}, ErrVideoNotFound
	}
	return v, err
}

// GetForUser loads the full aggregate, transcript and questions included,
// when the video exists and belongs to userID.
func (r *VideoRepo) GetForUser(ctx context.Context, id string, userID uint64) (model.Video, error) {
	var (
		v   model.Video
		raw []byte
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, youtube_video_id, title, transcript, created_at, updated_at
		   FROM videos WHERE id = ? AND user_id = ? LIMIT 1`,
		id, userID).Scan(&v.ID, &v.UserID, &v.YouTubeVideoID, &v.Title, &raw, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Video{}, ErrVideoNotFound
	}
	if err != nil {
		return model.Video{}, err
	}
	if err := json.Unmarshal(raw, &v.Transcript); err != nil {
		return model.Video{}, fmt.Errorf("decode transcript of %s: %w", v.ID, err)
	}
	if v.Transcript == nil {
		v.Transcript = []model.TranscriptSegment{}
	}
	v.Questions, err = r.listQuestions(ctx, v.ID)
	if err != nil {
		return model.Video{}, err
	}
	return v, nil
}

func (r *VideoRepo) listQuestions(ctx context.Context, videoID string) ([]model.QAEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, question, answer, asked_at FROM video_questions WHERE video_id = ? ORDER BY id`,
		videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.QAEntry{}
	for rows.Next() {
		var q model.QAEntry
		if err := rows.Scan(&q.ID, &q.Question, &q.Answer, &q.AskedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// ListByUser returns the user's library, newest first.
func (r *VideoRepo) ListByUser(ctx context.Context, userID uint64) ([]model.VideoSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, youtube_video_id, created_at
		   FROM videos WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.VideoSummary{}
	for rows.Next() {
		var s model.VideoSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.YouTubeVideoID, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// AppendQuestion appends one entry to a video's history and bumps the
// video's updated_at in the same transaction.  The stored entry, with its
// assigned ID, is returned.
func (r *VideoRepo) AppendQuestion(ctx context.Context, videoID string, e model.QAEntry) (model.QAEntry, error) {
	e.AskedAt = e.AskedAt.UTC()
	err := database.WithTx(ctx, r.db, func(ctx context.Context, tx database.DBTX) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO video_questions (video_id, question, answer, asked_at) VALUES (?, ?, ?, ?)`,
			videoID, e.Question, e.Answer, e.AskedAt)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		e.ID = uint64(id)
		_, err = tx.ExecContext(ctx, `UPDATE videos SET updated_at = UTC_TIMESTAMP() WHERE id = ?`, videoID)
		return err
	})
	if err != nil {
		return model.QAEntry{}, err
	}
	return e, nil
}

// Delete removes a video owned by userID.  ErrVideoNotFound is returned when
// nothing matched.
func (r *VideoRepo) Delete(ctx context.Context, id string, userID uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM videos WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrVideoNotFound
	}
	return nil
}
