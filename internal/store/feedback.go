package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/cyberquest/apiserver/types"
)

// FeedbackRepository handles persistence for user feedback.
type FeedbackRepository struct {
	db *sql.DB
}

func NewFeedbackRepository(db *sql.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Create(ctx context.Context, fb types.Feedback) (types.Feedback, error) {
	fb.CreatedAt = time.Now()

	var rating sql.NullInt64
	if fb.Rating != 0 {
		rating = sql.NullInt64{Int64: int64(fb.Rating), Valid: true}
	}

	const query = `
		INSERT INTO feedback (user_id, topic_id, rating, category, message, screenshot_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		fb.UserID,
		fb.TopicID,
		rating,
		fb.Category,
		fb.Message,
		fb.ScreenshotKey,
		fb.CreatedAt,
	).Scan(&fb.ID); err != nil {
		return types.Feedback{}, translateError(err)
	}
	return fb, nil
}

// ListByUserTopic returns one user's feedback for a topic,
// newest first.
func (r *FeedbackRepository) ListByUserTopic(ctx context.Context, userID, topicID int) ([]types.Feedback, error) {
	const query = `
		SELECT id, user_id, topic_id, rating, category, message, screenshot_key, is_resolved, created_at
		FROM feedback
		WHERE user_id = $1 AND topic_id = $2
		ORDER BY created_at DESC`
	return r.list(ctx, query, userID, topicID)
}

// ListAll returns every feedback entry across all users, newest first.
func (r *FeedbackRepository) ListAll(ctx context.Context) ([]types.Feedback, error) {
	const query = `
		SELECT id, user_id, topic_id, rating, category, message, screenshot_key, is_resolved, created_at
		FROM feedback
		ORDER BY created_at DESC`
	return r.list(ctx, query)
}

// Resolve marks an entry resolved.
func (r *FeedbackRepository) Resolve(ctx context.Context, id int) error {
	const query = `
		UPDATE feedback
		SET is_resolved = TRUE
		WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *FeedbackRepository) list(ctx context.Context, query string, args ...any) ([]types.Feedback, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []types.Feedback
	for rows.Next() {
		var fb types.Feedback
		var rating sql.NullInt64
		if err := rows.Scan(
			&fb.ID,
			&fb.UserID,
			&fb.TopicID,
			&rating,
			&fb.Category,
			&fb.Message,
			&fb.ScreenshotKey,
			&fb.IsResolved,
			&fb.CreatedAt,
		); err != nil {
			return nil, err
		}
		if rating.Valid {
			fb.Rating = int(rating.Int64)
		}
		entries = append(entries, fb)
	}
	return entries, rows.Err()
}
