package db

import (
	"context"
	"fmt"
)

// FeedbackRepository handles user feedback operations.
type FeedbackRepository struct {
	q Querier
}

// Create inserts feedback and fills in its id and creation time.
func (r *FeedbackRepository) Create(ctx context.Context, f *Feedback) error {
	query := `
		INSERT INTO feedback (user_id, message, rating, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`
	if err := r.q.QueryRow(ctx, query, f.UserID, f.Message, f.Rating).Scan(&f.ID, &f.CreatedAt); err != nil {
		return fmt.Errorf("inserting feedback: %w", err)
	}
	return nil
}

// ListForUser retrieves a user's feedback, newest first.
func (r *FeedbackRepository) ListForUser(ctx context.Context, userID int64) ([]Feedback, error) {
	query := `
		SELECT id, user_id, message, rating, created_at
		FROM feedback
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.query(ctx, query, userID)
}

// List retrieves all feedback, newest first.
func (r *FeedbackRepository) List(ctx context.Context) ([]Feedback, error) {
	query := `
		SELECT id, user_id, message, rating, created_at
		FROM feedback
		ORDER BY created_at DESC, id DESC
	`
	return r.query(ctx, query)
}

// Delete removes feedback by id.
func (r *FeedbackRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM feedback WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting feedback: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *FeedbackRepository) query(ctx context.Context, query string, args ...any) ([]Feedback, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying feedback: %w", err)
	}
	defer rows.Close()

	var items []Feedback
	for rows.Next() {
		var f Feedback
		if err := rows.Scan(&f.ID, &f.UserID, &f.Message, &f.Rating, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning feedback: %w", err)
		}
		items = append(items, f)
	}
	return items, rows.Err()
}
