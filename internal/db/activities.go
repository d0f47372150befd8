package db

import (
	"context"
	"fmt"
)

// ActivityRepository handles activity log operations.
type ActivityRepository struct {
	q Querier
}

// Create inserts an activity and fills in its id.
func (r *ActivityRepository) Create(ctx context.Context, a *Activity) error {
	query := `
		INSERT INTO activities (user_id, title, mood, type, occurred_at, duration_minutes, rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.q.QueryRow(ctx, query,
		a.UserID,
		a.Title,
		a.Mood,
		a.Type,
		a.OccurredAt,
		a.Duration,
		a.Rating,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}
	return nil
}

// ListForUser retrieves a user's activities, most recent first. A
// non-positive limit returns all of them.
func (r *ActivityRepository) ListForUser(ctx context.Context, userID int64, limit int) ([]Activity, error) {
	query := `
		SELECT id, user_id, title, mood, type, occurred_at, duration_minutes, rating
		FROM activities
		WHERE user_id = $1
		ORDER BY occurred_at DESC, id DESC
	`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying activities: %w", err)
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.Title,
			&a.Mood,
			&a.Type,
			&a.OccurredAt,
			&a.Duration,
			&a.Rating,
		); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// Update overwrites an activity owned by the user.
func (r *ActivityRepository) Update(ctx context.Context, a *Activity) error {
	query := `
		UPDATE activities
		SET title = $3, mood = $4, type = $5, occurred_at = $6, duration_minutes = $7, rating = $8
		WHERE id = $1 AND user_id = $2
	`
	result, err := r.q.Exec(ctx, query, a.ID, a.UserID, a.Title, a.Mood, a.Type, a.OccurredAt, a.Duration, a.Rating)
	if err != nil {
		return fmt.Errorf("updating activity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an activity owned by the user.
func (r *ActivityRepository) Delete(ctx context.Context, userID, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM activities WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting activity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of activities across all users.
func (r *ActivityRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM activities`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting activities: %w", err)
	}
	return count, nil
}
