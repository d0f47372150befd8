package db

import (
	"context"
	"fmt"
	"time"
)

// MoodEntryRepository handles mood entry operations.
type MoodEntryRepository struct {
	q Querier
}

// Create inserts a mood entry and fills in its id.
func (r *MoodEntryRepository) Create(ctx context.Context, e *MoodEntry) error {
	query := `
		INSERT INTO mood_entries (user_id, mood, entry_time)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	if err := r.q.QueryRow(ctx, query, e.UserID, e.Mood, e.EntryTime).Scan(&e.ID); err != nil {
		return fmt.Errorf("inserting mood entry: %w", err)
	}
	return nil
}

// ListForUser retrieves a user's mood entries, most recent first.
func (r *MoodEntryRepository) ListForUser(ctx context.Context, userID int64) ([]MoodEntry, error) {
	query := `
		SELECT id, user_id, mood, entry_time
		FROM mood_entries
		WHERE user_id = $1
		ORDER BY entry_time DESC, id DESC
	`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying mood entries: %w", err)
	}
	defer rows.Close()

	var entries []MoodEntry
	for rows.Next() {
		var e MoodEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Mood, &e.EntryTime); err != nil {
			return nil, fmt.Errorf("scanning mood entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Update changes the mood and time of an entry owned by the user.
func (r *MoodEntryRepository) Update(ctx context.Context, userID, id int64, mood string, at time.Time) error {
	query := `UPDATE mood_entries SET mood = $3, entry_time = $4 WHERE id = $1 AND user_id = $2`
	result, err := r.q.Exec(ctx, query, id, userID, mood, at)
	if err != nil {
		return fmt.Errorf("updating mood entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an entry owned by the user.
func (r *MoodEntryRepository) Delete(ctx context.Context, userID, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM mood_entries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting mood entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
