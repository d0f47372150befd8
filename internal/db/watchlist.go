package db

import (
	"context"
	"fmt"
)

// WatchlistRepository handles the user/content watchlist relation.
type WatchlistRepository struct {
	q Querier
}

// Add saves content to a user's watchlist. Re-adding is a no-op.
// It reports whether a new row was inserted.
func (r *WatchlistRepository) Add(ctx context.Context, userID, contentID int64) (bool, error) {
	query := `
		INSERT INTO watchlist (user_id, content_id, added_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, content_id) DO NOTHING
	`
	result, err := r.q.Exec(ctx, query, userID, contentID)
	if err != nil {
		return false, fmt.Errorf("inserting watchlist entry: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// Remove deletes a watchlist entry and reports whether one existed.
func (r *WatchlistRepository) Remove(ctx context.Context, userID, contentID int64) (bool, error) {
	query := `DELETE FROM watchlist WHERE user_id = $1 AND content_id = $2`
	result, err := r.q.Exec(ctx, query, userID, contentID)
	if err != nil {
		return false, fmt.Errorf("deleting watchlist entry: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// Contains reports whether the content is on the user's watchlist.
func (r *WatchlistRepository) Contains(ctx context.Context, userID, contentID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM watchlist WHERE user_id = $1 AND content_id = $2)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, userID, contentID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking watchlist entry: %w", err)
	}
	return exists, nil
}

// Count returns the number of entries on the user's watchlist.
func (r *WatchlistRepository) Count(ctx context.Context, userID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM watchlist WHERE user_id = $1`
	var count int64
	if err := r.q.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting watchlist: %w", err)
	}
	return count, nil
}

// Clear removes every entry for the user and returns how many were removed.
func (r *WatchlistRepository) Clear(ctx context.Context, userID int64) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM watchlist WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("clearing watchlist: %w", err)
	}
	return result.RowsAffected(), nil
}

// ListForUser retrieves the user's watchlist joined with content, most
// recently added first.
func (r *WatchlistRepository) ListForUser(ctx context.Context, userID int64) ([]WatchlistItem, error) {
	query := `
		SELECT c.id, c.title, c.mood, c.type, c.link, c.description, c.image_url,
			c.created_at, c.updated_at, w.added_at
		FROM content c
		JOIN watchlist w ON c.id = w.content_id
		WHERE w.user_id = $1
		ORDER BY w.added_at DESC, c.id DESC
	`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying watchlist: %w", err)
	}
	defer rows.Close()

	var items []WatchlistItem
	for rows.Next() {
		var item WatchlistItem
		c := &item.Content
		if err := rows.Scan(
			&c.ID,
			&c.Title,
			&c.Mood,
			&c.Type,
			&c.Link,
			&c.Description,
			&c.ImageURL,
			&c.CreatedAt,
			&c.UpdatedAt,
			&item.AddedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning watchlist entry: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ContentIDsForUser returns the ids of every content item on the watchlist.
func (r *WatchlistRepository) ContentIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.q.Query(ctx, `SELECT content_id FROM watchlist WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying watchlist ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning content id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
