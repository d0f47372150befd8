package db

import (
	"context"
	"fmt"
)

// FriendRepository handles friendship edges. A friendship is stored as one
// row per direction.
type FriendRepository struct {
	q Querier
}

// Add links two users in both directions. Existing edges are left alone.
func (r *FriendRepository) Add(ctx context.Context, userID, friendID int64) error {
	query := `
		INSERT INTO friends (user_id, friend_id, created_at)
		VALUES ($1, $2, NOW()), ($2, $1, NOW())
		ON CONFLICT (user_id, friend_id) DO NOTHING
	`
	_, err := r.q.Exec(ctx, query, userID, friendID)
	if err != nil {
		return fmt.Errorf("inserting friendship: %w", err)
	}
	return nil
}

// Remove deletes both directions of a friendship and reports whether any
// edge existed.
func (r *FriendRepository) Remove(ctx context.Context, userID, friendID int64) (bool, error) {
	query := `
		DELETE FROM friends
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
	`
	result, err := r.q.Exec(ctx, query, userID, friendID)
	if err != nil {
		return false, fmt.Errorf("deleting friendship: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// ListForUser retrieves the users the given user has an edge to, ordered
// by when the friendship was made.
func (r *FriendRepository) ListForUser(ctx context.Context, userID int64) ([]User, error) {
	query := `
		SELECT u.id, u.email, u.password_hash, u.role, u.display_name, u.full_name,
			u.age, u.gender, u.photo_url, u.created_at, u.updated_at
		FROM users u
		JOIN friends f ON u.id = f.friend_id
		WHERE f.user_id = $1
		ORDER BY f.created_at, u.id
	`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying friends: %w", err)
	}
	defer rows.Close()

	var friends []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning friend: %w", err)
		}
		friends = append(friends, *user)
	}
	return friends, rows.Err()
}
