package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

const contentColumns = `id, title, mood, type, link, description, image_url, created_at, updated_at`

// ContentRepository handles content catalog operations.
type ContentRepository struct {
	q Querier
}

// ContentUpdate carries a partial content update. Nil fields are left unchanged.
type ContentUpdate struct {
	Title       *string
	Mood        *string
	Type        *string
	Link        *string
	Description *string
	ImageURL    *string
}

// Empty reports whether the update changes nothing.
func (u ContentUpdate) Empty() bool {
	return u.Title == nil && u.Mood == nil && u.Type == nil &&
		u.Link == nil && u.Description == nil && u.ImageURL == nil
}

// Create inserts a content row and fills in its id and timestamps.
func (r *ContentRepository) Create(ctx context.Context, c *Content) error {
	query := `
		INSERT INTO content (title, mood, type, link, description, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query,
		c.Title,
		c.Mood,
		c.Type,
		c.Link,
		c.Description,
		c.ImageURL,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting content: %w", err)
	}
	return nil
}

// Get retrieves the first content row selected by key.
func (r *ContentRepository) Get(ctx context.Context, key ContentKey) (*Content, error) {
	where, arg, err := keyPredicate(key, 1)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + contentColumns + ` FROM content WHERE ` + where + ` ORDER BY id LIMIT 1`
	c, err := scanContent(r.q.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying content: %w", err)
	}
	return c, nil
}

// ResolveID returns the id of the content row selected by key.
func (r *ContentRepository) ResolveID(ctx context.Context, key ContentKey) (int64, error) {
	where, arg, err := keyPredicate(key, 1)
	if err != nil {
		return 0, err
	}
	query := `SELECT id FROM content WHERE ` + where + ` ORDER BY id LIMIT 1`
	var id int64
	err = r.q.QueryRow(ctx, query, arg).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("resolving content id: %w", err)
	}
	return id, nil
}

// List retrieves content, optionally narrowed to a mood and/or type.
// Empty filter values match everything.
func (r *ContentRepository) List(ctx context.Context, mood, typ string) ([]Content, error) {
	var (
		conds []string
		args  []any
	)
	if mood != "" {
		args = append(args, mood)
		conds = append(conds, fmt.Sprintf("mood = $%d", len(args)))
	}
	if typ != "" {
		args = append(args, typ)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}

	query := `SELECT ` + contentColumns + ` FROM content`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY id`
	return r.queryContent(ctx, query, args...)
}

// Search matches term case-insensitively against title or description.
func (r *ContentRepository) Search(ctx context.Context, term string) ([]Content, error) {
	query := `SELECT ` + contentColumns + ` FROM content
		WHERE title ILIKE $1 ESCAPE '\' OR description ILIKE $1 ESCAPE '\'
		ORDER BY id`
	return r.queryContent(ctx, query, "%"+escapeLike(term)+"%")
}

// Count returns the number of catalog rows.
func (r *ContentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM content`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting content: %w", err)
	}
	return count, nil
}

// Update applies a partial update to the rows selected by key and returns
// how many rows changed.
func (r *ContentRepository) Update(ctx context.Context, key ContentKey, u ContentUpdate) (int64, error) {
	where, arg, err := keyPredicate(key, 1)
	if err != nil {
		return 0, err
	}
	query := `
		UPDATE content SET
			title = COALESCE($2, title),
			mood = COALESCE($3, mood),
			type = COALESCE($4, type),
			link = COALESCE($5, link),
			description = COALESCE($6, description),
			image_url = COALESCE($7, image_url),
			updated_at = NOW()
		WHERE ` + where
	result, err := r.q.Exec(ctx, query, arg, u.Title, u.Mood, u.Type, u.Link, u.Description, u.ImageURL)
	if err != nil {
		return 0, fmt.Errorf("updating content: %w", err)
	}
	return result.RowsAffected(), nil
}

// Delete removes the rows selected by key and returns how many were removed.
func (r *ContentRepository) Delete(ctx context.Context, key ContentKey) (int64, error) {
	where, arg, err := keyPredicate(key, 1)
	if err != nil {
		return 0, err
	}
	result, err := r.q.Exec(ctx, `DELETE FROM content WHERE `+where, arg)
	if err != nil {
		return 0, fmt.Errorf("deleting content: %w", err)
	}
	return result.RowsAffected(), nil
}

func (r *ContentRepository) queryContent(ctx context.Context, query string, args ...any) ([]Content, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying content: %w", err)
	}
	defer rows.Close()

	var items []Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning content: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// keyPredicate renders the WHERE predicate for key using placeholder $n.
func keyPredicate(key ContentKey, n int) (string, any, error) {
	if id, ok := key.ID(); ok {
		return fmt.Sprintf("id = $%d", n), id, nil
	}
	if title, ok := key.Title(); ok {
		return fmt.Sprintf("title = $%d", n), title, nil
	}
	return "", nil, fmt.Errorf("empty content key: %w", ErrNotFound)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanContent(row pgx.Row) (*Content, error) {
	var c Content
	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Mood,
		&c.Type,
		&c.Link,
		&c.Description,
		&c.ImageURL,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
