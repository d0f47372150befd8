// Package db provides PostgreSQL database access for moodflix.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Common errors.
var (
	ErrNotFound   = errors.New("not found")
	ErrUserExists = errors.New("user already exists")
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

// Querier is the connection handle every repository runs its statements on.
// *pgxpool.Pool, pgx.Tx and test doubles all satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB wraps a PostgreSQL connection handle.
type DB struct {
	q    Querier
	pool *pgxpool.Pool // nil when built from an arbitrary Querier
}

// Option configures the connection pool created by New.
type Option func(*pgxpool.Config)

// WithMaxConns caps the number of pooled connections.
func WithMaxConns(n int32) Option {
	return func(c *pgxpool.Config) {
		if n > 0 {
			c.MaxConns = n
		}
	}
}

// New creates a new database connection pool.
func New(ctx context.Context, databaseURL string, opts ...Option) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	for _, opt := range opts {
		opt(config)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{q: pool, pool: pool}, nil
}

// NewWithQuerier wraps an existing connection handle, such as a transaction
// or a mock pool.
func NewWithQuerier(q Querier) *DB {
	return &DB{q: q}
}

// Close closes the database connection pool, if this DB owns one.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Querier returns the underlying connection handle.
func (db *DB) Querier() Querier {
	return db.q
}

// Users returns a UserRepository.
func (db *DB) Users() *UserRepository {
	return &UserRepository{q: db.q}
}

// Friends returns a FriendRepository.
func (db *DB) Friends() *FriendRepository {
	return &FriendRepository{q: db.q}
}

// Content returns a ContentRepository.
func (db *DB) Content() *ContentRepository {
	return &ContentRepository{q: db.q}
}

// Watchlist returns a WatchlistRepository.
func (db *DB) Watchlist() *WatchlistRepository {
	return &WatchlistRepository{q: db.q}
}

// Activities returns an ActivityRepository.
func (db *DB) Activities() *ActivityRepository {
	return &ActivityRepository{q: db.q}
}

// Feedback returns a FeedbackRepository.
func (db *DB) Feedback() *FeedbackRepository {
	return &FeedbackRepository{q: db.q}
}

// MoodEntries returns a MoodEntryRepository.
func (db *DB) MoodEntries() *MoodEntryRepository {
	return &MoodEntryRepository{q: db.q}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
