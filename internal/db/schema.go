package db

import (
	"context"
	"fmt"
)

// schema is applied in order by Migrate. Every statement is idempotent.
//
// Dependent rows (friends, watchlist, activities, feedback, mood entries)
// are removed by the database when their user or content row is deleted.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
		display_name  TEXT NOT NULL DEFAULT '',
		full_name     TEXT NOT NULL DEFAULT '',
		age           INTEGER,
		gender        TEXT NOT NULL DEFAULT '',
		photo_url     TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS content (
		id          BIGSERIAL PRIMARY KEY,
		title       TEXT NOT NULL,
		mood        TEXT NOT NULL DEFAULT '',
		type        TEXT NOT NULL DEFAULT '',
		link        TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		image_url   TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_content_title ON content (title)`,
	`CREATE INDEX IF NOT EXISTS idx_content_mood_type ON content (mood, type)`,
	`CREATE TABLE IF NOT EXISTS friends (
		user_id    BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		friend_id  BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, friend_id)
	)`,
	`CREATE TABLE IF NOT EXISTS watchlist (
		user_id    BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		content_id BIGINT NOT NULL REFERENCES content (id) ON DELETE CASCADE,
		added_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, content_id)
	)`,
	`CREATE TABLE IF NOT EXISTS activities (
		id               BIGSERIAL PRIMARY KEY,
		user_id          BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		title            TEXT NOT NULL,
		mood             TEXT NOT NULL DEFAULT '',
		type             TEXT NOT NULL DEFAULT '',
		occurred_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		duration_minutes INTEGER NOT NULL DEFAULT 0,
		rating           DOUBLE PRECISION NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_user_time ON activities (user_id, occurred_at DESC)`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		message    TEXT NOT NULL,
		rating     INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS mood_entries (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		mood       TEXT NOT NULL,
		entry_time TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_mood_entries_user_time ON mood_entries (user_id, entry_time DESC)`,
}

// Migrate creates any missing tables and indexes.
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema statement %d: %w", i, err)
		}
	}
	return nil
}
