package postgres

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS activities (
		seq BIGSERIAL,
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		daily_goal INTEGER NOT NULL CHECK (daily_goal > 0),
		unit TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS extra_balance (
		activity_id TEXT PRIMARY KEY REFERENCES activities(id) ON DELETE CASCADE,
		balance INTEGER NOT NULL DEFAULT 0 CHECK (balance >= 0),
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS daily_progress (
		date TEXT NOT NULL,
		activity_id TEXT NOT NULL,
		progress INTEGER NOT NULL DEFAULT 0 CHECK (progress >= 0),
		extras_used INTEGER NOT NULL DEFAULT 0 CHECK (extras_used >= 0 AND extras_used <= progress),
		updated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (date, activity_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_daily_progress_activity ON daily_progress(activity_id)`,
}

// EnsureSchema creates the tables if they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := s.q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
