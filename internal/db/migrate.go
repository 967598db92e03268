package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate runs all schema migrations. Every statement is safe to re-run.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillBalances(db); err != nil {
		return fmt.Errorf("backfilling extra balances: %w", err)
	}
	return nil
}

// migrateBackfillBalances gives every activity without a balance row a zero
// balance, so a database written by a crashed create still satisfies the
// one-balance-per-activity rule.
func migrateBackfillBalances(db *sql.DB) error {
	ctx := context.Background()
	query := `INSERT INTO extra_balance (activity_id, balance, updated_at)
		SELECT a.id, 0, a.created_at
		FROM activities a
		WHERE NOT EXISTS (SELECT 1 FROM extra_balance b WHERE b.activity_id = a.id)`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("inserting missing balance rows: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS activities (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		daily_goal  INTEGER NOT NULL CHECK(daily_goal > 0),
		unit        TEXT NOT NULL,
		color       TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS extra_balance (
		activity_id TEXT PRIMARY KEY REFERENCES activities(id) ON DELETE CASCADE,
		balance     INTEGER NOT NULL DEFAULT 0 CHECK(balance >= 0),
		updated_at  TEXT NOT NULL
	)`,

	// No foreign key: progress rows outlive a deleted activity.
	`CREATE TABLE IF NOT EXISTS daily_progress (
		date        TEXT NOT NULL,
		activity_id TEXT NOT NULL,
		progress    INTEGER NOT NULL DEFAULT 0 CHECK(progress >= 0),
		extras_used INTEGER NOT NULL DEFAULT 0 CHECK(extras_used >= 0 AND extras_used <= progress),
		updated_at  TEXT NOT NULL,
		PRIMARY KEY (date, activity_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_daily_progress_activity ON daily_progress(activity_id)`,
}
