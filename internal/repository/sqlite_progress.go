package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/tally/internal/db"
	"github.com/alexanderramin/tally/internal/domain"
)

type SQLiteProgressRepo struct {
	db db.DBTX
}

func NewSQLiteProgressRepo(db db.DBTX) *SQLiteProgressRepo {
	return &SQLiteProgressRepo{db: db}
}

func (r *SQLiteProgressRepo) ListRange(ctx context.Context, start, end string) ([]domain.DailyProgress, error) {
	query := `SELECT date, activity_id, progress, extras_used, updated_at
		FROM daily_progress
		WHERE date >= ? AND date <= ?
		ORDER BY date, activity_id`
	rows, err := r.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("listing progress %s..%s: %w", start, end, err)
	}
	defer rows.Close()

	var records []domain.DailyProgress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning progress row: %w", err)
		}
		records = append(records, p)
	}
	return records, rows.Err()
}

func (r *SQLiteProgressRepo) Get(ctx context.Context, date, activityID string) (*domain.DailyProgress, error) {
	query := `SELECT date, activity_id, progress, extras_used, updated_at
		FROM daily_progress WHERE date = ? AND activity_id = ?`
	p, err := scanProgress(r.db.QueryRowContext(ctx, query, date, activityID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("progress %s/%s: %w", date, activityID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning progress: %w", err)
	}
	return &p, nil
}

// Upsert writes the (date, activity) record, replacing any existing one.
func (r *SQLiteProgressRepo) Upsert(ctx context.Context, p domain.DailyProgress) error {
	if err := validateProgress(p); err != nil {
		return err
	}
	query := `INSERT INTO daily_progress (date, activity_id, progress, extras_used, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date, activity_id) DO UPDATE SET
			progress = excluded.progress,
			extras_used = excluded.extras_used,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		p.Date, p.ActivityID, p.Progress, p.ExtrasUsed, formatTime(stampIfZero(p.UpdatedAt)),
	)
	if err != nil {
		return fmt.Errorf("upserting progress %s/%s: %w", p.Date, p.ActivityID, err)
	}
	return nil
}

func scanProgress(s rowScanner) (domain.DailyProgress, error) {
	var p domain.DailyProgress
	var updatedAtStr string
	if err := s.Scan(&p.Date, &p.ActivityID, &p.Progress, &p.ExtrasUsed, &updatedAtStr); err != nil {
		return p, err
	}
	var err error
	p.UpdatedAt, err = parseTime("updated_at", updatedAtStr)
	return p, err
}
