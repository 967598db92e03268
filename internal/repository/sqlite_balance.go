package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/tally/internal/db"
	"github.com/alexanderramin/tally/internal/domain"
)

type SQLiteBalanceRepo struct {
	db db.DBTX
}

func NewSQLiteBalanceRepo(db db.DBTX) *SQLiteBalanceRepo {
	return &SQLiteBalanceRepo{db: db}
}

func (r *SQLiteBalanceRepo) List(ctx context.Context) ([]domain.ExtraBalance, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT activity_id, balance, updated_at FROM extra_balance ORDER BY activity_id`)
	if err != nil {
		return nil, fmt.Errorf("listing balances: %w", err)
	}
	defer rows.Close()

	var balances []domain.ExtraBalance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning balance row: %w", err)
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

func (r *SQLiteBalanceRepo) Get(ctx context.Context, activityID string) (*domain.ExtraBalance, error) {
	b, err := scanBalance(r.db.QueryRowContext(ctx,
		`SELECT activity_id, balance, updated_at FROM extra_balance WHERE activity_id = ?`, activityID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("balance %s: %w", activityID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning balance: %w", err)
	}
	return &b, nil
}

// Upsert writes the activity's balance. The activity must exist.
func (r *SQLiteBalanceRepo) Upsert(ctx context.Context, b domain.ExtraBalance) error {
	if err := validateBalance(b); err != nil {
		return err
	}
	query := `INSERT INTO extra_balance (activity_id, balance, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(activity_id) DO UPDATE SET
			balance = excluded.balance,
			updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, b.ActivityID, b.Balance, formatTime(stampIfZero(b.UpdatedAt))); err != nil {
		return fmt.Errorf("upserting balance %s: %w", b.ActivityID, err)
	}
	return nil
}

// Delete removes the balance row. A missing row is not an error.
func (r *SQLiteBalanceRepo) Delete(ctx context.Context, activityID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM extra_balance WHERE activity_id = ?`, activityID); err != nil {
		return fmt.Errorf("deleting balance %s: %w", activityID, err)
	}
	return nil
}

func scanBalance(s rowScanner) (domain.ExtraBalance, error) {
	var b domain.ExtraBalance
	var updatedAtStr string
	if err := s.Scan(&b.ActivityID, &b.Balance, &updatedAtStr); err != nil {
		return b, err
	}
	var err error
	b.UpdatedAt, err = parseTime("updated_at", updatedAtStr)
	return b, err
}
