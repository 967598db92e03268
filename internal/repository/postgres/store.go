// Package postgres is the Postgres backend of repository.Store. It shares
// the SQLite schema shape so the tracker behaves the same on either.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/repository"
)

// querier is the subset shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements repository.Store over a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool // nil inside a transaction
	q    querier
}

// NewStore wraps an existing pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, q: pool}
}

// Open connects to url and makes sure the schema exists.
func Open(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	s := NewStore(pool)
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the pool. Calling it on a tx-scoped store does nothing.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Activities() repository.ActivityRepo { return activityRepo{s.q} }
func (s *Store) Progress() repository.ProgressRepo   { return progressRepo{s.q} }
func (s *Store) Balances() repository.BalanceRepo    { return balanceRepo{s.q} }

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) (err error) {
	if s.pool == nil {
		return fn(ctx, s)
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	// No-op once committed; releases the connection on error or panic.
	defer func() { _ = tx.Rollback(ctx) }()

	if err = fn(ctx, &Store{q: tx}); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

type activityRepo struct{ q querier }

const activityColumns = `id, name, daily_goal, unit, color, created_at, updated_at`

func (r activityRepo) List(ctx context.Context) ([]*domain.Activity, error) {
	rows, err := r.q.Query(ctx, `SELECT `+activityColumns+` FROM activities ORDER BY created_at, seq`)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	defer rows.Close()

	var out []*domain.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning activity row: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r activityRepo) GetByID(ctx context.Context, id string) (*domain.Activity, error) {
	a, err := scanActivity(r.q.QueryRow(ctx, `SELECT `+activityColumns+` FROM activities WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("activity %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning activity: %w", err)
	}
	return a, nil
}

func (r activityRepo) Create(ctx context.Context, a *domain.Activity) error {
	if err := a.Validate(); err != nil {
		return err
	}
	a.CreatedAt = stampIfZero(a.CreatedAt)
	a.UpdatedAt = stampIfZero(a.UpdatedAt)
	_, err := r.q.Exec(ctx,
		`INSERT INTO activities (`+activityColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.Name, a.DailyGoal, a.Unit, string(a.Color), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}
	return nil
}

func (r activityRepo) Update(ctx context.Context, a *domain.Activity) error {
	if err := a.Validate(); err != nil {
		return err
	}
	a.UpdatedAt = stampIfZero(a.UpdatedAt)
	tag, err := r.q.Exec(ctx,
		`UPDATE activities SET name=$1, daily_goal=$2, unit=$3, color=$4, updated_at=$5 WHERE id=$6`,
		a.Name, a.DailyGoal, a.Unit, string(a.Color), a.UpdatedAt, a.ID,
	)
	if err != nil {
		return fmt.Errorf("updating activity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("activity %s: %w", a.ID, repository.ErrNotFound)
	}
	return nil
}

func (r activityRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting activity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("activity %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

func scanActivity(row pgx.Row) (*domain.Activity, error) {
	var a domain.Activity
	var color string
	if err := row.Scan(&a.ID, &a.Name, &a.DailyGoal, &a.Unit, &color, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Color = domain.Color(color)
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return &a, nil
}

type progressRepo struct{ q querier }

func (r progressRepo) ListRange(ctx context.Context, start, end string) ([]domain.DailyProgress, error) {
	rows, err := r.q.Query(ctx,
		`SELECT date, activity_id, progress, extras_used, updated_at FROM daily_progress
		WHERE date >= $1 AND date <= $2 ORDER BY date, activity_id`, start, end)
	if err != nil {
		return nil, fmt.Errorf("listing progress %s..%s: %w", start, end, err)
	}
	defer rows.Close()

	var out []domain.DailyProgress
	for rows.Next() {
		var p domain.DailyProgress
		if err := rows.Scan(&p.Date, &p.ActivityID, &p.Progress, &p.ExtrasUsed, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning progress row: %w", err)
		}
		p.UpdatedAt = p.UpdatedAt.UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r progressRepo) Get(ctx context.Context, date, activityID string) (*domain.DailyProgress, error) {
	var p domain.DailyProgress
	err := r.q.QueryRow(ctx,
		`SELECT date, activity_id, progress, extras_used, updated_at FROM daily_progress
		WHERE date = $1 AND activity_id = $2`, date, activityID,
	).Scan(&p.Date, &p.ActivityID, &p.Progress, &p.ExtrasUsed, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("progress %s/%s: %w", date, activityID, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning progress: %w", err)
	}
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

func (r progressRepo) Upsert(ctx context.Context, p domain.DailyProgress) error {
	if p.Date == "" || p.ActivityID == "" {
		return fmt.Errorf("progress record needs a date and an activity")
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO daily_progress (date, activity_id, progress, extras_used, updated_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (date, activity_id) DO UPDATE SET
			progress = EXCLUDED.progress,
			extras_used = EXCLUDED.extras_used,
			updated_at = EXCLUDED.updated_at`,
		p.Date, p.ActivityID, p.Progress, p.ExtrasUsed, stampIfZero(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upserting progress %s/%s: %w", p.Date, p.ActivityID, err)
	}
	return nil
}

type balanceRepo struct{ q querier }

func (r balanceRepo) List(ctx context.Context) ([]domain.ExtraBalance, error) {
	rows, err := r.q.Query(ctx, `SELECT activity_id, balance, updated_at FROM extra_balance ORDER BY activity_id`)
	if err != nil {
		return nil, fmt.Errorf("listing balances: %w", err)
	}
	defer rows.Close()

	var out []domain.ExtraBalance
	for rows.Next() {
		var b domain.ExtraBalance
		if err := rows.Scan(&b.ActivityID, &b.Balance, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning balance row: %w", err)
		}
		b.UpdatedAt = b.UpdatedAt.UTC()
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r balanceRepo) Get(ctx context.Context, activityID string) (*domain.ExtraBalance, error) {
	var b domain.ExtraBalance
	err := r.q.QueryRow(ctx,
		`SELECT activity_id, balance, updated_at FROM extra_balance WHERE activity_id = $1`, activityID,
	).Scan(&b.ActivityID, &b.Balance, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("balance %s: %w", activityID, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning balance: %w", err)
	}
	b.UpdatedAt = b.UpdatedAt.UTC()
	return &b, nil
}

func (r balanceRepo) Upsert(ctx context.Context, b domain.ExtraBalance) error {
	if b.ActivityID == "" {
		return fmt.Errorf("balance needs an activity")
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO extra_balance (activity_id, balance, updated_at) VALUES ($1,$2,$3)
		ON CONFLICT (activity_id) DO UPDATE SET
			balance = EXCLUDED.balance,
			updated_at = EXCLUDED.updated_at`,
		b.ActivityID, b.Balance, stampIfZero(b.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upserting balance %s: %w", b.ActivityID, err)
	}
	return nil
}

func (r balanceRepo) Delete(ctx context.Context, activityID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM extra_balance WHERE activity_id = $1`, activityID); err != nil {
		return fmt.Errorf("deleting balance %s: %w", activityID, err)
	}
	return nil
}

func stampIfZero(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
