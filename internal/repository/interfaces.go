package repository

import (
	"context"
	"errors"

	"github.com/alexanderramin/tally/internal/domain"
)

// ErrNotFound is wrapped by every lookup that matches no row.
var ErrNotFound = errors.New("not found")

type ActivityRepo interface {
	// List returns activities in creation order.
	List(ctx context.Context) ([]*domain.Activity, error)
	GetByID(ctx context.Context, id string) (*domain.Activity, error)
	Create(ctx context.Context, a *domain.Activity) error
	Update(ctx context.Context, a *domain.Activity) error
	Delete(ctx context.Context, id string) error
}

type ProgressRepo interface {
	// ListRange returns every record with start <= date <= end. Dates are
	// compared as YYYY-MM-DD strings.
	ListRange(ctx context.Context, start, end string) ([]domain.DailyProgress, error)
	Get(ctx context.Context, date, activityID string) (*domain.DailyProgress, error)
	Upsert(ctx context.Context, p domain.DailyProgress) error
}

type BalanceRepo interface {
	List(ctx context.Context) ([]domain.ExtraBalance, error)
	Get(ctx context.Context, activityID string) (*domain.ExtraBalance, error)
	Upsert(ctx context.Context, b domain.ExtraBalance) error
	Delete(ctx context.Context, activityID string) error
}

// Store groups the repositories of one backend. WithinTx runs fn against a
// tx-scoped Store; every write made through it commits or rolls back together.
type Store interface {
	Activities() ActivityRepo
	Progress() ProgressRepo
	Balances() BalanceRepo
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
