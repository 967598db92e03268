package testutil

import (
	"context"
	"sync/atomic"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/repository"
)

// FailingStore wraps a Store and returns Err from the Nth write. Writes are
// counted from 1 across every repository and transaction; reads pass
// through. FailOn <= 0 never fails.
type FailingStore struct {
	repository.Store
	FailOn int32
	Err    error

	writes atomic.Int32
}

// NewFailingStore wraps inner so that write number failOn returns err.
func NewFailingStore(inner repository.Store, failOn int32, err error) *FailingStore {
	return &FailingStore{Store: inner, FailOn: failOn, Err: err}
}

// Writes reports how many writes have been attempted.
func (s *FailingStore) Writes() int32 {
	return s.writes.Load()
}

// Disarm stops injecting failures.
func (s *FailingStore) Disarm() {
	s.FailOn = 0
}

func (s *FailingStore) write() error {
	n := s.writes.Add(1)
	if s.FailOn > 0 && n == s.FailOn {
		return s.Err
	}
	return nil
}

func (s *FailingStore) Activities() repository.ActivityRepo {
	return failingActivities{ActivityRepo: s.Store.Activities(), owner: s}
}

func (s *FailingStore) Progress() repository.ProgressRepo {
	return failingProgress{ProgressRepo: s.Store.Progress(), owner: s}
}

func (s *FailingStore) Balances() repository.BalanceRepo {
	return failingBalances{BalanceRepo: s.Store.Balances(), owner: s}
}

func (s *FailingStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	return s.Store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		return fn(ctx, &failingTx{Store: tx, owner: s})
	})
}

// failingTx counts writes against its owner while delegating to the
// transaction's own repositories.
type failingTx struct {
	repository.Store
	owner *FailingStore
}

func (t *failingTx) Activities() repository.ActivityRepo {
	return failingActivities{ActivityRepo: t.Store.Activities(), owner: t.owner}
}

func (t *failingTx) Progress() repository.ProgressRepo {
	return failingProgress{ProgressRepo: t.Store.Progress(), owner: t.owner}
}

func (t *failingTx) Balances() repository.BalanceRepo {
	return failingBalances{BalanceRepo: t.Store.Balances(), owner: t.owner}
}

func (t *failingTx) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	return fn(ctx, t)
}

type failingActivities struct {
	repository.ActivityRepo
	owner *FailingStore
}

func (r failingActivities) Create(ctx context.Context, a *domain.Activity) error {
	if err := r.owner.write(); err != nil {
		return err
	}
	return r.ActivityRepo.Create(ctx, a)
}

func (r failingActivities) Update(ctx context.Context, a *domain.Activity) error {
	if err := r.owner.write(); err != nil {
		return err
	}
	return r.ActivityRepo.Update(ctx, a)
}

func (r failingActivities) Delete(ctx context.Context, id string) error {
	if err := r.owner.write(); err != nil {
		return err
	}
	return r.ActivityRepo.Delete(ctx, id)
}

type failingProgress struct {
	repository.ProgressRepo
	owner *FailingStore
}

func (r failingProgress) Upsert(ctx context.Context, p domain.DailyProgress) error {
	if err := r.owner.write(); err != nil {
		return err
	}
	return r.ProgressRepo.Upsert(ctx, p)
}

type failingBalances struct {
	repository.BalanceRepo
	owner *FailingStore
}

func (r failingBalances) Upsert(ctx context.Context, b domain.ExtraBalance) error {
	if err := r.owner.write(); err != nil {
		return err
	}
	return r.BalanceRepo.Upsert(ctx, b)
}

func (r failingBalances) Delete(ctx context.Context, activityID string) error {
	if err := r.owner.write(); err != nil {
		return err
	}
	return r.BalanceRepo.Delete(ctx, activityID)
}
