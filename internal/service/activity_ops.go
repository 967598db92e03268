package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/repository"
)

// NewActivityInput holds the fields of an activity about to be created.
// An empty Color picks one from the palette.
type NewActivityInput struct {
	Name      string
	DailyGoal int
	Unit      string
	Color     domain.Color
}

// CreateActivity stores a new activity together with its zero balance.
func (t *Tracker) CreateActivity(ctx context.Context, in NewActivityInput) (created domain.Activity, err error) {
	startedAt := time.Now()
	fields := map[string]any{"name": in.Name, "daily_goal": in.DailyGoal}
	defer func() { t.observe(ctx, "create-activity", startedAt, err, fields) }()

	now := t.now()
	a := domain.Activity{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		DailyGoal: in.DailyGoal,
		Unit:      strings.TrimSpace(in.Unit),
		Color:     in.Color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if a.Color == "" {
		a.Color = domain.RandomColor()
	}
	if err := a.Validate(); err != nil {
		return domain.Activity{}, err
	}
	fields["activity_id"] = a.ID

	balance := domain.ExtraBalance{ActivityID: a.ID, UpdatedAt: now}
	err = t.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.Activities().Create(ctx, &a); err != nil {
			return err
		}
		return tx.Balances().Upsert(ctx, balance)
	})
	if err != nil {
		fields["resynced"] = true
		return domain.Activity{}, t.resync(ctx, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// A reload after the commit may already have picked the activity up.
	if t.activityIndexLocked(a.ID) >= 0 {
		return a, nil
	}
	t.activities = append(t.activities, a)
	t.balances[a.ID] = balance
	for date, day := range t.progress {
		day[a.ID] = domain.DailyProgress{Date: date, ActivityID: a.ID}
	}
	return a, nil
}

// UpdateActivity applies a partial update. Logged progress is kept as is; a
// changed goal only affects how it is classified and future ledger moves.
func (t *Tracker) UpdateActivity(ctx context.Context, id string, patch domain.ActivityPatch) (updated domain.Activity, err error) {
	startedAt := time.Now()
	fields := map[string]any{"activity_id": id}
	defer func() { t.observe(ctx, "update-activity", startedAt, err, fields) }()

	unlock := t.activityLocks.Lock(id)
	defer unlock()

	a, ok := t.Activity(id)
	if !ok {
		return domain.Activity{}, fmt.Errorf("%w: %s", ErrActivityNotFound, id)
	}
	if patch.IsEmpty() {
		return a, nil
	}
	if err := a.ApplyPatch(patch, t.now()); err != nil {
		return domain.Activity{}, err
	}

	err = t.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		return tx.Activities().Update(ctx, &a)
	})
	if err != nil {
		fields["resynced"] = true
		return domain.Activity{}, t.resync(ctx, err)
	}

	t.mu.Lock()
	if i := t.activityIndexLocked(id); i >= 0 {
		t.activities[i] = a
	}
	t.mu.Unlock()
	return a, nil
}

// DeleteActivity removes the activity and its balance. Its progress records
// stay in the store and are ignored from then on.
func (t *Tracker) DeleteActivity(ctx context.Context, id string) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"activity_id": id}
	defer func() { t.observe(ctx, "delete-activity", startedAt, err, fields) }()

	unlock := t.activityLocks.Lock(id)
	defer unlock()

	if _, ok := t.Activity(id); !ok {
		return fmt.Errorf("%w: %s", ErrActivityNotFound, id)
	}

	err = t.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.Balances().Delete(ctx, id); err != nil {
			return err
		}
		if err := tx.Activities().Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		fields["resynced"] = true
		return t.resync(ctx, err)
	}

	t.mu.Lock()
	if i := t.activityIndexLocked(id); i >= 0 {
		t.activities = slices.Delete(t.activities, i, i+1)
	}
	delete(t.balances, id)
	for _, day := range t.progress {
		delete(day, id)
	}
	t.mu.Unlock()
	return nil
}

func (t *Tracker) activityIndexLocked(id string) int {
	return slices.IndexFunc(t.activities, func(a domain.Activity) bool { return a.ID == id })
}
