package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/repository"
)

// ledgerChange applies one extras operation to the loaded pair. It reports
// whether anything changed; unchanged pairs are not written.
type ledgerChange func(e *domain.LedgerEntry, goal int, now time.Time) bool

// UpdateProgress sets the logged total for (date, activity) and moves the
// balance by the change in generated surplus. Negative values count as 0.
func (t *Tracker) UpdateProgress(ctx context.Context, date, activityID string, value int) (entry domain.LedgerEntry, err error) {
	startedAt := time.Now()
	fields := map[string]any{"date": date, "activity_id": activityID, "value": value}
	defer func() { t.observe(ctx, "update-progress", startedAt, err, fields) }()

	return t.mutateLedger(ctx, date, activityID, fields, func(e *domain.LedgerEntry, goal int, now time.Time) bool {
		fields["delta"] = e.ApplyProgress(value, goal, now)
		return true
	})
}

// UseExtras spends up to amount banked extras on (date, activity) and
// returns the amount actually spent. Nothing is written when it is 0.
func (t *Tracker) UseExtras(ctx context.Context, date, activityID string, amount int) (spent int, err error) {
	startedAt := time.Now()
	fields := map[string]any{"date": date, "activity_id": activityID, "requested": amount}
	defer func() { t.observe(ctx, "use-extras", startedAt, err, fields) }()

	_, err = t.mutateLedger(ctx, date, activityID, fields, func(e *domain.LedgerEntry, _ int, now time.Time) bool {
		spent = e.Spend(amount, now)
		return spent > 0
	})
	if err != nil {
		spent = 0
	}
	fields["spent"] = spent
	return spent, err
}

// RecoverExtras returns every extra spent on (date, activity) to the
// balance. Repeating it is a no-op.
func (t *Tracker) RecoverExtras(ctx context.Context, date, activityID string) (reclaimed int, err error) {
	startedAt := time.Now()
	fields := map[string]any{"date": date, "activity_id": activityID}
	defer func() { t.observe(ctx, "recover-extras", startedAt, err, fields) }()

	_, err = t.mutateLedger(ctx, date, activityID, fields, func(e *domain.LedgerEntry, _ int, now time.Time) bool {
		reclaimed = e.Reclaim(now)
		return reclaimed > 0
	})
	if err != nil {
		reclaimed = 0
	}
	fields["reclaimed"] = reclaimed
	return reclaimed, err
}

// mutateLedger runs one ledger operation under the activity's lock. The pair
// is read and written in one transaction so both rows always move together.
func (t *Tracker) mutateLedger(ctx context.Context, date, activityID string, fields map[string]any, change ledgerChange) (domain.LedgerEntry, error) {
	now := t.now()
	date, err := domain.ParseDate(date, now)
	if err != nil {
		return domain.LedgerEntry{}, err
	}
	fields["date"] = date

	unlock := t.activityLocks.Lock(activityID)
	defer unlock()

	activity, ok := t.Activity(activityID)
	if !ok {
		return domain.LedgerEntry{}, fmt.Errorf("%w: %s", ErrActivityNotFound, activityID)
	}

	var entry domain.LedgerEntry
	err = t.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		loaded, err := loadEntry(ctx, tx, date, activityID)
		if err != nil {
			return err
		}
		entry = loaded
		if !change(&entry, activity.DailyGoal, now) {
			return nil
		}
		if err := tx.Progress().Upsert(ctx, entry.Day); err != nil {
			return err
		}
		return tx.Balances().Upsert(ctx, entry.Balance)
	})
	if err != nil {
		fields["resynced"] = true
		return domain.LedgerEntry{}, t.resync(ctx, err)
	}

	fields["balance"] = entry.Balance.Balance
	t.storeEntry(entry)
	return entry, nil
}

// loadEntry reads the stored pair. Missing rows read as zero.
func loadEntry(ctx context.Context, tx repository.Store, date, activityID string) (domain.LedgerEntry, error) {
	entry := domain.LedgerEntry{
		Day:     domain.DailyProgress{Date: date, ActivityID: activityID},
		Balance: domain.ExtraBalance{ActivityID: activityID},
	}
	day, err := tx.Progress().Get(ctx, date, activityID)
	switch {
	case err == nil:
		entry.Day = *day
	case !errors.Is(err, repository.ErrNotFound):
		return entry, fmt.Errorf("reading progress: %w", err)
	}
	bal, err := tx.Balances().Get(ctx, activityID)
	switch {
	case err == nil:
		entry.Balance = *bal
	case !errors.Is(err, repository.ErrNotFound):
		return entry, fmt.Errorf("reading balance: %w", err)
	}
	return entry, nil
}

// storeEntry copies a committed pair into the visible state.
func (t *Tracker) storeEntry(entry domain.LedgerEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.activityLocked(entry.Balance.ActivityID); !ok {
		return
	}
	t.balances[entry.Balance.ActivityID] = entry.Balance
	if day, ok := t.progress[entry.Day.Date]; ok {
		day[entry.Day.ActivityID] = entry.Day
	}
}
