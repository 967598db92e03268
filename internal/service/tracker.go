package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/repository"
)

// Tracker owns the visible month and the extras ledger. All mutations go
// through it; each one writes the day record and the balance of a single
// activity together, and a failed write reloads the state from the store.
//
// Mutations on the same activity are serialized. Different activities can
// be mutated concurrently.
type Tracker struct {
	store    repository.Store
	observer UseCaseObserver
	now      func() time.Time

	activityLocks keyedMutex

	mu         sync.RWMutex
	month      domain.Month
	activities []domain.Activity
	progress   domain.ProgressByDate
	balances   map[string]domain.ExtraBalance
}

type TrackerOption func(*Tracker)

// WithClock replaces time.Now for timestamps and "today".
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		t.now = now
	}
}

// WithObserver sets the use-case observer. A nil observer is ignored.
func WithObserver(o UseCaseObserver) TrackerOption {
	return func(t *Tracker) {
		if o != nil {
			t.observer = o
		}
	}
}

// NewTracker builds a tracker over store. It holds no data until LoadMonth.
func NewTracker(store repository.Store, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		store:    store,
		observer: NoopUseCaseObserver{},
		now:      func() time.Time { return time.Now().UTC() },
		progress: make(domain.ProgressByDate),
		balances: make(map[string]domain.ExtraBalance),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.month = domain.MonthOf(t.now())
	return t
}

// LoadMonth makes month the visible month. Activities and balances are
// reloaded with it, and every (date, activity) cell of the month starts at
// zero before stored records are laid over it.
func (t *Tracker) LoadMonth(ctx context.Context, month domain.Month) (err error) {
	startedAt := time.Now()
	defer func() {
		t.observe(ctx, "load-month", startedAt, err, map[string]any{"month": month.String()})
	}()

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reloadLocked(ctx, month)
}

// NavigateMonth moves the visible month one step and loads it.
func (t *Tracker) NavigateMonth(ctx context.Context, dir domain.MonthDirection) error {
	return t.LoadMonth(ctx, t.Month().Step(dir))
}

// Reload refreshes the visible month from the store.
func (t *Tracker) Reload(ctx context.Context) error {
	return t.LoadMonth(ctx, t.Month())
}

func (t *Tracker) reloadLocked(ctx context.Context, month domain.Month) error {
	activities, err := t.store.Activities().List(ctx)
	if err != nil {
		return fmt.Errorf("loading activities: %w", err)
	}
	balanceList, err := t.store.Balances().List(ctx)
	if err != nil {
		return fmt.Errorf("loading balances: %w", err)
	}
	start, end := month.DateRange()
	records, err := t.store.Progress().ListRange(ctx, start, end)
	if err != nil {
		return fmt.Errorf("loading progress for %s: %w", month, err)
	}

	acts := make([]domain.Activity, 0, len(activities))
	for _, a := range activities {
		acts = append(acts, *a)
	}
	balances := make(map[string]domain.ExtraBalance, len(acts))
	for _, b := range balanceList {
		balances[b.ActivityID] = b
	}

	progress := seedMonth(month, acts)
	for _, r := range records {
		day, ok := progress[r.Date]
		if !ok {
			continue
		}
		// Records of deleted activities are skipped.
		if _, known := day[r.ActivityID]; !known {
			continue
		}
		day[r.ActivityID] = r
	}

	t.month = month
	t.activities = acts
	t.balances = balances
	t.progress = progress
	return nil
}

func seedMonth(month domain.Month, activities []domain.Activity) domain.ProgressByDate {
	progress := make(domain.ProgressByDate)
	for _, date := range month.Dates() {
		day := make(map[string]domain.DailyProgress, len(activities))
		for _, a := range activities {
			day[a.ID] = domain.DailyProgress{Date: date, ActivityID: a.ID}
		}
		progress[date] = day
	}
	return progress
}

// resync reloads the visible month after a failed write and returns the
// error callers see.
func (t *Tracker) resync(ctx context.Context, cause error) error {
	saveErr := fmt.Errorf("%w: %w", ErrSaveFailed, cause)

	t.mu.Lock()
	reloadErr := t.reloadLocked(ctx, t.month)
	t.mu.Unlock()

	if reloadErr != nil {
		return errors.Join(saveErr, fmt.Errorf("resynchronizing: %w", reloadErr))
	}
	return saveErr
}

func (t *Tracker) observe(ctx context.Context, name string, startedAt time.Time, err error, fields map[string]any) {
	t.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
	})
}

// Now returns the tracker's clock reading.
func (t *Tracker) Now() time.Time {
	return t.now()
}

// Month returns the visible month.
func (t *Tracker) Month() domain.Month {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.month
}

// Activities returns a copy of the known activities in creation order.
func (t *Tracker) Activities() []domain.Activity {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.activities)
}

// Activity looks up one activity by ID.
func (t *Tracker) Activity(id string) (domain.Activity, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.activityLocked(id)
}

func (t *Tracker) activityLocked(id string) (domain.Activity, bool) {
	for _, a := range t.activities {
		if a.ID == id {
			return a, true
		}
	}
	return domain.Activity{}, false
}

// Record returns the day record held for (date, activity). Dates outside
// the visible month read as zero.
func (t *Tracker) Record(date, activityID string) domain.DailyProgress {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.recordLocked(date, activityID)
}

func (t *Tracker) recordLocked(date, activityID string) domain.DailyProgress {
	if day, ok := t.progress[date]; ok {
		if r, ok := day[activityID]; ok {
			return r
		}
	}
	return domain.DailyProgress{Date: date, ActivityID: activityID}
}

func (t *Tracker) Progress(date, activityID string) int {
	return t.Record(date, activityID).Progress
}

func (t *Tracker) ExtrasUsed(date, activityID string) int {
	return t.Record(date, activityID).ExtrasUsed
}

func (t *Tracker) RealProgress(date, activityID string) int {
	return t.Record(date, activityID).RealProgress()
}

// Balance returns the banked extras of an activity; unknown activities
// have none.
func (t *Tracker) Balance(activityID string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.balances[activityID].Balance
}

// Status classifies one activity on one date. Unknown activities are pending.
func (t *Tracker) Status(date, activityID string) domain.Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	a, ok := t.activityLocked(activityID)
	if !ok {
		return domain.StatusPending
	}
	return domain.ClassifyProgress(t.recordLocked(date, activityID).Progress, a.DailyGoal)
}

// DayStatus aggregates the status of every activity on date.
func (t *Tracker) DayStatus(date string) domain.Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	statuses := make([]domain.Status, 0, len(t.activities))
	for _, a := range t.activities {
		statuses = append(statuses, domain.ClassifyProgress(t.recordLocked(date, a.ID).Progress, a.DailyGoal))
	}
	return domain.AggregateStatus(statuses)
}

// SuggestedSpend is the amount that would close the day's gap to the goal
// without exceeding the balance.
func (t *Tracker) SuggestedSpend(date, activityID string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	a, ok := t.activityLocked(activityID)
	if !ok {
		return 0
	}
	entry := domain.LedgerEntry{Day: t.recordLocked(date, activityID), Balance: t.balances[activityID]}
	return entry.SuggestedSpend(a.DailyGoal)
}

// MonthSnapshot is a detached copy of the tracker state.
type MonthSnapshot struct {
	Month      domain.Month
	Dates      []string
	Activities []domain.Activity
	Progress   domain.ProgressByDate
	Balances   map[string]int
}

// Record returns the snapshot's record for (date, activity).
func (s MonthSnapshot) Record(date, activityID string) domain.DailyProgress {
	if r, ok := s.Progress[date][activityID]; ok {
		return r
	}
	return domain.DailyProgress{Date: date, ActivityID: activityID}
}

// DayStatus aggregates the snapshot's statuses for date.
func (s MonthSnapshot) DayStatus(date string) domain.Status {
	statuses := make([]domain.Status, 0, len(s.Activities))
	for _, a := range s.Activities {
		statuses = append(statuses, domain.ClassifyProgress(s.Record(date, a.ID).Progress, a.DailyGoal))
	}
	return domain.AggregateStatus(statuses)
}

// Snapshot deep-copies the visible state. Callers may keep and modify it.
func (t *Tracker) Snapshot() MonthSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	progress := make(domain.ProgressByDate, len(t.progress))
	for date, day := range t.progress {
		progress[date] = maps.Clone(day)
	}
	balances := make(map[string]int, len(t.balances))
	for id, b := range t.balances {
		balances[id] = b.Balance
	}
	return MonthSnapshot{
		Month:      t.month,
		Dates:      t.month.Dates(),
		Activities: slices.Clone(t.activities),
		Progress:   progress,
		Balances:   balances,
	}
}
