package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/repository"
	"github.com/alexanderramin/tally/internal/testutil"
)

var fixedNow = time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type storeFactory func(t *testing.T) repository.Store

func storeBackends() map[string]storeFactory {
	return map[string]storeFactory{
		"sqlite": func(t *testing.T) repository.Store {
			return testutil.NewTestSQLiteStore(t)
		},
		"memory": func(t *testing.T) repository.Store {
			return repository.NewMemoryStore()
		},
	}
}

// seedActivity stores an activity with a zero balance, the way CreateActivity does.
func seedActivity(t *testing.T, store repository.Store, name string, opts ...testutil.ActivityOption) *domain.Activity {
	t.Helper()
	ctx := context.Background()
	a := testutil.NewTestActivity(name, opts...)
	require.NoError(t, store.Activities().Create(ctx, a))
	require.NoError(t, store.Balances().Upsert(ctx, domain.ExtraBalance{ActivityID: a.ID}))
	return a
}

func newLoadedTracker(t *testing.T, store repository.Store, opts ...TrackerOption) *Tracker {
	t.Helper()
	tr := NewTracker(store, append([]TrackerOption{WithClock(fixedClock)}, opts...)...)
	require.NoError(t, tr.LoadMonth(context.Background(), domain.MonthOf(fixedNow)))
	return tr
}

func TestTracker_WorkedExample(t *testing.T) {
	for name, open := range storeBackends() {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			ctx := context.Background()
			a := seedActivity(t, store, "Reading", testutil.WithGoal(10))
			tr := newLoadedTracker(t, store)

			entry, err := tr.UpdateProgress(ctx, "2025-07-01", a.ID, 15)
			require.NoError(t, err)
			assert.Equal(t, 5, entry.Balance.Balance)
			assert.Equal(t, 5, tr.Balance(a.ID))
			assert.Equal(t, domain.StatusCompleted, tr.Status("2025-07-01", a.ID))

			spent, err := tr.UseExtras(ctx, "2025-07-02", a.ID, 10)
			require.NoError(t, err)
			assert.Equal(t, 5, spent, "spend is capped by the balance")
			assert.Equal(t, 0, tr.Balance(a.ID))
			assert.Equal(t, 5, tr.Progress("2025-07-02", a.ID))
			assert.Equal(t, 5, tr.ExtrasUsed("2025-07-02", a.ID))
			assert.Equal(t, 0, tr.RealProgress("2025-07-02", a.ID))
			assert.Equal(t, domain.StatusPartial, tr.Status("2025-07-02", a.ID))

			reclaimed, err := tr.RecoverExtras(ctx, "2025-07-02", a.ID)
			require.NoError(t, err)
			assert.Equal(t, 5, reclaimed)
			assert.Equal(t, 5, tr.Balance(a.ID))
			assert.Equal(t, 0, tr.Progress("2025-07-02", a.ID))
			assert.Equal(t, 0, tr.ExtrasUsed("2025-07-02", a.ID))
			assert.Equal(t, domain.StatusPending, tr.Status("2025-07-02", a.ID))

			// A fresh tracker over the same store sees the same state.
			reloaded := newLoadedTracker(t, store)
			assert.Equal(t, 5, reloaded.Balance(a.ID))
			assert.Equal(t, 15, reloaded.Progress("2025-07-01", a.ID))
			assert.Equal(t, 0, reloaded.Progress("2025-07-02", a.ID))
		})
	}
}

func TestTracker_UpdateProgressMovesBalanceByDelta(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	a := seedActivity(t, store, "Reading", testutil.WithGoal(10))
	tr := newLoadedTracker(t, store)

	steps := []struct {
		value       int
		wantBalance int
	}{
		{12, 2},
		{18, 8},
		{11, 1},
		{4, 0},
		{-3, 0},
	}
	for _, s := range steps {
		_, err := tr.UpdateProgress(ctx, "2025-07-03", a.ID, s.value)
		require.NoError(t, err)
		assert.Equal(t, s.wantBalance, tr.Balance(a.ID), "after logging %d", s.value)
	}
	assert.Equal(t, 0, tr.Progress("2025-07-03", a.ID), "negative input is stored as 0")
}

func TestTracker_UpdateProgressKeepsFundedPart(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	a := seedActivity(t, store, "Reading", testutil.WithGoal(10))
	tr := newLoadedTracker(t, store)

	_, err := tr.UpdateProgress(ctx, "2025-07-01", a.ID, 16)
	require.NoError(t, err)
	_, err = tr.UseExtras(ctx, "2025-07-02", a.ID, 4)
	require.NoError(t, err)

	_, err = tr.UpdateProgress(ctx, "2025-07-02", a.ID, 1)
	require.NoError(t, err)

	assert.Equal(t, 4, tr.ExtrasUsed("2025-07-02", a.ID))
	assert.Equal(t, 4, tr.Progress("2025-07-02", a.ID), "progress never drops below extras used")
	assert.Equal(t, 2, tr.Balance(a.ID))
}

func TestTracker_NoOpsWriteNothing(t *testing.T) {
	inner := repository.NewMemoryStore()
	a := seedActivity(t, inner, "Reading", testutil.WithGoal(10))
	store := testutil.NewFailingStore(inner, 0, nil)
	tr := newLoadedTracker(t, store)
	ctx := context.Background()

	spent, err := tr.UseExtras(ctx, "2025-07-02", a.ID, 3)
	require.NoError(t, err)
	assert.Zero(t, spent)

	reclaimed, err := tr.RecoverExtras(ctx, "2025-07-02", a.ID)
	require.NoError(t, err)
	assert.Zero(t, reclaimed)

	assert.Zero(t, store.Writes())
}

func TestTracker_RecoverIsIdempotent(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	a := seedActivity(t, store, "Reading", testutil.WithGoal(5))
	tr := newLoadedTracker(t, store)

	_, err := tr.UpdateProgress(ctx, "2025-07-01", a.ID, 9)
	require.NoError(t, err)
	_, err = tr.UseExtras(ctx, "2025-07-05", a.ID, 3)
	require.NoError(t, err)

	first, err := tr.RecoverExtras(ctx, "2025-07-05", a.ID)
	require.NoError(t, err)
	second, err := tr.RecoverExtras(ctx, "2025-07-05", a.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, first)
	assert.Zero(t, second)
	assert.Equal(t, 4, tr.Balance(a.ID))
}

func TestTracker_NegativeSpendCoercedToZero(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	a := seedActivity(t, store, "Reading", testutil.WithGoal(5))
	tr := newLoadedTracker(t, store)

	_, err := tr.UpdateProgress(ctx, "2025-07-01", a.ID, 8)
	require.NoError(t, err)

	spent, err := tr.UseExtras(ctx, "2025-07-02", a.ID, -2)
	require.NoError(t, err)
	assert.Zero(t, spent)
	assert.Equal(t, 3, tr.Balance(a.ID))
}

func TestTracker_SuggestedSpend(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	a := seedActivity(t, store, "Reading", testutil.WithGoal(10))
	tr := newLoadedTracker(t, store)

	_, err := tr.UpdateProgress(ctx, "2025-07-01", a.ID, 14)
	require.NoError(t, err)
	_, err = tr.UpdateProgress(ctx, "2025-07-02", a.ID, 7)
	require.NoError(t, err)

	assert.Equal(t, 3, tr.SuggestedSpend("2025-07-02", a.ID), "gap to goal")
	assert.Equal(t, 4, tr.SuggestedSpend("2025-07-03", a.ID), "capped by balance")
	assert.Zero(t, tr.SuggestedSpend("2025-07-01", a.ID), "goal already met")
	assert.Zero(t, tr.SuggestedSpend("2025-07-03", "unknown"))
}

func TestTracker_UnknownActivity(t *testing.T) {
	inner := repository.NewMemoryStore()
	store := testutil.NewFailingStore(inner, 0, nil)
	tr := newLoadedTracker(t, store)
	ctx := context.Background()

	_, err := tr.UpdateProgress(ctx, "2025-07-01", "ghost", 3)
	assert.ErrorIs(t, err, ErrActivityNotFound)
	_, err = tr.UseExtras(ctx, "2025-07-01", "ghost", 3)
	assert.ErrorIs(t, err, ErrActivityNotFound)
	_, err = tr.RecoverExtras(ctx, "2025-07-01", "ghost")
	assert.ErrorIs(t, err, ErrActivityNotFound)

	assert.Zero(t, store.Writes())
	assert.Equal(t, domain.StatusPending, tr.Status("2025-07-01", "ghost"))
}

func TestTracker_InvalidDate(t *testing.T) {
	store := repository.NewMemoryStore()
	a := seedActivity(t, store, "Reading")
	tr := newLoadedTracker(t, store)

	_, err := tr.UpdateProgress(context.Background(), "07/01/2025", a.ID, 3)
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestTracker_TodayResolvesAgainstClock(t *testing.T) {
	store := repository.NewMemoryStore()
	a := seedActivity(t, store, "Reading", testutil.WithGoal(2))
	tr := newLoadedTracker(t, store)

	entry, err := tr.UpdateProgress(context.Background(), "today", a.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "2025-07-15", entry.Day.Date)
	assert.Equal(t, 1, tr.Progress("2025-07-15", a.ID))
}

func TestTracker_DateOutsideVisibleMonth(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	a := seedActivity(t, store, "Reading", testutil.WithGoal(10))
	tr := newLoadedTracker(t, store)

	_, err := tr.UpdateProgress(ctx, "2025-06-30", a.ID, 13)
	require.NoError(t, err)

	assert.Equal(t, 3, tr.Balance(a.ID))
	assert.Zero(t, tr.Progress("2025-06-30", a.ID), "June is not loaded")

	require.NoError(t, tr.NavigateMonth(ctx, domain.MonthPrev))
	assert.Equal(t, 13, tr.Progress("2025-06-30", a.ID))
}

func TestTracker_LoadMonth(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	a := seedActivity(t, store, "Reading")
	require.NoError(t, store.Progress().Upsert(ctx, domain.DailyProgress{Date: "2025-02-10", ActivityID: a.ID, Progress: 6}))
	require.NoError(t, store.Progress().Upsert(ctx, domain.DailyProgress{Date: "2025-02-11", ActivityID: "deleted-activity", Progress: 9}))
	require.NoError(t, store.Progress().Upsert(ctx, domain.DailyProgress{Date: "2025-03-01", ActivityID: a.ID, Progress: 2}))

	tr := NewTracker(store, WithClock(fixedClock))
	require.NoError(t, tr.LoadMonth(ctx, domain.Month{Year: 2025, Index: 1}))

	snap := tr.Snapshot()
	assert.Equal(t, "2025-02", snap.Month.String())
	require.Len(t, snap.Dates, 28)
	assert.Equal(t, "2025-02-01", snap.Dates[0])
	assert.Equal(t, "2025-02-28", snap.Dates[27])
	assert.Len(t, snap.Progress, 28)
	for _, date := range snap.Dates {
		assert.Contains(t, snap.Progress[date], a.ID, "every cell is seeded")
	}
	assert.Equal(t, 6, snap.Record("2025-02-10", a.ID).Progress)
	assert.NotContains(t, snap.Progress["2025-02-11"], "deleted-activity")
	assert.Zero(t, tr.Progress("2025-03-01", a.ID))
	assert.Equal(t, domain.StatusPartial, snap.DayStatus("2025-02-10"))
	assert.Equal(t, domain.StatusPending, snap.DayStatus("2025-02-11"))
}

func TestTracker_NavigateMonthWrapsYear(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	tr := NewTracker(store, WithClock(fixedClock))
	require.NoError(t, tr.LoadMonth(ctx, domain.Month{Year: 2024, Index: 11}))

	require.NoError(t, tr.NavigateMonth(ctx, domain.MonthNext))
	assert.Equal(t, domain.Month{Year: 2025, Index: 0}, tr.Month())

	require.NoError(t, tr.NavigateMonth(ctx, domain.MonthPrev))
	require.NoError(t, tr.NavigateMonth(ctx, domain.MonthPrev))
	assert.Equal(t, domain.Month{Year: 2024, Index: 10}, tr.Month())
}

func TestTracker_DayStatus(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	a := seedActivity(t, store, "Reading", testutil.WithGoal(2), testutil.WithCreatedAt(fixedNow))
	b := seedActivity(t, store, "Running", testutil.WithGoal(3), testutil.WithCreatedAt(fixedNow.Add(time.Second)))
	tr := newLoadedTracker(t, store)

	assert.Equal(t, domain.StatusPending, tr.DayStatus("2025-07-04"))

	_, err := tr.UpdateProgress(ctx, "2025-07-04", a.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPartial, tr.DayStatus("2025-07-04"))

	_, err = tr.UpdateProgress(ctx, "2025-07-04", b.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, tr.DayStatus("2025-07-04"))
}

func TestTracker_DayStatusWithoutActivities(t *testing.T) {
	tr := newLoadedTracker(t, repository.NewMemoryStore())
	assert.Equal(t, domain.StatusPending, tr.DayStatus("2025-07-01"))
}

func TestTracker_SnapshotIsDetached(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	a := seedActivity(t, store, "Reading", testutil.WithGoal(4))
	tr := newLoadedTracker(t, store)
	_, err := tr.UpdateProgress(ctx, "2025-07-01", a.ID, 6)
	require.NoError(t, err)

	snap := tr.Snapshot()
	snap.Balances[a.ID] = 100
	snap.Progress["2025-07-01"][a.ID] = domain.DailyProgress{Progress: 99}
	snap.Activities[0].Name = "changed"

	assert.Equal(t, 2, tr.Balance(a.ID))
	assert.Equal(t, 6, tr.Progress("2025-07-01", a.ID))
	assert.Equal(t, "Reading", tr.Activities()[0].Name)
}

func TestTracker_ObservesMutations(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	a := seedActivity(t, store, "Reading", testutil.WithGoal(4))
	obs := &recordingObserver{}
	tr := newLoadedTracker(t, store, WithObserver(obs))

	_, err := tr.UpdateProgress(ctx, "2025-07-01", a.ID, 6)
	require.NoError(t, err)
	ev := obs.Last()
	assert.Equal(t, "update-progress", ev.Name)
	assert.True(t, ev.Success)
	assert.Equal(t, 2, ev.Fields["delta"])
	assert.Equal(t, 2, ev.Fields["balance"])

	_, err = tr.UseExtras(ctx, "2025-07-02", a.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, "use-extras", obs.Last().Name)
	assert.Equal(t, 2, obs.Last().Fields["spent"])

	_, err = tr.UseExtras(ctx, "2025-07-02", "ghost", 1)
	require.Error(t, err)
	assert.False(t, obs.Last().Success)

	names := make([]string, 0)
	for _, e := range obs.Events() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"load-month", "update-progress", "use-extras", "use-extras"}, names)
}

func TestTracker_ResyncAfterFailedBalanceWrite(t *testing.T) {
	inner := repository.NewMemoryStore()
	a := seedActivity(t, inner, "Reading", testutil.WithGoal(10))
	cause := errors.New("disk full")
	// Write 1 is the progress row, write 2 the balance.
	store := testutil.NewFailingStore(inner, 2, cause)
	obs := &recordingObserver{}
	tr := newLoadedTracker(t, store, WithObserver(obs))
	ctx := context.Background()

	_, err := tr.UpdateProgress(ctx, "2025-07-01", a.ID, 15)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSaveFailed)
	assert.ErrorIs(t, err, cause)

	assert.Zero(t, tr.Progress("2025-07-01", a.ID), "progress write rolled back with the balance")
	assert.Zero(t, tr.Balance(a.ID))
	_, getErr := inner.Progress().Get(ctx, "2025-07-01", a.ID)
	assert.ErrorIs(t, getErr, repository.ErrNotFound)

	var failed UseCaseEvent
	for _, e := range obs.Events() {
		if e.Name == "update-progress" {
			failed = e
		}
	}
	assert.Equal(t, true, failed.Fields["resynced"])

	store.Disarm()
	_, err = tr.UpdateProgress(ctx, "2025-07-01", a.ID, 15)
	require.NoError(t, err)
	assert.Equal(t, 5, tr.Balance(a.ID))
}

func TestTracker_ResyncDiscardsStaleState(t *testing.T) {
	inner := repository.NewMemoryStore()
	a := seedActivity(t, inner, "Reading", testutil.WithGoal(10))
	store := testutil.NewFailingStore(inner, 0, nil)
	tr := newLoadedTracker(t, store)
	ctx := context.Background()

	// Another writer changes the store behind the tracker's back.
	require.NoError(t, inner.Progress().Upsert(ctx, domain.DailyProgress{Date: "2025-07-09", ActivityID: a.ID, Progress: 12}))
	require.NoError(t, inner.Balances().Upsert(ctx, domain.ExtraBalance{ActivityID: a.ID, Balance: 2}))
	assert.Zero(t, tr.Balance(a.ID))

	store.FailOn = store.Writes() + 1
	store.Err = errors.New("locked")
	_, err := tr.UseExtras(ctx, "2025-07-10", a.ID, 1)
	require.ErrorIs(t, err, ErrSaveFailed)

	assert.Equal(t, 2, tr.Balance(a.ID))
	assert.Equal(t, 12, tr.Progress("2025-07-09", a.ID))
}

func TestTracker_ResyncOnSQLiteExecFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	plain := repository.NewSQLiteStore(database)
	a := seedActivity(t, plain, "Reading", testutil.WithGoal(10))

	cause := errors.New("injected exec failure")
	uow := &testutil.FailOnNthExecUoW{DB: database, FailOn: 2, Err: cause}
	tr := newLoadedTracker(t, repository.NewSQLiteStoreWithUoW(database, uow))
	ctx := context.Background()

	_, err := tr.UpdateProgress(ctx, "2025-07-01", a.ID, 14)
	require.ErrorIs(t, err, ErrSaveFailed)
	assert.ErrorIs(t, err, cause)

	assert.Zero(t, tr.Progress("2025-07-01", a.ID))
	assert.Zero(t, tr.Balance(a.ID))
	_, getErr := plain.Progress().Get(ctx, "2025-07-01", a.ID)
	assert.ErrorIs(t, getErr, repository.ErrNotFound)
}
