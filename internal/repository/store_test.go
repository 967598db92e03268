package repository_test

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

// backends runs the same assertions against every Store implementation.
func backends(t *testing.T) map[string]func(t *testing.T) repository.Store {
	t.Helper()
	return map[string]func(t *testing.T) repository.Store{
		"sqlite": func(t *testing.T) repository.Store {
			return testutil.NewTestSQLiteStore(t)
		},
		"memory": func(t *testing.T) repository.Store {
			return repository.NewMemoryStore()
		},
	}
}

var t0 = time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

func TestStore_ActivityCRUD(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			ctx := context.Background()

			first := testutil.NewTestActivity("Reading", testutil.WithGoal(20), testutil.WithCreatedAt(t0))
			second := testutil.NewTestActivity("Running", testutil.WithUnit("km"), testutil.WithCreatedAt(t0.Add(time.Minute)))
			require.NoError(t, store.Activities().Create(ctx, first))
			require.NoError(t, store.Activities().Create(ctx, second))

			list, err := store.Activities().List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "Reading", list[0].Name)
			assert.Equal(t, "Running", list[1].Name)

			fetched, err := store.Activities().GetByID(ctx, first.ID)
			require.NoError(t, err)
			assert.Equal(t, 20, fetched.DailyGoal)
			assert.Equal(t, first.Color, fetched.Color)

			fetched.Name = "Deep reading"
			fetched.DailyGoal = 30
			require.NoError(t, store.Activities().Update(ctx, fetched))

			updated, err := store.Activities().GetByID(ctx, first.ID)
			require.NoError(t, err)
			assert.Equal(t, "Deep reading", updated.Name)
			assert.Equal(t, 30, updated.DailyGoal)

			require.NoError(t, store.Activities().Delete(ctx, first.ID))
			_, err = store.Activities().GetByID(ctx, first.ID)
			assert.True(t, errors.Is(err, repository.ErrNotFound))

			list, err = store.Activities().List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, second.ID, list[0].ID)
		})
	}
}

func TestStore_ActivityMissing(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			ctx := context.Background()

			_, err := store.Activities().GetByID(ctx, "nope")
			assert.ErrorIs(t, err, repository.ErrNotFound)

			ghost := testutil.NewTestActivity("Ghost")
			assert.ErrorIs(t, store.Activities().Update(ctx, ghost), repository.ErrNotFound)
			assert.ErrorIs(t, store.Activities().Delete(ctx, ghost.ID), repository.ErrNotFound)
		})
	}
}

func TestStore_ActivityValidation(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			bad := testutil.NewTestActivity("Zero goal", testutil.WithGoal(0))
			err := store.Activities().Create(context.Background(), bad)
			assert.ErrorIs(t, err, domain.ErrInvalidActivity)
		})
	}
}

func TestStore_ProgressUpsertAndRange(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			ctx := context.Background()

			records := []domain.DailyProgress{
				{Date: "2025-06-30", ActivityID: "a", Progress: 4},
				{Date: "2025-07-01", ActivityID: "a", Progress: 10},
				{Date: "2025-07-01", ActivityID: "b", Progress: 2},
				{Date: "2025-07-31", ActivityID: "a", Progress: 7, ExtrasUsed: 3},
				{Date: "2025-08-01", ActivityID: "a", Progress: 1},
			}
			for _, r := range records {
				require.NoError(t, store.Progress().Upsert(ctx, r))
			}

			july, err := store.Progress().ListRange(ctx, "2025-07-01", "2025-07-31")
			require.NoError(t, err)
			require.Len(t, july, 3)
			assert.Equal(t, "2025-07-01", july[0].Date)
			assert.Equal(t, "a", july[0].ActivityID)
			assert.Equal(t, "b", july[1].ActivityID)
			assert.Equal(t, 3, july[2].ExtrasUsed)

			// Upsert replaces the existing pair.
			require.NoError(t, store.Progress().Upsert(ctx, domain.DailyProgress{
				Date: "2025-07-01", ActivityID: "a", Progress: 12, ExtrasUsed: 2,
			}))
			got, err := store.Progress().Get(ctx, "2025-07-01", "a")
			require.NoError(t, err)
			assert.Equal(t, 12, got.Progress)
			assert.Equal(t, 2, got.ExtrasUsed)
			assert.Equal(t, 10, got.RealProgress())

			_, err = store.Progress().Get(ctx, "2025-07-02", "a")
			assert.ErrorIs(t, err, repository.ErrNotFound)
		})
	}
}

func TestStore_ProgressRejectsBrokenRecords(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			ctx := context.Background()
			assert.Error(t, store.Progress().Upsert(ctx, domain.DailyProgress{
				Date: "2025-07-01", ActivityID: "a", Progress: 2, ExtrasUsed: 3,
			}))
			assert.Error(t, store.Progress().Upsert(ctx, domain.DailyProgress{
				Date: "2025-07-01", ActivityID: "a", Progress: -1,
			}))
		})
	}
}

func TestStore_Balances(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			ctx := context.Background()

			a := testutil.NewTestActivity("Reading")
			require.NoError(t, store.Activities().Create(ctx, a))
			require.NoError(t, store.Balances().Upsert(ctx, domain.ExtraBalance{ActivityID: a.ID, Balance: 5}))
			require.NoError(t, store.Balances().Upsert(ctx, domain.ExtraBalance{ActivityID: a.ID, Balance: 8}))

			b, err := store.Balances().Get(ctx, a.ID)
			require.NoError(t, err)
			assert.Equal(t, 8, b.Balance)

			all, err := store.Balances().List(ctx)
			require.NoError(t, err)
			require.Len(t, all, 1)

			assert.Error(t, store.Balances().Upsert(ctx, domain.ExtraBalance{ActivityID: a.ID, Balance: -1}))
			assert.Error(t, store.Balances().Upsert(ctx, domain.ExtraBalance{ActivityID: "missing", Balance: 1}))

			require.NoError(t, store.Balances().Delete(ctx, a.ID))
			_, err = store.Balances().Get(ctx, a.ID)
			assert.ErrorIs(t, err, repository.ErrNotFound)
			require.NoError(t, store.Balances().Delete(ctx, a.ID), "deleting a missing balance is a no-op")
		})
	}
}

func TestStore_DeleteActivityKeepsProgress(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			ctx := context.Background()

			a := testutil.NewTestActivity("Reading")
			require.NoError(t, store.Activities().Create(ctx, a))
			require.NoError(t, store.Balances().Upsert(ctx, domain.ExtraBalance{ActivityID: a.ID, Balance: 3}))
			require.NoError(t, store.Progress().Upsert(ctx, domain.DailyProgress{Date: "2025-07-01", ActivityID: a.ID, Progress: 9}))

			require.NoError(t, store.Activities().Delete(ctx, a.ID))

			_, err := store.Balances().Get(ctx, a.ID)
			assert.ErrorIs(t, err, repository.ErrNotFound)
			p, err := store.Progress().Get(ctx, "2025-07-01", a.ID)
			require.NoError(t, err)
			assert.Equal(t, 9, p.Progress)
		})
	}
}

func TestStore_WithinTxCommitsTogether(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			ctx := context.Background()
			a := testutil.NewTestActivity("Reading")

			err := store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
				if err := tx.Activities().Create(ctx, a); err != nil {
					return err
				}
				return tx.Balances().Upsert(ctx, domain.ExtraBalance{ActivityID: a.ID})
			})
			require.NoError(t, err)

			_, err = store.Balances().Get(ctx, a.ID)
			require.NoError(t, err)
		})
	}
}

func TestStore_WithinTxRollsBack(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			ctx := context.Background()
			a := testutil.NewTestActivity("Reading")
			require.NoError(t, store.Activities().Create(ctx, a))
			require.NoError(t, store.Balances().Upsert(ctx, domain.ExtraBalance{ActivityID: a.ID, Balance: 4}))

			boom := errors.New("boom")
			err := store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
				if err := tx.Progress().Upsert(ctx, domain.DailyProgress{Date: "2025-07-01", ActivityID: a.ID, Progress: 20}); err != nil {
					return err
				}
				if err := tx.Balances().Upsert(ctx, domain.ExtraBalance{ActivityID: a.ID, Balance: 9}); err != nil {
					return err
				}
				// Nested calls join the outer transaction.
				return tx.WithinTx(ctx, func(ctx context.Context, _ repository.Store) error {
					return boom
				})
			})
			require.ErrorIs(t, err, boom)

			_, err = store.Progress().Get(ctx, "2025-07-01", a.ID)
			assert.ErrorIs(t, err, repository.ErrNotFound)
			b, err := store.Balances().Get(ctx, a.ID)
			require.NoError(t, err)
			assert.Equal(t, 4, b.Balance)
		})
	}
}

func TestSeededMemoryStore(t *testing.T) {
	store := repository.NewSeededMemoryStore(t0)
	ctx := context.Background()

	list, err := store.Activities().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, len(domain.DefaultActivities()))
	assert.Equal(t, "Udemy videos", list[0].Name)

	for _, a := range list {
		b, err := store.Balances().Get(ctx, a.ID)
		require.NoError(t, err)
		assert.Zero(t, b.Balance)
	}
}
