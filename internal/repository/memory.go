package repository

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/tally/internal/domain"
)

// MemoryStore keeps everything in process memory. Nothing survives a
// restart. Transactions are serialized and roll back by restoring a
// snapshot taken when they began.
type MemoryStore struct {
	txMu sync.Mutex

	mu         sync.Mutex
	order      []string
	activities map[string]domain.Activity
	progress   map[progressKey]domain.DailyProgress
	balances   map[string]domain.ExtraBalance
}

type progressKey struct {
	date       string
	activityID string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		activities: make(map[string]domain.Activity),
		progress:   make(map[progressKey]domain.DailyProgress),
		balances:   make(map[string]domain.ExtraBalance),
	}
}

// NewSeededMemoryStore returns a store holding the default activities, each
// with a zero balance.
func NewSeededMemoryStore(now time.Time) *MemoryStore {
	s := NewMemoryStore()
	for i, a := range domain.DefaultActivities() {
		a.ID = uuid.New().String()
		// Distinct creation times keep the seed order stable.
		a.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		a.UpdatedAt = a.CreatedAt
		s.order = append(s.order, a.ID)
		s.activities[a.ID] = a
		s.balances[a.ID] = domain.ExtraBalance{ActivityID: a.ID, UpdatedAt: now}
	}
	return s
}

func (s *MemoryStore) Activities() ActivityRepo { return memoryActivities{s} }
func (s *MemoryStore) Progress() ProgressRepo   { return memoryProgress{s} }
func (s *MemoryStore) Balances() BalanceRepo    { return memoryBalances{s} }

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	committed := false
	defer func() {
		if !committed {
			s.restore(snap)
		}
	}()

	if err := fn(ctx, memoryTx{s}); err != nil {
		return err
	}
	committed = true
	return nil
}

// memoryTx is the Store handed to WithinTx callbacks; nested calls join
// the running transaction.
type memoryTx struct {
	*MemoryStore
}

func (t memoryTx) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return fn(ctx, t)
}

type memorySnapshot struct {
	order      []string
	activities map[string]domain.Activity
	progress   map[progressKey]domain.DailyProgress
	balances   map[string]domain.ExtraBalance
}

func (s *MemoryStore) snapshot() memorySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memorySnapshot{
		order:      append([]string(nil), s.order...),
		activities: maps.Clone(s.activities),
		progress:   maps.Clone(s.progress),
		balances:   maps.Clone(s.balances),
	}
}

func (s *MemoryStore) restore(snap memorySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = snap.order
	s.activities = snap.activities
	s.progress = snap.progress
	s.balances = snap.balances
}

type memoryActivities struct{ s *MemoryStore }

func (r memoryActivities) List(ctx context.Context) ([]*domain.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.Activity, 0, len(r.s.order))
	for _, id := range r.s.order {
		a := r.s.activities[id]
		out = append(out, &a)
	}
	return out, nil
}

func (r memoryActivities) GetByID(ctx context.Context, id string) (*domain.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.activities[id]
	if !ok {
		return nil, fmt.Errorf("activity %s: %w", id, ErrNotFound)
	}
	return &a, nil
}

func (r memoryActivities) Create(ctx context.Context, a *domain.Activity) error {
	if err := a.Validate(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.activities[a.ID]; exists {
		return fmt.Errorf("inserting activity: duplicate id %s", a.ID)
	}
	a.CreatedAt = stampIfZero(a.CreatedAt)
	a.UpdatedAt = stampIfZero(a.UpdatedAt)
	r.s.order = append(r.s.order, a.ID)
	r.s.activities[a.ID] = *a
	return nil
}

func (r memoryActivities) Update(ctx context.Context, a *domain.Activity) error {
	if err := a.Validate(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.activities[a.ID]
	if !ok {
		return fmt.Errorf("activity %s: %w", a.ID, ErrNotFound)
	}
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = stampIfZero(a.UpdatedAt)
	r.s.activities[a.ID] = *a
	return nil
}

// Delete removes the activity and its balance. Progress records stay.
func (r memoryActivities) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.activities[id]; !ok {
		return fmt.Errorf("activity %s: %w", id, ErrNotFound)
	}
	delete(r.s.activities, id)
	delete(r.s.balances, id)
	for i, existing := range r.s.order {
		if existing == id {
			r.s.order = append(r.s.order[:i:i], r.s.order[i+1:]...)
			break
		}
	}
	return nil
}

type memoryProgress struct{ s *MemoryStore }

func (r memoryProgress) ListRange(ctx context.Context, start, end string) ([]domain.DailyProgress, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.DailyProgress
	for k, p := range r.s.progress {
		if k.date >= start && k.date <= end {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ActivityID < out[j].ActivityID
	})
	return out, nil
}

func (r memoryProgress) Get(ctx context.Context, date, activityID string) (*domain.DailyProgress, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.progress[progressKey{date, activityID}]
	if !ok {
		return nil, fmt.Errorf("progress %s/%s: %w", date, activityID, ErrNotFound)
	}
	return &p, nil
}

func (r memoryProgress) Upsert(ctx context.Context, p domain.DailyProgress) error {
	if err := validateProgress(p); err != nil {
		return err
	}
	p.UpdatedAt = stampIfZero(p.UpdatedAt)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.progress[progressKey{p.Date, p.ActivityID}] = p
	return nil
}

type memoryBalances struct{ s *MemoryStore }

func (r memoryBalances) List(ctx context.Context) ([]domain.ExtraBalance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.ExtraBalance, 0, len(r.s.balances))
	for _, b := range r.s.balances {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ActivityID < out[j].ActivityID })
	return out, nil
}

func (r memoryBalances) Get(ctx context.Context, activityID string) (*domain.ExtraBalance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.balances[activityID]
	if !ok {
		return nil, fmt.Errorf("balance %s: %w", activityID, ErrNotFound)
	}
	return &b, nil
}

func (r memoryBalances) Upsert(ctx context.Context, b domain.ExtraBalance) error {
	if err := validateBalance(b); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.activities[b.ActivityID]; !ok {
		return fmt.Errorf("upserting balance %s: activity %w", b.ActivityID, ErrNotFound)
	}
	b.UpdatedAt = stampIfZero(b.UpdatedAt)
	r.s.balances[b.ActivityID] = b
	return nil
}

func (r memoryBalances) Delete(ctx context.Context, activityID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.balances, activityID)
	return nil
}
