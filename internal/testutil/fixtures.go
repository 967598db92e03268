package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/tally/internal/domain"
)

// Activity options
type ActivityOption func(*domain.Activity)

func WithGoal(goal int) ActivityOption {
	return func(a *domain.Activity) {
		a.DailyGoal = goal
	}
}

func WithUnit(unit string) ActivityOption {
	return func(a *domain.Activity) {
		a.Unit = unit
	}
}

func WithColor(c domain.Color) ActivityOption {
	return func(a *domain.Activity) {
		a.Color = c
	}
}

func WithActivityID(id string) ActivityOption {
	return func(a *domain.Activity) {
		a.ID = id
	}
}

func WithCreatedAt(t time.Time) ActivityOption {
	return func(a *domain.Activity) {
		a.CreatedAt = t
		a.UpdatedAt = t
	}
}

func NewTestActivity(name string, opts ...ActivityOption) *domain.Activity {
	now := time.Now().UTC().Truncate(time.Second)
	a := &domain.Activity{
		ID:        uuid.New().String(),
		Name:      name,
		DailyGoal: 10,
		Unit:      "pages",
		Color:     domain.ColorBlue,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}
