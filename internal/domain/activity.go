package domain

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// ErrInvalidActivity is wrapped by every activity validation failure.
var ErrInvalidActivity = errors.New("invalid activity")

type Activity struct {
	ID        string
	Name      string
	DailyGoal int
	Unit      string
	Color     Color
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ActivityPatch carries a partial activity update. Nil fields are left as they are.
type ActivityPatch struct {
	Name      *string
	DailyGoal *int
	Unit      *string
	Color     *Color
}

// IsEmpty reports whether the patch changes nothing.
func (p ActivityPatch) IsEmpty() bool {
	return p.Name == nil && p.DailyGoal == nil && p.Unit == nil && p.Color == nil
}

// Validate checks the fields every stored activity must satisfy.
func (a *Activity) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidActivity)
	}
	if strings.TrimSpace(a.Unit) == "" {
		return fmt.Errorf("%w: unit is required", ErrInvalidActivity)
	}
	if a.DailyGoal <= 0 {
		return fmt.Errorf("%w: daily goal must be positive, got %d", ErrInvalidActivity, a.DailyGoal)
	}
	if a.Color != "" && !ValidColors[string(a.Color)] {
		return fmt.Errorf("%w: unknown color %q", ErrInvalidActivity, a.Color)
	}
	return nil
}

// ApplyPatch updates the editable fields and re-validates. On error the
// activity is left unchanged. Historical progress is never touched.
func (a *Activity) ApplyPatch(p ActivityPatch, now time.Time) error {
	if p.Color != nil && *p.Color == "" {
		return fmt.Errorf("%w: color cannot be cleared (use one of the palette colors)", ErrInvalidActivity)
	}
	next := *a
	next.Name = strings.TrimSpace(patched(a.Name, p.Name))
	next.Unit = strings.TrimSpace(patched(a.Unit, p.Unit))
	next.DailyGoal = patched(a.DailyGoal, p.DailyGoal)
	next.Color = patched(a.Color, p.Color)
	if err := next.Validate(); err != nil {
		return err
	}
	next.UpdatedAt = now
	*a = next
	return nil
}

// patched returns *p when set, otherwise current.
func patched[T any](current T, p *T) T {
	if p != nil {
		return *p
	}
	return current
}

// RandomColor picks a palette color for activities created without one.
func RandomColor() Color {
	return Palette[rand.IntN(len(Palette))]
}

// DefaultActivities is the starter set used by the in-memory backend.
func DefaultActivities() []Activity {
	return []Activity{
		{Name: "Udemy videos", DailyGoal: 15, Unit: "videos", Color: ColorBlue},
		{Name: "English", DailyGoal: 1, Unit: "hour", Color: ColorGreen},
		{Name: "Program One", DailyGoal: 1, Unit: "course", Color: ColorPurple},
	}
}
