package repository

import (
	"fmt"
	"time"

	"github.com/alexanderramin/tally/internal/domain"
)

// formatTime renders timestamps the way every table stores them.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(field, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s: %w", field, err)
	}
	return t, nil
}

// stampIfZero fills a missing timestamp so rows never carry an empty time.
func stampIfZero(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

func validateProgress(p domain.DailyProgress) error {
	if p.Date == "" || p.ActivityID == "" {
		return fmt.Errorf("progress record needs a date and an activity")
	}
	if p.Progress < 0 || p.ExtrasUsed < 0 || p.ExtrasUsed > p.Progress {
		return fmt.Errorf("progress record out of range: progress=%d extras_used=%d", p.Progress, p.ExtrasUsed)
	}
	return nil
}

func validateBalance(b domain.ExtraBalance) error {
	if b.ActivityID == "" {
		return fmt.Errorf("balance needs an activity")
	}
	if b.Balance < 0 {
		return fmt.Errorf("balance must not be negative, got %d", b.Balance)
	}
	return nil
}
