package domain

import (
	"strconv"
	"strings"
	"time"
)

// DailyProgress is the logged amount for one activity on one date.
// Progress includes any banked extras spent that day; ExtrasUsed is that
// funded portion. ExtrasUsed never exceeds Progress.
type DailyProgress struct {
	Date       string
	ActivityID string
	Progress   int
	ExtrasUsed int
	UpdatedAt  time.Time
}

// RealProgress is the work actually performed that day.
func (p DailyProgress) RealProgress() int {
	return p.Progress - p.ExtrasUsed
}

// ExtraBalance is the banked, unspent surplus of one activity.
type ExtraBalance struct {
	ActivityID string
	Balance    int
	UpdatedAt  time.Time
}

// ProgressByDate groups records as date -> activity ID -> record.
type ProgressByDate map[string]map[string]DailyProgress

// GroupProgress indexes records by date and activity.
func GroupProgress(records []DailyProgress) ProgressByDate {
	out := make(ProgressByDate)
	for _, r := range records {
		day, ok := out[r.Date]
		if !ok {
			day = make(map[string]DailyProgress)
			out[r.Date] = day
		}
		day[r.ActivityID] = r
	}
	return out
}

// CoerceProgress turns raw user input into a progress value. Anything that
// is not a non-negative integer becomes 0.
func CoerceProgress(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return CoerceAmount(n)
}

// CoerceAmount clamps negative amounts to 0.
func CoerceAmount(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
