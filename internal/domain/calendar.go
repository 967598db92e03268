package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format used for every stored date.
const DateLayout = "2006-01-02"

// ErrInvalidDate is wrapped when a date or month string cannot be parsed.
var ErrInvalidDate = errors.New("invalid date")

// ParseDate validates and normalizes a YYYY-MM-DD date. "today" resolves
// against now.
func ParseDate(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "today") {
		return now.Format(DateLayout), nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q (use YYYY-MM-DD)", ErrInvalidDate, s)
	}
	return t.Format(DateLayout), nil
}

// Month identifies a calendar month with a zero-based month index.
type Month struct {
	Year  int
	Index int
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Index: int(t.Month()) - 1}
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Month{}, fmt.Errorf("%w: month %q (use YYYY-MM)", ErrInvalidDate, s)
	}
	return MonthOf(t), nil
}

func (m Month) first() time.Time {
	return time.Date(m.Year, time.Month(m.Index+1), 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the following month, wrapping into the next year after December.
func (m Month) Next() Month {
	return MonthOf(m.first().AddDate(0, 1, 0))
}

// Prev returns the preceding month, wrapping into the previous year before January.
func (m Month) Prev() Month {
	return MonthOf(m.first().AddDate(0, -1, 0))
}

// Step moves one month in the given direction.
func (m Month) Step(dir MonthDirection) Month {
	if dir == MonthPrev {
		return m.Prev()
	}
	return m.Next()
}

// String formats the month as YYYY-MM.
func (m Month) String() string {
	return m.first().Format("2006-01")
}

// Label formats the month for headings, e.g. "February 2025".
func (m Month) Label() string {
	return m.first().Format("January 2006")
}

// DateRange returns the first and last date of the month.
func (m Month) DateRange() (start, end string) {
	return MonthDateRange(m.Year, m.Index)
}

// Dates returns every date of the month in order.
func (m Month) Dates() []string {
	return MonthDates(m.Year, m.Index)
}

// Contains reports whether the date falls inside the month.
func (m Month) Contains(date string) bool {
	start, end := m.DateRange()
	return date >= start && date <= end
}

// MonthDateRange returns the first and last ISO date of a month given its
// year and zero-based index. The last day is the first day of the following
// month minus one day.
func MonthDateRange(year, month int) (start, end string) {
	first := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, 0).AddDate(0, 0, -1)
	return first.Format(DateLayout), last.Format(DateLayout)
}

// MonthDates returns every ISO date of a month given its year and zero-based index.
func MonthDates(year, month int) []string {
	first := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)
	var dates []string
	for d := first; d.Before(next); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates
}
