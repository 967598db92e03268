package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthDateRange_FebruaryNonLeap(t *testing.T) {
	start, end := MonthDateRange(2025, 1)
	assert.Equal(t, "2025-02-01", start)
	assert.Equal(t, "2025-02-28", end)
}

func TestMonthDateRange_FebruaryLeap(t *testing.T) {
	_, end := MonthDateRange(2024, 1)
	assert.Equal(t, "2024-02-29", end)
}

func TestMonthDateRange_December(t *testing.T) {
	start, end := MonthDateRange(2025, 11)
	assert.Equal(t, "2025-12-01", start)
	assert.Equal(t, "2025-12-31", end)
}

func TestMonthDates(t *testing.T) {
	dates := MonthDates(2025, 3)
	require.Len(t, dates, 30)
	assert.Equal(t, "2025-04-01", dates[0])
	assert.Equal(t, "2025-04-30", dates[29])
}

func TestMonth_NavigationWrapsYear(t *testing.T) {
	dec := Month{Year: 2025, Index: 11}
	assert.Equal(t, Month{Year: 2026, Index: 0}, dec.Next())

	jan := Month{Year: 2025, Index: 0}
	assert.Equal(t, Month{Year: 2024, Index: 11}, jan.Prev())

	assert.Equal(t, Month{Year: 2025, Index: 6}, Month{Year: 2025, Index: 5}.Step(MonthNext))
	assert.Equal(t, Month{Year: 2025, Index: 4}, Month{Year: 2025, Index: 5}.Step(MonthPrev))
}

func TestMonth_Formatting(t *testing.T) {
	m := Month{Year: 2025, Index: 1}
	assert.Equal(t, "2025-02", m.String())
	assert.Equal(t, "February 2025", m.Label())
	assert.True(t, m.Contains("2025-02-28"))
	assert.False(t, m.Contains("2025-03-01"))
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2025-07")
	require.NoError(t, err)
	assert.Equal(t, Month{Year: 2025, Index: 6}, m)

	_, err = ParseMonth("July")
	assert.True(t, errors.Is(err, ErrInvalidDate))
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-07-04", testNow)
	require.NoError(t, err)
	assert.Equal(t, "2025-07-04", got)

	got, err = ParseDate("today", testNow)
	require.NoError(t, err)
	assert.Equal(t, "2025-07-15", got)

	_, err = ParseDate("2025-13-01", testNow)
	assert.ErrorIs(t, err, ErrInvalidDate)
}
