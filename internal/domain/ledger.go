package domain

import "time"

// LedgerEntry pairs one day's record with the activity's banked balance.
// Every extras mutation reads and writes exactly this pair.
type LedgerEntry struct {
	Day     DailyProgress
	Balance ExtraBalance
}

// ExtrasGenerated is the surplus that real work produces beyond the goal.
func ExtrasGenerated(realProgress, goal int) int {
	return max(0, realProgress-goal)
}

// ApplyProgress sets the day's logged total and moves the balance by the
// change in generated surplus. ExtrasUsed is not touched; a value below it
// is raised to it so the funded part of the day stays covered. The balance
// is floored at 0. Returns the balance delta before flooring.
func (e *LedgerEntry) ApplyProgress(value, goal int, now time.Time) int {
	value = max(CoerceAmount(value), e.Day.ExtrasUsed)

	previous := ExtrasGenerated(e.Day.Progress-e.Day.ExtrasUsed, goal)
	next := ExtrasGenerated(value-e.Day.ExtrasUsed, goal)
	delta := next - previous

	e.Day.Progress = value
	e.Day.UpdatedAt = now
	e.Balance.Balance = max(0, e.Balance.Balance+delta)
	e.Balance.UpdatedAt = now
	return delta
}

// Spend moves up to requested extras from the balance into the day. It never
// spends more than the balance holds and returns the amount actually spent.
func (e *LedgerEntry) Spend(requested int, now time.Time) int {
	usable := min(CoerceAmount(requested), e.Balance.Balance)
	if usable == 0 {
		return 0
	}
	e.Balance.Balance -= usable
	e.Balance.UpdatedAt = now
	e.Day.ExtrasUsed += usable
	e.Day.Progress += usable
	e.Day.UpdatedAt = now
	return usable
}

// Reclaim returns every extra spent on the day to the balance and removes
// it from the logged total. A day with no extras used is left as is.
func (e *LedgerEntry) Reclaim(now time.Time) int {
	used := e.Day.ExtrasUsed
	if used == 0 {
		return 0
	}
	e.Balance.Balance += used
	e.Balance.UpdatedAt = now
	e.Day.Progress = max(0, e.Day.Progress-used)
	e.Day.ExtrasUsed = 0
	e.Day.UpdatedAt = now
	return used
}

// SuggestedSpend is the most a caller should spend on the day: enough to
// close the gap to the goal, capped by the balance.
func (e LedgerEntry) SuggestedSpend(goal int) int {
	gap := max(0, goal-e.Day.RealProgress())
	return min(gap, e.Balance.Balance)
}
