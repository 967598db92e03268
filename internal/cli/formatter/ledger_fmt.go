package formatter

import (
	"fmt"

	"github.com/alexanderramin/tally/internal/domain"
)

// FormatProgressLogged confirms a progress update.
func FormatProgressLogged(a domain.Activity, entry domain.LedgerEntry) string {
	status := domain.ClassifyProgress(entry.Day.Progress, a.DailyGoal)
	line := fmt.Sprintf("%s %s on %s  %s",
		ActivityName(a), Amount(entry.Day.Progress, a.Unit), entry.Day.Date, StatusBadge(status))
	if entry.Day.ExtrasUsed > 0 {
		line += Dim(fmt.Sprintf("  (%d from extras)", entry.Day.ExtrasUsed))
	}
	return line + "\n" + Dim(fmt.Sprintf("Balance: %d", entry.Balance.Balance)) + "\n"
}

// FormatSpent confirms a spend. A zero spend explains why nothing happened.
func FormatSpent(a domain.Activity, date string, spent, balance int) string {
	if spent == 0 {
		return StyleYellow.Render(fmt.Sprintf("No extras spent on %s for %s (balance %d).", date, a.Name, balance)) + "\n"
	}
	return fmt.Sprintf("%s spent %s on %s\n%s\n",
		ActivityName(a), Extras(spent), date, Dim(fmt.Sprintf("Balance: %d", balance)))
}

// FormatReclaimed confirms a reclaim.
func FormatReclaimed(a domain.Activity, date string, reclaimed, balance int) string {
	if reclaimed == 0 {
		return Dim(fmt.Sprintf("No extras were used on %s for %s.", date, a.Name)) + "\n"
	}
	return fmt.Sprintf("%s reclaimed %s from %s\n%s\n",
		ActivityName(a), Extras(reclaimed), date, Dim(fmt.Sprintf("Balance: %d", balance)))
}
