package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/service"
)

const dayBarWidth = 12

// FormatDay renders one date of the snapshot: progress toward each goal,
// the real and funded parts, and how much could still be spent.
func FormatDay(snap service.MonthSnapshot, date string, now time.Time) string {
	var b strings.Builder

	status := snap.DayStatus(date)
	b.WriteString(fmt.Sprintf("%s  %s\n\n", Bold(HumanDate(date, now)), StatusBadge(status)))

	if len(snap.Activities) == 0 {
		b.WriteString(Dim("No activities yet.") + "\n")
		return RenderBox(date, b.String())
	}

	headers := []string{"ACTIVITY", "PROGRESS", "REAL", "EXTRAS USED", "BALANCE", "CAN SPEND"}
	rows := make([][]string, 0, len(snap.Activities))
	for _, a := range snap.Activities {
		r := snap.Record(date, a.ID)
		entry := domain.LedgerEntry{Day: r, Balance: domain.ExtraBalance{ActivityID: a.ID, Balance: snap.Balances[a.ID]}}
		rows = append(rows, []string{
			ActivityName(a),
			RenderGoalBar(r.Progress, a.DailyGoal, dayBarWidth) + " " + Dim(a.Unit),
			fmt.Sprintf("%d", r.RealProgress()),
			Extras(r.ExtrasUsed),
			Extras(entry.Balance.Balance),
			Extras(entry.SuggestedSpend(a.DailyGoal)),
		})
	}
	b.WriteString(RenderTableAligned(headers, rows, []bool{false, false, true, true, true, true}))
	return RenderBox(date, b.String())
}
