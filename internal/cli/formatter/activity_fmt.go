package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tally/internal/domain"
)

// FormatActivityList renders activities in creation order with their
// 1-based index, which the CLI accepts as an activity reference.
func FormatActivityList(activities []domain.Activity, balances map[string]int) string {
	if len(activities) == 0 {
		return Dim("No activities yet. Add one with `tally activity add`.") + "\n"
	}
	headers := []string{"#", "ID", "NAME", "DAILY GOAL", "BALANCE"}
	rows := make([][]string, 0, len(activities))
	for i, a := range activities {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			TruncID(a.ID),
			ActivityName(a),
			Amount(a.DailyGoal, a.Unit),
			Extras(balances[a.ID]),
		})
	}
	return RenderTableAligned(headers, rows, []bool{true, false, false, false, true})
}

// FormatBalances renders the extras balance of every activity and the total.
func FormatBalances(activities []domain.Activity, balances map[string]int) string {
	var b strings.Builder
	total := 0
	for _, a := range activities {
		bal := balances[a.ID]
		total += bal
		b.WriteString(fmt.Sprintf("  %s  %s %s\n", ActivityName(a), Extras(bal), Dim(a.Unit)))
	}
	if len(activities) == 0 {
		b.WriteString(Dim("  No activities yet.") + "\n")
	}
	b.WriteString("\n" + Dim(fmt.Sprintf("  %d banked in total", total)) + "\n")
	return RenderBox("Extras balance", b.String())
}

// FormatActivity renders a one-line summary of a single activity.
func FormatActivity(a domain.Activity) string {
	return fmt.Sprintf("%s  %s  %s", ActivityName(a), Amount(a.DailyGoal, a.Unit)+Dim(" / day"), TruncID(a.ID))
}
