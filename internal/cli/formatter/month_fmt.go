package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/service"
)

// FormatMonth renders the month grid: one row per date with the aggregate
// status and each activity's logged total. Spent extras show as (+n).
func FormatMonth(snap service.MonthSnapshot, now time.Time) string {
	var b strings.Builder

	if len(snap.Activities) == 0 {
		b.WriteString(Dim("No activities yet. Add one with `tally activity add`.") + "\n")
		return RenderBox(snap.Month.Label(), b.String())
	}

	headers := []string{"DATE", ""}
	right := []bool{false, false}
	for _, a := range snap.Activities {
		headers = append(headers, ActivityStyle(a.Color).Render(a.Name))
		right = append(right, true)
	}

	today := now.Format(domain.DateLayout)
	counts := map[domain.Status]int{}
	rows := make([][]string, 0, len(snap.Dates))
	for _, date := range snap.Dates {
		status := snap.DayStatus(date)
		counts[status]++

		label := date[len("2006-01-"):] + " " + dayName(date)
		if date == today {
			label = Bold(label + " ◂")
		}
		row := []string{label, StatusGlyph(status)}
		for _, a := range snap.Activities {
			row = append(row, gridCell(snap.Record(date, a.ID), a.DailyGoal))
		}
		rows = append(rows, row)
	}
	b.WriteString(RenderTableAligned(headers, rows, right))

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s  %s  %s\n",
		StyleGreen.Render(fmt.Sprintf("%d completed", counts[domain.StatusCompleted])),
		StyleYellow.Render(fmt.Sprintf("%d partial", counts[domain.StatusPartial])),
		Dim(fmt.Sprintf("%d pending", counts[domain.StatusPending])),
	))

	b.WriteString("\n" + Header("Extras balance") + "\n")
	for _, a := range snap.Activities {
		b.WriteString(fmt.Sprintf("  %s  %s\n", ActivityName(a), Extras(snap.Balances[a.ID])))
	}

	return RenderBox(snap.Month.Label(), b.String())
}

func gridCell(r domain.DailyProgress, goal int) string {
	if r.Progress == 0 {
		return Dim("·")
	}
	cell := fmt.Sprintf("%d", r.Progress)
	if r.ExtrasUsed > 0 {
		cell += StylePurple.Render(fmt.Sprintf(" (+%d)", r.ExtrasUsed))
	}
	return StatusStyle(domain.ClassifyProgress(r.Progress, goal)).Render(cell)
}

func dayName(date string) string {
	t, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return ""
	}
	return t.Format("Mon")
}
