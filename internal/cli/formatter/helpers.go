package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/tally/internal/domain"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		return boxStyle.Render(titleRendered + "\n\n" + strings.TrimRight(content, "\n"))
	}
	return boxStyle.Render(strings.TrimRight(content, "\n"))
}

// HumanDate renders an ISO date as "Today", "Yesterday" or "Tue Jul 1".
// Unparseable input is returned as is.
func HumanDate(date string, now time.Time) string {
	t, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return date
	}
	today := now.Format(domain.DateLayout)
	switch date {
	case today:
		return "Today"
	case now.AddDate(0, 0, -1).Format(domain.DateLayout):
		return "Yesterday"
	}
	return t.Format("Mon Jan 2")
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// Amount renders a count with its unit, e.g. "15 videos".
func Amount(n int, unit string) string {
	if unit == "" {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%d %s", n, unit)
}

// Extras renders a balance or spend amount, dimmed when zero.
func Extras(n int) string {
	if n == 0 {
		return Dim("0")
	}
	return StylePurple.Render(fmt.Sprintf("+%d", n))
}
