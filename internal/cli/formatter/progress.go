package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tally/internal/domain"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderGoalBar renders progress toward a daily goal like [████░░░░] 4/8.
// The bar fills at the goal and takes the day's status color.
func RenderGoalBar(progress, goal, width int) string {
	if width < 2 {
		width = 2
	}
	filled := 0
	if goal > 0 {
		filled = min(width, progress*width/goal)
	}
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)
	style := StatusStyle(domain.ClassifyProgress(progress, goal))
	return fmt.Sprintf("[%s] %d/%d", style.Render(bar), progress, goal)
}
