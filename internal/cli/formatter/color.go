package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/tally/internal/domain"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorPink   = lipgloss.Color("#f5a9b8")
	ColorIndigo = lipgloss.Color("#7c6f9e")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

var activityColors = map[domain.Color]lipgloss.Color{
	domain.ColorRed:    ColorRed,
	domain.ColorBlue:   ColorBlue,
	domain.ColorGreen:  ColorGreen,
	domain.ColorYellow: ColorYellow,
	domain.ColorPurple: ColorPurple,
	domain.ColorPink:   ColorPink,
	domain.ColorIndigo: ColorIndigo,
}

// ActivityStyle returns the foreground style of an activity's color.
func ActivityStyle(c domain.Color) lipgloss.Style {
	if lc, ok := activityColors[c]; ok {
		return lipgloss.NewStyle().Foreground(lc)
	}
	return StyleFg
}

// ActivityName renders a name with its activity color and a swatch.
func ActivityName(a domain.Activity) string {
	return ActivityStyle(a.Color).Render("■ " + a.Name)
}

// StatusStyle maps a day status to its color.
func StatusStyle(s domain.Status) lipgloss.Style {
	switch s {
	case domain.StatusCompleted:
		return StyleGreen
	case domain.StatusPartial:
		return StyleYellow
	default:
		return StyleDim
	}
}

// StatusBadge returns a colored indicator such as "● completed".
func StatusBadge(s domain.Status) string {
	switch s {
	case domain.StatusCompleted:
		return StyleGreen.Render("● completed")
	case domain.StatusPartial:
		return StyleYellow.Render("◐ partial")
	default:
		return StyleDim.Render("○ pending")
	}
}

// StatusGlyph is the one-character form of StatusBadge used in grids.
func StatusGlyph(s domain.Status) string {
	switch s {
	case domain.StatusCompleted:
		return StyleGreen.Render("●")
	case domain.StatusPartial:
		return StyleYellow.Render("◐")
	default:
		return StyleDim.Render("○")
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
