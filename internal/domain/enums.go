package domain

type Status string

const (
	StatusPending   Status = "pending"
	StatusPartial   Status = "partial"
	StatusCompleted Status = "completed"
)

type Color string

const (
	ColorRed    Color = "red"
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorPurple Color = "purple"
	ColorPink   Color = "pink"
	ColorIndigo Color = "indigo"
)

// Palette is the canonical ordered set of activity colors.
var Palette = []Color{
	ColorRed, ColorBlue, ColorGreen, ColorYellow, ColorPurple, ColorPink, ColorIndigo,
}

// ValidColors is the canonical set of accepted color strings.
var ValidColors = map[string]bool{
	"red": true, "blue": true, "green": true, "yellow": true,
	"purple": true, "pink": true, "indigo": true,
}

type MonthDirection string

const (
	MonthPrev MonthDirection = "prev"
	MonthNext MonthDirection = "next"
)
