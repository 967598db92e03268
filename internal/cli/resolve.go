package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/service"
)

const minIDPrefix = 4

// resolveActivity finds an activity by one of:
//   - its full UUID
//   - its 1-based position in the activity list
//   - its name, case-insensitive
//   - a unique UUID prefix of at least four characters
func resolveActivity(app *App, input string) (domain.Activity, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return domain.Activity{}, fmt.Errorf("activity is required")
	}
	activities := app.Tracker.Activities()

	for _, a := range activities {
		if a.ID == input {
			return a, nil
		}
	}

	if n, err := strconv.Atoi(input); err == nil {
		if n < 1 || n > len(activities) {
			return domain.Activity{}, fmt.Errorf("%w: #%d (have %d)", service.ErrActivityNotFound, n, len(activities))
		}
		return activities[n-1], nil
	}

	for _, a := range activities {
		if strings.EqualFold(a.Name, input) {
			return a, nil
		}
	}

	if len(input) >= minIDPrefix {
		var matches []domain.Activity
		for _, a := range activities {
			if strings.HasPrefix(a.ID, input) {
				matches = append(matches, a)
			}
		}
		switch len(matches) {
		case 0:
		case 1:
			return matches[0], nil
		default:
			return domain.Activity{}, fmt.Errorf("activity ID prefix %q is ambiguous (%d matches)", input, len(matches))
		}
	}

	return domain.Activity{}, fmt.Errorf("%w: %q", service.ErrActivityNotFound, input)
}

// loadMonthOf parses date ("today" allowed) and makes its month the
// tracker's visible month.
func loadMonthOf(ctx context.Context, app *App, date string) (string, error) {
	date, err := domain.ParseDate(date, app.Tracker.Now())
	if err != nil {
		return "", err
	}
	t, _ := time.Parse(domain.DateLayout, date)
	if err := app.Tracker.LoadMonth(ctx, domain.MonthOf(t)); err != nil {
		return "", fmt.Errorf("loading month: %w", err)
	}
	return date, nil
}
