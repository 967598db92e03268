package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/tally/internal/cli/formatter"
	"github.com/alexanderramin/tally/internal/domain"
)

func newMonthCmd(app *App) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "month",
		Short: "Show the progress grid of a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m := domain.MonthOf(app.Tracker.Now())
			if month != "" {
				parsed, err := domain.ParseMonth(month)
				if err != nil {
					return err
				}
				m = parsed
			}
			if err := app.Tracker.LoadMonth(ctx, m); err != nil {
				return fmt.Errorf("loading month: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatMonth(app.Tracker.Snapshot(), app.Tracker.Now()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "Month to show (YYYY-MM, default current)")

	return cmd
}

func newDayCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "day [DATE]",
		Short: "Show one day in detail (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "today"
			if len(args) == 1 {
				input = args[0]
			}
			date, err := loadMonthOf(cmd.Context(), app, input)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatDay(app.Tracker.Snapshot(), date, app.Tracker.Now()))
			return nil
		},
	}
}
