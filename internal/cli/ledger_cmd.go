package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/tally/internal/cli/formatter"
	"github.com/alexanderramin/tally/internal/domain"
)

func newLogCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "log DATE ACTIVITY VALUE",
		Short: "Set the progress of an activity on a date",
		Long: `Set the progress of an activity on a date. VALUE replaces what was
logged before. Anything that is not a non-negative whole number counts as 0.
Progress beyond the daily goal is banked as extras.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			date, err := loadMonthOf(ctx, app, args[0])
			if err != nil {
				return err
			}
			a, err := resolveActivity(app, args[1])
			if err != nil {
				return err
			}
			entry, err := app.Tracker.UpdateProgress(ctx, date, a.ID, domain.CoerceProgress(args[2]))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProgressLogged(a, entry))
			return nil
		},
	}
}

func newExtrasCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extras",
		Short: "Spend, reclaim and inspect banked extras",
	}

	cmd.AddCommand(
		newExtrasUseCmd(app),
		newExtrasRecoverCmd(app),
		newExtrasBalanceCmd(app),
	)

	return cmd
}

func newExtrasUseCmd(app *App) *cobra.Command {
	var amount int

	cmd := &cobra.Command{
		Use:   "use DATE ACTIVITY",
		Short: "Spend banked extras toward a day's goal",
		Long: `Spend banked extras toward a day's goal. Without --amount the spend
closes the gap to the goal as far as the balance allows.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			date, err := loadMonthOf(ctx, app, args[0])
			if err != nil {
				return err
			}
			a, err := resolveActivity(app, args[1])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("amount") {
				amount = app.Tracker.SuggestedSpend(date, a.ID)
			}
			spent, err := app.Tracker.UseExtras(ctx, date, a.ID, amount)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSpent(a, date, spent, app.Tracker.Balance(a.ID)))
			return nil
		},
	}

	cmd.Flags().IntVarP(&amount, "amount", "n", 0, "Extras to spend (default: enough to reach the goal)")

	return cmd
}

func newExtrasRecoverCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "recover DATE ACTIVITY",
		Short: "Return the extras spent on a day to the balance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			date, err := loadMonthOf(ctx, app, args[0])
			if err != nil {
				return err
			}
			a, err := resolveActivity(app, args[1])
			if err != nil {
				return err
			}
			reclaimed, err := app.Tracker.RecoverExtras(ctx, date, a.ID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatReclaimed(a, date, reclaimed, app.Tracker.Balance(a.ID)))
			return nil
		},
	}
}

func newExtrasBalanceCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "balance",
		Aliases: []string{"ls"},
		Short:   "Show the banked extras of every activity",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := app.Tracker.Snapshot()
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatBalances(snap.Activities, snap.Balances))
			return nil
		},
	}
}
