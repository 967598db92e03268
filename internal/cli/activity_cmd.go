package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alexanderramin/tally/internal/cli/formatter"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/service"
)

func newActivityCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "activity",
		Aliases: []string{"activities", "a"},
		Short:   "Manage tracked activities",
	}

	cmd.AddCommand(
		newActivityListCmd(app),
		newActivityAddCmd(app),
		newActivityEditCmd(app),
		newActivityRemoveCmd(app),
	)

	return cmd
}

func newActivityListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List activities in creation order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := app.Tracker.Snapshot()
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatActivityList(snap.Activities, snap.Balances))
			return nil
		},
	}
}

func newActivityAddCmd(app *App) *cobra.Command {
	var name, goal, unit, color string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an activity",
		Long: `Add an activity. Missing fields are prompted for when running in a
terminal. Without --color a palette color is picked at random.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" || goal == "" || unit == "" {
				if !app.interactive() {
					return fmt.Errorf("--name, --goal and --unit are required")
				}
				if err := activityForm(&name, &goal, &unit, &color).Run(); err != nil {
					return err
				}
			}

			dailyGoal, err := parseGoal(goal)
			if err != nil {
				return err
			}
			a, err := app.Tracker.CreateActivity(cmd.Context(), service.NewActivityInput{
				Name:      name,
				DailyGoal: dailyGoal,
				Unit:      unit,
				Color:     domain.Color(strings.ToLower(strings.TrimSpace(color))),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", formatter.FormatActivity(a))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Activity name")
	cmd.Flags().StringVar(&goal, "goal", "", "Daily goal (positive whole number)")
	cmd.Flags().StringVar(&unit, "unit", "", "Unit the goal is measured in")
	cmd.Flags().StringVar(&color, "color", "", "Color: "+paletteNames())

	return cmd
}

func newActivityEditCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit ACTIVITY",
		Short: "Change an activity's name, goal, unit or color",
		Long: `Change an activity. Only the flags given are applied. Logged progress
and the extras balance are kept; a new goal affects statuses and future
ledger moves only.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := resolveActivity(app, args[0])
			if err != nil {
				return err
			}

			patch, err := patchFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			if patch.IsEmpty() {
				return fmt.Errorf("nothing to change (use --name, --goal, --unit or --color)")
			}

			updated, err := app.Tracker.UpdateActivity(cmd.Context(), a.ID, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", formatter.FormatActivity(updated))
			return nil
		},
	}

	cmd.Flags().String("name", "", "New name")
	cmd.Flags().String("goal", "", "New daily goal")
	cmd.Flags().String("unit", "", "New unit")
	cmd.Flags().String("color", "", "New color: "+paletteNames())

	return cmd
}

// patchFromFlags builds a patch from the flags set on the command line.
func patchFromFlags(fs *pflag.FlagSet) (domain.ActivityPatch, error) {
	var (
		patch domain.ActivityPatch
		err   error
	)
	fs.Visit(func(f *pflag.Flag) {
		v := f.Value.String()
		switch f.Name {
		case "name":
			patch.Name = &v
		case "unit":
			patch.Unit = &v
		case "goal":
			g, perr := parseGoal(v)
			if perr != nil {
				err = perr
				return
			}
			patch.DailyGoal = &g
		case "color":
			c := domain.Color(strings.ToLower(strings.TrimSpace(v)))
			patch.Color = &c
		}
	})
	return patch, err
}

func newActivityRemoveCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "remove ACTIVITY",
		Aliases: []string{"rm"},
		Short:   "Remove an activity and its extras balance",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := resolveActivity(app, args[0])
			if err != nil {
				return err
			}
			if !force {
				if !app.interactive() {
					return fmt.Errorf("refusing to remove %q without --force", a.Name)
				}
				confirmed := false
				title := fmt.Sprintf("Remove %s and its %d banked extras?", a.Name, app.Tracker.Balance(a.ID))
				if err := wizardConfirm(title, &confirmed).Run(); err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}
			if err := app.Tracker.DeleteActivity(cmd.Context(), a.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", formatter.ActivityName(a))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Remove without asking")

	return cmd
}

func parseGoal(s string) (int, error) {
	g, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || g <= 0 {
		return 0, fmt.Errorf("%w: daily goal must be a positive whole number, got %q", domain.ErrInvalidActivity, s)
	}
	return g, nil
}

func paletteNames() string {
	names := make([]string, len(domain.Palette))
	for i, c := range domain.Palette {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
