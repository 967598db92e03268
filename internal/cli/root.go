package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/tally/internal/service"
)

// GlobalFlags are the persistent flags every command accepts. They are
// applied on top of the loaded configuration when the tracker is built.
type GlobalFlags struct {
	Backend string
	DBPath  string
	Verbose bool
}

// Connector builds a tracker once the global flags are parsed. The returned
// close function releases the backing store.
type Connector func(ctx context.Context, flags GlobalFlags) (*service.Tracker, func() error, error)

// App holds what the CLI commands need.
type App struct {
	// Tracker is used as is when set; otherwise Connect builds it lazily.
	Tracker *service.Tracker
	Connect Connector

	// IsInteractive reports whether prompts can be shown.
	IsInteractive func() bool

	Flags   GlobalFlags
	closeFn func() error
}

// Close releases the store opened by Connect, if any.
func (a *App) Close() error {
	if a.closeFn == nil {
		return nil
	}
	err := a.closeFn()
	a.closeFn = nil
	return err
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) ensureTracker(ctx context.Context) error {
	if a.Tracker != nil {
		return nil
	}
	if a.Connect == nil {
		return fmt.Errorf("no storage configured")
	}
	tr, closeFn, err := a.Connect(ctx, a.Flags)
	if err != nil {
		return err
	}
	a.Tracker = tr
	a.closeFn = closeFn
	return nil
}

// annotationNoTracker marks commands that run without opening the store.
const annotationNoTracker = "tally/no-tracker"

// NewRootCmd creates the top-level "tally" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "tally",
		Short:         "Daily goal tracker with an extras ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for c := cmd; c != nil; c = c.Parent() {
				if _, ok := c.Annotations[annotationNoTracker]; ok {
					return nil
				}
				if c.Name() == "help" || c.Name() == "completion" {
					return nil
				}
			}
			if err := app.ensureTracker(cmd.Context()); err != nil {
				return err
			}
			if err := app.Tracker.Reload(cmd.Context()); err != nil {
				return fmt.Errorf("loading tracker: %w", err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&app.Flags.Backend, "backend", "", "Storage backend: sqlite, postgres or memory")
	root.PersistentFlags().StringVar(&app.Flags.DBPath, "db", "", "SQLite database path")
	root.PersistentFlags().BoolVarP(&app.Flags.Verbose, "verbose", "v", false, "Log every tracker operation to stderr")

	root.AddCommand(
		newMonthCmd(app),
		newDayCmd(app),
		newLogCmd(app),
		newExtrasCmd(app),
		newActivityCmd(app),
		newBrowseCmd(app),
		newConfigCmd(),
	)

	return root
}
