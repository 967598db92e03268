package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/alexanderramin/tally/internal/cli"
	"github.com/alexanderramin/tally/internal/config"
	"github.com/alexanderramin/tally/internal/db"
	"github.com/alexanderramin/tally/internal/repository"
	"github.com/alexanderramin/tally/internal/repository/postgres"
	"github.com/alexanderramin/tally/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.App{
		Connect: connect,
		// Detect interactive terminal for prompts and the month browser.
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}
	defer app.Close()

	return cli.NewRootCmd(app).ExecuteContext(context.Background())
}

// connect loads the configuration, applies the global flags on top and
// builds the tracker over the selected backend.
func connect(ctx context.Context, flags cli.GlobalFlags) (*service.Tracker, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	applyFlags(&cfg, flags)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	store, closeFn, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	var observer service.UseCaseObserver = service.NoopUseCaseObserver{}
	if flags.Verbose || cfg.Logging.UseCases {
		observer = service.NewLogUseCaseObserver(os.Stderr)
	}
	return service.NewTracker(store, service.WithObserver(observer)), closeFn, nil
}

func applyFlags(cfg *config.Config, flags cli.GlobalFlags) {
	if flags.Backend != "" {
		cfg.Storage.Backend = strings.ToLower(flags.Backend)
	}
	if flags.DBPath != "" {
		cfg.Storage.Path = flags.DBPath
		// A path alone selects SQLite unless a backend was named too.
		if flags.Backend == "" {
			cfg.Storage.Backend = config.BackendSQLite
		}
	}
}

func openStore(ctx context.Context, cfg config.Config) (repository.Store, func() error, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		database, err := db.OpenDB(cfg.Storage.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		return repository.NewSQLiteStore(database), database.Close, nil

	case config.BackendPostgres:
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		store, err := postgres.Open(ctx, cfg.Storage.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		return store, func() error { store.Close(); return nil }, nil

	case config.BackendMemory:
		return repository.NewSeededMemoryStore(time.Now().UTC()), func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}
