// Package config loads tally settings from a TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds all tally configuration.
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
}

// StorageConfig selects and locates the backend.
type StorageConfig struct {
	Backend     string `toml:"backend"`
	Path        string `toml:"path,omitempty"`
	PostgresURL string `toml:"postgres_url,omitempty"`
}

// LoggingConfig controls use-case logging on stderr.
type LoggingConfig struct {
	UseCases bool `toml:"use_cases"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Path:    DefaultDBPath(),
		},
	}
}

// DefaultDBPath is ~/.tally/tally.db.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".tally", "tally.db")
	}
	return filepath.Join(home, ".tally", "tally.db")
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tally")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "tally")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Exists reports whether a config file is present at Path.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// Load reads the config file at Path, loads a .env file from the working
// directory if there is one, and applies TALLY_* environment overrides.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), fmt.Errorf("loading .env: %w", err)
	}
	return LoadFile(Path())
}

// LoadFile reads the config file at path, returning defaults if it does
// not exist, then applies environment overrides. The result is not
// validated; callers apply their own overrides first and then Validate.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// Save writes the config to path, creating its directory.
func Save(path string, cfg Config) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing config file: %w", cerr)
		}
	}()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks the backend selection.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return fmt.Errorf("storage.path is required for the sqlite backend")
		}
	case BackendPostgres:
		if strings.TrimSpace(c.Storage.PostgresURL) == "" {
			return fmt.Errorf("storage.postgres_url is required for the postgres backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q (use sqlite, postgres or memory)", c.Storage.Backend)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Storage.Backend = strings.ToLower(getEnv("TALLY_BACKEND", cfg.Storage.Backend))
	cfg.Storage.Path = expandHome(getEnv("TALLY_DB", cfg.Storage.Path))
	cfg.Storage.PostgresURL = getEnv("TALLY_POSTGRES_URL", cfg.Storage.PostgresURL)
	cfg.Logging.UseCases = getBoolEnv("TALLY_LOG_USE_CASES", cfg.Logging.UseCases)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// expandHome resolves a leading ~/ against the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
