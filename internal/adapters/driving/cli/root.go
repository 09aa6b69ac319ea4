// Package cli provides the cobra command tree for pdfboard.
//
// Commands reach the core through package-level services. main registers a
// Builder that constructs them once flags are parsed; tests assign the
// services directly.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfboard/internal/core/domain"
	"github.com/custodia-labs/pdfboard/internal/core/ports/driven"
	"github.com/custodia-labs/pdfboard/internal/core/ports/driving"
	"github.com/custodia-labs/pdfboard/internal/logger"
)

// Environment variables that override stored settings.
const (
	EnvProvider   = "PDFBOARD_PROVIDER"
	EnvBackendURL = "PDFBOARD_BACKEND_URL"
	EnvAPIKey     = "OPENAI_API_KEY"
)

// version is set at build time via -ldflags.
var version = "dev"

// Options holds the persistent flags.
type Options struct {
	Verbose   bool
	ConfigDir string
	EnvFile   string

	// Backend overrides the configured backend provider.
	Backend string
}

// BoardFactory creates a board wired to the configured backend.
type BoardFactory func(ctx context.Context) (driving.BoardService, error)

// Runtime is what the commands need from the composition root.
type Runtime struct {
	Settings driving.SettingsService
	NewBoard BoardFactory

	// CheckBackend pings the backend described by settings.
	CheckBackend func(ctx context.Context, settings *domain.BackendSettings) error

	// Watcher, Journal and Registry are optional.
	Watcher  driven.DocumentWatcher
	Journal  driven.GenerationJournal
	Registry *prometheus.Registry

	// Close releases everything the builder opened.
	Close func() error
}

// Builder constructs the runtime once flags are parsed.
type Builder func(opts Options) (*Runtime, error)

var (
	opts    Options
	builder Builder
	active  *Runtime

	settingsService driving.SettingsService
	boardFactory    BoardFactory
	checkBackend    func(ctx context.Context, settings *domain.BackendSettings) error
	documentWatcher driven.DocumentWatcher
	journal         driven.GenerationJournal
	registry        *prometheus.Registry
)

var rootCmd = &cobra.Command{
	Use:   "pdfboard",
	Short: "Annotate documents with answers on a board",
	Long: `pdfboard asks questions about a document and pins the answers to a board.

Each answer is a chunk anchored to the page and passage it came from.
Selecting a chunk jumps to that page and highlights the passage.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setupRuntime,
	PersistentPostRunE: teardownRuntime,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&opts.ConfigDir, "config-dir", "", "configuration directory (default ~/.pdfboard)")
	flags.StringVar(&opts.EnvFile, "env-file", ".env", "file of environment overrides")
	flags.StringVar(&opts.Backend, "backend", "", "backend provider override (http or openai)")
}

// SetBuilder registers the runtime builder.
func SetBuilder(b Builder) {
	builder = b
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setupRuntime(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(opts.Verbose)

	if err := loadEnvFile(opts.EnvFile); err != nil {
		return err
	}

	if builder == nil || active != nil {
		return nil
	}

	rt, err := builder(opts)
	if err != nil {
		return fmt.Errorf("initialising: %w", err)
	}
	active = rt
	settingsService = rt.Settings
	boardFactory = rt.NewBoard
	checkBackend = rt.CheckBackend
	documentWatcher = rt.Watcher
	journal = rt.Journal
	registry = rt.Registry
	return nil
}

func teardownRuntime(_ *cobra.Command, _ []string) error {
	if active == nil || active.Close == nil {
		return nil
	}
	err := active.Close()
	active = nil
	return err
}

// loadEnvFile loads overrides from path. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	logger.Debug("cli: loaded environment from %s", path)
	return nil
}

// ApplyOverrides applies environment variables and the --backend flag on
// top of stored settings. Flags win over the environment.
func ApplyOverrides(settings *domain.AppSettings, o Options) {
	if v := os.Getenv(EnvProvider); v != "" {
		settings.Backend.Provider = domain.BackendProvider(v)
	}
	if v := os.Getenv(EnvBackendURL); v != "" {
		settings.Backend.BaseURL = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		settings.Backend.APIKey = v
	}
	if o.Backend != "" {
		settings.Backend.Provider = domain.BackendProvider(o.Backend)
	}
}

// openBoard creates a board and opens path on it.
func openBoard(ctx context.Context, path string) (driving.BoardService, error) {
	if boardFactory == nil {
		return nil, errors.New("board not configured")
	}

	board, err := boardFactory(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := board.OpenDocument(ctx, path); err != nil {
		_ = board.Close()
		return nil, err
	}
	return board, nil
}

// watchDocument reloads the board's document whenever path changes on disk.
// It is a no-op without a watcher.
func watchDocument(ctx context.Context, board driving.BoardService, path string) error {
	if documentWatcher == nil {
		return nil
	}
	return documentWatcher.Watch(ctx, path, func(string) {
		if err := board.ReloadDocument(ctx); err != nil {
			logger.Warn("cli: reloading %s: %v", path, err)
		}
	})
}
