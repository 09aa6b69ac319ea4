package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/custodia-labs/pdfboard/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pdfboard/internal/adapters/driven/inference"
	"github.com/custodia-labs/pdfboard/internal/adapters/driven/metrics"
	"github.com/custodia-labs/pdfboard/internal/adapters/driven/renderer/pdf"
	"github.com/custodia-labs/pdfboard/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pdfboard/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pdfboard/internal/adapters/driven/watch"
	"github.com/custodia-labs/pdfboard/internal/adapters/driving/cli"
	"github.com/custodia-labs/pdfboard/internal/core/ports/driven"
	"github.com/custodia-labs/pdfboard/internal/core/ports/driving"
	"github.com/custodia-labs/pdfboard/internal/core/services"
	"github.com/custodia-labs/pdfboard/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBuilder(build)

	if err := cli.Execute(ctx); err != nil {
		os.Exit(1)
	}
}

// build wires the driven adapters into the services the commands use.
func build(opts cli.Options) (*cli.Runtime, error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}
	cli.ApplyOverrides(settings, opts)

	var promptDir, dataDir string
	if opts.ConfigDir != "" {
		promptDir = filepath.Join(opts.ConfigDir, "prompts")
		dataDir = filepath.Join(opts.ConfigDir, "data")
	}
	if settings.Journal.Dir != "" {
		dataDir = settings.Journal.Dir
	}

	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		return nil, fmt.Errorf("opening prompts: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	generationMetrics, err := metrics.New(registry)
	if err != nil {
		return nil, fmt.Errorf("registering metrics: %w", err)
	}

	var (
		journal driven.GenerationJournal
		store   *sqlite.Store
	)
	if settings.Journal.Enabled {
		store, err = sqlite.NewStore(dataDir)
		if err != nil {
			return nil, fmt.Errorf("opening journal: %w", err)
		}
		journal = store.Journal()
		logger.Debug("main: journal at %s", store.Path())
	}

	watcher := watch.New(0)

	newBoard := func(ctx context.Context) (driving.BoardService, error) {
		logger.Section("Backend")
		backend, err := inference.CreateAndValidateBackend(ctx, &settings.Backend, prompts)
		if err != nil {
			return nil, err
		}
		logger.Info("using %s backend", backend.Name())

		return services.NewBoard(
			memory.NewChunkStore(),
			memory.NewEdgeStore(),
			backend,
			pdf.NewRenderer(),
			journal,
			generationMetrics,
			nil,
			settings.Generation,
		), nil
	}

	return &cli.Runtime{
		Settings:     settingsService,
		NewBoard:     newBoard,
		CheckBackend: inference.ValidateBackendConfig,
		Watcher:      watcher,
		Journal:      journal,
		Registry:     registry,
		Close: func() error {
			err := watcher.Close()
			if store != nil {
				err = errors.Join(err, store.Close())
			}
			return err
		},
	}, nil
}
