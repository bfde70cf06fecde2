package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"sheetfolio/config"
	"sheetfolio/gviz"
	"sheetfolio/internal/logging"
	"sheetfolio/internal/metrics"
	"sheetfolio/loader"
	"sheetfolio/render"
	"sheetfolio/sheet"
	"sheetfolio/storage"
)

// app holds the components shared by serve, build and export.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	store    *storage.SQLiteStore
	loader   *loader.Loader
	renderer *render.Renderer
}

func newApp(cfg *config.Config) (*app, error) {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		metrics:  metrics.New(registry),
	}

	opts := loader.Options{
		PlaceholderImage: cfg.Page.PlaceholderImage,
		Metrics:          a.metrics,
		Logger:           logger.Named("loader"),
	}

	switch {
	case cfg.UsesWorkbook():
		opts.Workbook = strings.TrimSpace(cfg.Sheet.Workbook)
	case cfg.UsesDataFile():
		opts.DataFile = strings.TrimSpace(cfg.Sheet.DataFile)
	default:
		sources, err := gviz.BuildSources(cfg.Sheet.Endpoint, cfg.Sheet.SpreadsheetID, sheetNames())
		if err != nil {
			return nil, err
		}
		opts.Sources = sources
		opts.Fetcher = gviz.NewClient(gviz.ClientConfig{
			UserAgent: cfg.Fetch.UserAgent,
			Timeout:   cfg.Fetch.Timeout,
			Logger:    logger.Named("gviz"),
		})
	}

	if dbPath := strings.TrimSpace(cfg.History.DB); dbPath != "" {
		store, err := storage.OpenSQLite(dbPath)
		if err != nil {
			return nil, err
		}
		a.store = store
		opts.Recorder = store
	}

	a.loader = loader.New(opts)

	renderer, err := render.New(render.Options{
		TemplatePath:     cfg.Page.Template,
		PlaceholderImage: cfg.Page.PlaceholderImage,
		Logger:           logger.Named("render"),
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.renderer = renderer

	return a, nil
}

func (a *app) Close() error {
	var errs []error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close history db: %w", err))
		}
	}
	_ = a.logger.Sync()
	return errors.Join(errs...)
}

func sheetNames() []string {
	kinds := sheet.Kinds()
	names := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		names = append(names, kind.SheetName())
	}
	return names
}

// loadApp validates the active configuration and builds the app from it.
func loadApp() (*app, error) {
	cfg, err := config.LoadAndValidate()
	if err != nil {
		return nil, err
	}
	return newApp(cfg)
}

// bindFlags binds command flags to config keys. Binding happens per run so
// commands sharing a key (--db) do not overwrite each other's binding.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		if err := viper.BindPFlag(key, cmd.Flag(flag)); err != nil {
			return fmt.Errorf("bind --%s: %w", flag, err)
		}
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
