package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Veraticus/sortsense/internal/classify"
	"github.com/Veraticus/sortsense/internal/cli"
	"github.com/Veraticus/sortsense/internal/cohesion"
	"github.com/Veraticus/sortsense/internal/common"
	"github.com/Veraticus/sortsense/internal/config"
	"github.com/Veraticus/sortsense/internal/engine"
	"github.com/Veraticus/sortsense/internal/extract"
	"github.com/Veraticus/sortsense/internal/ledger"
	"github.com/Veraticus/sortsense/internal/storage"
	"github.com/Veraticus/sortsense/internal/vision"
	"github.com/spf13/viper"
)

// app bundles everything a command needs to run the engine.
type app struct {
	cfg       *config.Config
	engine    *engine.Engine
	ledger    *ledger.Ledger
	history   *storage.SQLiteStorage
	extractor *extract.Extractor
	prompter  *cli.Prompter
}

// appOptions selects the optional collaborators of an app.
type appOptions struct {
	in        io.Reader
	out       io.Writer
	useVision bool
}

// loadConfig loads and validates the configuration held by viper.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("Invalid configuration", err)
	}
	slog.Debug("Loaded configuration", "config", cfg.String())
	return cfg, nil
}

// initStorage opens the run history database and brings its schema up to
// date.
func initStorage(ctx context.Context, dbPath string) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(config.ExpandPath(dbPath))
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("Failed to close history database", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// openApp wires the engine from configuration. A history database that
// cannot be opened is logged and skipped.
func openApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	led, err := ledger.Open(cfg.Settings.TransactionLog)
	if err != nil {
		return nil, common.NewUserError("Cannot read the transaction log", err)
	}

	a := &app{
		cfg:      cfg,
		ledger:   led,
		prompter: cli.NewPrompter(opts.in, opts.out),
		extractor: extract.New(extract.Tools{
			Tesseract: cfg.Tools.Tesseract,
			Pdftotext: cfg.Tools.Pdftotext,
			Pdftoppm:  cfg.Tools.Pdftoppm,
		}, cfg.Settings.ExtractTimeout, cfg.Settings.MaxTextLength),
	}

	engineCfg := engine.Config{
		Registry:   cfg.Registry,
		Extractor:  a.extractor,
		Classifier: classify.NewKeyword(cfg.Registry),
		Ledger:     led,
		Decider:    a.prompter,
		LockPath:   led.Path() + ".lock",
		Cohesion: cohesion.Rules{
			Force:      cfg.Cohesion.Force,
			Deny:       cfg.Cohesion.Deny,
			Exempt:     cfg.Cohesion.Exempt,
			SampleSize: cfg.Cohesion.SampleSize,
			Share:      cfg.Cohesion.Share,
		},
		FinancialCategories: cfg.Settings.FinancialCategories,
		DiscoveryDepth:      cfg.Settings.DiscoveryDepth,
		StoredTextLength:    cfg.Settings.StoredTextLength,
		VisionConfidence:    cfg.Vision.MinConfidence,
		SkipHidden:          cfg.Settings.SkipHidden,
	}

	if cfg.Settings.HistoryDB != "" {
		store, storeErr := initStorage(ctx, cfg.Settings.HistoryDB)
		if storeErr != nil {
			slog.Warn("Run history disabled", "path", cfg.Settings.HistoryDB, "error", storeErr)
		} else {
			a.history = store
			engineCfg.History = store
		}
	}

	if opts.useVision || cfg.Vision.Enabled {
		client, visionErr := newVisionClient(cfg)
		if visionErr != nil {
			a.Close()
			return nil, visionErr
		}
		engineCfg.Vision = client
	}

	a.engine, err = engine.New(engineCfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func newVisionClient(cfg *config.Config) (*vision.Client, error) {
	apiKey := cfg.Vision.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" && cfg.Vision.BaseURL == "" {
		return nil, common.NewUserError(
			"Image classification needs vision.api_key, OPENAI_API_KEY or a local vision.base_url",
			common.ErrMissingConfig)
	}

	return vision.NewClient(vision.Config{
		Hints:    cfg.Vision.Hints,
		BaseURL:  cfg.Vision.BaseURL,
		APIKey:   apiKey,
		Model:    cfg.Vision.Model,
		Timeout:  cfg.Vision.Timeout,
		MaxWidth: cfg.Vision.MaxWidth,
	}, cfg.Registry), nil
}

// Close releases the history database.
func (a *app) Close() {
	if a.history == nil {
		return
	}
	if err := a.history.Close(); err != nil {
		slog.Error("Failed to close history database", "error", err)
	}
}
