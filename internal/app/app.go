// Package app wires the cookbook, the ingredient bank and their supporting
// services into the use cases behind the mealprep commands.
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"mealprep/internal/bank"
	"mealprep/internal/clipper"
	"mealprep/internal/config"
	"mealprep/internal/cookbook"
	"mealprep/internal/metrics"
	"mealprep/internal/planner"
	"mealprep/internal/storage"
)

// App holds the application's dependencies.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	metrics       *metrics.Collector
	recipeStore   *storage.RecipeStore
	recipeClipper *clipper.Clipper
	out           io.Writer

	bank *bank.Bank

	watchDelay time.Duration
	onReload   func(*cookbook.Cookbook, error)
}

// NewApp creates and initializes a new App instance. Command output is
// written to out; diagnostics go to logger.
func NewApp(cfg *config.Config, logger *zap.Logger, out io.Writer) (*App, error) {
	recipeStore, err := storage.NewRecipeStore(cfg.Cookbook.Dir, cfg.Cookbook.Extension)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize recipe store: %w", err)
	}
	return &App{
		cfg:           cfg,
		logger:        logger,
		metrics:       metrics.NewCollector(),
		recipeStore:   recipeStore,
		recipeClipper: clipper.NewClipper(cfg.Clipper.Timeout),
		out:           out,
	}, nil
}

// Close writes the metrics textfile when one is configured.
func (a *App) Close() error {
	if a.cfg.Metrics.Textfile == "" {
		return nil
	}
	if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
		return err
	}
	a.logger.Debug("metrics written", zap.String("path", a.cfg.Metrics.Textfile))
	return nil
}

// Bank loads the ingredient bank on first use.
func (a *App) Bank() (*bank.Bank, error) {
	if a.bank != nil {
		return a.bank, nil
	}
	b, err := bank.LoadFile(a.cfg.Bank.Path)
	if err != nil {
		a.metrics.LoadFailed("bank")
		return nil, err
	}
	a.metrics.BankLoaded(b.Len())
	a.logger.Debug("bank loaded", zap.String("path", a.cfg.Bank.Path), zap.Int("ingredients", b.Len()))
	a.bank = b
	return b, nil
}

// Cookbook loads every recipe in the cookbook directory.
func (a *App) Cookbook(ctx context.Context) (*cookbook.Cookbook, error) {
	start := time.Now()
	cb, err := cookbook.Load(ctx, a.cfg.Cookbook.Title, a.recipeStore,
		cookbook.WithWorkers(a.cfg.Cookbook.Workers),
		cookbook.WithLogger(a.logger),
	)
	if err != nil {
		a.metrics.LoadFailed("cookbook")
		return nil, fmt.Errorf("failed to load cookbook %s: %w", a.recipeStore.Dir(), err)
	}
	a.metrics.CookbookLoaded(cb.Len(), time.Since(start))
	return cb, nil
}

func (a *App) split() planner.MacroSplit {
	return planner.MacroSplit{
		Protein: a.cfg.Planner.ProteinRate,
		Carbs:   a.cfg.Planner.CarbRate,
		Fat:     a.cfg.Planner.FatRate,
	}
}
