package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"mealprep/internal/cookbook"
)

// watchDelay is how long the watcher waits for a burst of writes to settle.
const watchDelay = 250 * time.Millisecond

// Watch reloads the cookbook whenever a recipe file or the bank changes,
// until ctx is cancelled. Reloads run one at a time on the calling
// goroutine. A failed reload is reported and watching continues.
func (a *App) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	bankPath, err := filepath.Abs(a.cfg.Bank.Path)
	if err != nil {
		return fmt.Errorf("failed to resolve bank path: %w", err)
	}
	for _, dir := range []string{a.recipeStore.Dir(), filepath.Dir(bankPath)} {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	a.logger.Info("watching", zap.String("cookbook", a.recipeStore.Dir()), zap.String("bank", bankPath))

	a.reload(ctx)

	delay := a.watchDelay
	if delay <= 0 {
		delay = watchDelay
	}
	timer := time.NewTimer(delay)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			switch {
			case a.isBankEvent(event, bankPath):
				a.bank = nil
			case a.isRecipeEvent(event):
			default:
				continue
			}
			a.logger.Debug("change detected", zap.String("file", event.Name), zap.Stringer("op", event.Op))
			timer.Reset(delay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("file watcher error", zap.Error(err))

		case <-timer.C:
			a.reload(ctx)
		}
	}
}

func (a *App) isBankEvent(event fsnotify.Event, bankPath string) bool {
	name, err := filepath.Abs(event.Name)
	return err == nil && name == bankPath
}

// isRecipeEvent ignores dotfiles, which include the temporary files of an
// in-progress save.
func (a *App) isRecipeEvent(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	return filepath.Dir(filepath.Clean(event.Name)) == filepath.Clean(a.recipeStore.Dir()) &&
		strings.HasSuffix(base, a.recipeStore.Extension()) &&
		!strings.HasPrefix(base, ".")
}

func (a *App) reload(ctx context.Context) {
	cb, err := a.loadAll(ctx)
	if err != nil {
		a.logger.Error("reload failed", zap.Error(err))
		fmt.Fprintf(a.out, "error: %v\n", err)
	} else {
		a.logger.Info("cookbook reloaded", zap.String("title", cb.Title()), zap.Int("recipes", cb.Len()))
		fmt.Fprintf(a.out, "loaded %s\n", cb)
	}
	if a.onReload != nil {
		a.onReload(cb, err)
	}
}

func (a *App) loadAll(ctx context.Context) (*cookbook.Cookbook, error) {
	if _, err := a.Bank(); err != nil {
		return nil, err
	}
	return a.Cookbook(ctx)
}
