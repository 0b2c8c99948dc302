package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mealprep/internal/metrics"
	"mealprep/internal/planner"
	"mealprep/internal/recipe"
	"mealprep/internal/shopping"
)

// List prints the recipe names, optionally only those in category.
func (a *App) List(ctx context.Context, category string) error {
	cb, err := a.Cookbook(ctx)
	if err != nil {
		return err
	}

	names := cb.Names()
	if category != "" {
		c, err := recipe.ParseCategory(category)
		if err != nil {
			return err
		}
		names = cb.Category(c)
	}
	for _, name := range names {
		fmt.Fprintln(a.out, name)
	}
	return nil
}

// Show prints a recipe in its file format.
func (a *App) Show(ctx context.Context, name string) error {
	cb, err := a.Cookbook(ctx)
	if err != nil {
		return err
	}
	rec, err := cb.Recipe(name)
	if err != nil {
		return err
	}
	_, err = a.out.Write(recipe.Serialize(rec))
	return err
}

// Peek prints the bank record for one ingredient.
func (a *App) Peek(name string) error {
	b, err := a.Bank()
	if err != nil {
		return err
	}
	rec, err := b.Lookup(name)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (%s)\n", rec.Name, rec.Category)
	fmt.Fprintf(a.out, "  per %s %s: %s cal | %s P | %s C | %s F\n",
		recipe.FormatQuantity(rec.ReferenceQuantity), rec.ReferenceUnit,
		recipe.FormatQuantity(rec.Calories), recipe.FormatQuantity(rec.Protein),
		recipe.FormatQuantity(rec.Carbs), recipe.FormatQuantity(rec.Fat))
	return nil
}

// Check loads the bank and the cookbook and reports recipes that are
// missing categories, ingredients or steps.
func (a *App) Check(ctx context.Context) error {
	if _, err := a.Bank(); err != nil {
		return err
	}
	cb, err := a.Cookbook(ctx)
	if err != nil {
		return err
	}

	incomplete := 0
	for rec := range cb.All() {
		if problems := rec.Problems(); len(problems) > 0 {
			incomplete++
			fmt.Fprintf(a.out, "%s: %s\n", rec.Name, strings.Join(problems, ", "))
		}
	}
	if incomplete > 0 {
		return fmt.Errorf("%d of %d recipes are incomplete", incomplete, cb.Len())
	}
	fmt.Fprintf(a.out, "%s, all complete\n", cb)
	return nil
}

// Verify recomputes every recipe's summary from the bank and reports the
// ones whose stored summary differs or whose ingredients no longer resolve.
func (a *App) Verify(ctx context.Context) error {
	b, err := a.Bank()
	if err != nil {
		return err
	}
	cb, err := a.Cookbook(ctx)
	if err != nil {
		return err
	}

	stale := 0
	for rec := range cb.All() {
		got, err := rec.Recompute(b)
		switch {
		case err != nil:
			stale++
			fmt.Fprintf(a.out, "%s: %v\n", rec.Name, err)
		case got != rec.Nutrition:
			stale++
			fmt.Fprintf(a.out, "%s: stored %s, bank gives %s\n", rec.Name, rec.Nutrition, got)
		}
	}
	a.metrics.Verified(stale)
	a.logger.Info("verify finished", zap.Int("recipes", cb.Len()), zap.Int("stale", stale))

	if stale > 0 {
		return fmt.Errorf("%d of %d recipes have stale nutrition", stale, cb.Len())
	}
	fmt.Fprintf(a.out, "%s, all up to date\n", cb)
	return nil
}

// Targets prints the daily targets for calories, or the configured calories
// when it is zero.
func (a *App) Targets(calories int) error {
	if calories == 0 {
		calories = a.cfg.Planner.DailyCalories
	}
	targets, err := planner.DailyTargets(calories, a.split())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "target:    %s\n", targets)
	fmt.Fprintf(a.out, "tolerance: %s\n", planner.DefaultTolerance)
	return nil
}

// Average prints the mean per-serving nutrition of a category.
func (a *App) Average(ctx context.Context, category string) error {
	c, err := recipe.ParseCategory(category)
	if err != nil {
		return err
	}
	cb, err := a.Cookbook(ctx)
	if err != nil {
		return err
	}
	avg, err := planner.CategoryAverage(cb, c)
	if err != nil {
		return fmt.Errorf("failed to average %s: %w", c, err)
	}
	fmt.Fprintf(a.out, "%s average over %d recipes: %.1f cal | %.1f P | %.1f C | %.1f F\n",
		c, len(cb.Category(c)), avg.Calories, avg.Protein, avg.Carbs, avg.Fat)
	return nil
}

// Day totals one serving of each named recipe and compares it with the
// configured daily targets.
func (a *App) Day(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return fmt.Errorf("at least one recipe is required")
	}
	cb, err := a.Cookbook(ctx)
	if err != nil {
		return err
	}
	p, err := planner.NewPlanner(cb, a.cfg.Planner.DailyCalories, a.split())
	if err != nil {
		return err
	}
	check, err := p.CheckDay(names...)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "total:     %s\n", check.Total)
	fmt.Fprintf(a.out, "target:    %s\n", p.Targets())
	fmt.Fprintf(a.out, "deviation: %s\n", check.Deviation)
	fmt.Fprintf(a.out, "tolerance: %s\n", p.Tolerance())
	if check.OK {
		fmt.Fprintln(a.out, "within tolerance")
	} else {
		fmt.Fprintln(a.out, "outside tolerance")
	}
	return nil
}

// Shop prints the shopping list for the named recipes, scaled.
func (a *App) Shop(ctx context.Context, scale float64, names ...string) error {
	if len(names) == 0 {
		return fmt.Errorf("at least one recipe is required")
	}
	b, err := a.Bank()
	if err != nil {
		return err
	}
	cb, err := a.Cookbook(ctx)
	if err != nil {
		return err
	}

	recipes := make([]*recipe.Recipe, 0, len(names))
	for _, name := range names {
		rec, err := cb.Recipe(name)
		if err != nil {
			return err
		}
		recipes = append(recipes, rec)
	}

	list, err := shopping.Build(recipes, scale, b)
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, list)
	return nil
}

// Stats prints cookbook, bank and process statistics.
func (a *App) Stats(ctx context.Context) error {
	cb, err := a.Cookbook(ctx)
	if err != nil {
		return err
	}
	b, err := a.Bank()
	if err != nil {
		return err
	}
	health, err := metrics.GetSysHealth(a.recipeStore.Dir(), a.recipeStore.Extension())
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, cb)
	for _, c := range cb.Categories() {
		fmt.Fprintf(a.out, "  %-10s %d\n", c, len(cb.Category(c)))
	}
	fmt.Fprintf(a.out, "bank: %d ingredients in %d categories\n", b.Len(), len(b.Categories()))
	fmt.Fprintf(a.out, "files: %d (%s)\n", health.RecipeFiles, health.DataSize)
	fmt.Fprintf(a.out, "memory: %s alloc, %s sys, %d GC, %d goroutines\n",
		health.Alloc, health.Sys, health.NumGC, health.Goroutines)
	return nil
}
