package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mealprep/internal/recipe"
)

// CreateRequest holds the authored inputs of a new recipe. Ingredients are
// tab-separated "quantity\tunit\tname" lines.
type CreateRequest struct {
	Name        string
	Servings    int
	Categories  []string
	Ingredients []string
	Steps       []string
}

// CreateRecipe resolves the request against the bank, writes the recipe
// file and prints its per-serving nutrition.
func (a *App) CreateRecipe(ctx context.Context, req CreateRequest) (*recipe.Recipe, error) {
	cats, err := parseCategories(req.Categories)
	if err != nil {
		return nil, err
	}
	entries := make([]recipe.Entry, 0, len(req.Ingredients))
	for i, line := range req.Ingredients {
		e, err := recipe.ParseEntry(line)
		if err != nil {
			return nil, fmt.Errorf("ingredient %d: %w", i+1, err)
		}
		entries = append(entries, e)
	}
	return a.create(ctx, req.Name, req.Servings, cats, entries, req.Steps)
}

// ImportRequest names a page to import and the details a page does not
// carry reliably.
type ImportRequest struct {
	Target     string
	Servings   int
	Categories []string
}

// ImportRecipe clips a recipe from a URL or saved HTML file and creates it.
// Servings given in the request override the page's. Ingredient lines
// without a readable quantity are logged and left out.
func (a *App) ImportRecipe(ctx context.Context, req ImportRequest) (*recipe.Recipe, error) {
	rec, err := a.importRecipe(ctx, req)
	if err != nil {
		a.metrics.Imported("error")
		return nil, err
	}
	a.metrics.Imported("ok")
	return rec, nil
}

func (a *App) importRecipe(ctx context.Context, req ImportRequest) (*recipe.Recipe, error) {
	cats, err := parseCategories(req.Categories)
	if err != nil {
		return nil, err
	}

	draft, err := a.recipeClipper.Clip(ctx, req.Target)
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", req.Target, err)
	}
	for _, line := range draft.Skipped {
		a.logger.Warn("ingredient skipped", zap.String("recipe", draft.Name), zap.String("line", line))
	}

	servings := req.Servings
	if servings == 0 {
		servings = draft.Servings
	}
	if servings == 0 {
		return nil, fmt.Errorf("no servings found in %s, pass them explicitly", req.Target)
	}
	return a.create(ctx, draft.Name, servings, cats, draft.Entries, draft.Steps)
}

func (a *App) create(ctx context.Context, name string, servings int, cats []recipe.Category, entries []recipe.Entry, steps []string) (*recipe.Recipe, error) {
	b, err := a.Bank()
	if err != nil {
		return nil, err
	}
	cb, err := a.Cookbook(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := cb.Create(a.recipeStore, name, servings, cats, entries, steps, b)
	if err != nil {
		return nil, err
	}
	a.metrics.RecipeCreated()

	fmt.Fprintf(a.out, "%s: %s\n", rec.Name, rec.NutritionInfo())
	return rec, nil
}

func parseCategories(names []string) ([]recipe.Category, error) {
	cats := make([]recipe.Category, 0, len(names))
	for _, n := range names {
		c, err := recipe.ParseCategory(n)
		if err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, nil
}
