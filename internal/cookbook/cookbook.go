// Package cookbook assembles every recipe in a directory into an in-memory
// catalog indexed by name and by category.
package cookbook

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mealprep/internal/bank"
	"mealprep/internal/recipe"
)

// ErrRecipeNotFound is returned by Recipe for names not in the cookbook.
var ErrRecipeNotFound = errors.New("recipe not found")

// Source lists and parses recipe files. *storage.RecipeStore implements it.
type Source interface {
	List() ([]string, error)
	LoadFile(file string) (*recipe.Recipe, error)
}

// Store persists a recipe. *storage.RecipeStore implements it.
type Store interface {
	SaveFile(file string, rec *recipe.Recipe) error
	FileName(name string) string
}

// Cookbook is a loaded set of recipes. The category index always matches the
// categories of the recipes it holds.
type Cookbook struct {
	title      string
	order      []string
	recipes    map[string]*recipe.Recipe
	files      map[string]string
	byCategory map[recipe.Category][]string
	logger     *zap.Logger
}

type options struct {
	workers int
	logger  *zap.Logger
}

// Option configures Load.
type Option func(*options)

// WithWorkers parses up to n files concurrently. The result is the same as a
// sequential load, including which error is reported.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithLogger sets the logger used for load and create events.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// New returns an empty cookbook.
func New(title string, opts ...Option) *Cookbook {
	o := applyOptions(opts)
	return &Cookbook{
		title:      title,
		recipes:    make(map[string]*recipe.Recipe),
		files:      make(map[string]string),
		byCategory: make(map[recipe.Category][]string),
		logger:     o.logger,
	}
}

func applyOptions(opts []Option) options {
	o := options{workers: 1, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Load parses every recipe file src lists, in file order. The first file that
// fails to read or parse fails the whole load; no partial cookbook is returned.
func Load(ctx context.Context, title string, src Source, opts ...Option) (*Cookbook, error) {
	o := applyOptions(opts)

	files, err := src.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	parsed, errs := parseAll(ctx, src, files, o.workers)

	cb := New(title, opts...)
	for i, file := range files {
		if errs[i] != nil {
			return nil, errs[i]
		}
		rec := parsed[i]
		if prev, ok := cb.files[rec.Name]; ok {
			return nil, &recipe.RecipeFormatError{
				Source: file,
				Line:   1,
				Reason: fmt.Sprintf("duplicate recipe name %q, already defined in %s", rec.Name, prev),
			}
		}
		cb.insert(rec, file)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o.logger.Debug("cookbook loaded",
		zap.String("title", title),
		zap.Int("recipes", cb.Len()),
		zap.Int("workers", o.workers),
	)
	return cb, nil
}

// parseAll parses files with up to workers goroutines. Results and errors are
// indexed like files so the caller can reduce them in order.
func parseAll(ctx context.Context, src Source, files []string, workers int) ([]*recipe.Recipe, []error) {
	parsed := make([]*recipe.Recipe, len(files))
	errs := make([]error, len(files))

	if workers <= 1 {
		for i, file := range files {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				break
			}
			parsed[i], errs[i] = src.LoadFile(file)
			if errs[i] != nil {
				break
			}
		}
		return parsed, errs
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			parsed[i], errs[i] = src.LoadFile(file)
			return nil
		})
	}
	_ = g.Wait()
	return parsed, errs
}

// insert adds rec, replacing any recipe with the same name and its index
// entries.
func (c *Cookbook) insert(rec *recipe.Recipe, file string) {
	if _, exists := c.recipes[rec.Name]; exists {
		c.unindex(rec.Name)
	} else {
		c.order = append(c.order, rec.Name)
	}
	c.recipes[rec.Name] = rec
	c.files[rec.Name] = file
	for _, cat := range rec.Categories {
		c.byCategory[cat] = append(c.byCategory[cat], rec.Name)
	}
}

func (c *Cookbook) unindex(name string) {
	for _, cat := range c.recipes[name].Categories {
		names := slices.DeleteFunc(c.byCategory[cat], func(n string) bool { return n == name })
		if len(names) == 0 {
			delete(c.byCategory, cat)
			continue
		}
		c.byCategory[cat] = names
	}
}

// Create authors a recipe, writes it through store and adds it to the
// cookbook. If any step fails the cookbook is left unchanged.
func (c *Cookbook) Create(store Store, name string, servings int, categories []recipe.Category, entries []recipe.Entry, steps []string, b *bank.Bank) (*recipe.Recipe, error) {
	rec, err := recipe.Create(name, servings, categories, entries, steps, b)
	if err != nil {
		return nil, fmt.Errorf("failed to create recipe %q: %w", name, err)
	}
	if err := c.Add(store, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Add writes an already built recipe through store and adds it to the
// cookbook, replacing a recipe of the same name. A replaced recipe is
// rewritten in the file it was loaded from, so a rescan finds it once.
func (c *Cookbook) Add(store Store, rec *recipe.Recipe) error {
	file, ok := c.files[rec.Name]
	if !ok {
		file = store.FileName(rec.Name)
	}
	if err := store.SaveFile(file, rec); err != nil {
		return fmt.Errorf("failed to save recipe %q: %w", rec.Name, err)
	}
	c.insert(rec, file)
	c.logger.Info("recipe saved",
		zap.String("recipe", rec.Name),
		zap.String("file", file),
		zap.Stringer("nutrition", rec.Nutrition),
	)
	return nil
}

// Title returns the cookbook title.
func (c *Cookbook) Title() string {
	return c.title
}

// Len returns the number of recipes.
func (c *Cookbook) Len() int {
	return len(c.order)
}

func (c *Cookbook) String() string {
	return fmt.Sprintf("%s has %d recipes", c.title, c.Len())
}

// All yields recipes in load order. Each call starts a new traversal.
func (c *Cookbook) All() iter.Seq[*recipe.Recipe] {
	order := slices.Clone(c.order)
	return func(yield func(*recipe.Recipe) bool) {
		for _, name := range order {
			if !yield(c.recipes[name]) {
				return
			}
		}
	}
}

// Names returns recipe names in load order.
func (c *Cookbook) Names() []string {
	return slices.Clone(c.order)
}

// Recipe returns the recipe called name.
func (c *Cookbook) Recipe(name string) (*recipe.Recipe, error) {
	rec, ok := c.recipes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRecipeNotFound, name)
	}
	return rec, nil
}

// File returns the file a recipe was loaded from or saved to.
func (c *Cookbook) File(name string) (string, bool) {
	f, ok := c.files[name]
	return f, ok
}

// Category returns the names of recipes listed under cat, in load order.
func (c *Cookbook) Category(cat recipe.Category) []string {
	return slices.Clone(c.byCategory[cat])
}

// Categories returns the categories that have at least one recipe, in
// enumeration order.
func (c *Cookbook) Categories() []recipe.Category {
	var out []recipe.Category
	for _, cat := range recipe.AllCategories {
		if len(c.byCategory[cat]) > 0 {
			out = append(out, cat)
		}
	}
	return out
}
