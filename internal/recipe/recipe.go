// Package recipe models a single recipe, reads and writes its text file
// format, and derives its per-serving nutrition from the ingredient bank.
package recipe

import (
	"fmt"
	"strings"

	"mealprep/internal/bank"
	"mealprep/internal/nutrition"
)

// Category is a meal slot a recipe can be served in.
type Category string

const (
	Breakfast Category = "Breakfast"
	Lunch     Category = "Lunch"
	Dinner    Category = "Dinner"
	Snack     Category = "Snack"
	Dessert   Category = "Dessert"
)

// AllCategories lists the valid categories in display order.
var AllCategories = []Category{Breakfast, Lunch, Dinner, Snack, Dessert}

// ParseCategory matches s case-insensitively against the enumeration and
// returns the canonical spelling.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range AllCategories {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", &InvalidCategoryError{Name: s}
}

// Valid reports whether c is one of AllCategories.
func (c Category) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Recipe is a parsed or freshly authored recipe. Nutrition is derived from
// Ingredients and Servings; change a recipe by creating it again.
type Recipe struct {
	Name        string
	Servings    int
	Categories  []Category
	Nutrition   nutrition.Summary
	Ingredients []IngredientLine
	Steps       []string
}

// Create validates the authored inputs, resolves every entry against the
// bank in order and computes the per-serving summary. Nothing is written.
func Create(name string, servings int, categories []Category, entries []Entry, steps []string, b *bank.Bank) (*Recipe, error) {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if servings <= 0 {
		return nil, &nutrition.InvalidServingsError{Servings: servings}
	}
	cats, err := normalizeCategories(categories)
	if err != nil {
		return nil, err
	}

	lines := make([]IngredientLine, 0, len(entries))
	facts := make([]nutrition.Facts, 0, len(entries))
	for i, e := range entries {
		line, err := NewIngredientLine(e, b)
		if err != nil {
			return nil, fmt.Errorf("ingredient %d: %w", i+1, err)
		}
		lines = append(lines, line)
		facts = append(facts, *line.Resolved)
	}

	summary, err := nutrition.PerServing(nutrition.Aggregate(facts...), servings)
	if err != nil {
		return nil, err
	}

	cleanSteps := make([]string, 0, len(steps))
	for _, s := range steps {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if strings.ContainsAny(s, "\r\n") {
			return nil, fmt.Errorf("step %q must be a single line", s)
		}
		cleanSteps = append(cleanSteps, s)
	}

	return &Recipe{
		Name:        name,
		Servings:    servings,
		Categories:  cats,
		Nutrition:   summary,
		Ingredients: lines,
		Steps:       cleanSteps,
	}, nil
}

// ValidateName checks that name can be stored as a single recipe file.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q starts with a dot", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`+"\r\n\x00"):
		return fmt.Errorf("%w: %q contains a path separator or control character", ErrInvalidName, name)
	}
	return nil
}

func normalizeCategories(in []Category) ([]Category, error) {
	if len(in) == 0 {
		return nil, &InvalidCategoryError{}
	}
	out := make([]Category, 0, len(in))
	seen := make(map[Category]bool, len(in))
	for _, c := range in {
		canonical, err := ParseCategory(string(c))
		if err != nil {
			return nil, err
		}
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		out = append(out, canonical)
	}
	return out, nil
}

// HasCategory reports whether r is listed under c.
func (r *Recipe) HasCategory(c Category) bool {
	for _, rc := range r.Categories {
		if rc == c {
			return true
		}
	}
	return false
}

// Recompute resolves every ingredient line against b again and returns the
// summary the recipe file should carry. r is not modified.
func (r *Recipe) Recompute(b *bank.Bank) (nutrition.Summary, error) {
	facts := make([]nutrition.Facts, 0, len(r.Ingredients))
	for _, line := range r.Ingredients {
		f, err := Resolve(line.Quantity, line.Unit, line.Name, b)
		if err != nil {
			return nutrition.Summary{}, fmt.Errorf("failed to resolve %q in %q: %w", line.Name, r.Name, err)
		}
		facts = append(facts, f)
	}
	return nutrition.PerServing(nutrition.Aggregate(facts...), r.Servings)
}

// Problems lists reasons the recipe is incomplete. A recipe with problems
// still parses and serializes.
func (r *Recipe) Problems() []string {
	var problems []string
	if len(r.Categories) == 0 {
		problems = append(problems, "no categories")
	}
	if len(r.Ingredients) == 0 {
		problems = append(problems, "no ingredients")
	}
	if len(r.Steps) == 0 {
		problems = append(problems, "no steps")
	}
	return problems
}

// NutritionInfo is a one-line description of the per-serving nutrition.
func (r *Recipe) NutritionInfo() string {
	return fmt.Sprintf("%s per serving (%d servings)", r.Nutrition, r.Servings)
}
