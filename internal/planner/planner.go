// Package planner holds the helpers a meal-plan generator needs from the
// cookbook: daily nutrition targets, per-category averages and a check of a
// day's meals against the targets. Choosing the meals is left to the caller.
package planner

import (
	"errors"
	"fmt"
	"math"

	"mealprep/internal/nutrition"
	"mealprep/internal/recipe"
)

// ErrEmptyCategory is returned when averaging a category with no recipes.
var ErrEmptyCategory = errors.New("category has no recipes")

// Catalog is the read surface of a cookbook. *cookbook.Cookbook implements it.
type Catalog interface {
	Recipe(name string) (*recipe.Recipe, error)
	Category(c recipe.Category) []string
}

// MacroSplit gives the share of daily calories from each macronutrient.
type MacroSplit struct {
	Protein float64
	Carbs   float64
	Fat     float64
}

// DefaultSplit is 35% protein, 45% carbs and 20% fat.
var DefaultSplit = MacroSplit{Protein: 0.35, Carbs: 0.45, Fat: 0.20}

// DefaultCalories is the daily target used when none is configured.
const DefaultCalories = 1900

// DefaultTolerance is how far a day may stray from its targets per nutrient.
var DefaultTolerance = nutrition.Summary{Calories: 50, Protein: 10, Carbs: 10, Fat: 7}

// Calories per gram of each macronutrient.
const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

// DailyTargets converts a calorie goal and macro split into gram targets.
// Values are rounded half to even.
func DailyTargets(calories int, split MacroSplit) (nutrition.Summary, error) {
	if calories <= 0 {
		return nutrition.Summary{}, fmt.Errorf("daily calories must be positive, got %d", calories)
	}
	if split.Protein < 0 || split.Carbs < 0 || split.Fat < 0 {
		return nutrition.Summary{}, fmt.Errorf("macro split must not be negative: %+v", split)
	}
	c := float64(calories)
	return nutrition.Summary{
		Calories: calories,
		Protein:  int(math.RoundToEven(c * split.Protein / kcalPerGramProtein)),
		Carbs:    int(math.RoundToEven(c * split.Carbs / kcalPerGramCarbs)),
		Fat:      int(math.RoundToEven(c * split.Fat / kcalPerGramFat)),
	}, nil
}

// Deviation returns actual minus target for each nutrient.
func Deviation(actual, target nutrition.Summary) nutrition.Summary {
	return nutrition.Summary{
		Calories: actual.Calories - target.Calories,
		Protein:  actual.Protein - target.Protein,
		Carbs:    actual.Carbs - target.Carbs,
		Fat:      actual.Fat - target.Fat,
	}
}

// Within reports whether every nutrient of actual is within tolerance of
// target, inclusive.
func Within(actual, target, tolerance nutrition.Summary) bool {
	d := Deviation(actual, target)
	return abs(d.Calories) <= tolerance.Calories &&
		abs(d.Protein) <= tolerance.Protein &&
		abs(d.Carbs) <= tolerance.Carbs &&
		abs(d.Fat) <= tolerance.Fat
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// CategoryAverage is the mean per-serving nutrition of every recipe in
// category c.
func CategoryAverage(cat Catalog, c recipe.Category) (nutrition.Facts, error) {
	names := cat.Category(c)
	if len(names) == 0 {
		return nutrition.Facts{}, fmt.Errorf("%w: %s", ErrEmptyCategory, c)
	}

	var total nutrition.Facts
	for _, name := range names {
		rec, err := cat.Recipe(name)
		if err != nil {
			return nutrition.Facts{}, fmt.Errorf("failed to average %s: %w", c, err)
		}
		total = total.Add(factsOf(rec.Nutrition))
	}
	return total.Scale(1 / float64(len(names))), nil
}

func factsOf(s nutrition.Summary) nutrition.Facts {
	return nutrition.Facts{
		Calories: float64(s.Calories),
		Protein:  float64(s.Protein),
		Carbs:    float64(s.Carbs),
		Fat:      float64(s.Fat),
	}
}

// Planner checks candidate days against daily targets.
type Planner struct {
	catalog   Catalog
	targets   nutrition.Summary
	tolerance nutrition.Summary
}

// NewPlanner creates a new Planner instance.
func NewPlanner(catalog Catalog, calories int, split MacroSplit) (*Planner, error) {
	targets, err := DailyTargets(calories, split)
	if err != nil {
		return nil, err
	}
	return &Planner{catalog: catalog, targets: targets, tolerance: DefaultTolerance}, nil
}

// Targets returns the daily targets.
func (p *Planner) Targets() nutrition.Summary {
	return p.targets
}

// Tolerance returns the allowed deviation per nutrient.
func (p *Planner) Tolerance() nutrition.Summary {
	return p.tolerance
}

// CheckDay totals one serving of each named recipe and compares it with the
// daily targets.
func (p *Planner) CheckDay(names ...string) (DayCheck, error) {
	check := DayCheck{Recipes: names, Target: p.targets}
	for _, name := range names {
		rec, err := p.catalog.Recipe(name)
		if err != nil {
			return DayCheck{}, err
		}
		check.Total.Calories += rec.Nutrition.Calories
		check.Total.Protein += rec.Nutrition.Protein
		check.Total.Carbs += rec.Nutrition.Carbs
		check.Total.Fat += rec.Nutrition.Fat
	}
	check.Deviation = Deviation(check.Total, p.targets)
	check.OK = Within(check.Total, p.targets, p.tolerance)
	return check, nil
}
