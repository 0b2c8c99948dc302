package planner

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"mealprep/internal/nutrition"
	"mealprep/internal/recipe"
)

// mockCatalog is an in-memory Catalog for testing.
type mockCatalog struct {
	recipes    map[string]*recipe.Recipe
	categories map[recipe.Category][]string
}

func (m *mockCatalog) Recipe(name string) (*recipe.Recipe, error) {
	r, ok := m.recipes[name]
	if !ok {
		return nil, fmt.Errorf("no recipe %q", name)
	}
	return r, nil
}

func (m *mockCatalog) Category(c recipe.Category) []string {
	return m.categories[c]
}

func newMockCatalog() *mockCatalog {
	add := func(m *mockCatalog, name string, s nutrition.Summary, cats ...recipe.Category) {
		m.recipes[name] = &recipe.Recipe{Name: name, Servings: 1, Categories: cats, Nutrition: s}
		for _, c := range cats {
			m.categories[c] = append(m.categories[c], name)
		}
	}
	m := &mockCatalog{recipes: map[string]*recipe.Recipe{}, categories: map[recipe.Category][]string{}}
	add(m, "Oats", nutrition.Summary{Calories: 400, Protein: 20, Carbs: 60, Fat: 10}, recipe.Breakfast)
	add(m, "Omelette", nutrition.Summary{Calories: 300, Protein: 25, Carbs: 5, Fat: 21}, recipe.Breakfast, recipe.Lunch)
	add(m, "Chili", nutrition.Summary{Calories: 650, Protein: 45, Carbs: 70, Fat: 18}, recipe.Dinner)
	add(m, "Rice Bowl", nutrition.Summary{Calories: 560, Protein: 76, Carbs: 79, Fat: 3}, recipe.Lunch)
	return m
}

func TestDailyTargets(t *testing.T) {
	got, err := DailyTargets(DefaultCalories, DefaultSplit)
	if err != nil {
		t.Fatalf("DailyTargets failed: %v", err)
	}
	want := nutrition.Summary{Calories: 1900, Protein: 166, Carbs: 214, Fat: 42}
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}

	t.Run("HalfRoundsToEven", func(t *testing.T) {
		low, _ := DailyTargets(2, MacroSplit{Protein: 1})
		high, _ := DailyTargets(6, MacroSplit{Protein: 1})
		if low.Protein != 0 || high.Protein != 2 {
			t.Errorf("Expected 0 and 2, got %d and %d", low.Protein, high.Protein)
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		if _, err := DailyTargets(0, DefaultSplit); err == nil {
			t.Error("Expected an error for zero calories")
		}
		if _, err := DailyTargets(1900, MacroSplit{Protein: -0.1}); err == nil {
			t.Error("Expected an error for a negative split")
		}
	})
}

func TestWithin(t *testing.T) {
	target := nutrition.Summary{Calories: 1900, Protein: 166, Carbs: 214, Fat: 42}

	tests := []struct {
		name   string
		actual nutrition.Summary
		want   bool
	}{
		{"Exact", target, true},
		{"AtTolerance", nutrition.Summary{Calories: 1950, Protein: 156, Carbs: 224, Fat: 35}, true},
		{"CaloriesOver", nutrition.Summary{Calories: 1951, Protein: 166, Carbs: 214, Fat: 42}, false},
		{"FatUnder", nutrition.Summary{Calories: 1900, Protein: 166, Carbs: 214, Fat: 34}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Within(tt.actual, target, DefaultTolerance); got != tt.want {
				t.Errorf("Within(%s) = %v, want %v", tt.actual, got, tt.want)
			}
		})
	}
}

func TestCategoryAverage(t *testing.T) {
	cat := newMockCatalog()

	avg, err := CategoryAverage(cat, recipe.Breakfast)
	if err != nil {
		t.Fatalf("CategoryAverage failed: %v", err)
	}
	want := nutrition.Facts{Calories: 350, Protein: 22.5, Carbs: 32.5, Fat: 15.5}
	if math.Abs(avg.Calories-want.Calories) > 1e-9 || math.Abs(avg.Protein-want.Protein) > 1e-9 ||
		math.Abs(avg.Carbs-want.Carbs) > 1e-9 || math.Abs(avg.Fat-want.Fat) > 1e-9 {
		t.Errorf("Expected %+v, got %+v", want, avg)
	}

	_, err = CategoryAverage(cat, recipe.Dessert)
	if !errors.Is(err, ErrEmptyCategory) {
		t.Errorf("Expected ErrEmptyCategory, got %v", err)
	}
}

func TestCheckDay(t *testing.T) {
	p, err := NewPlanner(newMockCatalog(), DefaultCalories, DefaultSplit)
	if err != nil {
		t.Fatalf("NewPlanner failed: %v", err)
	}
	if want := (nutrition.Summary{Calories: 1900, Protein: 166, Carbs: 214, Fat: 42}); p.Targets() != want {
		t.Errorf("Expected targets %s, got %s", want, p.Targets())
	}
	if p.Tolerance() != DefaultTolerance {
		t.Errorf("Expected default tolerance, got %s", p.Tolerance())
	}

	check, err := p.CheckDay("Oats", "Rice Bowl", "Chili", "Omelette")
	if err != nil {
		t.Fatalf("CheckDay failed: %v", err)
	}
	wantTotal := nutrition.Summary{Calories: 1910, Protein: 166, Carbs: 214, Fat: 52}
	if check.Total != wantTotal {
		t.Errorf("Expected total %s, got %s", wantTotal, check.Total)
	}
	if check.Deviation != (nutrition.Summary{Calories: 10, Protein: 0, Carbs: 0, Fat: 10}) {
		t.Errorf("Unexpected deviation %s", check.Deviation)
	}
	if check.OK {
		t.Error("Expected the day to miss the fat target")
	}

	if _, err := p.CheckDay("Oats", "Pizza"); err == nil {
		t.Error("Expected an error for an unknown recipe")
	}
}
