package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mealprep/internal/nutrition"
	"mealprep/internal/recipe"
)

func TestRecipeStore(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewRecipeStore(filepath.Join(tempDir, "Cookbook"), "")
	if err != nil {
		t.Fatalf("Failed to create RecipeStore: %v", err)
	}

	rec := &recipe.Recipe{
		Name:       "Test Recipe",
		Servings:   2,
		Categories: []recipe.Category{recipe.Lunch},
		Nutrition:  nutrition.Summary{Calories: 70, Protein: 6, Carbs: 1, Fat: 5},
		Ingredients: []recipe.IngredientLine{
			{Quantity: 2, Unit: "ea", Name: "egg"},
		},
		Steps: []string{"Write a test."},
	}

	t.Run("CheckExists-False", func(t *testing.T) {
		if store.Exists(rec.Name) {
			t.Errorf("Expected recipe '%s' to not exist, but it does", rec.Name)
		}
	})

	t.Run("Save", func(t *testing.T) {
		if err := store.Save(rec); err != nil {
			t.Fatalf("Failed to save recipe: %v", err)
		}

		filePath := filepath.Join(store.Dir(), "Test Recipe.txt")
		info, err := os.Stat(filePath)
		if os.IsNotExist(err) {
			t.Fatalf("Expected file '%s' to be created, but it wasn't", filePath)
		}
		if info.Mode().Perm() != 0644 {
			t.Errorf("Expected mode 0644, got %v", info.Mode().Perm())
		}
	})

	t.Run("CheckExists-True", func(t *testing.T) {
		if !store.Exists(rec.Name) {
			t.Errorf("Expected recipe '%s' to exist, but it doesn't", rec.Name)
		}
	})

	t.Run("Load", func(t *testing.T) {
		loaded, err := store.Load(rec.Name)
		if err != nil {
			t.Fatalf("Failed to load recipe: %v", err)
		}
		if loaded.Name != rec.Name {
			t.Errorf("Expected name '%s', got '%s'", rec.Name, loaded.Name)
		}
		if loaded.Nutrition != rec.Nutrition {
			t.Errorf("Expected nutrition '%s', got '%s'", rec.Nutrition, loaded.Nutrition)
		}
		if len(loaded.Ingredients) != 1 || loaded.Ingredients[0].Name != "egg" {
			t.Errorf("Expected a single 'egg' ingredient, got %+v", loaded.Ingredients)
		}
	})

	t.Run("Save-Replaces", func(t *testing.T) {
		updated := *rec
		updated.Servings = 1
		updated.Nutrition = nutrition.Summary{Calories: 140, Protein: 12, Carbs: 2, Fat: 10}
		if err := store.Save(&updated); err != nil {
			t.Fatalf("Failed to save recipe: %v", err)
		}
		loaded, err := store.Load(rec.Name)
		if err != nil {
			t.Fatalf("Failed to load recipe: %v", err)
		}
		if loaded.Servings != 1 || loaded.Nutrition.Calories != 140 {
			t.Errorf("Expected the replaced recipe, got %+v", loaded)
		}
	})

	t.Run("Load-NotFound", func(t *testing.T) {
		_, err := store.Load("non-existent-recipe")
		if err == nil {
			t.Fatal("Expected an error for loading non-existent recipe, got nil")
		}
		var ioErr *IOError
		if !errors.As(err, &ioErr) {
			t.Fatalf("Expected *IOError, got %T", err)
		}
		if !IsNotExist(err) {
			t.Errorf("Expected a not-exist error, got %v", err)
		}
	})

	t.Run("Save-InvalidName", func(t *testing.T) {
		bad := *rec
		bad.Name = "../escape"
		if err := store.Save(&bad); !errors.Is(err, recipe.ErrInvalidName) {
			t.Errorf("Expected ErrInvalidName, got %v", err)
		}
	})

	t.Run("Remove", func(t *testing.T) {
		if err := store.Remove(rec.Name); err != nil {
			t.Fatalf("Failed to remove recipe: %v", err)
		}
		if store.Exists(rec.Name) {
			t.Error("Expected recipe to be gone after Remove")
		}
	})
}

func TestRecipeStoreList(t *testing.T) {
	dir := t.TempDir()
	store, err := NewRecipeStore(dir, "txt")
	if err != nil {
		t.Fatalf("Failed to create RecipeStore: %v", err)
	}
	if store.Extension() != ".txt" {
		t.Fatalf("Expected extension '.txt', got '%s'", store.Extension())
	}

	for _, name := range []string{"b.txt", "a.txt", "notes.md", ".hidden.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "dir.txt"), 0755); err != nil {
		t.Fatal(err)
	}

	files, err := store.List()
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(files) != 2 || files[0] != "a.txt" || files[1] != "b.txt" {
		t.Errorf("Expected [a.txt b.txt], got %v", files)
	}
}

func TestLoadFileFormatError(t *testing.T) {
	dir := t.TempDir()
	store, err := NewRecipeStore(dir, "")
	if err != nil {
		t.Fatalf("Failed to create RecipeStore: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Broken.txt"), []byte("Broken\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err = store.LoadFile("Broken.txt")
	var formatErr *recipe.RecipeFormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("Expected *recipe.RecipeFormatError, got %v", err)
	}
	if formatErr.Source != "Broken.txt" || formatErr.Line != 2 {
		t.Errorf("Expected Broken.txt:2, got %s:%d", formatErr.Source, formatErr.Line)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewRecipeStore(dir, "")
	if err != nil {
		t.Fatalf("Failed to create RecipeStore: %v", err)
	}
	rec := &recipe.Recipe{Name: "Toast", Servings: 1, Categories: []recipe.Category{recipe.Breakfast}}
	for i := 0; i < 3; i++ {
		if err := store.Save(rec); err != nil {
			t.Fatalf("Failed to save recipe: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "Toast.txt" {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("Expected only Toast.txt, got %v", names)
	}
}
