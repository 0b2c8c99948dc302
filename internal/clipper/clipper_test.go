package clipper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mealprep/internal/recipe"
)

const pancakePage = `
<html>
	<head><title>Pancakes | Example Kitchen</title><script>alert('bad');</script></head>
	<body>
		<nav>Home | Recipes</nav>
		<h1>Banana   Pancakes</h1>
		<p>Serves 4</p>
		<div class="ads">Buy 2 cups now!</div>
		<h2>Ingredients</h2>
		<ul>
			<li>2 cups flour, sifted</li>
			<li>1 1/2 cup milk</li>
			<li>½ tsp salt</li>
			<li>2 eggs</li>
			<li>Salt to taste</li>
		</ul>
		<h2>Instructions</h2>
		<ol>
			<li>Mix everything.</li>
			<li>Fry   in butter.</li>
		</ol>
		<script>more_bad_stuff()</script>
		<footer>Copyright 2024</footer>
	</body>
</html>`

func TestClipURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(pancakePage))
	}))
	defer ts.Close()

	c := NewClipper(5 * time.Second)
	d, err := c.ClipURL(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("ClipURL failed: %v", err)
	}

	if d.Name != "Banana Pancakes" {
		t.Errorf("Expected name 'Banana Pancakes', got '%s'", d.Name)
	}
	if d.Servings != 4 {
		t.Errorf("Expected 4 servings, got %d", d.Servings)
	}
	if d.Source != ts.URL {
		t.Errorf("Expected source %s, got %s", ts.URL, d.Source)
	}

	want := []recipe.Entry{
		{Quantity: "2", Unit: "cups", Name: "flour"},
		{Quantity: "1 1/2", Unit: "cup", Name: "milk"},
		{Quantity: "1/2", Unit: "tsp", Name: "salt"},
		{Quantity: "2", Unit: "ea", Name: "eggs"},
	}
	if len(d.Entries) != len(want) {
		t.Fatalf("Expected %d entries, got %d: %+v", len(want), len(d.Entries), d.Entries)
	}
	for i := range want {
		if d.Entries[i] != want[i] {
			t.Errorf("Entry %d: expected %+v, got %+v", i, want[i], d.Entries[i])
		}
	}

	if len(d.Skipped) != 1 || d.Skipped[0] != "Salt to taste" {
		t.Errorf("Expected 'Salt to taste' to be skipped, got %v", d.Skipped)
	}
	if len(d.Steps) != 2 || d.Steps[1] != "Fry in butter." {
		t.Errorf("Unexpected steps %v", d.Steps)
	}
}

func TestClipURL_BadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := NewClipper(0).ClipURL(context.Background(), ts.URL)
	if err == nil || !strings.Contains(err.Error(), "status 404") {
		t.Errorf("Expected a status error, got %v", err)
	}
}

func TestClipFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pancakes.html")
	if err := os.WriteFile(path, []byte(pancakePage), 0644); err != nil {
		t.Fatal(err)
	}

	d, err := NewClipper(0).Clip(context.Background(), path)
	if err != nil {
		t.Fatalf("Clip failed: %v", err)
	}
	if d.Name != "Banana Pancakes" || len(d.Entries) != 4 {
		t.Errorf("Unexpected draft %+v", d)
	}

	if _, err := ClipFile(filepath.Join(t.TempDir(), "missing.html")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestExtract_Fallbacks(t *testing.T) {
	t.Run("TitleAndItemprop", func(t *testing.T) {
		page := `<html><head><title>Toast</title></head><body>
			<div><span itemprop="recipeIngredient">2 slices bread</span></div>
			<div itemprop="recipeInstructions"><p>Toast the bread.</p></div>
		</body></html>`
		d, err := Extract(strings.NewReader(page), "toast.html")
		if err != nil {
			t.Fatalf("Extract failed: %v", err)
		}
		if d.Name != "Toast" {
			t.Errorf("Expected title fallback, got '%s'", d.Name)
		}
		if len(d.Entries) != 1 || d.Entries[0].Name != "bread" {
			t.Errorf("Unexpected entries %+v", d.Entries)
		}
		if len(d.Steps) != 1 || d.Steps[0] != "Toast the bread." {
			t.Errorf("Unexpected steps %v", d.Steps)
		}
		if d.Servings != 0 {
			t.Errorf("Expected unknown servings, got %d", d.Servings)
		}
	})

	t.Run("TitleMadeFileSafe", func(t *testing.T) {
		page := `<html><body><h1>..Salt/Pepper Eggs</h1><h2>Ingredients</h2><ul><li>2 ea egg</li></ul></body></html>`
		d, err := Extract(strings.NewReader(page), "x")
		if err != nil {
			t.Fatalf("Extract failed: %v", err)
		}
		if d.Name != "Salt-Pepper Eggs" {
			t.Errorf("Expected 'Salt-Pepper Eggs', got '%s'", d.Name)
		}
		if err := recipe.ValidateName(d.Name); err != nil {
			t.Errorf("Expected a valid recipe name, got %v", err)
		}
	})

	t.Run("NoIngredients", func(t *testing.T) {
		_, err := Extract(strings.NewReader("<html><body><h1>Empty</h1></body></html>"), "x")
		if err == nil {
			t.Error("Expected an error for a page without ingredients")
		}
	})

	t.Run("NoTitle", func(t *testing.T) {
		_, err := Extract(strings.NewReader("<html><body><ul><li>1 cup rice</li></ul></body></html>"), "x")
		if err == nil {
			t.Error("Expected an error for a page without a title")
		}
	})
}

func TestParseIngredient(t *testing.T) {
	tests := []struct {
		in   string
		want recipe.Entry
		ok   bool
	}{
		{"3 tbsp Olive Oil (extra virgin)", recipe.Entry{Quantity: "3", Unit: "tbsp", Name: "olive oil"}, true},
		{"1½ cup oats", recipe.Entry{Quantity: "1 1/2", Unit: "cup", Name: "oats"}, true},
		{"0.5 lb ground beef", recipe.Entry{Quantity: "0.5", Unit: "lb", Name: "ground beef"}, true},
		{"a pinch of salt", recipe.Entry{}, false},
		{"4", recipe.Entry{}, false},
		{"0 cups water", recipe.Entry{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseIngredient(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseIngredient(%q) = %+v, %v; want %+v, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}
