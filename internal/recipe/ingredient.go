package recipe

import (
	"fmt"
	"math"
	"strings"

	"mealprep/internal/bank"
	"mealprep/internal/nutrition"
)

// Entry is an ingredient as typed by an author, before its quantity is
// parsed or its name checked against the bank.
type Entry struct {
	Quantity string
	Unit     string
	Name     string
}

// ParseEntry splits a "quantity\tunit\tname" line.
func ParseEntry(line string) (Entry, error) {
	parts := strings.Split(line, "\t")
	if len(parts) != 3 {
		return Entry{}, fmt.Errorf("expected 3 tab-separated fields (quantity, unit, ingredient), got %d", len(parts))
	}
	return Entry{
		Quantity: strings.TrimSpace(parts[0]),
		Unit:     strings.TrimSpace(parts[1]),
		Name:     strings.TrimSpace(parts[2]),
	}, nil
}

// IngredientLine is one ingredient usage in a recipe. Resolved holds the
// scaled nutrition captured when the line was authored; it is nil for lines
// read back from a file.
type IngredientLine struct {
	Quantity float64
	Unit     string
	Name     string
	Resolved *nutrition.Facts
}

// Resolve scales the bank's nutrition for name to quantity. The unit is not
// converted: quantity is assumed to be in the bank's reference unit.
func Resolve(quantity float64, unit, name string, b *bank.Bank) (nutrition.Facts, error) {
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity <= 0 {
		return nutrition.Facts{}, &MalformedQuantityError{Text: FormatQuantity(quantity)}
	}
	rec, err := b.Lookup(name)
	if err != nil {
		return nutrition.Facts{}, err
	}
	ratio := quantity / rec.ReferenceQuantity
	return rec.Facts().Scale(ratio), nil
}

// NewIngredientLine parses and resolves an authored entry.
func NewIngredientLine(e Entry, b *bank.Bank) (IngredientLine, error) {
	q, err := ParseQuantity(e.Quantity)
	if err != nil {
		return IngredientLine{}, err
	}
	unit := strings.TrimSpace(e.Unit)
	name := strings.TrimSpace(e.Name)
	if strings.ContainsAny(unit+name, "\t\r\n") {
		return IngredientLine{}, fmt.Errorf("ingredient %q: unit and name must not contain tabs or line breaks", name)
	}

	facts, err := Resolve(q, unit, name, b)
	if err != nil {
		return IngredientLine{}, err
	}
	return IngredientLine{Quantity: q, Unit: unit, Name: name, Resolved: &facts}, nil
}
