// Package shopping turns a selection of recipes into a consolidated list of
// ingredients to buy.
package shopping

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"mealprep/internal/bank"
	"mealprep/internal/recipe"
)

// Build sums ingredient quantities across recipes, multiplied by scale.
// Lines are merged when the normalized ingredient name and the unit match;
// the same ingredient in two units stays as two items. Items are grouped by
// the bank's category for the ingredient.
func Build(recipes []*recipe.Recipe, scale float64, b *bank.Bank) (*ShoppingList, error) {
	if !(scale > 0) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("scale must be a positive number, got %v", scale)
	}

	type key struct{ name, unit string }
	items := make(map[key]*Item)
	list := &ShoppingList{Scale: scale}

	for _, r := range recipes {
		list.Recipes = append(list.Recipes, r.Name)
		for _, line := range r.Ingredients {
			rec, err := b.Lookup(line.Name)
			if err != nil {
				return nil, fmt.Errorf("failed to build shopping list for %q: %w", r.Name, err)
			}
			k := key{name: bank.Normalize(line.Name), unit: strings.ToLower(line.Unit)}
			it, ok := items[k]
			if !ok {
				it = &Item{Name: rec.Name, Unit: line.Unit, Category: rec.Category}
				items[k] = it
			}
			it.Quantity += line.Quantity * scale
		}
	}

	byCategory := make(map[string][]Item)
	for _, it := range items {
		byCategory[it.Category] = append(byCategory[it.Category], *it)
	}
	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	for _, c := range categories {
		group := byCategory[c]
		sort.Slice(group, func(i, j int) bool {
			if group[i].Name != group[j].Name {
				return group[i].Name < group[j].Name
			}
			return group[i].Unit < group[j].Unit
		})
		list.Groups = append(list.Groups, Group{Category: c, Items: group})
	}
	return list, nil
}

// String renders the list grouped by category, one item per line.
func (l *ShoppingList) String() string {
	var sb strings.Builder
	for i, g := range l.Groups {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s:\n", g.Category)
		for _, it := range g.Items {
			fmt.Fprintf(&sb, "  %s\t%s\t%s\n", recipe.FormatQuantity(it.Quantity), it.Unit, it.Name)
		}
	}
	return sb.String()
}
