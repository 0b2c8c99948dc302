package shopping

// Item is the total amount of one ingredient in one unit.
type Item struct {
	Name     string
	Unit     string
	Quantity float64
	Category string
}

// Group is the items sharing a bank category.
type Group struct {
	Category string
	Items    []Item
}

// ShoppingList represents the ingredients needed for a set of recipes.
type ShoppingList struct {
	Recipes []string
	Scale   float64
	Groups  []Group
}

// Len returns the number of items across all groups.
func (l *ShoppingList) Len() int {
	n := 0
	for _, g := range l.Groups {
		n += len(g.Items)
	}
	return n
}
