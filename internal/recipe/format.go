package recipe

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"mealprep/internal/nutrition"
)

// Fixed lines of the recipe file format.
const (
	IngredientsHeading = "Ingredients"
	IngredientColumns  = "quantity\tunit\tingredient"
	StepsHeading       = "Recipe"
)

// Parse reads a recipe file. The nutrition summary on line 3 is trusted as
// written; use Recompute to check it against a bank. source names the file
// in returned errors.
func Parse(r io.Reader, source string) (*Recipe, error) {
	fail := func(line int, reason string, err error) error {
		return &RecipeFormatError{Source: source, Line: line, Reason: reason, Err: err}
	}

	lines, err := readLines(r)
	if errors.Is(err, bufio.ErrTooLong) {
		return nil, fail(len(lines)+1, fmt.Sprintf("line longer than %d bytes", maxLineBytes), err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}
	// need returns the 1-based line n, or an error if the file ends first.
	need := func(n int, what string) (string, error) {
		if n > len(lines) {
			return "", fail(n, "missing "+what, nil)
		}
		return lines[n-1], nil
	}

	rec := &Recipe{}

	nameLine, err := need(1, "recipe name")
	if err != nil {
		return nil, err
	}
	rec.Name = strings.TrimSpace(strings.TrimPrefix(nameLine, "\ufeff"))
	if rec.Name == "" {
		return nil, fail(1, "recipe name is empty", nil)
	}

	servingsLine, err := need(2, "servings and categories")
	if err != nil {
		return nil, err
	}
	if rec.Servings, rec.Categories, err = parseServingsLine(servingsLine); err != nil {
		return nil, fail(2, "invalid servings and categories", err)
	}

	summaryLine, err := need(3, "nutrition summary")
	if err != nil {
		return nil, err
	}
	if rec.Nutrition, err = nutrition.ParseSummary(summaryLine); err != nil {
		return nil, fail(3, "invalid nutrition summary", err)
	}

	heading, err := need(4, fmt.Sprintf("%q heading", IngredientsHeading))
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(heading), IngredientsHeading) {
		return nil, fail(4, fmt.Sprintf("expected %q, got %q", IngredientsHeading, heading), nil)
	}
	if _, err := need(5, "ingredient column header"); err != nil {
		return nil, err
	}

	delim := -1
	for i := 5; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == StepsHeading {
			delim = i
			break
		}
	}
	if delim < 0 {
		return nil, fail(len(lines)+1, fmt.Sprintf("missing %q delimiter after the ingredient block", StepsHeading), nil)
	}

	for i := 5; i < delim; i++ {
		n := i + 1
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		e, err := ParseEntry(lines[i])
		if err != nil {
			return nil, fail(n, "invalid ingredient line", err)
		}
		q, err := ParseQuantity(e.Quantity)
		if err != nil {
			return nil, fail(n, "invalid ingredient quantity", err)
		}
		if e.Name == "" {
			return nil, fail(n, "ingredient name is empty", nil)
		}
		rec.Ingredients = append(rec.Ingredients, IngredientLine{Quantity: q, Unit: e.Unit, Name: e.Name})
	}

	for i := delim + 1; i < len(lines); i++ {
		n := i + 1
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		num, text, ok := strings.Cut(lines[i], ".")
		if !ok {
			return nil, fail(n, `expected "<number>. <step>"`, nil)
		}
		step, err := strconv.Atoi(strings.TrimSpace(num))
		if err != nil || step <= 0 {
			return nil, fail(n, fmt.Sprintf("invalid step number %q", strings.TrimSpace(num)), nil)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, fail(n, fmt.Sprintf("step %d is empty", step), nil)
		}
		rec.Steps = append(rec.Steps, text)
	}

	return rec, nil
}

const maxLineBytes = 1024 * 1024

// readLines returns the lines read so far along with any error.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	return lines, sc.Err()
}

// parseServingsLine reads "<n> Servings, <Category>, ...". A line holding
// only categories is read as a single serving, and a blank line as a single
// serving with no categories.
func parseServingsLine(line string) (int, []Category, error) {
	if strings.TrimSpace(line) == "" {
		return 1, nil, nil
	}
	parts := strings.Split(line, ",")
	servings := 1
	fields := strings.Fields(parts[0])
	if len(fields) == 2 && (strings.EqualFold(fields[1], "servings") || strings.EqualFold(fields[1], "serving")) {
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return 0, nil, fmt.Errorf("servings %q is not a whole number", fields[0])
		}
		if n <= 0 {
			return 0, nil, &nutrition.InvalidServingsError{Servings: n}
		}
		servings = n
		parts = parts[1:]
	}

	var cats []Category
	seen := make(map[Category]bool)
	for _, p := range parts {
		c, err := ParseCategory(p)
		if err != nil {
			return 0, nil, err
		}
		if !seen[c] {
			seen[c] = true
			cats = append(cats, c)
		}
	}
	return servings, cats, nil
}

// Serialize renders r in the recipe file format. Steps are numbered from 1.
func Serialize(r *Recipe) []byte {
	var buf bytes.Buffer

	buf.WriteString(r.Name)
	buf.WriteByte('\n')

	fmt.Fprintf(&buf, "%d Servings", r.Servings)
	for _, c := range r.Categories {
		buf.WriteString(", ")
		buf.WriteString(string(c))
	}
	buf.WriteByte('\n')

	buf.WriteString(r.Nutrition.String())
	buf.WriteByte('\n')
	buf.WriteString(IngredientsHeading + "\n")
	buf.WriteString(IngredientColumns + "\n")
	for _, line := range r.Ingredients {
		fmt.Fprintf(&buf, "%s\t%s\t%s\n", FormatQuantity(line.Quantity), line.Unit, line.Name)
	}

	buf.WriteString(StepsHeading + "\n")
	for i, s := range r.Steps {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, s)
	}
	return buf.Bytes()
}

// MarshalText implements encoding.TextMarshaler using the recipe file format.
func (r *Recipe) MarshalText() ([]byte, error) {
	return Serialize(r), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using the recipe file
// format.
func (r *Recipe) UnmarshalText(text []byte) error {
	parsed, err := Parse(bytes.NewReader(text), "<text>")
	if err != nil {
		return err
	}
	*r = *parsed
	return nil
}
