// Package bank loads the reference ingredient table and answers point
// lookups against it. Every recipe's nutrition is derived from these rows.
package bank

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"mealprep/internal/nutrition"
)

// Column names of the bank table header.
const (
	ColQuantity   = "quantity"
	ColUnit       = "unit"
	ColIngredient = "ingredient"
	ColCalories   = "cal"
	ColProtein    = "prot"
	ColCarbs      = "carb"
	ColFat        = "fat"
	ColCategory   = "itype"
)

var requiredColumns = []string{
	ColQuantity, ColUnit, ColIngredient, ColCalories, ColProtein, ColCarbs, ColFat, ColCategory,
}

// IngredientRecord is one row of the bank: nutrition for ReferenceQuantity
// of the ingredient, measured in ReferenceUnit.
type IngredientRecord struct {
	Name              string
	ReferenceQuantity float64
	ReferenceUnit     string
	Calories          float64
	Protein           float64
	Carbs             float64
	Fat               float64
	Category          string
}

// Facts returns the record's nutrition for its reference quantity.
func (r IngredientRecord) Facts() nutrition.Facts {
	return nutrition.Facts{
		Calories: r.Calories,
		Protein:  r.Protein,
		Carbs:    r.Carbs,
		Fat:      r.Fat,
	}
}

// Bank is the loaded reference table keyed by normalized ingredient name.
type Bank struct {
	records map[string]IngredientRecord
}

// New builds a bank from records, applying the same checks as Load.
// Line numbers in returned errors are 1-based record positions.
func New(records ...IngredientRecord) (*Bank, error) {
	b := &Bank{records: make(map[string]IngredientRecord, len(records))}
	firstSeen := make(map[string]int, len(records))
	for i, rec := range records {
		line := i + 1
		if strings.TrimSpace(rec.Name) == "" {
			return nil, &MalformedRecordError{Line: line, Field: ColIngredient, Reason: "missing value"}
		}
		for _, f := range []struct {
			col string
			v   float64
		}{
			{ColQuantity, rec.ReferenceQuantity},
			{ColCalories, rec.Calories},
			{ColProtein, rec.Protein},
			{ColCarbs, rec.Carbs},
			{ColFat, rec.Fat},
		} {
			if reason := checkValue(f.v); reason != "" {
				return nil, &MalformedRecordError{Line: line, Field: f.col, Reason: reason}
			}
		}
		if rec.ReferenceQuantity == 0 {
			return nil, &MalformedRecordError{Line: line, Field: ColQuantity, Reason: "must be greater than 0"}
		}
		if err := b.add(rec, line, firstSeen); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// LoadFile opens the bank table at path and loads it.
func LoadFile(path string) (*Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ingredient bank: %w", err)
	}
	defer f.Close()

	b, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load ingredient bank %s: %w", path, err)
	}
	return b, nil
}

// Load reads a CSV bank table. The first row is a header naming the
// columns; order is free and unknown columns are ignored. Loading stops at
// the first bad row.
func Load(r io.Reader) (*Bank, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &MalformedRecordError{Line: 1, Reason: "missing header row"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, &MalformedRecordError{Line: 1, Field: col, Reason: "missing column"}
		}
	}

	b := &Bank{records: make(map[string]IngredientRecord)}
	firstSeen := make(map[string]int)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if isBlank(row) {
			continue
		}

		rec, err := parseRow(row, index, line)
		if err != nil {
			return nil, err
		}
		if err := b.add(rec, line, firstSeen); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *Bank) add(rec IngredientRecord, line int, firstSeen map[string]int) error {
	key := Normalize(rec.Name)
	if first, ok := firstSeen[key]; ok {
		return &DuplicateIngredientError{Name: rec.Name, Line: line, FirstLine: first}
	}
	firstSeen[key] = line
	b.records[key] = rec
	return nil
}

func parseRow(row []string, index map[string]int, line int) (IngredientRecord, error) {
	field := func(col string) (string, error) {
		i := index[col]
		if i >= len(row) || strings.TrimSpace(row[i]) == "" {
			return "", &MalformedRecordError{Line: line, Field: col, Reason: "missing value"}
		}
		return strings.TrimSpace(row[i]), nil
	}
	number := func(col string) (float64, error) {
		s, err := field(col)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, &MalformedRecordError{Line: line, Field: col, Reason: fmt.Sprintf("%q is not a number", s)}
		}
		if reason := checkValue(v); reason != "" {
			return 0, &MalformedRecordError{Line: line, Field: col, Reason: reason}
		}
		return v, nil
	}

	var rec IngredientRecord
	var err error
	if rec.Name, err = field(ColIngredient); err != nil {
		return rec, err
	}
	if rec.ReferenceQuantity, err = number(ColQuantity); err != nil {
		return rec, err
	}
	if rec.ReferenceQuantity == 0 {
		return rec, &MalformedRecordError{Line: line, Field: ColQuantity, Reason: "must be greater than 0"}
	}
	if rec.ReferenceUnit, err = field(ColUnit); err != nil {
		return rec, err
	}
	if rec.Calories, err = number(ColCalories); err != nil {
		return rec, err
	}
	if rec.Protein, err = number(ColProtein); err != nil {
		return rec, err
	}
	if rec.Carbs, err = number(ColCarbs); err != nil {
		return rec, err
	}
	if rec.Fat, err = number(ColFat); err != nil {
		return rec, err
	}
	if rec.Category, err = field(ColCategory); err != nil {
		return rec, err
	}
	return rec, nil
}

// checkValue returns why v cannot be a bank value, or "" if it can.
func checkValue(v float64) string {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return "must be a finite number"
	case v < 0:
		return "must not be negative"
	}
	return ""
}

func isBlank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Lookup returns the record for name, or an *UnknownIngredientError.
func (b *Bank) Lookup(name string) (IngredientRecord, error) {
	rec, ok := b.records[Normalize(name)]
	if !ok {
		return IngredientRecord{}, &UnknownIngredientError{Name: name}
	}
	return rec, nil
}

// Len returns the number of ingredients in the bank.
func (b *Bank) Len() int {
	return len(b.records)
}

// Names returns every ingredient name, sorted.
func (b *Bank) Names() []string {
	out := make([]string, 0, len(b.records))
	for _, rec := range b.records {
		out = append(out, rec.Name)
	}
	sort.Strings(out)
	return out
}

// Categories returns the distinct itype values, sorted.
func (b *Bank) Categories() []string {
	seen := make(map[string]struct{})
	for _, rec := range b.records {
		seen[rec.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Normalize is the lookup key for an ingredient name: trimmed, lower-cased,
// inner whitespace collapsed to single spaces.
func Normalize(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
