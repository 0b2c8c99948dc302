// Package nutrition holds the nutrient arithmetic shared by recipes and the
// ingredient bank: summing scaled ingredient facts and dividing them into the
// per-serving summary persisted on line 3 of every recipe file.
package nutrition

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// floorEpsilon absorbs float noise from quantity scaling so that a total such
// as 2.9999999999999996 floors to 3, not 2.
const floorEpsilon = 1e-9

// Facts is unrounded nutrition for some amount of food.
type Facts struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
}

// Add returns the nutrient-wise sum of f and o.
func (f Facts) Add(o Facts) Facts {
	return Facts{
		Calories: f.Calories + o.Calories,
		Protein:  f.Protein + o.Protein,
		Carbs:    f.Carbs + o.Carbs,
		Fat:      f.Fat + o.Fat,
	}
}

// Scale multiplies every nutrient by factor.
func (f Facts) Scale(factor float64) Facts {
	return Facts{
		Calories: f.Calories * factor,
		Protein:  f.Protein * factor,
		Carbs:    f.Carbs * factor,
		Fat:      f.Fat * factor,
	}
}

// Summary is per-serving nutrition as stored in recipe files.
type Summary struct {
	Calories int
	Protein  int
	Carbs    int
	Fat      int
}

// InvalidServingsError is returned when a serving count is not positive.
type InvalidServingsError struct {
	Servings int
}

func (e *InvalidServingsError) Error() string {
	return fmt.Sprintf("invalid servings %d: must be greater than 0", e.Servings)
}

// Aggregate sums each nutrient independently across lines.
func Aggregate(lines ...Facts) Facts {
	var total Facts
	for _, l := range lines {
		total = total.Add(l)
	}
	return total
}

// PerServing floors each nutrient of total divided by servings.
func PerServing(total Facts, servings int) (Summary, error) {
	if servings <= 0 {
		return Summary{}, &InvalidServingsError{Servings: servings}
	}
	s := float64(servings)
	return Summary{
		Calories: floorDiv(total.Calories, s),
		Protein:  floorDiv(total.Protein, s),
		Carbs:    floorDiv(total.Carbs, s),
		Fat:      floorDiv(total.Fat, s),
	}, nil
}

func floorDiv(v, d float64) int {
	return int(math.Floor(v/d + floorEpsilon))
}

// String renders the summary in the recipe file format,
// e.g. "70 cal | 6 P | 1 C | 5 F".
func (s Summary) String() string {
	return fmt.Sprintf("%d cal | %d P | %d C | %d F", s.Calories, s.Protein, s.Carbs, s.Fat)
}

// summaryLabels lists the accepted label spellings per field position.
// The first entry of each is the one String writes.
var summaryLabels = [4][]string{
	{"cal", "cals", "kcal"},
	{"P", "prot", "protein"},
	{"C", "carb", "carbs"},
	{"F", "fat"},
}

// ParseSummary parses a line produced by Summary.String. Every number is
// parsed in full; labels are matched case-insensitively.
func ParseSummary(line string) (Summary, error) {
	parts := strings.Split(line, "|")
	if len(parts) != len(summaryLabels) {
		return Summary{}, fmt.Errorf("expected %d '|'-separated fields, got %d", len(summaryLabels), len(parts))
	}

	var values [4]int
	for i, part := range parts {
		fields := strings.Fields(part)
		if len(fields) != 2 {
			return Summary{}, fmt.Errorf("field %d %q: expected \"<number> <label>\"", i+1, strings.TrimSpace(part))
		}
		if !labelMatches(fields[1], summaryLabels[i]) {
			return Summary{}, fmt.Errorf("field %d: unexpected label %q, want %q", i+1, fields[1], summaryLabels[i][0])
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return Summary{}, fmt.Errorf("field %d: %q is not a whole number", i+1, fields[0])
		}
		if n < 0 {
			return Summary{}, fmt.Errorf("field %d: %d is negative", i+1, n)
		}
		values[i] = n
	}

	return Summary{Calories: values[0], Protein: values[1], Carbs: values[2], Fat: values[3]}, nil
}

func labelMatches(label string, accepted []string) bool {
	for _, a := range accepted {
		if strings.EqualFold(label, a) {
			return true
		}
	}
	return false
}
