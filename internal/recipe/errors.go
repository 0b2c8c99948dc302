package recipe

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidName is returned for recipe names that are empty or cannot be
// used as a file name.
var ErrInvalidName = errors.New("invalid recipe name")

// MalformedQuantityError reports quantity text that is not a positive number.
type MalformedQuantityError struct {
	Text string
}

func (e *MalformedQuantityError) Error() string {
	return fmt.Sprintf("malformed quantity %q: must be a positive number", e.Text)
}

// InvalidCategoryError reports a category outside the fixed enumeration, or
// an empty category list when Name is empty.
type InvalidCategoryError struct {
	Name string
}

func (e *InvalidCategoryError) Error() string {
	if e.Name == "" {
		return "at least one category is required"
	}
	names := make([]string, len(AllCategories))
	for i, c := range AllCategories {
		names[i] = string(c)
	}
	return fmt.Sprintf("invalid category %q: must be one of %s", e.Name, strings.Join(names, ", "))
}

// RecipeFormatError reports a recipe file that does not follow the text
// format. Line is 1-based.
type RecipeFormatError struct {
	Source string
	Line   int
	Reason string
	Err    error
}

func (e *RecipeFormatError) Error() string {
	msg := fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RecipeFormatError) Unwrap() error {
	return e.Err
}
