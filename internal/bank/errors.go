package bank

import "fmt"

// MalformedRecordError reports a bank row with a missing or invalid field.
type MalformedRecordError struct {
	Line   int
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed bank record on line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("malformed bank record on line %d: %s: %s", e.Line, e.Field, e.Reason)
}

// DuplicateIngredientError reports an ingredient name that appears twice.
type DuplicateIngredientError struct {
	Name      string
	Line      int
	FirstLine int
}

func (e *DuplicateIngredientError) Error() string {
	return fmt.Sprintf("duplicate ingredient %q on line %d (first defined on line %d)", e.Name, e.Line, e.FirstLine)
}

// UnknownIngredientError is returned by Lookup for names not in the bank.
type UnknownIngredientError struct {
	Name string
}

func (e *UnknownIngredientError) Error() string {
	return fmt.Sprintf("unknown ingredient %q", e.Name)
}
