package score

import "fmt"

// DuplicateNameError is returned when a dimension is defined twice.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("score %s is already defined, use 'lem score update' to change it", e.Name)
}

// UnknownDimensionError is returned for a dimension that was never defined.
type UnknownDimensionError struct {
	Name string
	// Suggestion is the closest defined name, if any looks like a typo.
	Suggestion string
}

func (e *UnknownDimensionError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("score %s is not defined, did you mean %s?", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("score %s is not defined, run 'lem score define' first", e.Name)
}

// ValidationError is returned when a value does not match its dimension.
type ValidationError struct {
	Name    string
	Value   string
	Pattern string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("value %q is not valid for score %s, expected to match %s", e.Value, e.Name, e.Pattern)
}
