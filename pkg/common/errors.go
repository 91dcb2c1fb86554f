package common

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that no entity matched an identifier lookup. It is
// recoverable: cascade callers interpret it as "must create".
var ErrNotFound = errors.New("no matching entity")

// CascadeAbortError reports that an update-or-create cascade could not
// proceed because an identifying value required to create an ancestor
// entity was empty. Nothing at or below the failing level was mutated.
type CascadeAbortError struct {
	Collection string
	KeyField   string
}

func (e *CascadeAbortError) Error() string {
	return fmt.Sprintf("cascade aborted at %q: identifying field %q is empty", e.Collection, e.KeyField)
}

// StructuralError reports malformed input: an unexpected value where a
// node or sequence was required, or nesting beyond the recursion limit.
// It is fatal for the single operation but never corrupts the input graph.
type StructuralError struct {
	Field  string
	Reason string
}

func (e *StructuralError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("structural error: %s", e.Reason)
	}
	return fmt.Sprintf("structural error at %q: %s", e.Field, e.Reason)
}

// Warning is a non-fatal, data-level problem surfaced alongside a result,
// such as a numeric field that could not be coerced. Callers decide
// whether to log it or show it to the end user.
type Warning struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Field, w.Message)
}
