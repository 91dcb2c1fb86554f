package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/loftline/propgraph/pkg/common"
)

// defaultMaxDepth bounds recursion for every traversal in this package.
// Reference cycles cannot occur in well-formed graphs (references are id
// strings, not pointers), so hitting the limit means malformed input.
const defaultMaxDepth = 64

// FieldHandler fully owns the mutation of a single patch field. Handlers
// are consulted before any other merge rule and only at the top level of
// a patch.
type FieldHandler func(target *common.Node, field string, value any) []common.Warning

// MergeOptions configures a recursive merge.
type MergeOptions struct {
	// Handlers maps field names to special-case mutations, e.g. appending
	// to a photo list instead of replacing it.
	Handlers map[string]FieldHandler
	// NumericFields names fields whose values are coerced to float64. A
	// value that fails coercion is kept as-is and surfaced as a warning.
	NumericFields map[string]bool
	// MaxDepth overrides the recursion limit when positive.
	MaxDepth int
}

func (o MergeOptions) maxDepth() int {
	if o.MaxDepth > 0 {
		return o.MaxDepth
	}
	return defaultMaxDepth
}

// Merge applies a partial-update document onto target, in place. For every
// patch field: a registered handler wins; a nested patch node merges
// recursively into the existing value, materializing a fresh node when the
// target field is absent or null; anything else overwrites, last write
// wins.
//
// The merge is destructive and non-transactional: a failure mid-merge
// leaves target partially mutated. Callers needing atomicity operate on a
// clone.
func Merge(target, patch *common.Node, opts MergeOptions) ([]common.Warning, error) {
	if target == nil || patch == nil {
		return nil, &common.StructuralError{Reason: "merge requires non-nil target and patch"}
	}
	return mergeNode(target, patch, opts, opts.Handlers, 0)
}

func mergeNode(
	target, patch *common.Node,
	opts MergeOptions,
	handlers map[string]FieldHandler,
	depth int,
) ([]common.Warning, error) {
	if depth > opts.maxDepth() {
		return nil, &common.StructuralError{Reason: fmt.Sprintf("nesting exceeds %d levels", opts.maxDepth())}
	}

	var warnings []common.Warning
	for _, field := range patch.FieldNames() {
		value, _ := patch.Get(field)

		if handler, ok := handlers[field]; ok {
			warnings = append(warnings, handler(target, field, value)...)
			continue
		}

		if patchNode, ok := common.AsNode(value); ok {
			existing, present := target.Get(field)
			if existingNode, ok := common.AsNode(existing); present && ok {
				w, err := mergeNode(existingNode, patchNode, opts, nil, depth+1)
				warnings = append(warnings, w...)
				if err != nil {
					return warnings, err
				}
				continue
			}

			fresh := common.NewNode()
			w, err := mergeNode(fresh, patchNode, opts, nil, depth+1)
			warnings = append(warnings, w...)
			if err != nil {
				return warnings, err
			}
			target.Set(field, fresh)
			continue
		}

		warnings = append(warnings, assignScalar(target, field, value, opts)...)
	}

	return warnings, nil
}

func assignScalar(target *common.Node, field string, value any, opts MergeOptions) []common.Warning {
	if opts.NumericFields[field] && value != nil {
		coerced, ok := coerceNumeric(value)
		if ok {
			target.Set(field, coerced)
			return nil
		}
		target.Set(field, common.CloneValue(value))
		return []common.Warning{{
			Field:   field,
			Message: fmt.Sprintf("expected a numeric value, kept %v as-is", value),
		}}
	}

	target.Set(field, common.CloneValue(value))
	return nil
}

func coerceNumeric(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// AppendListHandler returns a FieldHandler with list-append semantics: the
// patch value is a sequence whose elements are appended to the existing
// list instead of replacing it. Used for accumulating fields like photos
// and documents.
func AppendListHandler() FieldHandler {
	return func(target *common.Node, field string, value any) []common.Warning {
		items, ok := common.AsList(value)
		if !ok {
			if value == nil {
				return nil
			}
			items = []any{value}
		}

		existing, _ := target.Get(field)
		list, _ := common.AsList(existing)
		for _, item := range items {
			list = append(list, common.CloneValue(item))
		}
		target.Set(field, list)
		return nil
	}
}
