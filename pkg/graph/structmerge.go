package graph

import (
	"fmt"

	"github.com/loftline/propgraph/pkg/common"
)

// MergeGraphs combines two independently produced graphs without
// duplicating records. The result starts from base; incoming contributes
// field-wise with fill-empty-only semantics: a non-empty base field is
// never overwritten, only genuinely absent or empty fields are filled.
// Same-typed lists merge by deduplicating on keyField ("id" when empty);
// elements lacking the key field are always appended, since ambiguous
// identity is not resolved automatically.
//
// Neither input is mutated. MergeGraphs is the safe join point for graphs
// built concurrently from independent copies.
func MergeGraphs(base, incoming *common.Node, keyField string) (*common.Node, error) {
	if base == nil || incoming == nil {
		return nil, &common.StructuralError{Reason: "merge requires non-nil graphs"}
	}
	if keyField == "" {
		keyField = "id"
	}

	out := base.Clone()
	if err := fillNode(out, incoming, keyField, 0); err != nil {
		return nil, err
	}
	return out, nil
}

func fillNode(dst, src *common.Node, keyField string, depth int) error {
	if depth > defaultMaxDepth {
		return &common.StructuralError{Reason: fmt.Sprintf("nesting exceeds %d levels", defaultMaxDepth)}
	}

	for _, field := range src.FieldNames() {
		value, _ := src.Get(field)
		existing, present := dst.Get(field)

		if !present || common.IsEmptyValue(existing) {
			dst.Set(field, common.CloneValue(value))
			continue
		}

		if dstNode, ok := common.AsNode(existing); ok {
			if srcNode, ok := common.AsNode(value); ok {
				if err := fillNode(dstNode, srcNode, keyField, depth+1); err != nil {
					return err
				}
			}
			continue
		}

		if dstList, ok := common.AsList(existing); ok {
			if srcList, ok := common.AsList(value); ok {
				merged, err := mergeLists(dstList, srcList, keyField, depth+1)
				if err != nil {
					return err
				}
				dst.Set(field, merged)
			}
			continue
		}

		// Non-empty scalar on the receiving side wins.
	}

	return nil
}

func mergeLists(base, incoming []any, keyField string, depth int) ([]any, error) {
	index := map[string]*common.Node{}
	for _, item := range base {
		if node, ok := common.AsNode(item); ok {
			if key := node.GetString(keyField); key != "" {
				index[key] = node
			}
		}
	}

	out := base
	for _, item := range incoming {
		node, ok := common.AsNode(item)
		if !ok {
			out = append(out, common.CloneValue(item))
			continue
		}

		key := node.GetString(keyField)
		if key == "" {
			out = append(out, node.Clone())
			continue
		}

		if existing, dup := index[key]; dup {
			if err := fillNode(existing, node, keyField, depth); err != nil {
				return nil, err
			}
			continue
		}

		clone := node.Clone()
		index[key] = clone
		out = append(out, clone)
	}

	return out, nil
}
