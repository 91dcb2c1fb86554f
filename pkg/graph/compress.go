package graph

import (
	"fmt"

	"github.com/loftline/propgraph/pkg/common"
)

// Compress returns a copy of graph with semantically empty data removed,
// bottom-up: null fields, blank strings, zero numbers, empty sequences and
// empty nodes all disappear. Node elements of a sequence that compress to
// nothing are dropped from the sequence entirely.
//
// The id field is always retained verbatim, even when every sibling is
// stripped: ids are load-bearing for downstream reference integrity.
// Compressing a compressed graph is a no-op.
func Compress(graph *common.Node) (*common.Node, error) {
	if graph == nil {
		return nil, &common.StructuralError{Reason: "cannot compress a nil graph"}
	}
	out := graph.Clone()
	if err := compressNode(out, 0); err != nil {
		return nil, err
	}
	return out, nil
}

func compressNode(node *common.Node, depth int) error {
	if depth > defaultMaxDepth {
		return &common.StructuralError{Reason: fmt.Sprintf("nesting exceeds %d levels", defaultMaxDepth)}
	}

	for _, field := range node.FieldNames() {
		if field == "id" {
			continue
		}
		value, _ := node.Get(field)

		if child, ok := common.AsNode(value); ok {
			if err := compressNode(child, depth+1); err != nil {
				return err
			}
			if child.Len() == 0 {
				node.Delete(field)
			}
			continue
		}

		if list, ok := common.AsList(value); ok {
			kept, err := compressList(list, depth+1)
			if err != nil {
				return err
			}
			if len(kept) == 0 {
				node.Delete(field)
			} else {
				node.Set(field, kept)
			}
			continue
		}

		if common.IsEmptyValue(value) {
			node.Delete(field)
		}
	}

	return nil
}

func compressList(list []any, depth int) ([]any, error) {
	kept := make([]any, 0, len(list))
	for _, item := range list {
		if element, ok := common.AsNode(item); ok {
			if err := compressNode(element, depth); err != nil {
				return nil, err
			}
			if element.Len() > 0 {
				kept = append(kept, element)
			}
			continue
		}
		if !common.IsEmptyValue(item) {
			kept = append(kept, item)
		}
	}
	return kept, nil
}
