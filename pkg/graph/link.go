package graph

import (
	"fmt"

	"github.com/loftline/propgraph/pkg/common"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// LinkIDs returns a copy of graph in which every node has a non-empty id
// and every structural nesting is mirrored by a flat reference field:
//
//   - a node missing an id gets a freshly generated one
//   - a node-valued field f gains (or corrects) a sibling scalar fId equal
//     to the child's id; the nested object is authoritative over the flat
//     reference
//   - a field f holding a sequence of nodes gains (or corrects) a sibling
//     fIds holding the elements' ids in sequence order
//
// The input graph is never mutated, and the operation is idempotent:
// linking an already-linked graph changes nothing.
func LinkIDs(graph *common.Node) (*common.Node, error) {
	if graph == nil {
		return nil, &common.StructuralError{Reason: "cannot link a nil graph"}
	}
	out := graph.Clone()
	if err := linkNode(out, 0); err != nil {
		return nil, err
	}
	return out, nil
}

func linkNode(node *common.Node, depth int) error {
	if depth > defaultMaxDepth {
		return &common.StructuralError{Reason: fmt.Sprintf("nesting exceeds %d levels", defaultMaxDepth)}
	}

	if node.ID() == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate id: %w", err)
		}
		node.Set("id", id)
	}

	for _, field := range node.FieldNames() {
		value, _ := node.Get(field)

		if child, ok := common.AsNode(value); ok {
			if err := linkNode(child, depth+1); err != nil {
				return err
			}
			node.Set(field+"Id", child.ID())
			continue
		}

		if list, ok := common.AsList(value); ok {
			ids := make([]any, 0, len(list))
			for _, item := range list {
				element, ok := common.AsNode(item)
				if !ok {
					continue
				}
				if err := linkNode(element, depth+1); err != nil {
					return err
				}
				ids = append(ids, element.ID())
			}
			if len(ids) > 0 {
				node.Set(field+"Ids", ids)
			}
		}
	}

	return nil
}
