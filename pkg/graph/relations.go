package graph

import (
	"fmt"
	"strings"

	"github.com/loftline/propgraph/pkg/common"
)

// Relation is one directed reference edge extracted from a graph: an
// entity pointing at another entity through an *Id field.
type Relation struct {
	EntityType     string `json:"entityType"`
	EntityID       string `json:"entityId"`
	ReferencedType string `json:"referencedType"`
	ReferencedID   string `json:"referencedId"`
}

func (r Relation) String() string {
	return fmt.Sprintf("%s with ID '%s' references %s with ID '%s'",
		r.EntityType, r.EntityID, r.ReferencedType, r.ReferencedID)
}

// Analyze extracts the reference edges of a graph, grouped by entity type.
//
// Pass one collects every node carrying an id, typed by the singularized
// nearest enclosing field name ("tenants" -> "tenant"; the document root
// is typed "root"). Pass two emits a Relation for each field ending in
// "Id" with a non-empty value, referencing the type named by the field
// with the suffix stripped.
//
// The edge list does not restructure anything; it is the ground truth an
// external restructuring pass must preserve.
func Analyze(graph *common.Node) (map[string][]Relation, error) {
	if graph == nil {
		return nil, &common.StructuralError{Reason: "cannot analyze a nil graph"}
	}

	var collected []typedNode
	if err := collectTypedNodes(graph, "root", 0, &collected); err != nil {
		return nil, err
	}

	relations := map[string][]Relation{}
	for _, entry := range collected {
		for _, field := range entry.node.FieldNames() {
			if field == "id" || !strings.HasSuffix(field, "Id") {
				continue
			}
			value := entry.node.GetString(field)
			if value == "" {
				continue
			}
			relations[entry.entityType] = append(relations[entry.entityType], Relation{
				EntityType:     entry.entityType,
				EntityID:       entry.node.ID(),
				ReferencedType: strings.TrimSuffix(field, "Id"),
				ReferencedID:   value,
			})
		}
	}

	return relations, nil
}

type typedNode struct {
	entityType string
	node       *common.Node
}

func collectTypedNodes(node *common.Node, enclosingField string, depth int, out *[]typedNode) error {
	if depth > defaultMaxDepth {
		return &common.StructuralError{Reason: fmt.Sprintf("nesting exceeds %d levels", defaultMaxDepth)}
	}

	if node.ID() != "" {
		*out = append(*out, typedNode{entityType: Singularize(enclosingField), node: node})
	}

	for _, field := range node.FieldNames() {
		value, _ := node.Get(field)
		if child, ok := common.AsNode(value); ok {
			if err := collectTypedNodes(child, field, depth+1, out); err != nil {
				return err
			}
			continue
		}
		for _, element := range common.NodeElements(value) {
			if err := collectTypedNodes(element, field, depth+1, out); err != nil {
				return err
			}
		}
	}

	return nil
}
