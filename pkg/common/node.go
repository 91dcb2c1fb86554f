package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Node is the generic representation of an entity in a property graph.
// It is an ordered mapping from field name to value, where a value is one of:
//
//   - a scalar: string, float64, bool, or nil
//   - a nested *Node
//   - a []any sequence whose elements may themselves be *Node values
//
// No entity type is fixed at this level. The engine operates purely on
// structural conventions: a field named "id" is the entity's identifier,
// a field named "<x>Id" or "<x>Ids" is a back-reference to a sibling or
// child entity, and plural field names group homogeneous entities.
//
// Field order is preserved through a JSON decode/encode round trip.
type Node struct {
	fields *orderedmap.OrderedMap[string, any]
}

// NewNode creates an empty Node.
func NewNode() *Node {
	return &Node{fields: orderedmap.New[string, any]()}
}

// Get returns the value stored under field and whether the field exists.
func (n *Node) Get(field string) (any, bool) {
	return n.fields.Get(field)
}

// Set stores value under field, appending the field if it is new and
// keeping its position if it already exists.
func (n *Node) Set(field string, value any) {
	n.fields.Set(field, value)
}

// Delete removes field from the node. It reports whether the field existed.
func (n *Node) Delete(field string) bool {
	_, existed := n.fields.Delete(field)
	return existed
}

// Len returns the number of fields.
func (n *Node) Len() int {
	return n.fields.Len()
}

// FieldNames returns a snapshot of the field names in order. The snapshot
// stays valid while fields are added or removed during iteration.
func (n *Node) FieldNames() []string {
	names := make([]string, 0, n.fields.Len())
	for pair := n.fields.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// GetString returns the string stored under field, or "" if the field is
// absent or not a string.
func (n *Node) GetString(field string) string {
	v, ok := n.fields.Get(field)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// ID returns the node's identifier, or "" if it has none.
func (n *Node) ID() string {
	return n.GetString("id")
}

// Clone returns a deep copy of the node. Nested nodes and sequences are
// copied recursively; scalars are copied by value.
func (n *Node) Clone() *Node {
	out := NewNode()
	for pair := n.fields.Oldest(); pair != nil; pair = pair.Next() {
		out.fields.Set(pair.Key, CloneValue(pair.Value))
	}
	return out
}

// CloneValue deep-copies a single Node field value.
func CloneValue(v any) any {
	switch val := v.(type) {
	case *Node:
		if val == nil {
			return (*Node)(nil)
		}
		return val.Clone()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = CloneValue(item)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON encodes the node as a JSON object in field order.
func (n *Node) MarshalJSON() ([]byte, error) {
	return n.fields.MarshalJSON()
}

// UnmarshalJSON decodes a JSON object into the node, preserving field
// order. Nested objects become *Node values and arrays become []any.
//
// The decode walks the token stream itself. The ordered map's own
// UnmarshalJSON decodes nested objects to map[string]interface{}, which
// would lose field order and hide nested entities from the engine.
func (n *Node) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected a JSON object, got %v", tok)
	}
	node, err := decodeObject(dec)
	if err != nil {
		return err
	}
	n.fields = node.fields
	return nil
}

// decodeObject consumes the fields of an object whose opening brace has
// already been read, including the closing brace.
func decodeObject(dec *json.Decoder) (*Node, error) {
	node := NewNode()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected an object key, got %v", tok)
		}
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		node.fields.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return node, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); ok {
		switch delim {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
		return nil, fmt.Errorf("unexpected delimiter %v", delim)
	}
	return tok, nil
}

func decodeArray(dec *json.Decoder) ([]any, error) {
	out := []any{}
	for dec.More() {
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseNode decodes a UTF-8 JSON document into a Node.
func ParseNode(data []byte) (*Node, error) {
	node := NewNode()
	if err := json.Unmarshal(data, node); err != nil {
		return nil, fmt.Errorf("failed to parse graph document: %w", err)
	}
	return node, nil
}

// AsNode returns v as a *Node if it is a non-nil nested node.
func AsNode(v any) (*Node, bool) {
	node, ok := v.(*Node)
	if !ok || node == nil {
		return nil, false
	}
	return node, true
}

// AsList returns v as a []any sequence.
func AsList(v any) ([]any, bool) {
	list, ok := v.([]any)
	return list, ok
}

// NodeElements returns the *Node elements of a sequence value in order.
// Non-node elements are skipped.
func NodeElements(v any) []*Node {
	list, ok := AsList(v)
	if !ok {
		return nil
	}
	nodes := make([]*Node, 0, len(list))
	for _, item := range list {
		if node, ok := AsNode(item); ok {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

// IsEmptyValue reports whether v carries no information: nil, a blank or
// whitespace-only string, a zero number, an empty sequence, or an empty
// node. A false boolean is not empty; it is a deliberate value.
func IsEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case float64:
		return val == 0
	case int:
		return val == 0
	case int64:
		return val == 0
	case []any:
		return len(val) == 0
	case *Node:
		return val == nil || val.Len() == 0
	default:
		return false
	}
}

// Equal reports whether two nodes are structurally equal: same fields in
// the same order with recursively equal values.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Len() != other.Len() {
		return false
	}
	a := n.fields.Oldest()
	b := other.fields.Oldest()
	for a != nil && b != nil {
		if a.Key != b.Key || !valueEqual(a.Value, b.Value) {
			return false
		}
		a = a.Next()
		b = b.Next()
	}
	return a == nil && b == nil
}

func valueEqual(a, b any) bool {
	switch av := a.(type) {
	case *Node:
		bv, ok := b.(*Node)
		return ok && av.Equal(bv)
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
