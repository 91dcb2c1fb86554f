package common

import (
	"testing"
)

func TestParseNodePreservesFieldOrder(t *testing.T) {
	doc := `{"zeta":"1","alpha":"2","nested":{"b":"3","a":"4"},"list":[{"id":"x"}]}`

	node, err := ParseNode([]byte(doc))
	if err != nil {
		t.Fatalf("ParseNode failed: %v", err)
	}

	names := node.FieldNames()
	want := []string{"zeta", "alpha", "nested", "list"}
	if len(names) != len(want) {
		t.Fatalf("expected %d fields, got %d", len(want), len(names))
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("field %d: expected %q, got %q", i, name, names[i])
		}
	}

	out, err := node.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if string(out) != doc {
		t.Errorf("round trip changed document:\n in: %s\nout: %s", doc, out)
	}
}

func TestParseNodeNestedTypes(t *testing.T) {
	node, err := ParseNode([]byte(`{"nested":{"a":1},"list":[{"id":"x"},"plain",2]}`))
	if err != nil {
		t.Fatalf("ParseNode failed: %v", err)
	}

	nested, _ := node.Get("nested")
	if _, ok := AsNode(nested); !ok {
		t.Errorf("nested object did not decode to *Node: %T", nested)
	}

	listValue, _ := node.Get("list")
	list, ok := AsList(listValue)
	if !ok {
		t.Fatalf("array did not decode to []any: %T", listValue)
	}
	if _, ok := AsNode(list[0]); !ok {
		t.Errorf("array element did not decode to *Node: %T", list[0])
	}

	elements := NodeElements(listValue)
	if len(elements) != 1 {
		t.Errorf("expected 1 node element, got %d", len(elements))
	}
}

func TestCloneIsIndependent(t *testing.T) {
	node, err := ParseNode([]byte(`{"id":"p1","nested":{"a":"x"},"list":[{"id":"c1"}]}`))
	if err != nil {
		t.Fatalf("ParseNode failed: %v", err)
	}

	clone := node.Clone()
	if !node.Equal(clone) {
		t.Fatalf("clone is not equal to original")
	}

	nested, _ := clone.Get("nested")
	nestedNode, _ := AsNode(nested)
	nestedNode.Set("a", "changed")

	listValue, _ := clone.Get("list")
	NodeElements(listValue)[0].Set("id", "changed")

	origNested, _ := node.Get("nested")
	origNode, _ := AsNode(origNested)
	if origNode.GetString("a") != "x" {
		t.Errorf("mutating clone changed original nested node")
	}
	origList, _ := node.Get("list")
	if NodeElements(origList)[0].ID() != "c1" {
		t.Errorf("mutating clone changed original list element")
	}
}

func TestIsEmptyValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
		empty bool
	}{
		{"nil", nil, true},
		{"blank string", "", true},
		{"whitespace string", "  \t ", true},
		{"zero number", float64(0), true},
		{"empty list", []any{}, true},
		{"empty node", NewNode(), true},
		{"false boolean", false, false},
		{"true boolean", true, false},
		{"non-zero number", float64(12), false},
		{"text", "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEmptyValue(tt.value); got != tt.empty {
				t.Errorf("IsEmptyValue(%v) = %v, expected %v", tt.value, got, tt.empty)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	a, _ := ParseNode([]byte(`{"id":"1","name":"a"}`))
	b, _ := ParseNode([]byte(`{"id":"1","name":"a"}`))
	c, _ := ParseNode([]byte(`{"name":"a","id":"1"}`))
	d, _ := ParseNode([]byte(`{"id":"1","name":"b"}`))

	if !a.Equal(b) {
		t.Errorf("identical nodes reported unequal")
	}
	if a.Equal(c) {
		t.Errorf("field order should matter for equality")
	}
	if a.Equal(d) {
		t.Errorf("different values reported equal")
	}
}
