package graph

import (
	"testing"

	"github.com/loftline/propgraph/pkg/common"
)

func TestCompressRemovesEmptyValues(t *testing.T) {
	graph := mustParse(t, `{"name":"Woodbridge","notes":"","yearBuilt":0,"tags":[],"manager":null,"address":{}}`)

	compressed, err := Compress(graph)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}

	if compressed.Len() != 1 {
		t.Errorf("expected only name to survive, got %v", compressed.FieldNames())
	}
	if compressed.GetString("name") != "Woodbridge" {
		t.Errorf("non-empty field lost")
	}
}

func TestCompressRetainsID(t *testing.T) {
	graph := mustParse(t, `{"id":"p1","notes":""}`)

	compressed, err := Compress(graph)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	if compressed.ID() != "p1" {
		t.Errorf("id must survive compression, got %q", compressed.ID())
	}
	if _, ok := compressed.Get("notes"); ok {
		t.Errorf("empty sibling should be removed")
	}
}

func TestCompressRetainsFalse(t *testing.T) {
	graph := mustParse(t, `{"petFriendly":false,"notes":""}`)

	compressed, err := Compress(graph)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	value, ok := compressed.Get("petFriendly")
	if !ok || value != false {
		t.Errorf("false is a deliberate value and must survive, got %v (present=%v)", value, ok)
	}
}

func TestCompressDropsHollowListElements(t *testing.T) {
	graph := mustParse(t, `{"units":[{"unitNumber":"101"},{"notes":"","status":null}]}`)

	compressed, err := Compress(graph)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}

	unitsValue, _ := compressed.Get("units")
	units := common.NodeElements(unitsValue)
	if len(units) != 1 {
		t.Fatalf("expected hollow unit dropped, got %d units", len(units))
	}
	if units[0].GetString("unitNumber") != "101" {
		t.Errorf("wrong unit survived")
	}
}

func TestCompressFixedPoint(t *testing.T) {
	graph := mustParse(t, `{"id":"p1","name":"Woodbridge","units":[{"id":"u1","notes":""}],"address":{"city":""}}`)

	once, err := Compress(graph)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	twice, err := Compress(once)
	if err != nil {
		t.Fatalf("second Compress failed: %v", err)
	}
	if !once.Equal(twice) {
		t.Errorf("compressing a compressed graph changed it")
	}
}

func TestCompressDoesNotMutateInput(t *testing.T) {
	graph := mustParse(t, `{"name":"Woodbridge","notes":""}`)
	before := graph.Clone()

	if _, err := Compress(graph); err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	if !graph.Equal(before) {
		t.Errorf("input graph was mutated")
	}
}
