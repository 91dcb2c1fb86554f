package graph

import (
	"errors"
	"testing"

	"github.com/loftline/propgraph/pkg/common"
)

func mustParse(t *testing.T, doc string) *common.Node {
	t.Helper()
	node, err := common.ParseNode([]byte(doc))
	if err != nil {
		t.Fatalf("failed to parse document: %v", err)
	}
	return node
}

func namedNodes(t *testing.T, names ...string) []*common.Node {
	t.Helper()
	nodes := make([]*common.Node, 0, len(names))
	for _, name := range names {
		node := common.NewNode()
		node.Set("name", name)
		nodes = append(nodes, node)
	}
	return nodes
}

func TestResolveExactMatch(t *testing.T) {
	collection := namedNodes(t, "Woodbridge Apartments", "woodbridge apartments", "Maple Court")

	node, err := Resolve(collection, "name", "woodbridge apartments")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if node.GetString("name") != "woodbridge apartments" {
		t.Errorf("exact match should beat case-insensitive, got %q", node.GetString("name"))
	}
}

func TestResolveCaseInsensitiveMatch(t *testing.T) {
	collection := namedNodes(t, "Maple Court", "Woodbridge Apartments")

	node, err := Resolve(collection, "name", "WOODBRIDGE APARTMENTS")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if node.GetString("name") != "Woodbridge Apartments" {
		t.Errorf("expected case-insensitive match, got %q", node.GetString("name"))
	}
}

func TestResolveSuffixMatch(t *testing.T) {
	collection := namedNodes(t, "Woodbridge Unit A", "Woodbridge Unit B")

	node, err := Resolve(collection, "name", "Unit A")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if node.GetString("name") != "Woodbridge Unit A" {
		t.Errorf("expected suffix match on last token, got %q", node.GetString("name"))
	}
}

func TestResolveSuffixPrefersShortest(t *testing.T) {
	collection := namedNodes(t, "Grand old penthouse", "North penthouse")

	node, err := Resolve(collection, "name", "the penthouse")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if node.GetString("name") != "North penthouse" {
		t.Errorf("expected shortest suffix candidate, got %q", node.GetString("name"))
	}
}

func TestResolveNotFound(t *testing.T) {
	collection := namedNodes(t, "Maple Court")

	_, err := Resolve(collection, "name", "Willow Park")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveEmptyCollection(t *testing.T) {
	_, err := Resolve(nil, "name", "anything")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveBlankKeyValue(t *testing.T) {
	collection := namedNodes(t, "Maple Court")

	_, err := Resolve(collection, "name", "   ")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for blank key, got %v", err)
	}
}
