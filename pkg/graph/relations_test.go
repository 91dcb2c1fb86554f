package graph

import (
	"testing"
)

func TestAnalyzeExtractsReferenceEdges(t *testing.T) {
	graph := mustParse(t, `{
		"id": "root",
		"property": {"id": "p1", "name": "Woodbridge"},
		"units": [
			{"id": "u1", "unitNumber": "101", "propertyId": "p1"}
		],
		"leases": [
			{"id": "l1", "unitId": "u1", "tenantId": "t1", "propertyId": "p1"}
		]
	}`)

	relations, err := Analyze(graph)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	unitEdges := relations["unit"]
	if len(unitEdges) != 1 {
		t.Fatalf("expected 1 unit edge, got %d", len(unitEdges))
	}
	edge := unitEdges[0]
	if edge.EntityID != "u1" || edge.ReferencedType != "property" || edge.ReferencedID != "p1" {
		t.Errorf("unexpected unit edge: %+v", edge)
	}

	leaseEdges := relations["lease"]
	if len(leaseEdges) != 3 {
		t.Fatalf("expected 3 lease edges, got %d", len(leaseEdges))
	}
}

func TestAnalyzeRootType(t *testing.T) {
	graph := mustParse(t, `{"id":"root","propertyId":"p1"}`)

	relations, err := Analyze(graph)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(relations["root"]) != 1 {
		t.Fatalf("expected the document root to be typed root, got %v", relations)
	}
}

func TestAnalyzeSkipsEmptyAndIDFields(t *testing.T) {
	graph := mustParse(t, `{"units":[{"id":"u1","propertyId":"","tenantId":"t1"}]}`)

	relations, err := Analyze(graph)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	edges := relations["unit"]
	if len(edges) != 1 {
		t.Fatalf("expected only the non-empty reference, got %v", edges)
	}
	if edges[0].ReferencedType != "tenant" {
		t.Errorf("unexpected edge: %+v", edges[0])
	}
}

func TestAnalyzeSkipsNodesWithoutID(t *testing.T) {
	graph := mustParse(t, `{"units":[{"unitNumber":"101","propertyId":"p1"}]}`)

	relations, err := Analyze(graph)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(relations) != 0 {
		t.Errorf("nodes without an id should not produce edges, got %v", relations)
	}
}

func TestRelationString(t *testing.T) {
	r := Relation{EntityType: "unit", EntityID: "u1", ReferencedType: "property", ReferencedID: "p1"}
	want := "unit with ID 'u1' references property with ID 'p1'"
	if r.String() != want {
		t.Errorf("Relation.String() = %q, expected %q", r.String(), want)
	}
}
