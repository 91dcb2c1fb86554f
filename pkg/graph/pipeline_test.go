package graph

import (
	"testing"

	"github.com/loftline/propgraph/pkg/common"
)

// Drives the full engine over a document that comes in as raw JSON, the
// way stored graphs reach the pipeline.
func TestPipelineFromParsedDocument(t *testing.T) {
	graph := mustParse(t, `{
		"property": {
			"name": "Woodbridge",
			"address": "12 Elm St",
			"notes": "",
			"units": [{"unitNumber": "101", "floor": ""}]
		}
	}`)

	client := NewClient(NewClientParams{})
	lease, warnings, err := client.Upsert(graph, []PathSegment{
		{Collection: "units", Key: "101"},
		{Collection: "tenants", Key: ""},
		{Collection: "leases", Key: "L-1"},
	}, mustParse(t, `{"rentAmount":"1500"}`))
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	if lease.GetString("tenantId") != "Tenant_101" {
		t.Errorf("lease should reference the placeholder tenant, got %q", lease.GetString("tenantId"))
	}
	if v, _ := lease.Get("rentAmount"); v != float64(1500) {
		t.Errorf("rentAmount not coerced, got %v", v)
	}

	// The stored unit must be resolved, not duplicated beside itself.
	unit := leafUnit(t, graph, "101")
	propertyValue, _ := graph.Get("property")
	property, _ := common.AsNode(propertyValue)
	if units := common.NodeElements(mustGet(t, property, "units")); len(units) != 1 {
		t.Fatalf("expected the stored unit to be resolved, got %d units", len(units))
	}

	linked, err := LinkIDs(graph)
	if err != nil {
		t.Fatalf("LinkIDs failed: %v", err)
	}
	linkedProperty, _ := common.AsNode(mustGet(t, linked, "property"))
	if linkedProperty.ID() == "" {
		t.Fatalf("property did not receive an id")
	}
	if linked.GetString("propertyId") != linkedProperty.ID() {
		t.Errorf("root propertyId does not match the nested property id")
	}
	linkedUnit := common.NodeElements(mustGet(t, linkedProperty, "units"))[0]
	unitsIds, _ := common.AsList(mustGet(t, linkedProperty, "unitsIds"))
	if len(unitsIds) != 1 || unitsIds[0] != linkedUnit.ID() {
		t.Errorf("unitsIds does not mirror the units collection: %v", unitsIds)
	}
	if unit.ID() != "" {
		t.Errorf("LinkIDs mutated the input graph")
	}

	compressed, err := Compress(linked)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	compressedProperty, _ := common.AsNode(mustGet(t, compressed, "property"))
	if _, ok := compressedProperty.Get("notes"); ok {
		t.Errorf("empty notes field survived compression")
	}
	compressedUnit := common.NodeElements(mustGet(t, compressedProperty, "units"))[0]
	if _, ok := compressedUnit.Get("floor"); ok {
		t.Errorf("empty floor field survived compression")
	}
	if compressedUnit.GetString("unitNumber") != "101" {
		t.Errorf("compression lost unit data")
	}

	relations, err := Analyze(compressed)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(relations["lease"]) != 3 {
		t.Fatalf("expected 3 lease edges, got %v", relations["lease"])
	}
	rootEdges := relations["root"]
	if len(rootEdges) != 1 || rootEdges[0].ReferencedType != "property" || rootEdges[0].ReferencedID != compressedProperty.ID() {
		t.Errorf("expected a root -> property edge, got %v", rootEdges)
	}
}

func mustGet(t *testing.T, node *common.Node, field string) any {
	t.Helper()
	value, ok := node.Get(field)
	if !ok {
		t.Fatalf("field %q missing", field)
	}
	return value
}
