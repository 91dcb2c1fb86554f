package graph

import (
	"errors"
	"testing"

	"github.com/loftline/propgraph/pkg/common"
)

func leafUnit(t *testing.T, graph *common.Node, unitNumber string) *common.Node {
	t.Helper()
	property, _ := graph.Get("property")
	propertyNode, ok := common.AsNode(property)
	if !ok {
		t.Fatalf("graph has no property object")
	}
	units, _ := propertyNode.Get("units")
	for _, unit := range common.NodeElements(units) {
		if unit.GetString("unitNumber") == unitNumber {
			return unit
		}
	}
	t.Fatalf("unit %q not found", unitNumber)
	return nil
}

func TestUpsertLeaseCreatesPlaceholderTenant(t *testing.T) {
	graph := mustParse(t, `{"property":{"name":"Woodbridge","units":[{"unitNumber":"101"}]}}`)
	fields := mustParse(t, `{"rentAmount":1500,"status":"active"}`)

	client := NewClient(NewClientParams{})
	lease, warnings, err := client.Upsert(graph, []PathSegment{
		{Collection: "units", Key: "101"},
		{Collection: "tenants", Key: ""},
		{Collection: "leases", Key: "L-1"},
	}, fields)
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}

	unit := leafUnit(t, graph, "101")
	tenantsValue, _ := unit.Get("tenants")
	tenants := common.NodeElements(tenantsValue)
	if len(tenants) != 1 {
		t.Fatalf("expected one tenant, got %d", len(tenants))
	}
	if tenants[0].GetString("name") != "Tenant_101" {
		t.Errorf("expected placeholder tenant Tenant_101, got %q", tenants[0].GetString("name"))
	}

	if lease.ID() != "L-1" {
		t.Errorf("lease id not set, got %q", lease.ID())
	}
	if lease.GetString("propertyId") != "Woodbridge" {
		t.Errorf("lease should inherit propertyId, got %q", lease.GetString("propertyId"))
	}
	if lease.GetString("unitId") != "101" {
		t.Errorf("lease should inherit unitId, got %q", lease.GetString("unitId"))
	}
	if lease.GetString("tenantId") != "Tenant_101" {
		t.Errorf("lease should inherit tenantId, got %q", lease.GetString("tenantId"))
	}
	if v, _ := lease.Get("rentAmount"); v != float64(1500) {
		t.Errorf("lease fields not merged, rentAmount = %v", v)
	}
}

func TestUpsertAbortsBeforeMutating(t *testing.T) {
	graph := common.NewNode()

	client := NewClient(NewClientParams{})
	_, _, err := client.Upsert(graph, []PathSegment{
		{Collection: "property", Key: "Maple Court"},
		{Collection: "units", Key: ""},
	}, common.NewNode())

	var abort *common.CascadeAbortError
	if !errors.As(err, &abort) {
		t.Fatalf("expected CascadeAbortError, got %v", err)
	}
	if abort.Collection != "units" || abort.KeyField != "unitNumber" {
		t.Errorf("abort should name the failing level, got %+v", abort)
	}
	if graph.Len() != 0 {
		t.Errorf("graph was mutated before the abort: %v", graph.FieldNames())
	}
}

func TestUpsertCreatesMissingUnitAndTenant(t *testing.T) {
	graph := common.NewNode()

	client := NewClient(NewClientParams{})
	tenant, _, err := client.Upsert(graph, []PathSegment{
		{Collection: "units", Key: "B1"},
		{Collection: "tenants", Key: "Bob"},
	}, common.NewNode())
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if tenant.GetString("name") != "Bob" {
		t.Errorf("tenant not created, got %q", tenant.GetString("name"))
	}

	unitsValue, _ := graph.Get("units")
	units := common.NodeElements(unitsValue)
	if len(units) != 1 || units[0].GetString("unitNumber") != "B1" {
		t.Fatalf("unit not created: %v", units)
	}

	tenantsValue, _ := units[0].Get("tenants")
	tenants := common.NodeElements(tenantsValue)
	if len(tenants) != 1 || tenants[0] != tenant {
		t.Errorf("tenant not nested under the created unit")
	}
}

func TestUpsertFlatLayout(t *testing.T) {
	graph := mustParse(t, `{"units":[{"unitNumber":"101","status":"vacant"}]}`)
	fields := mustParse(t, `{"status":"occupied"}`)

	client := NewClient(NewClientParams{})
	unit, _, err := client.Upsert(graph, []PathSegment{
		{Collection: "units", Key: "101"},
	}, fields)
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if unit.GetString("status") != "occupied" {
		t.Errorf("expected status updated in place, got %q", unit.GetString("status"))
	}

	units, _ := graph.Get("units")
	if len(common.NodeElements(units)) != 1 {
		t.Errorf("resolving should not duplicate the unit")
	}
}

func TestUpsertResolvesApproximateUnit(t *testing.T) {
	graph := mustParse(t, `{"units":[{"unitNumber":"Woodbridge Unit A"},{"unitNumber":"Woodbridge Unit B"}]}`)
	fields := mustParse(t, `{"status":"occupied"}`)

	client := NewClient(NewClientParams{})
	unit, _, err := client.Upsert(graph, []PathSegment{
		{Collection: "units", Key: "Unit A"},
	}, fields)
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if unit.GetString("unitNumber") != "Woodbridge Unit A" {
		t.Errorf("expected approximate match, got %q", unit.GetString("unitNumber"))
	}
	units, _ := graph.Get("units")
	if len(common.NodeElements(units)) != 2 {
		t.Errorf("approximate match should not create a new unit")
	}
}

func TestUpsertFillsSingularObjectKey(t *testing.T) {
	graph := mustParse(t, `{"property":{"units":[]}}`)

	client := NewClient(NewClientParams{})
	property, _, err := client.Upsert(graph, []PathSegment{
		{Collection: "property", Key: "Woodbridge"},
	}, common.NewNode())
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if property.GetString("name") != "Woodbridge" {
		t.Errorf("existing property object should adopt the key, got %q", property.GetString("name"))
	}
}

func TestUpsertCreatesMissingSingularObject(t *testing.T) {
	graph := common.NewNode()
	fields := mustParse(t, `{"yearBuilt":"1998"}`)

	client := NewClient(NewClientParams{})
	property, _, err := client.Upsert(graph, []PathSegment{
		{Collection: "property", Key: "Woodbridge"},
	}, fields)
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	value, _ := graph.Get("property")
	stored, ok := common.AsNode(value)
	if !ok {
		t.Fatalf("singular level should be stored as an object, got %T", value)
	}
	if stored != property {
		t.Errorf("returned leaf is not the stored node")
	}
	if property.GetString("name") != "Woodbridge" {
		t.Errorf("created property missing identifying field")
	}
}

func TestUpsertUnknownCollectionKeyedByID(t *testing.T) {
	graph := common.NewNode()
	fields := mustParse(t, `{"service":"plumbing"}`)

	client := NewClient(NewClientParams{})
	vendor, _, err := client.Upsert(graph, []PathSegment{
		{Collection: "vendors", Key: "V-9"},
	}, fields)
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if vendor.ID() != "V-9" {
		t.Errorf("unknown collections should key by id, got %q", vendor.ID())
	}

	vendors, _ := graph.Get("vendors")
	if len(common.NodeElements(vendors)) != 1 {
		t.Errorf("vendor not appended to collection")
	}
}

func TestUpsertStructuralErrorOnScalarCollection(t *testing.T) {
	graph := mustParse(t, `{"units":"oops"}`)

	client := NewClient(NewClientParams{})
	_, _, err := client.Upsert(graph, []PathSegment{
		{Collection: "units", Key: "101"},
	}, common.NewNode())

	var structural *common.StructuralError
	if !errors.As(err, &structural) {
		t.Fatalf("expected StructuralError, got %v", err)
	}
}

func TestUpsertNumericWarningSurfaces(t *testing.T) {
	graph := mustParse(t, `{"units":[{"unitNumber":"101"}]}`)
	fields := mustParse(t, `{"rentAmount":"call for pricing"}`)

	client := NewClient(NewClientParams{})
	_, warnings, err := client.Upsert(graph, []PathSegment{
		{Collection: "units", Key: "101"},
	}, fields)
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if len(warnings) != 1 || warnings[0].Field != "rentAmount" {
		t.Fatalf("expected one rentAmount warning, got %v", warnings)
	}
}

func TestUpsertCustomTenantNamer(t *testing.T) {
	graph := mustParse(t, `{"units":[{"unitNumber":"101"}]}`)

	client := NewClient(NewClientParams{
		TenantNamer: func(parentKey string) string { return "Resident of " + parentKey },
	})
	tenant, _, err := client.Upsert(graph, []PathSegment{
		{Collection: "units", Key: "101"},
		{Collection: "tenants", Key: ""},
	}, common.NewNode())
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if tenant.GetString("name") != "Resident of 101" {
		t.Errorf("custom namer ignored, got %q", tenant.GetString("name"))
	}
}

func TestUpsertSequentialUpdatesKeepRootIntact(t *testing.T) {
	graph := mustParse(t, `{"property":{"name":"Woodbridge","units":[{"unitNumber":"1A"},{"unitNumber":"1B"}]}}`)

	client := NewClient(NewClientParams{})
	first, _, err := client.Upsert(graph, []PathSegment{
		{Collection: "units", Key: "1A"},
	}, mustParse(t, `{"rentAmount":1500}`))
	if err != nil {
		t.Fatalf("first Upsert failed: %v", err)
	}
	if first == graph {
		t.Fatalf("Upsert should return the leaf entity, not the root")
	}

	_, _, err = client.Upsert(graph, []PathSegment{
		{Collection: "units", Key: "1B"},
	}, mustParse(t, `{"rentAmount":1700}`))
	if err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	// Both updates land on the same root document.
	if _, ok := graph.Get("property"); !ok {
		t.Fatalf("root document lost its property object")
	}
	if v, _ := leafUnit(t, graph, "1A").Get("rentAmount"); v != float64(1500) {
		t.Errorf("first update lost, rentAmount = %v", v)
	}
	if v, _ := leafUnit(t, graph, "1B").Get("rentAmount"); v != float64(1700) {
		t.Errorf("second update lost, rentAmount = %v", v)
	}
}
