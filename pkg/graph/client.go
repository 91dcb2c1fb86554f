package graph

import (
	"github.com/loftline/propgraph/pkg/common"
)

// Client is the configured entry point for the normalization engine. It
// bundles the cascade layout, the numeric coercion set and the per-field
// merge handlers so orchestration code applies updates with one call.
//
// A Client should be created using NewClient. The zero configuration is
// the property -> units -> tenants -> leases hierarchy of the default
// real-estate schema.
type Client struct {
	steps         []CascadeStep
	numericFields map[string]bool
	handlers      map[string]FieldHandler
	maxDepth      int
}

// NewClientParams defines the configuration for creating a new Client.
//
// Steps replaces the default cascade hierarchy when non-empty.
// NumericFields replaces the default set of fields coerced to float64.
// Handlers adds or replaces per-field merge handlers.
// TenantNamer replaces the default placeholder-naming policy for tenants
// created implicitly under a unit.
// MaxDepth overrides the recursion guard when positive.
type NewClientParams struct {
	Steps         []CascadeStep
	NumericFields []string
	Handlers      map[string]FieldHandler
	TenantNamer   PlaceholderFunc
	MaxDepth      int
}

// NewClient creates a Client configured with the provided parameters,
// falling back to the default real-estate cascade where fields are unset.
func NewClient(params NewClientParams) *Client {
	namer := params.TenantNamer
	if namer == nil {
		namer = DefaultTenantName
	}

	steps := params.Steps
	if len(steps) == 0 {
		steps = DefaultCascadeSteps(namer)
	}

	numeric := map[string]bool{}
	if len(params.NumericFields) == 0 {
		params.NumericFields = DefaultNumericFields()
	}
	for _, field := range params.NumericFields {
		numeric[field] = true
	}

	handlers := map[string]FieldHandler{
		"photos":    AppendListHandler(),
		"documents": AppendListHandler(),
	}
	for field, handler := range params.Handlers {
		handlers[field] = handler
	}

	maxDepth := params.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	return &Client{
		steps:         steps,
		numericFields: numeric,
		handlers:      handlers,
		maxDepth:      maxDepth,
	}
}

// DefaultCascadeSteps returns the property -> units -> tenants -> leases
// hierarchy. A unit created under a property inherits propertyId; a lease
// inherits the full propertyId/unitId/tenantId triple, and a missing
// tenant above it is synthesized with tenantNamer so the triple is always
// satisfiable.
func DefaultCascadeSteps(tenantNamer PlaceholderFunc) []CascadeStep {
	return []CascadeStep{
		{Collection: "property", KeyField: "name"},
		{
			Collection: "units",
			KeyField:   "unitNumber",
			Inherit:    map[string]string{"propertyId": "property"},
		},
		{
			Collection:  "tenants",
			KeyField:    "name",
			Placeholder: tenantNamer,
		},
		{
			Collection: "leases",
			KeyField:   "id",
			Inherit: map[string]string{
				"propertyId": "property",
				"unitId":     "units",
				"tenantId":   "tenants",
			},
		},
	}
}

// DefaultNumericFields returns the monetary fields coerced to float64
// during merges.
func DefaultNumericFields() []string {
	return []string{"rentAmount", "securityDeposit", "nextRentAmount"}
}

// Merge applies a partial update onto target using the client's handlers
// and numeric coercion set.
func (c *Client) Merge(target, patch *common.Node) ([]common.Warning, error) {
	return Merge(target, patch, c.mergeOptions())
}

func (c *Client) mergeOptions() MergeOptions {
	return MergeOptions{
		Handlers:      c.handlers,
		NumericFields: c.numericFields,
		MaxDepth:      c.maxDepth,
	}
}
