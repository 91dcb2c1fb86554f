package graph

import (
	"sort"

	"github.com/loftline/propgraph/pkg/common"
	"github.com/loftline/propgraph/pkg/logger"
)

// PlaceholderFunc synthesizes an identifying value for an entity that must
// exist before its child can be created, from the identifying value of the
// level above. The default tenant policy is DefaultTenantName.
type PlaceholderFunc func(parentKey string) string

// CascadeStep describes one level of an update-or-create cascade. Steps
// are declarative: a single generic loop consumes them in order, so adding
// an entity level is a configuration change, not new code.
type CascadeStep struct {
	// Collection is the field holding this level's entities: a plural
	// collection key ("units") or a singular object field ("property").
	Collection string
	// KeyField is the identifying field within the collection.
	KeyField string
	// Inherit maps foreign-key fields of a newly created entity to the
	// ancestor collection whose identifying value fills them.
	Inherit map[string]string
	// Placeholder, when set, supplies an identifying value for this level
	// if the caller's path left it empty.
	Placeholder PlaceholderFunc
}

// PathSegment addresses one level of an entity path handed to Upsert.
type PathSegment struct {
	Collection string `json:"collection"`
	Key        string `json:"key"`
}

// DefaultTenantName is the default placeholder policy for a tenant created
// implicitly under a unit, e.g. when a lease arrives for a vacant unit.
func DefaultTenantName(unitKey string) string {
	return "Tenant_" + unitKey
}

// Upsert walks an entity path top-down through graph, resolving each level
// with Resolve and creating missing entities with their identifying field
// and the foreign keys inherited from ancestor levels. At the final level
// the fields document is applied with Merge.
//
// All identifying values are validated before anything is mutated: an
// empty value without a placeholder policy aborts the whole operation with
// a CascadeAbortError naming the failing level. The returned node is the
// resolved or created leaf entity.
func (c *Client) Upsert(graph *common.Node, path []PathSegment, fields *common.Node) (*common.Node, []common.Warning, error) {
	if graph == nil || len(path) == 0 {
		return nil, nil, &common.StructuralError{Reason: "upsert requires a graph and a non-empty entity path"}
	}

	steps := make([]CascadeStep, len(path))
	keys := make([]string, len(path))
	for i, segment := range path {
		steps[i] = c.stepFor(segment.Collection)
		key := segment.Key
		if key == "" && steps[i].Placeholder != nil && i > 0 {
			key = steps[i].Placeholder(keys[i-1])
		}
		if key == "" {
			return nil, nil, &common.CascadeAbortError{
				Collection: segment.Collection,
				KeyField:   steps[i].KeyField,
			}
		}
		keys[i] = key
	}

	// Identifying values of every level seen so far, by collection key.
	// Implicit ancestors (levels configured before the first path segment,
	// like the property object above a units path) contribute here too.
	resolved := map[string]string{}
	current := c.resolveImplicitAncestors(graph, path[0].Collection, resolved)

	var leaf *common.Node
	for i := range path {
		step := steps[i]
		node, err := c.resolveOrCreate(current, step, keys[i], resolved)
		if err != nil {
			return nil, nil, err
		}
		if key := node.GetString(step.KeyField); key != "" {
			resolved[step.Collection] = key
		} else {
			resolved[step.Collection] = keys[i]
		}
		current = node
		leaf = node
	}

	warnings, err := Merge(leaf, fields, c.mergeOptions())
	if err != nil {
		return nil, warnings, err
	}

	logger.Debug("[Cascade] Upserted entity", "path", len(path), "warnings", len(warnings))
	return leaf, warnings, nil
}

// resolveImplicitAncestors records the identifying values of configured
// levels above the first explicit path segment, so created entities can
// inherit foreign keys from them. A singular ancestor object is descended
// into only when it already holds the first segment's collection; this
// supports both the nested layout (units inside the property object) and
// the flat layout (units beside it).
func (c *Client) resolveImplicitAncestors(graph *common.Node, firstCollection string, resolved map[string]string) *common.Node {
	current := graph
	for _, step := range c.steps {
		if step.Collection == firstCollection {
			break
		}
		value, ok := current.Get(step.Collection)
		if !ok {
			continue
		}
		node, ok := common.AsNode(value)
		if !ok {
			continue
		}
		if key := node.GetString(step.KeyField); key != "" {
			resolved[step.Collection] = key
		}
		if _, holdsNext := node.Get(firstCollection); holdsNext {
			current = node
		}
	}
	return current
}

func (c *Client) resolveOrCreate(parent *common.Node, step CascadeStep, key string, resolved map[string]string) (*common.Node, error) {
	value, exists := parent.Get(step.Collection)

	// A singular object field is its own one-element collection: the
	// stored object is the match, with its identifying field filled in
	// if it was never set.
	if node, ok := common.AsNode(value); exists && ok {
		if node.GetString(step.KeyField) == "" {
			node.Set(step.KeyField, key)
		}
		return node, nil
	}

	list, isList := common.AsList(value)
	if exists && !isList && !common.IsEmptyValue(value) {
		return nil, &common.StructuralError{
			Field:  step.Collection,
			Reason: "expected an entity or a collection of entities",
		}
	}

	if isList {
		node, err := Resolve(common.NodeElements(list), step.KeyField, key)
		if err == nil {
			return node, nil
		}
		if err != common.ErrNotFound {
			return nil, err
		}
	}

	if !exists && !isPlural(step.Collection) {
		node := c.newEntity(step, key, resolved)
		parent.Set(step.Collection, node)
		return node, nil
	}

	node := c.newEntity(step, key, resolved)
	parent.Set(step.Collection, append(list, node))
	return node, nil
}

// newEntity builds the minimal node for a missing entity: its identifying
// field plus the foreign keys inherited from already-resolved ancestors.
func (c *Client) newEntity(step CascadeStep, key string, resolved map[string]string) *common.Node {
	node := common.NewNode()
	node.Set(step.KeyField, key)
	for _, refField := range sortedKeys(step.Inherit) {
		if value := resolved[step.Inherit[refField]]; value != "" {
			node.Set(refField, value)
		}
	}
	return node
}

func (c *Client) stepFor(collection string) CascadeStep {
	for _, step := range c.steps {
		if step.Collection == collection {
			return step
		}
	}
	// Unknown collections still cascade, keyed by id.
	return CascadeStep{Collection: collection, KeyField: "id"}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
