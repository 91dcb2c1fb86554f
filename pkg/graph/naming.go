package graph

import "strings"

// Singularize derives an entity type name from a plural collection key,
// e.g. "units" -> "unit", "properties" -> "property". Names that are not
// recognizably plural are returned unchanged.
func Singularize(collection string) string {
	switch {
	case len(collection) > 3 && strings.HasSuffix(collection, "ies"):
		return collection[:len(collection)-3] + "y"
	case len(collection) > 4 && (strings.HasSuffix(collection, "sses") ||
		strings.HasSuffix(collection, "shes") ||
		strings.HasSuffix(collection, "ches") ||
		strings.HasSuffix(collection, "xes") ||
		strings.HasSuffix(collection, "zes")):
		return collection[:len(collection)-2]
	case len(collection) > 1 && strings.HasSuffix(collection, "s") && !strings.HasSuffix(collection, "ss"):
		return collection[:len(collection)-1]
	default:
		return collection
	}
}

// isPlural reports whether a field name looks like a collection key.
func isPlural(field string) bool {
	return Singularize(field) != field
}
