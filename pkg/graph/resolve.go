package graph

import (
	"strings"

	"github.com/loftline/propgraph/pkg/common"
)

// Resolve locates an entity inside a collection by an approximate key.
// Matching rules are tried in order, first match wins:
//
//  1. Exact string equality on keyField.
//  2. Case-insensitive equality.
//  3. Suffix match: the final whitespace-delimited token of keyValue is a
//     suffix of the candidate's keyField value. This handles references
//     like "Unit A" against a canonical "Woodbridge Unit A".
//
// When several candidates pass the suffix rule, the one with the shortest
// keyField value wins (the most specific match); remaining ties fall to
// collection order. Returns common.ErrNotFound when no rule matches, which
// callers interpret as "must create".
func Resolve(collection []*common.Node, keyField, keyValue string) (*common.Node, error) {
	for _, candidate := range collection {
		if candidate.GetString(keyField) == keyValue {
			return candidate, nil
		}
	}

	for _, candidate := range collection {
		if strings.EqualFold(candidate.GetString(keyField), keyValue) {
			return candidate, nil
		}
	}

	token := lastToken(keyValue)
	if token == "" {
		return nil, common.ErrNotFound
	}
	var best *common.Node
	for _, candidate := range collection {
		value := candidate.GetString(keyField)
		if value == "" || !strings.HasSuffix(value, token) {
			continue
		}
		if best == nil || len(value) < len(best.GetString(keyField)) {
			best = candidate
		}
	}
	if best != nil {
		return best, nil
	}

	return nil, common.ErrNotFound
}

func lastToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
