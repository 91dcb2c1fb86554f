package util

import (
	"strings"

	"github.com/loftline/propgraph/pkg/common"
)

// SanitizePostgresText strips invalid UTF-8 sequences and NUL bytes, which
// Postgres rejects inside text and jsonb values.
func SanitizePostgresText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}

// SanitizeGraphText sanitizes every string value in the graph in place,
// descending through nested entities and lists.
func SanitizeGraphText(node *common.Node) {
	if node == nil {
		return
	}
	for _, field := range node.FieldNames() {
		value, _ := node.Get(field)
		switch v := value.(type) {
		case string:
			node.Set(field, SanitizePostgresText(v))
		case *common.Node:
			SanitizeGraphText(v)
		case []any:
			for i, element := range v {
				switch e := element.(type) {
				case string:
					v[i] = SanitizePostgresText(e)
				case *common.Node:
					SanitizeGraphText(e)
				}
			}
		}
	}
}
