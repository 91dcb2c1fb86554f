package ai

import (
	"context"
	"testing"

	"github.com/loftline/propgraph/pkg/common"
)

type fakeClient struct {
	completion string
	formatted  string
}

func (f *fakeClient) GenerateCompletion(ctx context.Context, prompt string, opts ...GenerateOption) (string, error) {
	return f.completion, nil
}

func (f *fakeClient) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...GenerateOption) error {
	return UnmarshalFlexible(f.formatted, out)
}

func (f *fakeClient) ResetMetrics()            {}
func (f *fakeClient) GetMetrics() ModelMetrics { return ModelMetrics{} }

func TestGenerateInstructions(t *testing.T) {
	client := &fakeClient{
		formatted: `{"instructions": ["Rent for unit 101 is now 1500", "  ", "Tenant John Smith moved into unit 102"]}`,
	}

	instructions, err := GenerateInstructions(context.Background(), client, "some update text")
	if err != nil {
		t.Fatalf("GenerateInstructions() error = %v", err)
	}
	if len(instructions) != 2 {
		t.Fatalf("expected 2 instructions after dropping blanks, got %d", len(instructions))
	}
	if instructions[0] != "Rent for unit 101 is now 1500" {
		t.Fatalf("unexpected first instruction: %q", instructions[0])
	}
}

func TestResolveInstruction(t *testing.T) {
	client := &fakeClient{
		formatted: `{
			"path": [
				{"collection": "property", "key": "Maple Court"},
				{"collection": "units", "key": "101"}
			],
			"fields": "{\"rentAmount\": 1500}"
		}`,
	}

	graphDoc, err := common.ParseNode([]byte(`{"property": {"name": "Maple Court"}}`))
	if err != nil {
		t.Fatalf("failed to parse graph: %v", err)
	}

	resolved, err := ResolveInstruction(context.Background(), client, graphDoc, "Rent for unit 101 is now 1500")
	if err != nil {
		t.Fatalf("ResolveInstruction() error = %v", err)
	}
	if len(resolved.Path) != 2 {
		t.Fatalf("expected 2 path segments, got %d", len(resolved.Path))
	}
	if resolved.Path[1].Collection != "units" || resolved.Path[1].Key != "101" {
		t.Fatalf("unexpected path segment: %+v", resolved.Path[1])
	}
	rent, ok := resolved.Fields.Get("rentAmount")
	if !ok {
		t.Fatal("expected rentAmount in resolved fields")
	}
	if rent != float64(1500) {
		t.Fatalf("expected rentAmount 1500, got %v", rent)
	}
}

func TestResolveInstruction_EmptyPath(t *testing.T) {
	client := &fakeClient{formatted: `{"path": [], "fields": "{}"}`}

	graphDoc := common.NewNode()
	if _, err := ResolveInstruction(context.Background(), client, graphDoc, "unclear update"); err == nil {
		t.Fatal("expected error for empty target path")
	}
}

func TestRewriteGraph(t *testing.T) {
	client := &fakeClient{
		completion: `{"property": {"name": "Maple Court", "units": [{"id": "u1", "unitNumber": "101", "rentAmount": 1500}]}}`,
	}

	graphDoc, err := common.ParseNode([]byte(`{"property": {"name": "Maple Court"}}`))
	if err != nil {
		t.Fatalf("failed to parse graph: %v", err)
	}

	rewritten, err := RewriteGraph(context.Background(), client, graphDoc, "Rent for unit 101 is now 1500")
	if err != nil {
		t.Fatalf("RewriteGraph() error = %v", err)
	}

	property, ok := common.AsNode(mustGetField(t, rewritten, "property"))
	if !ok {
		t.Fatal("expected property node in rewritten graph")
	}
	units, ok := common.AsList(mustGetField(t, property, "units"))
	if !ok || len(units) != 1 {
		t.Fatalf("expected one unit in rewritten graph, got %v", units)
	}
}

func mustGetField(t *testing.T, node *common.Node, field string) any {
	t.Helper()
	value, ok := node.Get(field)
	if !ok {
		t.Fatalf("missing field %q", field)
	}
	return value
}
