package ai

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/loftline/propgraph/pkg/common"
)

const splitSystemPrompt = `You are an assistant that prepares property management updates for processing.
You receive free-form text describing changes to a property: rent updates, new tenants, lease changes, move-outs, new documents or photos, ownership changes.
Split the text into independent, self-contained update instructions. Each instruction must make sense on its own and mention the property, unit, or tenant it applies to.
Do not invent updates that are not in the text. Do not merge unrelated updates into one instruction.`

const resolveSystemPrompt = `You are an assistant that maps a single update instruction onto a property graph.
You receive the current graph as JSON and one instruction.
Determine the entity the instruction targets and answer with:
- "path": the chain of collection levels from the property down to the target entity. Each element has "collection" (e.g. "property", "units", "tenants", "leases") and "key" (the identifying value at that level, e.g. the unit number or tenant name). Use an empty key when the instruction does not name the level; missing entities will be created.
- "fields": a JSON object string with only the fields the instruction changes, using the field names found in the graph (e.g. rentAmount, leaseStart, status).
Never include fields the instruction does not mention. Numeric amounts go in as numbers.`

const rewriteSystemPrompt = `You are an assistant that maintains a property graph as JSON.
You receive the current graph and update text. Answer with the complete updated graph as a single JSON object.
Keep every existing field and entity that the update does not change. Keep existing "id" values exactly as they are. Only apply what the update text states.`

// maxGraphPromptTokens bounds the serialized graph embedded in a prompt.
// Larger graphs are truncated, the model still sees the leading entities.
const maxGraphPromptTokens = 24000

const promptEncoding = "o200k_base"

// SerializeGraph renders the graph as JSON for prompt embedding, capped at
// maxTokens tokens of the prompt encoding.
func SerializeGraph(graph *common.Node, maxTokens int) (string, error) {
	data, err := graph.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("failed to serialize graph: %w", err)
	}
	return CapTokens(string(data), maxTokens)
}

// CapTokens truncates s to at most maxTokens tokens.
func CapTokens(s string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		return s, nil
	}
	enc, err := tiktoken.GetEncoding(promptEncoding)
	if err != nil {
		return "", err
	}
	tokens := enc.Encode(s, nil, nil)
	if len(tokens) <= maxTokens {
		return s, nil
	}
	return enc.Decode(tokens[:maxTokens]), nil
}

// CountTokens returns the token count of s in the prompt encoding.
func CountTokens(s string) (int, error) {
	enc, err := tiktoken.GetEncoding(promptEncoding)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(s, nil, nil)), nil
}
