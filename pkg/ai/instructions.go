package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/loftline/propgraph/pkg/common"
	"github.com/loftline/propgraph/pkg/graph"
)

type instructionList struct {
	Instructions []string `json:"instructions" jsonschema_description:"Independent update instructions, one per entry"`
}

type resolvedUpdateRaw struct {
	Path   []graph.PathSegment `json:"path" jsonschema_description:"Collection levels from the property down to the target entity"`
	Fields string              `json:"fields" jsonschema_description:"JSON object string containing only the changed fields"`
}

// ResolvedUpdate is one instruction mapped onto the graph: the cascade path
// identifying the target entity and the partial fields to merge into it.
type ResolvedUpdate struct {
	Path   []graph.PathSegment
	Fields *common.Node
}

// GenerateInstructions splits free-form update text into independent
// instruction strings. Blank instructions are dropped.
func GenerateInstructions(
	ctx context.Context,
	client UpdateAIClient,
	updateText string,
	opts ...GenerateOption,
) ([]string, error) {
	var out instructionList

	opts = append([]GenerateOption{WithSystemPrompts(splitSystemPrompt)}, opts...)
	err := client.GenerateCompletionWithFormat(
		ctx,
		"update_instructions",
		"Independent update instructions extracted from the text",
		updateText,
		&out,
		opts...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to split update text: %w", err)
	}

	instructions := make([]string, 0, len(out.Instructions))
	for _, instruction := range out.Instructions {
		instruction = strings.TrimSpace(instruction)
		if instruction != "" {
			instructions = append(instructions, instruction)
		}
	}
	return instructions, nil
}

// ResolveInstruction maps one instruction onto the graph, producing the
// cascade path and partial fields for an upsert.
func ResolveInstruction(
	ctx context.Context,
	client UpdateAIClient,
	graphDoc *common.Node,
	instruction string,
	opts ...GenerateOption,
) (*ResolvedUpdate, error) {
	serialized, err := SerializeGraph(graphDoc, maxGraphPromptTokens)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf("Current graph:\n%s\n\nInstruction:\n%s", serialized, instruction)

	var raw resolvedUpdateRaw
	opts = append([]GenerateOption{WithSystemPrompts(resolveSystemPrompt)}, opts...)
	err = client.GenerateCompletionWithFormat(
		ctx,
		"resolved_update",
		"The target entity path and changed fields for one instruction",
		prompt,
		&raw,
		opts...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve instruction: %w", err)
	}

	if len(raw.Path) == 0 {
		return nil, fmt.Errorf("model returned no target path for instruction: %s", instruction)
	}

	fields := common.NewNode()
	if strings.TrimSpace(raw.Fields) != "" {
		if err := UnmarshalFlexible(raw.Fields, fields); err != nil {
			return nil, fmt.Errorf("failed to parse resolved fields: %w", err)
		}
	}

	return &ResolvedUpdate{
		Path:   raw.Path,
		Fields: fields,
	}, nil
}

// RewriteGraph asks the model for a full replacement document reflecting the
// update text. The caller reconciles the result against the stored graph,
// this function never merges.
func RewriteGraph(
	ctx context.Context,
	client UpdateAIClient,
	graphDoc *common.Node,
	updateText string,
	opts ...GenerateOption,
) (*common.Node, error) {
	serialized, err := SerializeGraph(graphDoc, maxGraphPromptTokens)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf("Current graph:\n%s\n\nUpdate:\n%s", serialized, updateText)

	opts = append([]GenerateOption{WithSystemPrompts(rewriteSystemPrompt)}, opts...)
	response, err := client.GenerateCompletion(ctx, prompt, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to rewrite graph: %w", err)
	}

	rewritten := common.NewNode()
	if err := UnmarshalFlexible(response, rewritten); err != nil {
		return nil, fmt.Errorf("failed to parse rewritten graph: %w", err)
	}
	return rewritten, nil
}
