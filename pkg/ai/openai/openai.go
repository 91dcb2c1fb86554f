package openai

import (
	"sync"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/loftline/propgraph/pkg/ai"
)

// UpdateOpenAIClient implements ai.UpdateAIClient against an OpenAI-compatible
// chat endpoint.
//
// An UpdateOpenAIClient should be created using NewUpdateOpenAIClient.
type UpdateOpenAIClient struct {
	extractionModel string

	chatURL string
	chatKey string

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	ChatClient *openai.Client
}

// NewUpdateOpenAIClientParams defines the configuration for creating an
// UpdateOpenAIClient.
//
// ExtractionModel is the model used for instruction extraction and
// resolution. ChatURL and ChatKey configure the chat API endpoint; an empty
// ChatURL uses the OpenAI default.
type NewUpdateOpenAIClientParams struct {
	ExtractionModel string

	ChatURL string
	ChatKey string
}

// NewUpdateOpenAIClient creates a client configured with the provided
// parameters.
func NewUpdateOpenAIClient(
	params NewUpdateOpenAIClientParams,
) *UpdateOpenAIClient {
	return &UpdateOpenAIClient{
		extractionModel: params.ExtractionModel,

		chatURL: params.ChatURL,
		chatKey: params.ChatKey,

		metricsLock: sync.Mutex{},
		metrics:     ai.ModelMetrics{},

		ChatClient: newOpenaiClient(params.ChatURL, params.ChatKey),
	}
}

func newOpenaiClient(
	baseURL string,
	apiKey string,
) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &client
}
