package provider

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"edusolver/config"
	"edusolver/model"
)

// OpenAIProvider implements model.Provider using the official OpenAI Go SDK.
// Any OpenAI-compatible endpoint works through baseURL.
type OpenAIProvider struct {
	client  openai.Client
	baseURL string
}

// NewOpenAIProvider creates a new OpenAI provider instance.
//
// Parameters:
//   - baseURL: OpenAI API base URL (default: "https://api.openai.com/v1")
//   - apiKey: OpenAI API key (required)
//
// Returns an error if the API key is missing.
func NewOpenAIProvider(baseURL, apiKey string) (*OpenAIProvider, error) {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &OpenAIProvider{
		client:  client,
		baseURL: baseURL,
	}, nil
}

func (p *OpenAIProvider) Name() string {
	return config.ProviderOpenAI
}

// Generate implements Provider.Generate using a JSON Schema response format.
// A thinking budget maps to high reasoning effort.
func (p *OpenAIProvider) Generate(ctx context.Context, req model.GenerationRequest) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemInstruction),
			ConvertToOpenAIUserMessage(req),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "solution",
					Schema: req.Schema.JSONSchema(),
					Strict: openai.Bool(false),
				},
			},
		},
	}
	if req.ThinkingBudget > 0 {
		params.ReasoningEffort = shared.ReasoningEffortHigh
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("OpenAI completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI returned no choices")
	}

	if config.Debug {
		config.DebugLog.Debugw("openai response",
			"model", req.Model,
			"finish_reason", resp.Choices[0].FinishReason,
			"tokens", resp.Usage.TotalTokens,
		)
	}
	return resp.Choices[0].Message.Content, nil
}

// ChatStream implements Provider.ChatStream with streaming chat completions.
func (p *OpenAIProvider) ChatStream(ctx context.Context, req model.ChatRequest, callback model.StreamCallback) error {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: ConvertToOpenAIChatMessages(req),
	}

	stream := p.client.Chat.Completions.NewStreaming(ctx, params)
	acc := openai.ChatCompletionAccumulator{}

	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)

		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" && callback != nil {
			if err := callback(chunk.Choices[0].Delta.Content); err != nil {
				stream.Close()
				return err
			}
		}
	}

	if err := stream.Err(); err != nil {
		return fmt.Errorf("OpenAI stream error: %w", err)
	}

	if config.Debug && len(acc.Choices) > 0 {
		config.DebugLog.Debugw("openai stream done",
			"model", req.Model,
			"finish_reason", acc.Choices[0].FinishReason,
		)
	}
	return nil
}

// Ping implements Provider.Ping by attempting to list models.
func (p *OpenAIProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		return fmt.Errorf("OpenAI ping failed: %w", err)
	}
	return nil
}
