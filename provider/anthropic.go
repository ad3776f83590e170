package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"edusolver/config"
	"edusolver/model"
)

const (
	// anthropicMaxTokens bounds quick replies and tutor turns.
	anthropicMaxTokens int64 = 8192
	// anthropicAnswerTokens is the room left for the answer on top of the
	// thinking budget. max_tokens must exceed budget_tokens.
	anthropicAnswerTokens int64 = 16384
)

// AnthropicProvider implements model.Provider using Anthropic's Messages API.
type AnthropicProvider struct {
	client *anthropic.Client
}

// NewAnthropicProvider creates a new Anthropic provider instance.
//
// Parameters:
//   - baseURL: Anthropic API base URL (default: "https://api.anthropic.com")
//   - apiKey: Anthropic API key (required)
//
// Returns an error if the API key is missing.
func NewAnthropicProvider(baseURL, apiKey string) (*AnthropicProvider, error) {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	client := anthropic.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &AnthropicProvider{client: &client}, nil
}

func (p *AnthropicProvider) Name() string {
	return config.ProviderAnthropic
}

// Generate implements Provider.Generate. The Messages API has no structured
// output parameter, so the schema travels in the system prompt. Deep requests
// enable extended thinking with the request's budget.
func (p *AnthropicProvider) Generate(ctx context.Context, req model.GenerationRequest) (string, error) {
	system, err := SchemaInstruction(req.SystemInstruction, req.Schema)
	if err != nil {
		return "", err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: anthropicMaxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages:  []anthropic.MessageParam{ConvertToAnthropicUserMessage(req)},
	}
	if req.ThinkingBudget > 0 {
		budget := int64(req.ThinkingBudget)
		params.MaxTokens = budget + anthropicAnswerTokens
		params.Thinking = anthropic.ThinkingConfigParamOfEnabled(budget)
	}

	// Long thinking requests must stream; the accumulated message is the same.
	stream := p.client.Messages.NewStreaming(ctx, params)
	msg := anthropic.Message{}
	for stream.Next() {
		if err := msg.Accumulate(stream.Current()); err != nil {
			return "", fmt.Errorf("failed to accumulate Anthropic response: %w", err)
		}
	}
	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("Anthropic generate failed: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}

	if config.Debug {
		config.DebugLog.Debugw("anthropic response",
			"model", req.Model,
			"stop_reason", msg.StopReason,
			"output_tokens", msg.Usage.OutputTokens,
		)
	}
	return b.String(), nil
}

// ChatStream implements Provider.ChatStream, forwarding text deltas.
func (p *AnthropicProvider) ChatStream(ctx context.Context, req model.ChatRequest, callback model.StreamCallback) error {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: anthropicMaxTokens,
		Messages:  ConvertToAnthropicMessages(req),
	}
	if req.SystemInstruction != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemInstruction}}
	}

	stream := p.client.Messages.NewStreaming(ctx, params)
	for stream.Next() {
		event := stream.Current()

		switch ev := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch delta := ev.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if callback != nil {
					if err := callback(delta.Text); err != nil {
						stream.Close()
						return err
					}
				}
			}
		}
	}

	if err := stream.Err(); err != nil {
		return fmt.Errorf("Anthropic stream error: %w", err)
	}
	return nil
}

// Ping implements Provider.Ping by listing models.
func (p *AnthropicProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx, anthropic.ModelListParams{Limit: anthropic.Int(1)}); err != nil {
		return fmt.Errorf("Anthropic ping failed: %w", err)
	}
	return nil
}
