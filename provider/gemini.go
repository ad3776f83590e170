package provider

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"edusolver/config"
	"edusolver/model"
)

// GeminiProvider implements model.Provider using the Google Gen AI SDK against
// the Gemini API backend.
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a new Gemini provider instance.
//
// Parameters:
//   - baseURL: Override for the API endpoint (empty uses the SDK default)
//   - apiKey: Gemini API key (required)
//
// Returns an error if the API key is missing or the client cannot be built.
func NewGeminiProvider(baseURL, apiKey string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{client: client}, nil
}

func (p *GeminiProvider) Name() string {
	return config.ProviderGemini
}

// Generate implements Provider.Generate with a JSON response constrained by the
// request schema. Deep requests carry the thinking budget.
func (p *GeminiProvider) Generate(ctx context.Context, req model.GenerationRequest) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    ConvertToGenaiSchema(req.Schema),
	}
	if req.ThinkingBudget > 0 {
		cfg.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(req.ThinkingBudget),
		}
	}

	contents := []*genai.Content{
		genai.NewContentFromParts(ConvertToGenaiParts(req.Parts()), genai.RoleUser),
	}

	resp, err := p.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("Gemini generate failed: %w", err)
	}

	text := resp.Text()
	if config.Debug {
		config.DebugLog.Debugw("gemini response", "model", req.Model, "bytes", len(text))
	}
	return text, nil
}

// ChatStream implements Provider.ChatStream. A chat session is created from
// the prior turns on every call, so no server-side state outlives a request.
func (p *GeminiProvider) ChatStream(ctx context.Context, req model.ChatRequest, callback model.StreamCallback) error {
	cfg := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	chat, err := p.client.Chats.Create(ctx, req.Model, cfg, ConvertToGenaiHistory(req.History))
	if err != nil {
		return fmt.Errorf("failed to create Gemini chat: %w", err)
	}

	for resp, err := range chat.SendMessageStream(ctx, genai.Part{Text: req.Message}) {
		if err != nil {
			return fmt.Errorf("Gemini stream error: %w", err)
		}
		if callback == nil {
			continue
		}
		if err := callback(resp.Text()); err != nil {
			return err
		}
	}
	return nil
}

// Ping implements Provider.Ping by listing one model.
func (p *GeminiProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx, &genai.ListModelsConfig{PageSize: 1}); err != nil {
		return fmt.Errorf("Gemini ping failed: %w", err)
	}
	return nil
}
