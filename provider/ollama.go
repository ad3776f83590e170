package provider

import (
	"context"
	"fmt"
	"strings"

	"edusolver/config"
	"edusolver/model"
	"edusolver/ollama"
)

// OllamaProvider implements model.Provider for a local Ollama server.
type OllamaProvider struct {
	client *ollama.Client
}

// NewOllamaProvider creates a new Ollama provider instance.
//
// Parameters:
//   - baseURL: Ollama server URL (default: "http://localhost:11434")
//
// Returns an error if the URL is invalid.
func NewOllamaProvider(baseURL string) (*OllamaProvider, error) {
	client, err := ollama.NewClient(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}
	return &OllamaProvider{client: client}, nil
}

func (p *OllamaProvider) Name() string {
	return config.ProviderOllama
}

// Generate implements Provider.Generate with the schema as Ollama's format.
// The think flag is only sent to model families that accept it, and is sent
// as false for quick solves so those models do not reason by default.
func (p *OllamaProvider) Generate(ctx context.Context, req model.GenerationRequest) (string, error) {
	format, err := SchemaJSON(req.Schema)
	if err != nil {
		return "", err
	}

	opts := ollama.ChatOptions{
		Model:    req.Model,
		Messages: ConvertToOllamaSolveMessages(req),
		Format:   format,
	}
	if ollama.SupportsThinking(req.Model) {
		think := req.ThinkingBudget > 0
		opts.Think = &think
	}

	var b strings.Builder
	err = p.client.Chat(ctx, opts, func(chunk string) error {
		b.WriteString(chunk)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("Ollama generate failed: %w", err)
	}
	return b.String(), nil
}

// ChatStream implements Provider.ChatStream.
func (p *OllamaProvider) ChatStream(ctx context.Context, req model.ChatRequest, callback model.StreamCallback) error {
	opts := ollama.ChatOptions{
		Model:    req.Model,
		Messages: ConvertToOllamaMessages(req),
		Stream:   true,
	}
	err := p.client.Chat(ctx, opts, func(chunk string) error {
		if callback == nil {
			return nil
		}
		return callback(chunk)
	})
	if err != nil {
		return fmt.Errorf("Ollama stream error: %w", err)
	}
	return nil
}

// Ping implements Provider.Ping.
func (p *OllamaProvider) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx); err != nil {
		return fmt.Errorf("Ollama ping failed: %w", err)
	}
	return nil
}

// HasModel reports whether the configured model is pulled on the server.
func (p *OllamaProvider) HasModel(ctx context.Context, name string) (bool, error) {
	return p.client.HasModel(ctx, name)
}
