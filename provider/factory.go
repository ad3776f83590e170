package provider

import (
	"fmt"

	"edusolver/model"
)

// NewProvider creates a provider based on configuration.
//
// This is the centralized factory for every provider type. It dispatches to the
// matching constructor based on Config.Type.
//
// Supported provider types:
//   - ProviderTypeGemini: Google Gemini API (default)
//   - ProviderTypeOpenAI: OpenAI or any OpenAI-compatible endpoint
//   - ProviderTypeAnthropic: Anthropic Messages API
//   - ProviderTypeOllama: Local Ollama server
//
// Returns an error if:
//   - The provider type is unknown
//   - A hosted provider is created without an API key
//   - The provider-specific constructor fails (e.g., invalid URL)
//
// Example (Gemini):
//
//	cfg := provider.Config{
//	    Type:   provider.ProviderTypeGemini,
//	    APIKey: key,
//	}
//	p, err := provider.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Example (Ollama):
//
//	cfg := provider.Config{
//	    Type:    provider.ProviderTypeOllama,
//	    BaseURL: "http://localhost:11434",
//	}
//	p, err := provider.NewProvider(cfg)
func NewProvider(cfg Config) (model.Provider, error) {
	switch cfg.Type {
	case ProviderTypeGemini:
		return NewGeminiProvider(cfg.BaseURL, cfg.APIKey)
	case ProviderTypeOpenAI:
		return NewOpenAIProvider(cfg.BaseURL, cfg.APIKey)
	case ProviderTypeAnthropic:
		return NewAnthropicProvider(cfg.BaseURL, cfg.APIKey)
	case ProviderTypeOllama:
		return NewOllamaProvider(cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}

// MapProviderIDToType converts a config provider ID to a factory ProviderType.
//
// Mappings:
//   - "gemini", "google" → ProviderTypeGemini
//   - "openai" → ProviderTypeOpenAI
//   - "anthropic", "claude" → ProviderTypeAnthropic
//   - "ollama" → ProviderTypeOllama
//
// For unknown IDs, returns the ID cast as ProviderType (factory will error).
func MapProviderIDToType(id string) ProviderType {
	switch id {
	case "gemini", "google":
		return ProviderTypeGemini
	case "openai":
		return ProviderTypeOpenAI
	case "anthropic", "claude":
		return ProviderTypeAnthropic
	case "ollama":
		return ProviderTypeOllama
	default:
		return ProviderType(id)
	}
}
