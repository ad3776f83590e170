// Package provider implements model.Provider for the hosted generation services
// EduSolver can talk to.
//
// Every provider serves the same two operations: a one-shot JSON-mode request
// constrained by a response schema (the solve path) and a streamed multi-turn
// chat (the tutor). The rest of the application only sees model.Provider, so
// switching from Gemini to a local Ollama server is a configuration change.
//
// # Schema Dialects
//
// model.Schema is provider-neutral. Each implementation translates it:
//   - Gemini receives a *genai.Schema with property ordering
//   - OpenAI receives a JSON Schema response format
//   - Ollama receives the JSON Schema as the request Format
//   - Anthropic has no schema parameter, so the JSON Schema is appended to the
//     system prompt and the reply is unwrapped from any code fence
//
// # Thinking Budget
//
// Deep Reason requests carry a thinking budget. Gemini and Anthropic take it as
// a token count, OpenAI maps it to high reasoning effort, Ollama enables its
// think flag for model families that support it.
//
// # Usage
//
//	cfg := provider.Config{
//	    Type:   provider.ProviderTypeGemini,
//	    APIKey: os.Getenv("GEMINI_API_KEY"),
//	}
//	p, err := provider.NewProvider(cfg)
//	if err != nil {
//	    // handle error
//	}
//	text, err := p.Generate(ctx, req)
package provider

// The Provider interface and StreamCallback live in the model package
// (model/provider.go) to avoid import cycles. This package implements model.Provider.

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeGemini    ProviderType = "gemini"
	ProviderTypeOpenAI    ProviderType = "openai"
	ProviderTypeAnthropic ProviderType = "anthropic"
	ProviderTypeOllama    ProviderType = "ollama"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string // Empty uses the service default
	APIKey  string // Unused for Ollama
}
