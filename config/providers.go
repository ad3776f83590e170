package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
)

const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// ProviderIDs lists the supported providers.
var ProviderIDs = []string{ProviderGemini, ProviderOpenAI, ProviderAnthropic, ProviderOllama}

func IsKnownProvider(id string) bool {
	return slices.Contains(ProviderIDs, id)
}

// ErrCredentialMissing is matched by every *CredentialError.
var ErrCredentialMissing = errors.New("API key missing")

// CredentialError reports which environment variables were checked.
type CredentialError struct {
	Provider string
	EnvVars  []string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("%s: set %s for provider %s", ErrCredentialMissing, strings.Join(e.EnvVars, " or "), e.Provider)
}

func (e *CredentialError) Unwrap() error {
	return ErrCredentialMissing
}

// credentialEnv lists the variables holding each provider's key, in lookup order.
var credentialEnv = map[string][]string{
	ProviderGemini:    {"GEMINI_API_KEY", "GOOGLE_API_KEY", "API_KEY"},
	ProviderOpenAI:    {"OPENAI_API_KEY"},
	ProviderAnthropic: {"ANTHROPIC_API_KEY"},
}

// CredentialEnvVars returns the environment variables checked for providerID.
// Providers that need no key return nil.
func CredentialEnvVars(providerID string) []string {
	return credentialEnv[providerID]
}

// APIKey returns the first non-empty credential for providerID.
func APIKey(providerID string) string {
	for _, name := range credentialEnv[providerID] {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

// RequireCredential returns a *CredentialError when the active provider needs
// a key and none is set.
func (c *Config) RequireCredential() error {
	vars := CredentialEnvVars(c.Provider)
	if len(vars) == 0 {
		return nil
	}
	if APIKey(c.Provider) == "" {
		return &CredentialError{Provider: c.Provider, EnvVars: vars}
	}
	return nil
}

// GetProviderDisplayName returns the display name for a provider
func GetProviderDisplayName(providerID string) string {
	switch providerID {
	case ProviderGemini:
		return "Google Gemini"
	case ProviderOllama:
		return "Ollama"
	case ProviderAnthropic:
		return "Anthropic"
	case ProviderOpenAI:
		return "OpenAI"
	default:
		return providerID
	}
}

// DefaultProviderConfig returns the built-in endpoint and models for providerID.
func DefaultProviderConfig(providerID string) ProviderConfig {
	switch providerID {
	case ProviderGemini:
		return ProviderConfig{
			QuickModel: "gemini-3-flash-preview",
			DeepModel:  "gemini-3-pro-preview",
			ChatModel:  "gemini-3-flash-preview",
		}
	case ProviderOpenAI:
		return ProviderConfig{
			BaseURL:    "https://api.openai.com/v1",
			QuickModel: "gpt-5-mini",
			DeepModel:  "gpt-5",
			ChatModel:  "gpt-5-mini",
		}
	case ProviderAnthropic:
		return ProviderConfig{
			BaseURL:    "https://api.anthropic.com",
			QuickModel: "claude-haiku-4-5",
			DeepModel:  "claude-sonnet-4-5",
			ChatModel:  "claude-haiku-4-5",
		}
	case ProviderOllama:
		return ProviderConfig{
			BaseURL:    "http://localhost:11434",
			QuickModel: "qwen3:4b",
			DeepModel:  "qwen3:14b",
			ChatModel:  "qwen3:4b",
		}
	default:
		return ProviderConfig{}
	}
}
