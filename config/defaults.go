package config

import "time"

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		DataDirectory: GetDefaultDataDir(),
		Provider:      ProviderGemini,
		DefaultMode:   "deep",
		Providers:     map[string]ProviderConfig{},
		Pipeline: PipelineConfig{
			AnalyzingQuick: Duration{500 * time.Millisecond},
			AnalyzingDeep:  Duration{1500 * time.Millisecond},
			ValidatingDeep: Duration{2000 * time.Millisecond},
		},
		Server: ServerConfig{
			Address:        "127.0.0.1:8080",
			AllowedOrigins: []string{"http://localhost:5173"},
		},
	}
}

func GenerateConfigTemplate() string {
	return `# EduSolver Configuration
# Location: ~/.config/edusolver/config.toml
# This file uses TOML format: https://toml.io

# Directory for history.db and debug.log
data_directory = "~/.local/share/edusolver"

# Generation provider: gemini, openai, anthropic or ollama
# API keys are read from the environment (GEMINI_API_KEY, OPENAI_API_KEY,
# ANTHROPIC_API_KEY). Ollama needs none.
provider = "gemini"

# Mode selected at startup: quick or deep
default_mode = "deep"

# Upper bound for one service call, e.g. "90s". "0s" waits forever.
request_timeout = "0s"

# Per-provider model overrides. Empty values use the built-in defaults.
[providers.gemini]
quick_model = "gemini-3-flash-preview"
deep_model = "gemini-3-pro-preview"
chat_model = "gemini-3-flash-preview"

[providers.ollama]
base_url = "http://localhost:11434"
quick_model = "qwen3:4b"
deep_model = "qwen3:14b"
chat_model = "qwen3:4b"

# Cosmetic stage delays shown by the terminal client
[pipeline]
analyzing_quick = "500ms"
analyzing_deep = "1.5s"
validating_deep = "2s"

[chat]
# Keep the text received before a tutor reply failed
keep_partial_replies = false

[server]
address = "127.0.0.1:8080"
# Browser origins allowed to call the API, as scheme://host[:port] or "*".
# An empty list allows same-origin requests only.
allowed_origins = ["http://localhost:5173"]
`
}
