package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration is a time.Duration that reads and writes TOML strings like "1.5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ProviderConfig holds the endpoint and model ids of one provider.
type ProviderConfig struct {
	BaseURL    string `toml:"base_url,omitempty"`
	QuickModel string `toml:"quick_model"`
	DeepModel  string `toml:"deep_model"`
	ChatModel  string `toml:"chat_model"`
}

// PipelineConfig holds the cosmetic stage delays of the interactive client.
type PipelineConfig struct {
	AnalyzingQuick Duration `toml:"analyzing_quick"`
	AnalyzingDeep  Duration `toml:"analyzing_deep"`
	ValidatingDeep Duration `toml:"validating_deep"`
}

type ChatConfig struct {
	// KeepPartialReplies keeps streamed text when a reply fails mid-stream.
	KeepPartialReplies bool `toml:"keep_partial_replies"`
}

type ServerConfig struct {
	Address        string   `toml:"address"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type Config struct {
	DataDirectory  string                    `toml:"data_directory"`
	Provider       string                    `toml:"provider"`
	DefaultMode    string                    `toml:"default_mode"`
	RequestTimeout Duration                  `toml:"request_timeout"`
	Providers      map[string]ProviderConfig `toml:"providers"`
	Pipeline       PipelineConfig            `toml:"pipeline"`
	Chat           ChatConfig                `toml:"chat"`
	Server         ServerConfig              `toml:"server"`

	// Path is the file the config was read from; empty for defaults.
	Path string `toml:"-"`
}

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// ActiveProvider returns the settings of the selected provider, falling back to
// the built-in defaults for any field left empty.
func (c *Config) ActiveProvider() ProviderConfig {
	return c.ProviderSettings(c.Provider)
}

// ProviderSettings returns the merged settings for providerID.
func (c *Config) ProviderSettings(providerID string) ProviderConfig {
	def := DefaultProviderConfig(providerID)
	pc, ok := c.Providers[providerID]
	if !ok {
		return def
	}
	if pc.BaseURL == "" {
		pc.BaseURL = def.BaseURL
	}
	if pc.QuickModel == "" {
		pc.QuickModel = def.QuickModel
	}
	if pc.DeepModel == "" {
		pc.DeepModel = def.DeepModel
	}
	if pc.ChatModel == "" {
		pc.ChatModel = def.ChatModel
	}
	return pc
}

func (c *Config) applyEnvOverrides() {
	if p := os.Getenv("EDUSOLVER_PROVIDER"); p != "" {
		c.Provider = strings.ToLower(p)
	}
	if dataDir := os.Getenv("EDUSOLVER_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if host := os.Getenv("EDUSOLVER_OLLAMA_HOST"); host != "" {
		pc := c.Providers[ProviderOllama]
		pc.BaseURL = host
		c.setProvider(ProviderOllama, pc)
	}
}

func (c *Config) setProvider(id string, pc ProviderConfig) {
	if c.Providers == nil {
		c.Providers = make(map[string]ProviderConfig)
	}
	c.Providers[id] = pc
}

// Validate checks values that would otherwise fail later and far away.
func (c *Config) Validate() error {
	if !IsKnownProvider(c.Provider) {
		return fmt.Errorf("unknown provider %q (want one of %s)", c.Provider, strings.Join(ProviderIDs, ", "))
	}
	switch c.DefaultMode {
	case "quick", "deep":
	default:
		return fmt.Errorf("invalid default_mode %q (want quick or deep)", c.DefaultMode)
	}
	if c.RequestTimeout.Duration < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	for _, origin := range c.Server.AllowedOrigins {
		if err := ValidateOrigin(origin); err != nil {
			return fmt.Errorf("invalid server.allowed_origins: %w", err)
		}
	}
	return nil
}

// ValidateOrigin accepts "*" or an absolute http(s) origin without a path.
// An empty allowed_origins list is valid and disables cross-origin access.
func ValidateOrigin(origin string) error {
	if origin == "*" {
		return nil
	}
	if strings.Contains(origin, "*") {
		return fmt.Errorf("origin %q: wildcards are only allowed as \"*\"", origin)
	}
	rest, ok := strings.CutPrefix(origin, "http://")
	if !ok {
		rest, ok = strings.CutPrefix(origin, "https://")
	}
	if !ok {
		return fmt.Errorf("origin %q must start with http:// or https://", origin)
	}
	if rest == "" || strings.ContainsAny(rest, "/ ") {
		return fmt.Errorf("origin %q must be scheme://host[:port]", origin)
	}
	return nil
}

// Load reads the config file, creating it from the template on first run, and
// applies environment overrides.
func Load() (*Config, error) {
	path := GetConfigFilePath()
	if !FileExists(path) {
		if err := CreateDefaultConfig(path); err != nil {
			return nil, fmt.Errorf("failed to create config: %w", err)
		}
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if FileExists(path) {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		cfg.Path = path
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dataDir := cfg.DataDir()
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to prepare data directory: %w", err)
	}

	return cfg, nil
}
