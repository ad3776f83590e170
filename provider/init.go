package provider

import (
	"edusolver/config"
	"edusolver/model"
)

// InitializeProvider creates the provider selected in the configuration.
//
// This is the single entry point for provider initialization. It handles:
//   - Checking the credential of a hosted provider (environment variables)
//   - Mapping the provider ID to a provider type
//   - Resolving the base URL from config with built-in defaults
//
// A missing credential is returned as a *config.CredentialError together with
// a nil provider. Callers surface it as a blocking configuration error rather
// than failing outright, so the TUI can still start and show the modal.
//
// Example:
//
//	p, err := provider.InitializeProvider(cfg)
//	var credErr *config.CredentialError
//	if errors.As(err, &credErr) {
//	    // show "API Key Missing"
//	}
func InitializeProvider(cfg *config.Config) (model.Provider, error) {
	if err := cfg.RequireCredential(); err != nil {
		if config.Debug {
			config.DebugLog.Warnw("provider credential missing", "provider", cfg.Provider)
		}
		return nil, err
	}

	settings := cfg.ActiveProvider()
	providerType := MapProviderIDToType(cfg.Provider)

	p, err := NewProvider(Config{
		Type:    providerType,
		BaseURL: settings.BaseURL,
		APIKey:  config.APIKey(cfg.Provider),
	})
	if err != nil {
		return nil, err
	}

	if config.Debug {
		config.DebugLog.Infow("provider initialized",
			"provider", cfg.Provider,
			"type", providerType,
			"quick_model", settings.QuickModel,
			"deep_model", settings.DeepModel,
		)
	}
	return p, nil
}

// ModelsFor returns the model identifiers the active provider uses per tier.
func ModelsFor(cfg *config.Config) model.ModelSet {
	settings := cfg.ActiveProvider()
	return model.ModelSet{
		Quick: settings.QuickModel,
		Deep:  settings.DeepModel,
		Chat:  settings.ChatModel,
	}
}
