package provider

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"edusolver/config"
	"edusolver/model"
)

const pingTimeout = 10 * time.Second

// PingProviderMsg is sent when a provider ping completes
type PingProviderMsg struct {
	ProviderID string
	Valid      bool
	Err        error
}

// CheckProvider verifies the provider answers. For Ollama it also verifies the
// configured models are pulled, since a missing model fails every request.
func CheckProvider(ctx context.Context, p model.Provider, models model.ModelSet) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	op, ok := p.(*OllamaProvider)
	if !ok {
		return nil
	}
	for _, name := range []string{models.Quick, models.Deep, models.Chat} {
		if name == "" {
			continue
		}
		has, err := op.HasModel(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to list models: %w", err)
		}
		if !has {
			return fmt.Errorf("model %s is not pulled (run: ollama pull %s)", name, name)
		}
	}
	return nil
}

// PingProvider runs CheckProvider in the background for the TUI status line.
func PingProvider(p model.Provider, models model.ModelSet) tea.Cmd {
	return func() tea.Msg {
		err := CheckProvider(context.Background(), p, models)

		if config.Debug {
			if err != nil {
				config.DebugLog.Warnw("provider ping failed", "provider", p.Name(), "error", err)
			} else {
				config.DebugLog.Debugw("provider ping successful", "provider", p.Name())
			}
		}

		return PingProviderMsg{
			ProviderID: p.Name(),
			Valid:      err == nil,
			Err:        err,
		}
	}
}
