package model

import (
	"context"

	"edusolver/config"
	"edusolver/storage"
)

// Model holds the core application data and business logic state
type Model struct {
	// Core dependencies
	Config   *config.Config
	Provider Provider
	Pipeline *Pipeline
	Tutor    *Tutor
	History  *storage.HistoryStore
	Models   ModelSet

	// Application data
	Session Session

	// CredentialErr is set when the provider key is missing. Nothing else
	// works until it is fixed.
	CredentialErr error

	// Runtime state (not UI)
	ctx         context.Context
	cancel      context.CancelFunc
	solveCancel context.CancelFunc
	chatCancel  context.CancelFunc
	Quitting    bool

	// Application metadata
	Version string
}

// NewModel wires the runtime. provider may be nil when credErr is set.
func NewModel(cfg *config.Config, provider Provider, history *storage.HistoryStore, credErr error, version string) *Model {
	pc := cfg.ActiveProvider()
	models := ModelSet{Quick: pc.QuickModel, Deep: pc.DeepModel, Chat: pc.ChatModel}

	mode, err := ParseMode(cfg.DefaultMode)
	if err != nil {
		mode = ModeDeep
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := &Model{
		Config:        cfg,
		Provider:      provider,
		History:       history,
		Models:        models,
		Session:       NewSession(mode, cfg.Chat.KeepPartialReplies),
		CredentialErr: credErr,
		ctx:           ctx,
		cancel:        cancel,
		Version:       version,
	}

	if provider != nil {
		m.Pipeline = NewPipeline(provider, ChoreographyFromConfig(cfg.Pipeline))
		m.Pipeline.Timeout = cfg.RequestTimeout.Duration
		m.Tutor = NewTutor(provider, models.Chat)
		m.Tutor.Timeout = cfg.RequestTimeout.Duration
	}

	config.DebugLog.Infow("model ready",
		"provider", cfg.Provider,
		"quick", models.Quick,
		"deep", models.Deep,
		"chat", models.Chat,
		"credential_missing", credErr != nil)

	return m
}

// Ready reports whether generation is possible.
func (m *Model) Ready() bool {
	return m.CredentialErr == nil && m.Provider != nil
}

// Apply folds ev into the session.
func (m *Model) Apply(ev Event) {
	m.Session = m.Session.Apply(ev)
}

// Shutdown cancels every in-flight run. Pending goroutines drop their events.
func (m *Model) Shutdown() {
	m.Quitting = true
	m.cancel()
}
