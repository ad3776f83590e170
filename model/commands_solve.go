package model

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"edusolver/config"
)

// eventBuffer lets a run finish without waiting on a slow Update loop.
const eventBuffer = 16

func emitter(ctx context.Context, ch chan<- Event) EmitFunc {
	return func(ev Event) {
		select {
		case ch <- ev:
		case <-ctx.Done():
		}
	}
}

// SubmitSolve starts a solve for in. Empty input and a busy pipeline are no-ops.
// The session moves to analyzing before this returns; later stages arrive as
// SessionEventMsg values.
func (m *Model) SubmitSolve(in SolveInput) tea.Cmd {
	if !m.Ready() {
		return nil
	}

	start, err := m.Session.BeginSolve(in)
	if err != nil {
		if !errors.Is(err, ErrEmptyInput) {
			config.DebugLog.Debugw("solve rejected", "error", err)
		}
		return nil
	}

	req, err := BuildRequest(in, m.Models)
	if err != nil {
		return nil
	}

	m.Apply(start)

	ctx, cancel := context.WithCancel(m.ctx)
	m.solveCancel = cancel

	events := make(chan Event, eventBuffer)
	pipeline := m.Pipeline
	history := m.History
	providerName := m.Provider.Name()

	go func() {
		defer close(events)
		defer cancel()

		sol, err := pipeline.Run(ctx, start.RunID, req, emitter(ctx, events))
		if err != nil || history == nil {
			return
		}
		rec, err := NewHistoryRecord(req, sol, providerName)
		if err == nil {
			err = history.Save(rec)
		}
		if err != nil {
			config.DebugLog.Warnw("failed to record solve", "error", err)
		}
	}()

	return WaitForEvent(events)
}

// CancelSolve aborts the running solve and returns the pipeline to idle.
func (m *Model) CancelSolve() {
	if !m.Session.Busy() {
		return
	}
	if m.solveCancel != nil {
		m.solveCancel()
		m.solveCancel = nil
	}
	m.Apply(SolveCancelled{RunID: m.Session.RunID})
}

// LoadImage reads an image from disk off the Update loop.
func (m *Model) LoadImage(path string) tea.Cmd {
	return func() tea.Msg {
		img, err := LoadImage(path)
		return ImageLoadedMsg{Image: img, Err: err}
	}
}
