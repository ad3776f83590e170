package model

import (
	"encoding/json"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"edusolver/storage"
)

// NewHistoryRecord flattens a solved request for the history store.
func NewHistoryRecord(req GenerationRequest, sol *Solution, providerName string) (*storage.Record, error) {
	doc, err := json.Marshal(sol)
	if err != nil {
		return nil, fmt.Errorf("failed to encode solution: %w", err)
	}
	return &storage.Record{
		Prompt:       req.Prompt,
		Mode:         string(req.Mode),
		Topic:        sol.Understanding.Topic,
		Difficulty:   sol.Understanding.Difficulty,
		FinalAnswer:  sol.PrimarySolution.FinalAnswer,
		Consistent:   sol.Validation.IsConsistent,
		HadImage:     req.HasImage(),
		Provider:     providerName,
		ModelName:    req.Model,
		SolutionJSON: string(doc),
	}, nil
}

// DecodeRecord returns the solution stored in rec.
func DecodeRecord(rec storage.Record) (*Solution, error) {
	return ParseSolution(rec.SolutionJSON)
}

// FetchHistory retrieves the newest history records
func (m *Model) FetchHistory(limit int) tea.Cmd {
	if m.History == nil {
		return nil
	}
	store := m.History
	return func() tea.Msg {
		records, err := store.List(limit)
		return HistoryListMsg{Records: records, Err: err}
	}
}

// FetchProgress retrieves per-topic statistics
func (m *Model) FetchProgress() tea.Cmd {
	if m.History == nil {
		return nil
	}
	store := m.History
	return func() tea.Msg {
		topics, err := store.Progress()
		return ProgressMsg{Topics: topics, Err: err}
	}
}

// DeleteHistory removes one record
func (m *Model) DeleteHistory(id string) tea.Cmd {
	if m.History == nil {
		return nil
	}
	store := m.History
	return func() tea.Msg {
		return HistoryDeletedMsg{ID: id, Err: store.Delete(id)}
	}
}

// ShowRecord puts a stored solution on the solver page.
func (m *Model) ShowRecord(rec storage.Record) error {
	if m.Session.Busy() {
		return ErrBusy
	}
	sol, err := DecodeRecord(rec)
	if err != nil {
		return err
	}
	mode, err := ParseMode(rec.Mode)
	if err != nil {
		mode = m.Session.Mode
	}
	m.Apply(RecordOpened{Prompt: rec.Prompt, Mode: mode, Solution: sol})
	return nil
}
