package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"edusolver/storage"
)

var errNothingToExport = errors.New("nothing to export")

// Transcript converts the tutor conversation for export. Synthetic turns are
// left out, like they are from the upstream history.
func (s Session) Transcript(title, providerName, modelName string) storage.Transcript {
	tr := storage.Transcript{
		Title:      title,
		Provider:   providerName,
		Model:      modelName,
		ExportedAt: time.Now(),
		Messages:   []storage.TranscriptMessage{},
	}
	for _, m := range s.Messages {
		if m.Synthetic || (s.Chatting && m.ID == s.ReplyID) {
			continue
		}
		tr.Messages = append(tr.Messages, storage.TranscriptMessage{
			Role:      string(m.Role),
			Text:      m.Text,
			CreatedAt: m.CreatedAt,
		})
	}
	return tr
}

// ExportTranscript writes the tutor conversation as JSON to the Downloads
// directory.
func (m *Model) ExportTranscript() tea.Cmd {
	title := "conversation"
	for _, msg := range m.Session.Messages {
		if msg.Role == RoleUser {
			title = msg.Text
			break
		}
	}
	providerName := ""
	if m.Provider != nil {
		providerName = m.Provider.Name()
	}
	tr := m.Session.Transcript(title, providerName, m.Models.Chat)

	return func() tea.Msg {
		if len(tr.Messages) == 0 {
			return ExportedMsg{Err: errNothingToExport}
		}
		path := storage.GenerateExportPath("chat", tr.Title, ".json")
		return ExportedMsg{Path: path, Err: storage.ExportJSON(path, tr)}
	}
}

// ExportSolution writes the shown solution as a markdown document.
func (m *Model) ExportSolution() tea.Cmd {
	s := m.Session
	return func() tea.Msg {
		if s.Solution == nil {
			return ExportedMsg{Err: errNothingToExport}
		}
		var doc strings.Builder
		fmt.Fprintf(&doc, "# %s\n\n", s.Solution.Understanding.Topic)
		if p := strings.TrimSpace(s.Prompt); p != "" {
			fmt.Fprintf(&doc, "> %s\n\n", strings.ReplaceAll(p, "\n", "\n> "))
		}
		fmt.Fprintf(&doc, "_Mode: %s_\n\n", s.SolvedMode.Label())
		doc.WriteString(s.Solution.Markdown())

		path := storage.GenerateExportPath("solution", s.Solution.Understanding.Topic, ".md")
		return ExportedMsg{Path: path, Err: storage.ExportText(path, doc.String())}
	}
}
