package model

import (
	tea "github.com/charmbracelet/bubbletea"

	"edusolver/storage"
)

// SessionEventMsg carries one event from a running solve or chat to the
// Update loop, together with the channel the next one arrives on.
type SessionEventMsg struct {
	Event  Event
	Events <-chan Event
}

// RunFinishedMsg is sent when a run's event channel closes.
type RunFinishedMsg struct{}

type HistoryListMsg struct {
	Records []storage.Record
	Err     error
}

type ProgressMsg struct {
	Topics []storage.TopicProgress
	Err    error
}

type HistoryDeletedMsg struct {
	ID  string
	Err error
}

type ImageLoadedMsg struct {
	Image *ImageData
	Err   error
}

// ExportedMsg reports where an export was written.
type ExportedMsg struct {
	Path string
	Err  error
}

// WaitForEvent blocks until the next event of a run.
func WaitForEvent(events <-chan Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return RunFinishedMsg{}
		}
		return SessionEventMsg{Event: ev, Events: events}
	}
}
