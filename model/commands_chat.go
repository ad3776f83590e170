package model

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// SendChat appends the user's message and streams the tutor reply. Empty text
// and a reply already in flight are no-ops.
func (m *Model) SendChat(text string) tea.Cmd {
	if !m.Ready() {
		return nil
	}

	sent, err := m.Session.BeginChat(text)
	if err != nil {
		return nil
	}

	history := m.Session.History()
	m.Apply(sent)

	ctx, cancel := context.WithCancel(m.ctx)
	m.chatCancel = cancel

	events := make(chan Event, eventBuffer)
	tutor := m.Tutor

	go func() {
		defer close(events)
		defer cancel()
		_, _ = tutor.Send(ctx, sent.RunID, history, sent.Message.Text, emitter(ctx, events))
	}()

	return WaitForEvent(events)
}

// CancelChat stops the streaming reply. It is treated like a failed stream.
func (m *Model) CancelChat() {
	if !m.Session.Chatting {
		return
	}
	if m.chatCancel != nil {
		m.chatCancel()
		m.chatCancel = nil
	}
	reply, _ := m.Session.LastReply()
	partial := ""
	if reply.ID == m.Session.ReplyID {
		partial = reply.Text
	}
	m.Apply(ChatFailed{
		RunID:    m.Session.ChatRunID,
		Partial:  partial,
		Err:      context.Canceled,
		Fallback: syntheticMessage(ChatFailureText),
	})
}
