package ui

import (
	"github.com/charmbracelet/lipgloss"
)

func (a AppView) renderTutorPage() string {
	title := TitleStyle.Render("AI Tutor Chat") + DimStyle.Render("  Ask follow-up questions about any topic")
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		a.chatView.View(),
		a.chatInput.View(),
	)
}
