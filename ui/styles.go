package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	dimColor       = lipgloss.Color("7")
	accentColor    = lipgloss.Color("12")
	successColor   = lipgloss.Color("10")
	warningColor   = lipgloss.Color("11")
	dangerColor    = lipgloss.Color("9")
	highlightColor = lipgloss.Color("13")
	mutedColor     = lipgloss.Color("8")

	// Chat roles. No background so terminal transparency is kept.
	UserStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)
	TutorStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	DimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	TitleStyle = lipgloss.NewStyle().
			Bold(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	HighlightStyle = lipgloss.NewStyle().
			Foreground(highlightColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(dangerColor).
			Bold(true)

	// Solution sections
	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)
	understandingTitle = lipgloss.NewStyle().Foreground(highlightColor).Bold(true)
	validationTitle    = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	notesTitle         = lipgloss.NewStyle().Foreground(warningColor).Bold(true)
	answerStyle        = lipgloss.NewStyle().Bold(true)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true).
			Underline(true)
	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(dimColor)

	// Pipeline stages
	stagePendingStyle = lipgloss.NewStyle().Foreground(mutedColor)
	stageActiveStyle  = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	stageDoneStyle    = lipgloss.NewStyle().Foreground(successColor)
	stageErrorStyle   = lipgloss.NewStyle().Foreground(dangerColor)

	navActiveStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)
	navStyle = lipgloss.NewStyle().
			Foreground(dimColor)
)

// FormatFooter formats a footer string with alternating keys and descriptions.
// Keys keep the default color, descriptions are rendered in accent blue+bold.
// Usage: FormatFooter("Enter", "Solve", "Esc", "Cancel")
func FormatFooter(parts ...string) string {
	descStyle := lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	var result []string
	for i := 0; i < len(parts); i += 2 {
		if i+1 < len(parts) {
			result = append(result, parts[i]+" "+descStyle.Render(parts[i+1]))
		}
	}
	return strings.Join(result, "  ")
}
