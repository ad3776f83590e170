package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// ModalType determines the title color of a modal
type ModalType int

const (
	ModalTypeInfo ModalType = iota
	ModalTypeWarning
	ModalTypeError
)

func (t ModalType) color() lipgloss.Color {
	switch t {
	case ModalTypeWarning:
		return warningColor
	case ModalTypeError:
		return dangerColor
	default:
		return accentColor
	}
}

// clampModalWidth shrinks desired to fit the terminal with a margin.
func clampModalWidth(desired, width int) int {
	if desired == 0 {
		desired = 60
	}
	if width < desired+10 {
		desired = width - 10
	}
	if desired < 10 {
		desired = 10
	}
	return desired
}

// RenderThreeSectionModal renders a borderless modal: title (no border), message
// (top border), footer (top border). messageLines are pre-formatted; padding is
// added here.
func RenderThreeSectionModal(title string, messageLines []string, footer string, modalType ModalType, desiredWidth, width, height int) string {
	modalWidth := clampModalWidth(desiredWidth, width)

	// Centered by hand: lipgloss miscounts some emoji widths.
	titleVisualWidth := runewidth.StringWidth(title)
	leftPad := (modalWidth - titleVisualWidth) / 2
	if leftPad < 0 {
		leftPad = 0
	}
	rightPad := modalWidth - titleVisualWidth - leftPad
	if rightPad < 0 {
		rightPad = 0
	}
	centeredTitle := strings.Repeat(" ", leftPad) + title + strings.Repeat(" ", rightPad)

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Foreground(modalType.color()).
		Render(centeredTitle)

	contentLines := make([]string, 0, len(messageLines)+2)
	contentLines = append(contentLines, strings.Repeat(" ", modalWidth))
	contentLines = append(contentLines, messageLines...)
	contentLines = append(contentLines, strings.Repeat(" ", modalWidth))

	messageSection := lipgloss.NewStyle().
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Width(modalWidth).
		Render(strings.Join(contentLines, "\n"))

	footerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(footer)

	content := strings.Join([]string{titleSection, messageSection, footerSection}, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// RenderAcknowledgeModal renders a centered message that only needs Enter.
func RenderAcknowledgeModal(title, message string, modalType ModalType, width, height int) string {
	modalWidth := clampModalWidth(60, width)
	messageStyle := lipgloss.NewStyle().
		Width(modalWidth).
		Align(lipgloss.Center)

	var lines []string
	for _, line := range strings.Split(wordWrap(message, modalWidth-4), "\n") {
		lines = append(lines, messageStyle.Render(line))
	}
	return RenderThreeSectionModal(title, lines, "Press Enter to acknowledge", modalType, modalWidth, width, height)
}

// wordWrap breaks text on spaces so no line is wider than maxWidth cells.
// Existing newlines are kept.
func wordWrap(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return text
	}
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if runewidth.StringWidth(line)+1+runewidth.StringWidth(w) > maxWidth {
				out = append(out, line)
				line = w
				continue
			}
			line += " " + w
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// truncate cuts s to width display cells with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}
