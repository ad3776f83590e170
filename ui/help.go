package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func helpLines(heading string, rows [][2]string) string {
	blue := lipgloss.NewStyle().Foreground(accentColor)
	lines := []string{blue.Render("## " + heading)}
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("• %-13s %s", r[0], r[1]))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (a AppView) renderHelpModal(width, height int) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(successColor).
		Render("EduSolver - Keyboard Shortcuts")

	global := helpLines("Global", [][2]string{
		{"Alt+1..5", "Home, Solver, Tutor, Progress, About"},
		{"Alt+M", "Toggle Quick Solve / Deep Reason"},
		{"Esc", "Cancel running solve or reply"},
		{"Alt+H", "Toggle this help"},
		{"Alt+Q", "Quit"},
	})

	solver := helpLines("Solver", [][2]string{
		{"Enter", "Solve"},
		{"Alt+Enter", "New line"},
		{"Alt+I", "Attach image"},
		{"Alt+X", "Remove image"},
		{"Tab", "Primary / alternative method"},
		{"Alt+Y", "Copy final answer"},
		{"Alt+E", "Export as markdown"},
		{"Alt+R", "Reset"},
	})

	tutor := helpLines("Tutor", [][2]string{
		{"Enter", "Send"},
		{"Alt+Y", "Copy last reply"},
		{"Alt+E", "Export conversation"},
		{"PgUp/PgDn", "Scroll"},
	})

	progress := helpLines("Progress", [][2]string{
		{"j/k", "Navigate"},
		{"Enter", "Open on solver page"},
		{"/", "Fuzzy filter"},
		{"d", "Delete record"},
		{"r", "Refresh"},
	})

	columnStyle := lipgloss.NewStyle().Width(44).PaddingLeft(4)
	columns := lipgloss.JoinHorizontal(lipgloss.Top,
		columnStyle.Render(lipgloss.JoinVertical(lipgloss.Left, global, "", tutor)),
		columnStyle.Render(lipgloss.JoinVertical(lipgloss.Left, solver, "", progress)),
	)

	footer := lipgloss.NewStyle().
		Foreground(dimColor).
		Render("Press Alt+H or Esc to close this help")

	content := lipgloss.JoinVertical(lipgloss.Center, title, "", columns, "", footer)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(mutedColor).
		Padding(1, 2)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box.Render(content))
}
