package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"edusolver/config"
)

// ErrorModal is a standalone program shown instead of the main UI when
// startup cannot continue, such as a missing API key.
type ErrorModal struct {
	title   string
	message string
	width   int
	height  int
}

func NewErrorModal(title, message string) ErrorModal {
	return ErrorModal{
		title:   title,
		message: message,
	}
}

// NewCredentialModal builds the blocking "API Key Missing" screen for err.
func NewCredentialModal(err *config.CredentialError) ErrorModal {
	var b strings.Builder
	b.WriteString("Please provide a valid ")
	b.WriteString(config.GetProviderDisplayName(err.Provider))
	b.WriteString(" API key in your environment to use EduSolver.\n\n")
	b.WriteString("Set " + strings.Join(err.EnvVars, " or "))
	b.WriteString(", or pick another provider in\n")
	b.WriteString(config.GetConfigFilePath())
	return NewErrorModal("API Key Missing", b.String())
}

func (m ErrorModal) Init() tea.Cmd {
	return nil
}

func (m ErrorModal) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "esc", "ctrl+c", "q":
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m ErrorModal) View() string {
	if m.width < 20 || m.height < 10 {
		return "Terminal too small"
	}

	modalWidth := clampModalWidth(64, m.width)
	messageStyle := lipgloss.NewStyle().
		Width(modalWidth).
		Align(lipgloss.Center)

	var lines []string
	for _, line := range strings.Split(wordWrap(m.message, modalWidth-4), "\n") {
		lines = append(lines, messageStyle.Render(line))
	}

	return RenderThreeSectionModal(m.title, lines, "Press Enter to quit", ModalTypeError, modalWidth, m.width, m.height)
}
