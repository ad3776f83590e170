package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"edusolver/config"
)

// imageTypes are the attachments the solver accepts.
var imageTypes = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

// ImagePickerState wraps a bubbles filepicker for choosing a problem image.
type ImagePickerState struct {
	Active  bool
	Loading bool
	Picker  filepicker.Model
	Spinner spinner.Model
}

func NewImagePickerState(startDir string) ImagePickerState {
	fp := filepicker.New()
	fp.AllowedTypes = imageTypes
	fp.Height = 10
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.ShowPermissions = false
	fp.ShowSize = true
	fp.ShowHidden = false

	if startDir == "" {
		startDir = config.GetHomeDir()
	}
	fp.CurrentDirectory = startDir

	fp.Styles.Directory = lipgloss.NewStyle().
		Foreground(accentColor).
		Bold(true)
	fp.Styles.File = lipgloss.NewStyle().
		Foreground(lipgloss.Color("15"))
	fp.Styles.Selected = lipgloss.NewStyle().
		Foreground(successColor).
		Bold(true)
	fp.Styles.Cursor = lipgloss.NewStyle().
		Foreground(successColor)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return ImagePickerState{
		Picker:  fp,
		Spinner: sp,
	}
}

// Open activates the picker and reads its directory.
func (s *ImagePickerState) Open() tea.Cmd {
	s.Active = true
	s.Loading = false
	return s.Picker.Init()
}

func (s *ImagePickerState) Close() {
	s.Active = false
	s.Loading = false
}

// Update forwards msg to the picker and returns the chosen path, if any.
func (s *ImagePickerState) Update(msg tea.Msg) (string, tea.Cmd) {
	var cmd tea.Cmd
	s.Picker, cmd = s.Picker.Update(msg)
	if ok, path := s.Picker.DidSelectFile(msg); ok {
		return path, cmd
	}
	return "", cmd
}

func RenderImagePicker(state ImagePickerState, width, height int) string {
	if width < 20 || height < 10 {
		return "Terminal too small"
	}

	modalWidth := clampModalWidth(80, width)

	if state.Loading {
		line := lipgloss.NewStyle().
			Bold(true).
			Align(lipgloss.Center).
			Width(modalWidth).
			Render(fmt.Sprintf("%s Reading image...", state.Spinner.View()))
		return RenderThreeSectionModal("Attach Image", []string{line}, "Press Esc to cancel", ModalTypeInfo, modalWidth, width, height)
	}

	contentStyle := lipgloss.NewStyle().
		Width(modalWidth).
		Align(lipgloss.Left)

	var lines []string
	lines = append(lines, contentStyle.Render("  "+DimStyle.Render(truncate(state.Picker.CurrentDirectory, modalWidth-4))))
	lines = append(lines, "")
	for _, line := range strings.Split(state.Picker.View(), "\n") {
		lines = append(lines, contentStyle.Render("  "+strings.TrimRight(line, " ")))
	}

	footer := FormatFooter("j/k", "Navigate", "h/l", "Back/Open", "Enter", "Attach", "Esc", "Cancel")
	return RenderThreeSectionModal("Attach Image", lines, footer, ModalTypeInfo, modalWidth, width, height)
}
