package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	appmodel "edusolver/model"
	"edusolver/provider"
	"edusolver/storage"
)

// historyLimit bounds the records shown on the progress page.
const historyLimit = 200

type AppView struct {
	// Reference to core data model
	dataModel *appmodel.Model

	// Window state
	width  int
	height int
	ready  bool

	showHelp bool

	// Solver page
	prompt          textarea.Model
	solutionView    viewport.Model
	showAlternative bool
	imagePicker     ImagePickerState

	// Tutor page
	chatInput     textarea.Model
	chatView      viewport.Model
	markdownCache map[string]renderedEntry

	// Progress page
	records        []storage.Record
	topics         []storage.TopicProgress
	filterInput    textinput.Model
	filtering      bool
	filtered       []int
	selectedRecord int
	bar            progress.Model

	spinner spinner.Model

	// Status line
	status         string
	statusIsError  bool
	providerStatus string
}

func newInput(placeholder string) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)

	// Alt+Enter for newline, Enter alone submits (handled separately)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})
	return ta
}

func NewAppView(dataModel *appmodel.Model) AppView {
	prompt := newInput("Type a problem, or attach an image with Alt+I...")
	prompt.Focus()

	chatInput := newInput("Ask the tutor anything...")

	filterInput := textinput.New()
	filterInput.Prompt = "Filter: "
	filterInput.CharLimit = 64

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accentColor)

	return AppView{
		dataModel:      dataModel,
		prompt:         prompt,
		solutionView:   viewport.New(0, 0),
		imagePicker:    NewImagePickerState(""),
		chatInput:      chatInput,
		chatView:       viewport.New(0, 0),
		markdownCache:  make(map[string]renderedEntry),
		filterInput:    filterInput,
		selectedRecord: 0,
		bar:            progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		spinner:        sp,
	}
}

func (a AppView) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textarea.Blink,
		a.spinner.Tick,
		a.dataModel.FetchHistory(historyLimit),
		a.dataModel.FetchProgress(),
	}
	if a.dataModel.Ready() {
		cmds = append(cmds, provider.PingProvider(a.dataModel.Provider, a.dataModel.Models))
	}
	return tea.Batch(cmds...)
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading EduSolver..."
	}
	if a.dataModel.Quitting {
		return ""
	}

	// Modal layers, top first
	if a.showHelp {
		return a.renderHelpModal(a.width, a.height)
	}
	if a.imagePicker.Active {
		return RenderImagePicker(a.imagePicker, a.width, a.height)
	}

	var body string
	switch a.dataModel.Session.Page {
	case appmodel.PageSolver:
		body = a.renderSolverPage()
	case appmodel.PageTutor:
		body = a.renderTutorPage()
	case appmodel.PageProgress:
		body = a.renderProgressPage()
	case appmodel.PageAbout:
		body = a.renderAboutPage()
	default:
		body = a.renderHomePage()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		a.renderHeader(),
		DimStyle.Render(strings.Repeat("─", a.width)),
		lipgloss.NewStyle().Height(a.bodyHeight()).MaxHeight(a.bodyHeight()).Render(body),
		a.renderStatusBar(),
	)
}

// bodyHeight is what is left after the header, separator and status bar.
func (a AppView) bodyHeight() int {
	h := a.height - 3
	if h < 1 {
		h = 1
	}
	return h
}

var pageTitles = map[appmodel.Page]string{
	appmodel.PageHome:     "Home",
	appmodel.PageSolver:   "Solver",
	appmodel.PageTutor:    "Tutor",
	appmodel.PageProgress: "Progress",
	appmodel.PageAbout:    "About",
}

func (a AppView) renderHeader() string {
	s := a.dataModel.Session

	var tabs []string
	for i, p := range appmodel.Pages {
		label := string(rune('1'+i)) + " " + pageTitles[p]
		if p == s.Page {
			tabs = append(tabs, navActiveStyle.Render("["+label+"]"))
		} else {
			tabs = append(tabs, navStyle.Render(" "+label+" "))
		}
	}
	left := TitleStyle.Render("EduSolver") + "  " + strings.Join(tabs, " ")

	right := HighlightStyle.Render(s.Mode.Label())
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return truncate(left, a.width)
	}
	return left + strings.Repeat(" ", gap) + right
}

func (a AppView) renderStatusBar() string {
	var left string
	switch {
	case a.status != "" && a.statusIsError:
		left = ErrorStyle.Render(a.status)
	case a.status != "":
		left = StatusStyle.Render(a.status)
	default:
		left = a.pageFooter()
	}

	right := StatusStyle.Render(a.providerLabel())
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return truncate(stripANSI(left), a.width)
	}
	return left + strings.Repeat(" ", gap) + right
}

func (a AppView) providerLabel() string {
	label := a.dataModel.Config.Provider
	if a.providerStatus != "" {
		label += " " + a.providerStatus
	}
	return label
}

func (a AppView) pageFooter() string {
	switch a.dataModel.Session.Page {
	case appmodel.PageSolver:
		if a.dataModel.Session.Busy() {
			return FormatFooter("Esc", "Cancel", "Alt+H", "Help")
		}
		return FormatFooter("Enter", "Solve", "Alt+M", "Mode", "Alt+I", "Image", "Tab", "Method", "Alt+Y", "Copy", "Alt+H", "Help")
	case appmodel.PageTutor:
		if a.dataModel.Session.Chatting {
			return FormatFooter("Esc", "Stop", "Alt+H", "Help")
		}
		return FormatFooter("Enter", "Send", "Alt+Y", "Copy reply", "PgUp/PgDn", "Scroll", "Alt+H", "Help")
	case appmodel.PageProgress:
		if a.filtering {
			return FormatFooter("Enter", "Apply", "Esc", "Clear")
		}
		return FormatFooter("j/k", "Navigate", "Enter", "Open", "/", "Filter", "d", "Delete", "r", "Refresh")
	default:
		return FormatFooter("Enter", "Start solving", "Alt+1-5", "Pages", "Alt+H", "Help", "Alt+Q", "Quit")
	}
}
