package ui

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"edusolver/config"
	appmodel "edusolver/model"
	"edusolver/provider"
)

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	// The picker reads directories through its own messages; keys are
	// handled in handlePickerKey so Esc can close it first.
	if a.imagePicker.Active {
		if _, isKey := msg.(tea.KeyMsg); !isKey {
			if _, isTick := msg.(spinner.TickMsg); !isTick {
				_, cmd = a.imagePicker.Update(msg)
				cmds = append(cmds, cmd)
			}
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.resize()
		return a, tea.Batch(cmds...)

	case spinner.TickMsg:
		a.spinner, cmd = a.spinner.Update(msg)
		a.imagePicker.Spinner, _ = a.imagePicker.Spinner.Update(msg)
		if a.dataModel.Session.Chatting {
			a.refreshChat(true)
		}
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)

	case appmodel.SessionEventMsg:
		a.dataModel.Apply(msg.Event)
		a.afterEvent(msg.Event)
		return a, appmodel.WaitForEvent(msg.Events)

	case appmodel.RunFinishedMsg:
		// A finished solve may have added a history record.
		return a, tea.Batch(
			a.dataModel.FetchHistory(historyLimit),
			a.dataModel.FetchProgress(),
		)

	case appmodel.ImageLoadedMsg:
		a.imagePicker.Close()
		if msg.Err != nil {
			a.setError(fmt.Sprintf("Could not attach image: %v", msg.Err))
			return a, nil
		}
		a.dataModel.Apply(appmodel.ImageAttached{Image: msg.Image})
		a.setStatus("Attached " + msg.Image.Name)
		return a, nil

	case appmodel.HistoryListMsg:
		if msg.Err != nil {
			config.DebugLog.Warnw("failed to load history", "error", msg.Err)
			a.setError("Failed to load history")
			return a, nil
		}
		a.records = msg.Records
		a.applyFilter()
		return a, nil

	case appmodel.ProgressMsg:
		if msg.Err != nil {
			config.DebugLog.Warnw("failed to load progress", "error", msg.Err)
			return a, nil
		}
		a.topics = msg.Topics
		return a, nil

	case appmodel.HistoryDeletedMsg:
		if msg.Err != nil {
			a.setError("Failed to delete record")
			return a, nil
		}
		a.setStatus("Record deleted")
		return a, tea.Batch(
			a.dataModel.FetchHistory(historyLimit),
			a.dataModel.FetchProgress(),
		)

	case appmodel.ExportedMsg:
		if msg.Err != nil {
			a.setError("Export failed: " + msg.Err.Error())
			config.DebugLog.Warnw("export failed", "error", msg.Err)
			return a, nil
		}
		a.setStatus("Saved to " + msg.Path)
		return a, nil

	case provider.PingProviderMsg:
		if msg.Valid {
			a.providerStatus = "●"
		} else {
			a.providerStatus = "○ unreachable"
			config.DebugLog.Warnw("provider check failed", "provider", msg.ProviderID, "error", msg.Err)
		}
		return a, nil
	}

	return a, tea.Batch(cmds...)
}

func (a *AppView) resize() {
	inputWidth := a.width - 2
	a.prompt.SetWidth(inputWidth)
	a.chatInput.SetWidth(inputWidth)

	// Solver: mode line, prompt (3), image line, pipeline (3), tabs header
	a.solutionView.Width = a.width
	a.solutionView.Height = max(a.bodyHeight()-10, 3)

	// Tutor: transcript over a 3 line input
	a.chatView.Width = a.width
	a.chatView.Height = max(a.bodyHeight()-4, 3)

	a.bar.Width = min(40, max(a.width/3, 10))

	a.refreshSolution()
	a.refreshChat(true)
}

func (a *AppView) afterEvent(ev appmodel.Event) {
	switch ev.(type) {
	case appmodel.SolveSucceeded:
		a.showAlternative = false
		a.refreshSolution()
		a.solutionView.GotoTop()
	case appmodel.SolveFailed:
		a.refreshSolution()
	case appmodel.ChatChunk, appmodel.ChatCompleted, appmodel.ChatFailed:
		a.refreshChat(true)
	}
}

func (a *AppView) refreshSolution() {
	a.solutionView.SetContent(a.renderSolution(a.solutionView.Width - 2))
}

func (a *AppView) refreshChat(gotoBottom bool) {
	a.chatView.SetContent(a.renderChat())
	if gotoBottom {
		a.chatView.GotoBottom()
	}
}

func (a *AppView) setStatus(s string) {
	a.status = s
	a.statusIsError = false
}

func (a *AppView) setError(s string) {
	a.status = s
	a.statusIsError = true
}

func (a AppView) quit() (tea.Model, tea.Cmd) {
	config.DebugLog.Infow("quitting")
	a.dataModel.Shutdown()
	return a, tea.Quit
}

func (a AppView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any key clears the last status message.
	a.status = ""

	// PRIORITY 0: always-global shortcuts
	switch msg.String() {
	case "ctrl+c", "alt+q":
		return a.quit()
	case "alt+h":
		a.showHelp = !a.showHelp
		return a, nil
	}

	// PRIORITY 1: modal layers
	if a.showHelp {
		if msg.String() == "esc" {
			a.showHelp = false
		}
		return a, nil
	}
	if a.imagePicker.Active {
		return a.handlePickerKey(msg)
	}

	// PRIORITY 2: cancellation and navigation
	switch msg.String() {
	case "esc":
		s := a.dataModel.Session
		if s.Busy() {
			a.dataModel.CancelSolve()
			a.setStatus("Solve cancelled")
			return a, nil
		}
		if s.Chatting {
			a.dataModel.CancelChat()
			a.refreshChat(true)
			return a, nil
		}
	case "alt+1", "alt+2", "alt+3", "alt+4", "alt+5":
		idx := int(msg.String()[4] - '1')
		return a.goTo(appmodel.Pages[idx])
	case "alt+m":
		if a.dataModel.Session.Busy() {
			return a, nil
		}
		a.dataModel.Apply(appmodel.ModeSelected{Mode: a.dataModel.Session.Mode.Toggle()})
		a.setStatus(a.dataModel.Session.Mode.Label() + " mode")
		return a, nil
	}

	switch a.dataModel.Session.Page {
	case appmodel.PageSolver:
		return a.handleSolverKey(msg)
	case appmodel.PageTutor:
		return a.handleTutorKey(msg)
	case appmodel.PageProgress:
		return a.handleProgressKey(msg)
	case appmodel.PageHome:
		if msg.String() == "enter" {
			return a.goTo(appmodel.PageSolver)
		}
	}
	return a, nil
}

func (a AppView) goTo(page appmodel.Page) (tea.Model, tea.Cmd) {
	a.dataModel.Apply(appmodel.PageSelected{Page: page})

	a.prompt.Blur()
	a.chatInput.Blur()
	switch page {
	case appmodel.PageSolver:
		a.refreshSolution()
		return a, a.prompt.Focus()
	case appmodel.PageTutor:
		a.refreshChat(true)
		return a, a.chatInput.Focus()
	case appmodel.PageProgress:
		return a, tea.Batch(
			a.dataModel.FetchHistory(historyLimit),
			a.dataModel.FetchProgress(),
		)
	}
	return a, nil
}

func (a AppView) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		a.imagePicker.Close()
		return a, nil
	}
	if a.imagePicker.Loading {
		return a, nil
	}

	path, cmd := a.imagePicker.Update(msg)
	if path == "" {
		return a, cmd
	}
	a.imagePicker.Loading = true
	return a, tea.Batch(cmd, a.dataModel.LoadImage(path))
}

func (a AppView) handleSolverKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := a.dataModel.Session

	switch msg.String() {
	case "enter":
		in := appmodel.SolveInput{
			Prompt: a.prompt.Value(),
			Image:  s.Image,
			Mode:   s.Mode,
		}
		if in.IsEmpty() || s.Busy() {
			return a, nil
		}
		cmd := a.dataModel.SubmitSolve(in)
		if cmd == nil {
			return a, nil
		}
		a.refreshSolution()
		return a, cmd

	case "alt+i":
		if s.Busy() {
			return a, nil
		}
		return a, a.imagePicker.Open()

	case "alt+x":
		a.dataModel.Apply(appmodel.ImageCleared{})
		return a, nil

	case "alt+r":
		if s.Busy() {
			return a, nil
		}
		a.dataModel.Apply(appmodel.Reset{})
		a.prompt.Reset()
		a.showAlternative = false
		a.refreshSolution()
		return a, nil

	case "tab":
		if s.Solution != nil && s.Solution.HasAlternative() {
			a.showAlternative = !a.showAlternative
			a.refreshSolution()
		}
		return a, nil

	case "alt+y":
		if s.Solution == nil {
			return a, nil
		}
		answer := s.Solution.Method(a.showAlternative).FinalAnswer
		if err := clipboard.WriteAll(answer); err != nil {
			a.setError("Clipboard unavailable")
			return a, nil
		}
		a.setStatus("Final answer copied")
		return a, nil

	case "alt+e":
		if s.Solution == nil || s.Busy() {
			return a, nil
		}
		return a, a.dataModel.ExportSolution()

	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		a.solutionView, cmd = a.solutionView.Update(msg)
		return a, cmd
	}

	if s.Busy() {
		return a, nil
	}
	var cmd tea.Cmd
	a.prompt, cmd = a.prompt.Update(msg)
	return a, cmd
}

func (a AppView) handleTutorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		text := a.chatInput.Value()
		cmd := a.dataModel.SendChat(text)
		if cmd == nil {
			return a, nil
		}
		a.chatInput.Reset()
		a.refreshChat(true)
		return a, cmd

	case "alt+y":
		reply, ok := a.dataModel.Session.LastReply()
		if !ok {
			return a, nil
		}
		if err := clipboard.WriteAll(reply.Text); err != nil {
			a.setError("Clipboard unavailable")
			return a, nil
		}
		a.setStatus("Reply copied")
		return a, nil

	case "alt+e":
		return a, a.dataModel.ExportTranscript()

	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.chatInput, cmd = a.chatInput.Update(msg)
	return a, cmd
}

func (a AppView) handleProgressKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.filtering {
		switch msg.String() {
		case "esc":
			a.filtering = false
			a.filterInput.Reset()
			a.filterInput.Blur()
			a.applyFilter()
			return a, nil
		case "enter":
			a.filtering = false
			a.filterInput.Blur()
			return a, nil
		}
		var cmd tea.Cmd
		a.filterInput, cmd = a.filterInput.Update(msg)
		a.applyFilter()
		return a, cmd
	}

	switch msg.String() {
	case "/":
		a.filtering = true
		return a, a.filterInput.Focus()
	case "j", "down":
		if a.selectedRecord < len(a.filtered)-1 {
			a.selectedRecord++
		}
	case "k", "up":
		if a.selectedRecord > 0 {
			a.selectedRecord--
		}
	case "r":
		return a, tea.Batch(
			a.dataModel.FetchHistory(historyLimit),
			a.dataModel.FetchProgress(),
		)
	case "d":
		if rec, ok := a.selected(); ok {
			return a, a.dataModel.DeleteHistory(rec.ID)
		}
	case "enter":
		rec, ok := a.selected()
		if !ok {
			return a, nil
		}
		if err := a.dataModel.ShowRecord(rec); err != nil {
			if errors.Is(err, appmodel.ErrBusy) {
				a.setError("A solve is running")
			} else {
				a.setError("Could not open record")
				config.DebugLog.Warnw("failed to open record", "id", rec.ID, "error", err)
			}
			return a, nil
		}
		a.prompt.SetValue(rec.Prompt)
		a.showAlternative = false
		return a.goTo(appmodel.PageSolver)
	}
	return a, nil
}
