package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	appmodel "edusolver/model"
)

type pipelineStep struct {
	stage appmodel.Stage
	label string
}

var pipelineSteps = []pipelineStep{
	{appmodel.StageAnalyzing, "Understanding"},
	{appmodel.StageSolving, "Solving"},
	{appmodel.StageValidating, "Validating"},
}

type stepStatus int

const (
	stepIdle stepStatus = iota
	stepPending
	stepActive
	stepCompleted
	stepFailed
)

// stepStatusFor places step relative to the current stage.
func stepStatusFor(current, step appmodel.Stage) stepStatus {
	switch current {
	case appmodel.StageComplete:
		return stepCompleted
	case appmodel.StageError:
		return stepFailed
	case appmodel.StageIdle, "":
		return stepIdle
	}

	cur, at := -1, -1
	for i, s := range pipelineSteps {
		if s.stage == current {
			cur = i
		}
		if s.stage == step {
			at = i
		}
	}
	switch {
	case at < cur:
		return stepCompleted
	case at == cur:
		return stepActive
	default:
		return stepPending
	}
}

// renderPipeline draws the stage markers joined by a line. The Validating
// marker is drawn only for modes that run that stage.
func renderPipeline(stage appmodel.Stage, mode appmodel.Mode, spinnerView string) string {
	showValidation := mode.Profile().ShowsValidation
	var parts []string
	for _, step := range pipelineSteps {
		if step.stage == appmodel.StageValidating && !showValidation {
			continue
		}
		var marker string
		var style lipgloss.Style
		switch stepStatusFor(stage, step.stage) {
		case stepActive:
			marker, style = spinnerView, stageActiveStyle
		case stepCompleted:
			marker, style = "✓", stageDoneStyle
		case stepFailed:
			marker, style = "✗", stageErrorStyle
		default:
			marker, style = "○", stagePendingStyle
		}
		parts = append(parts, style.Render(marker+" "+step.label))
	}
	return strings.Join(parts, stagePendingStyle.Render(" ── "))
}

func (a AppView) renderSolverPage() string {
	s := a.dataModel.Session

	modeLine := DimStyle.Render("Mode: ") + HighlightStyle.Render(s.Mode.Label())
	switch s.Mode {
	case appmodel.ModeQuick:
		modeLine += DimStyle.Render("  fast model, direct answer")
	case appmodel.ModeDeep:
		modeLine += DimStyle.Render("  reasoning model, two methods and validation")
	}

	imageLine := DimStyle.Render("No image attached")
	if s.Image != nil {
		imageLine = SelectedStyle.Render("Image: ") + truncate(s.Image.Name, a.width/2) +
			DimStyle.Render(fmt.Sprintf(" (%s, %d KB)  Alt+X to remove", s.Image.MIMEType, len(s.Image.Data)/1024))
	}

	runMode := s.Mode
	if s.Stage == appmodel.StageComplete && s.SolvedMode != "" {
		runMode = s.SolvedMode
	}
	pipeline := DimStyle.Render("Pipeline  ") + renderPipeline(s.Stage, runMode, a.spinner.View())

	var result string
	switch {
	case s.Stage == appmodel.StageError:
		result = "\n" + ErrorStyle.Render(s.ErrorMsg)
	case s.Busy():
		result = "\n" + a.spinner.View() + " " + DimStyle.Render(stageCaption(s.Stage))
	case s.Solution == nil:
		result = "\n" + DimStyle.Render("Ready to unlock understanding. Enter a problem and press Enter.")
	default:
		result = a.solutionView.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		modeLine,
		a.prompt.View(),
		imageLine,
		"",
		pipeline,
		"",
		result,
	)
}

func stageCaption(stage appmodel.Stage) string {
	switch stage {
	case appmodel.StageAnalyzing:
		return "Understanding the problem..."
	case appmodel.StageSolving:
		return "Solving..."
	case appmodel.StageValidating:
		return "Cross-checking the methods..."
	default:
		return ""
	}
}

// renderSolution lays out the structured answer: understanding, method tabs,
// steps, final answer, then validation and notes.
func (a AppView) renderSolution(width int) string {
	sol := a.dataModel.Session.Solution
	if sol == nil {
		return ""
	}
	if width < 20 {
		width = 20
	}
	inner := width - 4
	var b strings.Builder

	// Understanding
	var u strings.Builder
	u.WriteString(understandingTitle.Render("Understanding the Problem") + "\n")
	u.WriteString(fmt.Sprintf("Topic: %s   Difficulty: %s\n", sol.Understanding.Topic, sol.Understanding.Difficulty))
	if len(sol.Understanding.KeyConcepts) > 0 {
		u.WriteString(wordWrap("Key concepts: "+strings.Join(sol.Understanding.KeyConcepts, ", "), inner))
	}
	b.WriteString(sectionStyle.Width(width).Render(strings.TrimRight(u.String(), "\n")) + "\n")

	// Method tabs
	tabs := activeTabStyle.Render("Primary Method")
	if sol.HasAlternative() {
		if a.showAlternative {
			tabs = inactiveTabStyle.Render("Primary Method") + "   " + activeTabStyle.Render("Alternative Method")
		} else {
			tabs += "   " + inactiveTabStyle.Render("Alternative Method") + DimStyle.Render("  (Tab)")
		}
	}
	b.WriteString(tabs + "\n\n")

	method := sol.Method(a.showAlternative)
	b.WriteString(TitleStyle.Render(renderMath(method.MethodName)) + "\n\n")
	for i, step := range method.Steps {
		num := fmt.Sprintf("%2d. ", i+1)
		body := wordWrap(renderMath(step), inner-len(num))
		indent := strings.Repeat(" ", len(num))
		b.WriteString(DimStyle.Render(num) + strings.ReplaceAll(body, "\n", "\n"+indent) + "\n")
	}

	b.WriteString("\n" + DimStyle.Render("FINAL ANSWER") + "\n")
	b.WriteString(answerStyle.Render(wordWrap(renderMath(method.FinalAnswer), inner)) + "\n\n")

	// Validation
	var v strings.Builder
	status := stageDoneStyle.Render("consistent")
	if !sol.Validation.IsConsistent {
		status = stageErrorStyle.Render("inconsistent")
	}
	v.WriteString(validationTitle.Render("Validation Agent") + "  " + status + "\n")
	for _, check := range sol.Validation.ChecksPerformed {
		v.WriteString("• " + wordWrap(renderMath(check), inner-2) + "\n")
	}
	b.WriteString(sectionStyle.Width(width).Render(strings.TrimRight(v.String(), "\n")) + "\n")

	if sol.PedagogicalNotes != "" {
		notes := notesTitle.Render("Pedagogical Notes") + "\n" + wordWrap(renderMath(sol.PedagogicalNotes), inner)
		b.WriteString(sectionStyle.Width(width).Render(notes) + "\n")
	}

	return b.String()
}
