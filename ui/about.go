package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"edusolver/config"
	appmodel "edusolver/model"
)

const ASCIIArt = `
 ___    _      ___      _
| __|__| |_  _/ __| ___| |_ _____ _ _
| _|/ _' | || \__ \/ _ \ \ V / -_) '_|
|___\__,_|\_,_|___/\___/_|\_/\___|_|`

var Features = []string{
	"Step-by-step solutions for math, physics and chemistry",
	"Two solving methods cross-checked by a validation agent",
	"Quick Solve for instant answers, Deep Reason for rigor",
	"Photo of the problem? Attach it as an image",
	"A patient tutor for follow-up questions",
}

func (a AppView) renderHomePage() string {
	var sb strings.Builder

	art := lipgloss.NewStyle().Foreground(successColor).Bold(true)
	sb.WriteString(art.Render(ASCIIArt) + "\n\n")
	sb.WriteString(TitleStyle.Render("Your AI study companion") + "\n\n")

	for _, f := range Features {
		sb.WriteString(DimStyle.Render("• "+f) + "\n")
	}

	sb.WriteString("\n" + FormatFooter("Enter", "Start solving", "Alt+3", "Talk to the tutor") + "\n")

	return lipgloss.Place(a.width, a.bodyHeight(), lipgloss.Center, lipgloss.Center, sb.String())
}

var agentDescriptions = []struct {
	name string
	desc string
}{
	{"Understanding Agent", "Identifies topic, difficulty and the concepts involved"},
	{"Primary Solver", "Works the standard academic method step by step"},
	{"Alternative Solver", "Finds a second route: graphical, intuitive or a shortcut"},
	{"Validation Agent", "Compares both answers and reports the checks it ran"},
	{"Pedagogical Agent", "Adds exam tips and memory aids"},
}

func (a AppView) renderAboutPage() string {
	var sb strings.Builder

	label := lipgloss.NewStyle().Foreground(accentColor).Bold(true)

	sb.WriteString(TitleStyle.Render("System Architecture") + "\n\n")
	sb.WriteString(DimStyle.Render("User Input → Understanding → Solving → Validating → Answer") + "\n\n")

	for _, agent := range agentDescriptions {
		sb.WriteString(fmt.Sprintf("%s  %s\n", label.Render(fmt.Sprintf("%-20s", agent.name)), agent.desc))
	}

	sb.WriteString("\n" + TitleStyle.Render("Modes") + "\n")
	for _, mode := range []appmodel.Mode{appmodel.ModeQuick, appmodel.ModeDeep} {
		p := mode.Profile()
		model := a.dataModel.Models.ForTier(p.Tier)
		budget := "no thinking budget"
		if p.ThinkingBudget > 0 {
			budget = fmt.Sprintf("thinking budget %d", p.ThinkingBudget)
		}
		sb.WriteString(fmt.Sprintf("%s  %s, %s\n", label.Render(fmt.Sprintf("%-20s", mode.Label())), model, budget))
	}

	sb.WriteString("\n" + TitleStyle.Render("Runtime") + "\n")
	cfg := a.dataModel.Config
	sb.WriteString(fmt.Sprintf("%s  %s\n", label.Render(fmt.Sprintf("%-20s", "Provider")), config.GetProviderDisplayName(cfg.Provider)))
	sb.WriteString(fmt.Sprintf("%s  %s\n", label.Render(fmt.Sprintf("%-20s", "Tutor model")), a.dataModel.Models.Chat))
	sb.WriteString(fmt.Sprintf("%s  %s\n", label.Render(fmt.Sprintf("%-20s", "Data directory")), cfg.DataDir()))
	sb.WriteString(fmt.Sprintf("%s  %s\n", label.Render(fmt.Sprintf("%-20s", "Config")), cfg.Path))
	sb.WriteString(fmt.Sprintf("%s  %s (edusolver serve)\n", label.Render(fmt.Sprintf("%-20s", "API address")), cfg.Server.Address))
	sb.WriteString(fmt.Sprintf("%s  %s\n", label.Render(fmt.Sprintf("%-20s", "Version")), a.dataModel.Version))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(mutedColor).
		Padding(1, 2)

	return lipgloss.Place(a.width, a.bodyHeight(), lipgloss.Center, lipgloss.Center, box.Render(sb.String()))
}
