package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"edusolver/storage"
)

// recordSource lets fuzzy search over prompt and topic together.
type recordSource []storage.Record

func (r recordSource) String(i int) string {
	return r[i].Topic + " " + r[i].Prompt
}

func (r recordSource) Len() int {
	return len(r)
}

// applyFilter recomputes the visible record indices from the filter text.
// Matches come back best first; an empty filter keeps history order.
func (a *AppView) applyFilter() {
	pattern := strings.TrimSpace(a.filterInput.Value())
	a.filtered = a.filtered[:0]
	if pattern == "" {
		for i := range a.records {
			a.filtered = append(a.filtered, i)
		}
	} else {
		for _, m := range fuzzy.FindFrom(pattern, recordSource(a.records)) {
			a.filtered = append(a.filtered, m.Index)
		}
	}
	if a.selectedRecord >= len(a.filtered) {
		a.selectedRecord = max(len(a.filtered)-1, 0)
	}
}

func (a AppView) selected() (storage.Record, bool) {
	if a.selectedRecord < 0 || a.selectedRecord >= len(a.filtered) {
		return storage.Record{}, false
	}
	return a.records[a.filtered[a.selectedRecord]], true
}

func (a AppView) renderProgressPage() string {
	listWidth := a.width * 3 / 5
	statsWidth := a.width - listWidth - 2

	left := a.renderHistoryList(listWidth, a.bodyHeight())
	right := a.renderTopicStats(statsWidth)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(listWidth).Render(left),
		"  ",
		lipgloss.NewStyle().Width(statsWidth).Render(right),
	)
}

func (a AppView) renderHistoryList(width, height int) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Recent Problems") + DimStyle.Render(fmt.Sprintf("  %d solved", len(a.records))) + "\n")
	if a.filtering || a.filterInput.Value() != "" {
		b.WriteString(a.filterInput.View() + "\n")
	} else {
		b.WriteString("\n")
	}

	if len(a.filtered) == 0 {
		if len(a.records) == 0 {
			b.WriteString(DimStyle.Render("Nothing solved yet."))
		} else {
			b.WriteString(DimStyle.Render("No matches."))
		}
		return b.String()
	}

	rows := max(height-3, 1)
	start := 0
	if a.selectedRecord >= rows {
		start = a.selectedRecord - rows + 1
	}
	end := min(start+rows, len(a.filtered))

	for i := start; i < end; i++ {
		rec := a.records[a.filtered[i]]
		mark := stageDoneStyle.Render("✓")
		if !rec.Consistent {
			mark = stageErrorStyle.Render("!")
		}
		date := rec.CreatedAt.Local().Format("Jan 02")
		prompt := rec.Prompt
		if prompt == "" && rec.HadImage {
			prompt = "(image)"
		}
		line := fmt.Sprintf("%s %s  %s  %s", mark, DimStyle.Render(date), truncate(rec.Topic, 18), truncate(prompt, width-30))

		if i == a.selectedRecord {
			b.WriteString(SelectedStyle.Render("> ") + line + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	return b.String()
}

func (a AppView) renderTopicStats(width int) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Learning Progress") + "\n\n")

	if len(a.topics) == 0 {
		b.WriteString(DimStyle.Render("Solve a few problems to see\nper-topic progress here."))
		return b.String()
	}

	for _, t := range a.topics {
		b.WriteString(truncate(t.Topic, width) + "\n")
		b.WriteString(a.bar.ViewAs(t.Score/100) + " ")
		b.WriteString(DimStyle.Render(fmt.Sprintf("%3.0f%%  %d solved", t.Score, t.ProblemsSolved)) + "\n\n")
	}

	if rec, ok := a.selected(); ok {
		b.WriteString(DimStyle.Render(strings.Repeat("─", max(width-2, 1))) + "\n")
		b.WriteString(HighlightStyle.Render("Selected") + "\n")
		b.WriteString(wordWrap(rec.Prompt, width) + "\n")
		b.WriteString(DimStyle.Render("Answer: ") + truncate(renderMath(rec.FinalAnswer), width-8) + "\n")
		b.WriteString(DimStyle.Render(fmt.Sprintf("%s · %s · %s", rec.Mode, rec.Provider, rec.ModelName)) + "\n")
	}
	return b.String()
}
