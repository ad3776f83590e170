package ui

import (
	"fmt"
	"regexp"
	"strings"

	markdown "github.com/MichaelMure/go-term-markdown"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"

	appmodel "edusolver/model"
)

var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	ansiRegex       = regexp.MustCompile(`\x1b\[[0-9;]*m`)
	fracRegex       = regexp.MustCompile(`\\[dt]?frac\{([^{}]*)\}\{([^{}]*)\}`)
	sqrtRegex       = regexp.MustCompile(`\\sqrt\{([^{}]*)\}`)
	textRegex       = regexp.MustCompile(`\\(?:text|mathrm|mathbf)\{([^{}]*)\}`)
	superRegex      = regexp.MustCompile(`\^(?:\{([0-9n])\}|([0-9n]))`)
	simpleTerm      = regexp.MustCompile(`^[A-Za-z0-9.]+$`)
)

// latexSymbols maps LaTeX commands to their Unicode glyphs. Longer commands
// that share a prefix must come first.
var latexSymbols = strings.NewReplacer(
	`\left(`, "(", `\right)`, ")",
	`\left[`, "[", `\right]`, "]",
	`\left|`, "|", `\right|`, "|",
	`\rightarrow`, "→", `\Rightarrow`, "⇒", `\leftarrow`, "←",
	`\times`, "×", `\cdot`, "·", `\div`, "÷", `\pm`, "±",
	`\leq`, "≤", `\geq`, "≥", `\neq`, "≠", `\approx`, "≈",
	`\infty`, "∞", `\partial`, "∂", `\nabla`, "∇",
	`\sum`, "Σ", `\prod`, "Π", `\int`, "∫", `\lim`, "lim",
	`\alpha`, "α", `\beta`, "β", `\gamma`, "γ", `\delta`, "δ", `\Delta`, "Δ",
	`\theta`, "θ", `\lambda`, "λ", `\mu`, "μ", `\sigma`, "σ", `\omega`, "ω", `\pi`, "π",
	`\to`, "→", `\circ`, "°", `\degree`, "°",
	`\,`, " ", `\;`, " ", `\quad`, "  ",
	`$$`, "", `$`, "", `\(`, "", `\)`, "", `\[`, "", `\]`, "",
)

var superscripts = map[string]string{
	"0": "⁰", "1": "¹", "2": "²", "3": "³", "4": "⁴",
	"5": "⁵", "6": "⁶", "7": "⁷", "8": "⁸", "9": "⁹",
	"n": "ⁿ",
}

// renderMath turns the LaTeX the model writes in steps into plain Unicode
// that reads well in a terminal. Unknown commands are left as they are.
func renderMath(s string) string {
	for {
		next := fracRegex.ReplaceAllStringFunc(s, func(m string) string {
			parts := fracRegex.FindStringSubmatch(m)
			return groupTerm(parts[1]) + "/" + groupTerm(parts[2])
		})
		next = sqrtRegex.ReplaceAllString(next, "√($1)")
		next = textRegex.ReplaceAllString(next, "$1")
		if next == s {
			break
		}
		s = next
	}
	s = superRegex.ReplaceAllStringFunc(s, func(m string) string {
		parts := superRegex.FindStringSubmatch(m)
		return superscripts[parts[1]+parts[2]]
	})
	return latexSymbols.Replace(s)
}

func groupTerm(t string) string {
	t = strings.TrimSpace(t)
	if simpleTerm.MatchString(t) {
		return t
	}
	return "(" + t + ")"
}

// renderMarkdown renders tutor text for a terminal of the given width.
func renderMarkdown(content string, width int) string {
	if width < 20 {
		width = 20
	}
	// Autolink off so URLs stay plain and the terminal can detect them.
	ext := markdown.Extensions() &^ parser.Autolink
	p := parser.NewWithExtensions(ext)
	r := markdown.NewRenderer(width, 0)
	doc := p.Parse([]byte(renderMath(content)))
	rendered := string(gomarkdown.Render(doc, r))

	// Inline code: blue background italics to red text.
	rendered = inlineCodeRegex.ReplaceAllString(rendered, "\x1b[31m$1\x1b[0m")
	return strings.TrimRight(rendered, "\n")
}

// RenderMarkdown renders a markdown document with LaTeX math for a plain
// terminal. The CLI uses it outside the TUI.
func RenderMarkdown(content string, width int) string {
	return renderMarkdown(content, width)
}

// stripANSI removes ANSI escape codes for accurate length calculation
func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// formatBarMessage prefixes every line with a colored vertical bar.
func formatBarMessage(bar, header, content string) string {
	var b strings.Builder
	b.WriteString(bar + " " + header + "\n")
	for _, line := range strings.Split(content, "\n") {
		b.WriteString(bar + " " + line + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

// renderChat builds the tutor transcript. The reply still streaming is shown
// as plain text with a cursor; finished turns are rendered as markdown.
func (a AppView) renderChat() string {
	s := a.dataModel.Session
	width := a.width - 4
	userBar := UserStyle.Render("┃")

	var content strings.Builder
	for _, msg := range s.Messages {
		stamp := DimStyle.Render(msg.CreatedAt.Format("[15:04]"))

		if msg.Role == appmodel.RoleUser {
			header := stamp + " " + UserStyle.Render("You")
			content.WriteString(formatBarMessage(userBar, header, wordWrap(msg.Text, width-2)))
			continue
		}

		header := stamp + " " + TutorStyle.Render("Tutor")
		var body string
		switch {
		case s.Chatting && msg.ID == s.ReplyID:
			body = wordWrap(msg.Text, width) + "▋"
		case msg.Synthetic:
			body = DimStyle.Render(wordWrap(msg.Text, width))
		default:
			body = a.cachedMarkdown(msg, width)
		}
		content.WriteString(fmt.Sprintf("%s\n%s\n\n", header, body))
	}

	// Waiting for the first fragment.
	if s.Chatting && s.ReplyID == "" {
		content.WriteString(fmt.Sprintf("%s %s\n", a.spinner.View(), DimStyle.Render("Thinking...")))
	}
	return content.String()
}

type renderedEntry struct {
	text  string
	width int
	out   string
}

func (a AppView) cachedMarkdown(msg appmodel.ChatMessage, width int) string {
	if e, ok := a.markdownCache[msg.ID]; ok && e.text == msg.Text && e.width == width {
		return e.out
	}
	out := renderMarkdown(msg.Text, width)
	a.markdownCache[msg.ID] = renderedEntry{text: msg.Text, width: width, out: out}
	return out
}
