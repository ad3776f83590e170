package model

import (
	"fmt"
	"strings"
)

// Mode selects the solving strategy for a request.
type Mode string

const (
	ModeQuick Mode = "quick"
	ModeDeep  Mode = "deep"
)

// DeepThinkingBudget is the thinking budget sent with every deep-mode request.
const DeepThinkingBudget int32 = 32768

// ModelTier names the capability class a mode asks for. Providers map tiers to
// concrete model identifiers through a ModelSet.
type ModelTier string

const (
	TierFlash ModelTier = "flash"
	TierPro   ModelTier = "pro"
)

const baseInstruction = `You are EduSolver, a multi-agent STEM tutor trained on NCERT, JEE and NEET style problems.
Your goal is to provide accurate, structured mathematical and scientific solutions.
Use LaTeX formatting for all mathematical expressions (e.g., $x^2 + y^2 = r^2$).
Ensure the output is strictly valid JSON matching the schema provided.`

const quickDirective = `Provide a direct, optimal solution immediately.
Focus on the primary solution and the final answer.
You may skip extensive validation steps or alternative methods if they are not immediately obvious, but the format must still match the JSON structure.`

const deepDirective = `You must employ a multi-agent workflow:
1. Understanding Agent: analyze the topic and difficulty.
2. Solution Agent: provide a detailed step-by-step academic solution.
3. Alternative Agent: provide a second method (graphical, intuitive, or shortcut).
4. Validation Agent: verify consistency between methods.
5. Pedagogical Agent: add exam tips and memory aids.`

// ModeProfile is one row of the mode configuration table.
type ModeProfile struct {
	Mode               Mode
	Tier               ModelTier
	SystemInstruction  string
	ThinkingBudget     int32
	ExpectsAlternative bool
	ShowsValidation    bool
}

// ModeProfiles is the exhaustive mode table. Every Mode value has exactly one row.
var ModeProfiles = map[Mode]ModeProfile{
	ModeQuick: {
		Mode:               ModeQuick,
		Tier:               TierFlash,
		SystemInstruction:  baseInstruction + "\n\n" + quickDirective,
		ThinkingBudget:     0,
		ExpectsAlternative: false,
		ShowsValidation:    false,
	},
	ModeDeep: {
		Mode:               ModeDeep,
		Tier:               TierPro,
		SystemInstruction:  baseInstruction + "\n\n" + deepDirective,
		ThinkingBudget:     DeepThinkingBudget,
		ExpectsAlternative: true,
		ShowsValidation:    true,
	},
}

// ParseMode converts user input into a Mode. Matching is case-insensitive.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeQuick:
		return ModeQuick, nil
	case ModeDeep:
		return ModeDeep, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want quick or deep)", s)
	}
}

// Profile returns the table row for m. Unknown modes fall back to deep, the
// application default.
func (m Mode) Profile() ModeProfile {
	if p, ok := ModeProfiles[m]; ok {
		return p
	}
	return ModeProfiles[ModeDeep]
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == ModeQuick {
		return ModeDeep
	}
	return ModeQuick
}

// Label is the short human label shown in the UI.
func (m Mode) Label() string {
	if m == ModeQuick {
		return "Quick Solve"
	}
	return "Deep Reason"
}
