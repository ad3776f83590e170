package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Understanding is the problem analysis block of a solution.
type Understanding struct {
	Topic       string   `json:"topic"`
	Difficulty  string   `json:"difficulty"`
	KeyConcepts []string `json:"key_concepts"`
}

// Method is one complete way of solving the problem.
type Method struct {
	MethodName  string   `json:"method_name"`
	Steps       []string `json:"steps"`
	FinalAnswer string   `json:"final_answer"`
}

// Validation reports the consistency checks the model claims to have run.
type Validation struct {
	IsConsistent    bool     `json:"is_consistent"`
	ChecksPerformed []string `json:"checks_performed"`
}

// Solution is the structured document returned by the generation service.
type Solution struct {
	Understanding       Understanding `json:"understanding"`
	PrimarySolution     Method        `json:"primary_solution"`
	AlternativeSolution *Method       `json:"alternative_solution,omitempty"`
	Validation          Validation    `json:"validation"`
	PedagogicalNotes    string        `json:"pedagogical_notes"`
}

// rawSolution mirrors Solution with pointer sub-objects so missing blocks can be
// told apart from empty ones.
type rawSolution struct {
	Understanding       *Understanding `json:"understanding"`
	PrimarySolution     *Method        `json:"primary_solution"`
	AlternativeSolution *Method        `json:"alternative_solution"`
	Validation          *Validation    `json:"validation"`
	PedagogicalNotes    string         `json:"pedagogical_notes"`
}

// ParseSolution decodes text and checks its shape. Decoding failures return a
// plain error; shape failures return a *MalformedResponseError. An alternative
// with no steps and no final answer is treated as omitted.
func ParseSolution(text string) (*Solution, error) {
	var raw rawSolution
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("decode solution: %w", err)
	}

	var missing []string
	if raw.Understanding == nil {
		missing = append(missing, "understanding")
	}
	if raw.PrimarySolution == nil {
		missing = append(missing, "primary_solution")
	}
	if raw.Validation == nil {
		missing = append(missing, "validation")
	}
	if len(missing) > 0 {
		return nil, &MalformedResponseError{Missing: missing}
	}

	alt := raw.AlternativeSolution
	if alt != nil && alt.hollow() {
		alt = nil
	}

	sol := &Solution{
		Understanding:       *raw.Understanding,
		PrimarySolution:     *raw.PrimarySolution,
		AlternativeSolution: alt,
		Validation:          *raw.Validation,
		PedagogicalNotes:    raw.PedagogicalNotes,
	}
	if err := sol.Validate(); err != nil {
		return nil, err
	}
	return sol, nil
}

// Validate checks the fields the renderers depend on.
func (s *Solution) Validate() error {
	var missing []string
	if strings.TrimSpace(s.Understanding.Topic) == "" {
		missing = append(missing, "understanding.topic")
	}
	if len(s.PrimarySolution.Steps) == 0 {
		missing = append(missing, "primary_solution.steps")
	}
	if strings.TrimSpace(s.PrimarySolution.FinalAnswer) == "" {
		missing = append(missing, "primary_solution.final_answer")
	}
	if s.Validation.ChecksPerformed == nil {
		missing = append(missing, "validation.checks_performed")
	}
	if alt := s.AlternativeSolution; alt != nil && alt.hollow() {
		missing = append(missing, "alternative_solution.steps")
	}
	if len(missing) > 0 {
		return &MalformedResponseError{Missing: missing}
	}
	return nil
}

// hollow reports whether m carries neither steps nor a final answer.
func (m *Method) hollow() bool {
	return len(m.Steps) == 0 && strings.TrimSpace(m.FinalAnswer) == ""
}

// HasAlternative reports whether a usable second method is present.
func (s *Solution) HasAlternative() bool {
	return s.AlternativeSolution != nil
}

// Method returns the primary method, or the alternative when alternative is
// true and one exists.
func (s *Solution) Method(alternative bool) Method {
	if alternative && s.AlternativeSolution != nil {
		return *s.AlternativeSolution
	}
	return s.PrimarySolution
}

// Markdown renders the solution as a markdown document. Both methods are
// included when an alternative exists. Math stays in LaTeX.
func (s *Solution) Markdown() string {
	var b strings.Builder
	b.WriteString("## Understanding\n\n")
	fmt.Fprintf(&b, "- **Topic:** %s\n- **Difficulty:** %s\n", s.Understanding.Topic, s.Understanding.Difficulty)
	if len(s.Understanding.KeyConcepts) > 0 {
		fmt.Fprintf(&b, "- **Key concepts:** %s\n", strings.Join(s.Understanding.KeyConcepts, ", "))
	}

	writeMethod := func(heading string, m Method) {
		fmt.Fprintf(&b, "\n## %s: %s\n\n", heading, m.MethodName)
		for i, step := range m.Steps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
		fmt.Fprintf(&b, "\n**Final answer:** %s\n", m.FinalAnswer)
	}
	writeMethod("Primary Method", s.PrimarySolution)
	if s.HasAlternative() {
		writeMethod("Alternative Method", *s.AlternativeSolution)
	}

	status := "consistent"
	if !s.Validation.IsConsistent {
		status = "inconsistent"
	}
	fmt.Fprintf(&b, "\n## Validation (%s)\n\n", status)
	for _, check := range s.Validation.ChecksPerformed {
		fmt.Fprintf(&b, "- %s\n", check)
	}

	if s.PedagogicalNotes != "" {
		fmt.Fprintf(&b, "\n## Pedagogical Notes\n\n%s\n", s.PedagogicalNotes)
	}
	return b.String()
}
