package testutil

import (
	"edusolver/model"
)

// SolutionJSON is a complete deep-mode response.
const SolutionJSON = `{
  "understanding": {
    "topic": "Algebra: quadratic equations",
    "difficulty": "Medium",
    "key_concepts": ["factorisation", "roots of a quadratic"]
  },
  "primary_solution": {
    "method_name": "Factorisation",
    "steps": ["$x^2 - 5x + 6 = (x-2)(x-3)$", "Set each factor to zero"],
    "final_answer": "$x = 2$ or $x = 3$"
  },
  "alternative_solution": {
    "method_name": "Quadratic formula",
    "steps": ["$x = \\frac{5 \\pm \\sqrt{25-24}}{2}$"],
    "final_answer": "$x = 2$ or $x = 3$"
  },
  "validation": {
    "is_consistent": true,
    "checks_performed": ["Both methods agree", "Substitution gives zero"]
  },
  "pedagogical_notes": "Check the discriminant first to know how many roots to expect."
}`

// QuickSolutionJSON is a quick-mode response without an alternative method.
const QuickSolutionJSON = `{
  "understanding": {"topic": "Arithmetic", "difficulty": "Easy", "key_concepts": ["addition"]},
  "primary_solution": {"method_name": "Direct addition", "steps": ["2 + 2 = 4"], "final_answer": "4"},
  "validation": {"is_consistent": true, "checks_performed": []},
  "pedagogical_notes": "Count on from the larger number."
}`

// MissingStepsJSON parses but lacks the primary steps.
const MissingStepsJSON = `{
  "understanding": {"topic": "Physics", "difficulty": "Hard", "key_concepts": []},
  "primary_solution": {"method_name": "Energy", "final_answer": "10 m/s"},
  "validation": {"is_consistent": false, "checks_performed": []},
  "pedagogical_notes": ""
}`

// TestSolution returns the decoded form of SolutionJSON.
func TestSolution() *model.Solution {
	return &model.Solution{
		Understanding: model.Understanding{
			Topic:       "Algebra: quadratic equations",
			Difficulty:  "Medium",
			KeyConcepts: []string{"factorisation", "roots of a quadratic"},
		},
		PrimarySolution: model.Method{
			MethodName:  "Factorisation",
			Steps:       []string{"$x^2 - 5x + 6 = (x-2)(x-3)$", "Set each factor to zero"},
			FinalAnswer: "$x = 2$ or $x = 3$",
		},
		AlternativeSolution: &model.Method{
			MethodName:  "Quadratic formula",
			Steps:       []string{"$x = \\frac{5 \\pm \\sqrt{25-24}}{2}$"},
			FinalAnswer: "$x = 2$ or $x = 3$",
		},
		Validation: model.Validation{
			IsConsistent:    true,
			ChecksPerformed: []string{"Both methods agree", "Substitution gives zero"},
		},
		PedagogicalNotes: "Check the discriminant first to know how many roots to expect.",
	}
}

// TestHistory returns a short tutor conversation.
func TestHistory() []model.ChatTurn {
	return []model.ChatTurn{
		{Role: model.RoleUser, Text: "What is a derivative?"},
		{Role: model.RoleModel, Text: "It measures how fast a function changes."},
	}
}

// TestModels returns a model set with recognisable ids.
func TestModels() model.ModelSet {
	return model.ModelSet{Quick: "flash-model", Deep: "pro-model", Chat: "chat-model"}
}

// PNGHeader is enough bytes for http.DetectContentType to report image/png.
var PNGHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
