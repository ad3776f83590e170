package model

import (
	"context"
	"errors"
	"strings"

	"edusolver/config"
)

var errEmptyText = errors.New("response has no text")

// Solve submits req once and returns the parsed, shape-checked solution. Every
// failure satisfies errors.Is(err, ErrGeneration); there is no retry.
func Solve(ctx context.Context, p Provider, req GenerationRequest) (*Solution, error) {
	fail := func(err error) error {
		return &GenerationError{Provider: p.Name(), Model: req.Model, Err: err}
	}

	text, err := p.Generate(ctx, req)
	if err != nil {
		config.DebugLog.Errorw("generate failed", "provider", p.Name(), "model", req.Model, "error", err)
		return nil, fail(err)
	}

	text = trimJSONFence(text)
	if text == "" {
		return nil, fail(errEmptyText)
	}

	sol, err := ParseSolution(text)
	if err != nil {
		config.DebugLog.Errorw("solution rejected", "provider", p.Name(), "kind", FailureKind(err), "error", err)
		var malformed *MalformedResponseError
		if errors.As(err, &malformed) {
			return nil, err
		}
		return nil, fail(err)
	}

	config.DebugLog.Debugw("solution parsed",
		"mode", req.Mode,
		"topic", sol.Understanding.Topic,
		"steps", len(sol.PrimarySolution.Steps),
		"alternative", sol.HasAlternative())
	return sol, nil
}

// trimJSONFence strips a surrounding markdown code fence. Models without a
// native JSON mode sometimes add one.
func trimJSONFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
