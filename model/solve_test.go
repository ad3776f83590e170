package model_test

import (
	"context"
	"errors"
	"testing"

	"edusolver/model"
	"edusolver/provider/testutil"
)

func quickRequest(t *testing.T, prompt string) model.GenerationRequest {
	t.Helper()
	req, err := model.BuildRequest(model.SolveInput{Prompt: prompt, Mode: model.ModeQuick}, testutil.TestModels())
	if err != nil {
		t.Fatal(err)
	}
	return req
}

func TestSolve(t *testing.T) {
	mock := testutil.NewMockProvider("mock")

	sol, err := model.Solve(context.Background(), mock, quickRequest(t, "solve x^2-5x+6=0"))
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if sol.PrimarySolution.FinalAnswer != "$x = 2$ or $x = 3$" {
		t.Errorf("FinalAnswer = %q", sol.PrimarySolution.FinalAnswer)
	}
	if n := len(mock.GenerateRequests()); n != 1 {
		t.Errorf("Generate called %d times, want 1", n)
	}
}

func TestSolve_Failures(t *testing.T) {
	tests := []struct {
		name          string
		response      string
		err           error
		wantMalformed bool
	}{
		{"service error", "", errors.New("503 unavailable"), false},
		{"empty text", "   ", nil, false},
		{"invalid json", "The answer is 4", nil, false},
		{"missing steps", testutil.MissingStepsJSON, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockProvider("mock")
			mock.GenerateFunc = func(ctx context.Context, req model.GenerationRequest) (string, error) {
				return tt.response, tt.err
			}

			sol, err := model.Solve(context.Background(), mock, quickRequest(t, "2+2"))
			if sol != nil {
				t.Error("failed solve returned a partial solution")
			}
			if !errors.Is(err, model.ErrGeneration) {
				t.Fatalf("Solve() error = %v, want ErrGeneration", err)
			}

			var malformed *model.MalformedResponseError
			if got := errors.As(err, &malformed); got != tt.wantMalformed {
				t.Errorf("malformed = %v, want %v (err %v)", got, tt.wantMalformed, err)
			}
			if tt.err != nil && !errors.Is(err, tt.err) {
				t.Errorf("cause %v not wrapped in %v", tt.err, err)
			}
		})
	}
}

func TestSolve_FencedJSON(t *testing.T) {
	mock := testutil.NewMockProvider("mock")
	mock.GenerateFunc = func(ctx context.Context, req model.GenerationRequest) (string, error) {
		return "```json\n" + testutil.QuickSolutionJSON + "\n```", nil
	}

	sol, err := model.Solve(context.Background(), mock, quickRequest(t, "2+2"))
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if sol.PrimarySolution.FinalAnswer != "4" {
		t.Errorf("FinalAnswer = %q, want 4", sol.PrimarySolution.FinalAnswer)
	}
}

func TestSolve_NoCaching(t *testing.T) {
	mock := testutil.NewMockProvider("mock")
	req := quickRequest(t, "2+2")

	for i := 0; i < 2; i++ {
		if _, err := model.Solve(context.Background(), mock, req); err != nil {
			t.Fatal(err)
		}
	}
	if n := len(mock.GenerateRequests()); n != 2 {
		t.Errorf("Generate called %d times, want 2", n)
	}
}
