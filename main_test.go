package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"edusolver/config"
	"edusolver/model"
	"edusolver/provider/testutil"
	"edusolver/storage"
)

// newTestApp creates an App backed by a mock provider and a temp data dir.
func newTestApp(t *testing.T, p *testutil.MockProvider, in string) (*App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	dataDir := t.TempDir()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return &App{
		In:  strings.NewReader(in),
		Out: out,
		Err: errOut,
		LoadConfig: func() (*config.Config, error) {
			cfg := config.DefaultConfig()
			cfg.DataDirectory = dataDir
			return cfg, nil
		},
		NewProvider: func(*config.Config) (model.Provider, error) {
			return p, nil
		},
		OpenHistory: storage.NewHistoryStore,
	}, out, errOut
}

func execute(app *App, args ...string) error {
	cmd := newRootCmd(app)
	cmd.SetArgs(args)
	cmd.SetOut(app.Out)
	cmd.SetErr(app.Err)
	return cmd.ExecuteContext(context.Background())
}

func TestSolveCommandJSON(t *testing.T) {
	mock := testutil.NewMockProvider("mock")
	app, out, errOut := newTestApp(t, mock, "")

	if err := execute(app, "solve", "--mode", "quick", "--json", "Solve", "x^2-5x+6=0"); err != nil {
		t.Fatalf("solve error = %v", err)
	}

	var sol model.Solution
	if err := json.Unmarshal(out.Bytes(), &sol); err != nil {
		t.Fatalf("output is not a solution: %v\n%s", err, out.String())
	}
	if sol.PrimarySolution.MethodName != "Factorisation" {
		t.Errorf("method = %q", sol.PrimarySolution.MethodName)
	}

	req := mock.GenerateRequests()[0]
	if req.Prompt != "Solve x^2-5x+6=0" {
		t.Errorf("prompt = %q, want args joined with spaces", req.Prompt)
	}
	if req.Mode != model.ModeQuick {
		t.Errorf("mode = %q", req.Mode)
	}
	if !strings.Contains(errOut.String(), "Quick Solve") {
		t.Errorf("stderr = %q, want the mode label", errOut.String())
	}

	out.Reset()
	if err := execute(app, "history", "--json"); err != nil {
		t.Fatalf("history error = %v", err)
	}
	var records []storage.Record
	if err := json.Unmarshal(out.Bytes(), &records); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(records) != 1 || records[0].Mode != "quick" {
		t.Errorf("records = %+v", records)
	}
}

func TestSolveCommandMarkdown(t *testing.T) {
	app, out, _ := newTestApp(t, testutil.NewMockProvider("mock"), "")

	if err := execute(app, "solve", "--no-history", "x^2-5x+6=0"); err != nil {
		t.Fatalf("solve error = %v", err)
	}
	if !strings.Contains(out.String(), "Quadratic formula") {
		t.Errorf("rendered output lacks the alternative method:\n%s", out.String())
	}
}

func TestSolveCommandErrors(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		app, _, _ := newTestApp(t, testutil.NewMockProvider("mock"), "")
		if err := execute(app, "solve"); !errors.Is(err, model.ErrEmptyInput) {
			t.Errorf("err = %v, want ErrEmptyInput", err)
		}
	})

	t.Run("generation failure", func(t *testing.T) {
		mock := testutil.NewMockProvider("mock")
		mock.GenerateFunc = func(context.Context, model.GenerationRequest) (string, error) {
			return "", errors.New("deadline exceeded")
		}
		app, _, _ := newTestApp(t, mock, "")
		err := execute(app, "solve", "2+2")
		if err == nil || err.Error() != model.SolveFailureText {
			t.Errorf("err = %v, want the fixed failure text", err)
		}
	})

	t.Run("credential missing", func(t *testing.T) {
		app, _, _ := newTestApp(t, nil, "")
		app.NewProvider = func(*config.Config) (model.Provider, error) {
			return nil, &config.CredentialError{Provider: config.ProviderGemini, EnvVars: []string{"GEMINI_API_KEY"}}
		}
		err := execute(app, "solve", "2+2")
		if err == nil || !strings.Contains(err.Error(), "GEMINI_API_KEY") {
			t.Errorf("err = %v, want a hint naming the variable", err)
		}
	})
}

func TestChatCommand(t *testing.T) {
	mock := testutil.NewMockProvider("mock")
	app, out, _ := newTestApp(t, mock, "What is a derivative?\n\nAnd an integral?\n")

	if err := execute(app, "chat"); err != nil {
		t.Fatalf("chat error = %v", err)
	}

	text := out.String()
	if !strings.Contains(text, model.GreetingText) {
		t.Error("greeting not printed")
	}
	if n := strings.Count(text, "tutor> Mock response"); n != 2 {
		t.Errorf("got %d replies, want 2:\n%s", n, text)
	}

	reqs := mock.ChatRequests()
	if len(reqs) != 2 {
		t.Fatalf("ChatStream called %d times, want 2", len(reqs))
	}
	// The greeting is local and never sent; the first exchange is.
	second := reqs[1].History
	if len(second) != 2 || second[0].Text != "What is a derivative?" || second[1].Text != "Mock response" {
		t.Errorf("second request history = %+v", second)
	}
}

func TestHistoryCommandEmpty(t *testing.T) {
	app, out, _ := newTestApp(t, testutil.NewMockProvider("mock"), "")
	if err := execute(app, "history"); err != nil {
		t.Fatalf("history error = %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "No problems solved yet." {
		t.Errorf("output = %q", got)
	}
}

func TestPrintHistoryTruncatesColumns(t *testing.T) {
	var buf bytes.Buffer
	printHistory(&buf, []storage.Record{{
		Mode:        "deep",
		Topic:       "Electromagnetism: Faraday's law of induction",
		FinalAnswer: "ε = -dΦ/dt",
		Consistent:  true,
	}})
	out := buf.String()
	if !strings.Contains(out, "Electromagnetism: Faraday's…") {
		t.Errorf("topic not truncated to its column:\n%s", out)
	}
	if !strings.Contains(out, "1 record(s)") {
		t.Errorf("missing footer:\n%s", out)
	}
}
