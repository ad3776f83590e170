package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"edusolver/model"
	"edusolver/provider/testutil"
)

func TestOllamaGenerateThinkFlag(t *testing.T) {
	tests := []struct {
		name      string
		mode      model.Mode
		modelName string
		wantThink any
	}{
		{"quick on thinking model disables thinking", model.ModeQuick, "qwen3:8b", false},
		{"deep on thinking model enables thinking", model.ModeDeep, "qwen3:8b", true},
		{"non-thinking model omits the flag", model.ModeDeep, "llama3.1:8b", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]any
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/chat" {
					http.NotFound(w, r)
					return
				}
				raw, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(raw, &body)

				w.Header().Set("Content-Type", "application/x-ndjson")
				line, _ := json.Marshal(map[string]any{
					"model":   tt.modelName,
					"message": map[string]any{"role": "assistant", "content": testutil.QuickSolutionJSON},
					"done":    true,
				})
				w.Write(append(line, '\n'))
			}))
			defer srv.Close()

			p, err := NewOllamaProvider(srv.URL)
			if err != nil {
				t.Fatalf("NewOllamaProvider() error = %v", err)
			}

			req, err := model.BuildRequest(model.SolveInput{Prompt: "2+2", Mode: tt.mode},
				model.ModelSet{Quick: tt.modelName, Deep: tt.modelName, Chat: tt.modelName})
			if err != nil {
				t.Fatalf("BuildRequest() error = %v", err)
			}

			if _, err := p.Generate(context.Background(), req); err != nil {
				t.Fatalf("Generate() error = %v", err)
			}

			got, present := body["think"]
			if tt.wantThink == nil {
				if present {
					t.Errorf("think = %v, want it omitted", got)
				}
				return
			}
			if got != tt.wantThink {
				t.Errorf("think = %v, want %v", got, tt.wantThink)
			}
			if body["format"] == nil {
				t.Error("format schema missing")
			}
		})
	}
}
