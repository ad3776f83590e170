package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"edusolver/config"
	"edusolver/model"
	"edusolver/provider/testutil"
	"edusolver/storage"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T, p *testutil.MockProvider) (*Server, *storage.HistoryStore) {
	t.Helper()
	store, err := storage.NewHistoryStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewHistoryStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return New(config.DefaultConfig(), p, store, nil), store
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) APIError {
	t.Helper()
	var env ErrorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope: %v (body %s)", err, w.Body.String())
	}
	return env.Error
}

func TestSolve(t *testing.T) {
	mock := testutil.NewMockProvider("mock")
	s, store := newTestServer(t, mock)

	w := do(t, s, http.MethodPost, "/api/solve", solveRequest{Prompt: "Solve x^2-5x+6=0", Mode: "quick"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var sol model.Solution
	if err := json.Unmarshal(w.Body.Bytes(), &sol); err != nil {
		t.Fatalf("decode solution: %v", err)
	}
	if sol.Understanding.Topic != "Algebra: quadratic equations" {
		t.Errorf("topic = %q", sol.Understanding.Topic)
	}

	reqs := mock.GenerateRequests()
	if len(reqs) != 1 {
		t.Fatalf("Generate called %d times, want 1", len(reqs))
	}
	if reqs[0].Mode != model.ModeQuick {
		t.Errorf("mode = %q, want quick", reqs[0].Mode)
	}

	records, err := store.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 1 || records[0].Provider != "mock" {
		t.Errorf("history = %+v, want one record from mock", records)
	}
}

func TestSolveDefaultsToConfiguredMode(t *testing.T) {
	mock := testutil.NewMockProvider("mock")
	s, _ := newTestServer(t, mock)

	w := do(t, s, http.MethodPost, "/api/solve", solveRequest{Prompt: "Integrate sin x"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	req := mock.GenerateRequests()[0]
	if req.Mode != model.ModeDeep || req.ThinkingBudget != model.DeepThinkingBudget {
		t.Errorf("request = mode %q budget %d, want deep with full budget", req.Mode, req.ThinkingBudget)
	}
}

func TestSolveWithImage(t *testing.T) {
	mock := testutil.NewMockProvider("mock")
	s, _ := newTestServer(t, mock)

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	w := do(t, s, http.MethodPost, "/api/solve", solveRequest{
		ImageBase64: base64.StdEncoding.EncodeToString(png),
		Mode:        "quick",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	req := mock.GenerateRequests()[0]
	if !req.HasImage() {
		t.Fatal("request has no image")
	}
	if req.Image.MIMEType != "image/png" {
		t.Errorf("mime = %q, want sniffed image/png", req.Image.MIMEType)
	}
}

func TestSolveRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body solveRequest
		code string
	}{
		{"empty", solveRequest{Prompt: "   "}, "empty_input"},
		{"unknown mode", solveRequest{Prompt: "2+2", Mode: "turbo"}, "invalid_mode"},
		{"bad base64", solveRequest{ImageBase64: "%%%"}, "invalid_image"},
		{"not an image", solveRequest{ImageBase64: base64.StdEncoding.EncodeToString([]byte("plain text"))}, "invalid_image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockProvider("mock")
			s, _ := newTestServer(t, mock)

			w := do(t, s, http.MethodPost, "/api/solve", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if got := decodeError(t, w).Code; got != tt.code {
				t.Errorf("code = %q, want %q", got, tt.code)
			}
			if n := len(mock.GenerateRequests()); n != 0 {
				t.Errorf("Generate called %d times, want 0", n)
			}
		})
	}
}

func TestSolveFailures(t *testing.T) {
	tests := []struct {
		name     string
		generate func(context.Context, model.GenerationRequest) (string, error)
		code     string
	}{
		{
			name: "service error",
			generate: func(context.Context, model.GenerationRequest) (string, error) {
				return "", errors.New("quota exceeded")
			},
			code: "generation_failed",
		},
		{
			name: "missing steps",
			generate: func(context.Context, model.GenerationRequest) (string, error) {
				return testutil.MissingStepsJSON, nil
			},
			code: "malformed_response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockProvider("mock")
			mock.GenerateFunc = tt.generate
			s, store := newTestServer(t, mock)

			w := do(t, s, http.MethodPost, "/api/solve", solveRequest{Prompt: "2+2", Mode: "quick"})
			if w.Code != http.StatusBadGateway {
				t.Fatalf("status = %d, want 502", w.Code)
			}
			apiErr := decodeError(t, w)
			if apiErr.Code != tt.code {
				t.Errorf("code = %q, want %q", apiErr.Code, tt.code)
			}
			if apiErr.Message != model.SolveFailureText {
				t.Errorf("message = %q, want the fixed failure text", apiErr.Message)
			}
			if records, _ := store.List(0); len(records) != 0 {
				t.Errorf("failed solve was recorded: %+v", records)
			}
		})
	}
}

func TestCredentialMissing(t *testing.T) {
	credErr := &config.CredentialError{Provider: config.ProviderGemini, EnvVars: []string{"GEMINI_API_KEY"}}
	s := New(config.DefaultConfig(), nil, nil, credErr)

	w := do(t, s, http.MethodPost, "/api/solve", solveRequest{Prompt: "2+2"})
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("solve status = %d, want 503", w.Code)
	}
	w = do(t, s, http.MethodPost, "/api/chat", chatRequest{Message: "hi"})
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("chat status = %d, want 503", w.Code)
	}

	w = do(t, s, http.MethodGet, "/healthz", nil)
	var health map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health["credential"] != "missing" {
		t.Errorf("credential = %q, want missing", health["credential"])
	}
}

type sseEvent struct {
	name string
	data string
}

func parseSSE(body string) []sseEvent {
	var events []sseEvent
	for _, block := range strings.Split(body, "\n\n") {
		var ev sseEvent
		for _, line := range strings.Split(block, "\n") {
			switch {
			case strings.HasPrefix(line, "event:"):
				ev.name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:"):
				ev.data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			}
		}
		if ev.name != "" {
			events = append(events, ev)
		}
	}
	return events
}

func TestChatStreamsAccumulatedText(t *testing.T) {
	mock := testutil.NewMockProvider("mock")
	s, _ := newTestServer(t, mock)

	w := do(t, s, http.MethodPost, "/api/chat", chatRequest{
		History: testutil.TestHistory(),
		Message: "And an integral?",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("Content-Type = %q", ct)
	}

	events := parseSSE(w.Body.String())
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3: %+v", len(events), events)
	}

	var first, second chunkEvent
	json.Unmarshal([]byte(events[0].data), &first)
	json.Unmarshal([]byte(events[1].data), &second)
	if events[0].name != "chunk" || first.Text != "Mock " {
		t.Errorf("first event = %+v", events[0])
	}
	if events[1].name != "chunk" || second.Text != "Mock response" {
		t.Errorf("second event = %+v", events[1])
	}
	if first.ID == "" || first.ID != second.ID {
		t.Errorf("chunk ids = %q, %q; want one stable reply id", first.ID, second.ID)
	}
	if events[2].name != "done" {
		t.Errorf("last event = %q, want done", events[2].name)
	}

	reqs := mock.ChatRequests()
	if len(reqs) != 1 || len(reqs[0].History) != 2 {
		t.Errorf("chat requests = %+v, want one with two history turns", reqs)
	}
}

func TestChatStreamFailure(t *testing.T) {
	mock := testutil.NewMockProvider("mock")
	mock.ChatStreamFunc = func(ctx context.Context, req model.ChatRequest, cb model.StreamCallback) error {
		if err := cb("Par"); err != nil {
			return err
		}
		return errors.New("connection reset")
	}
	s, _ := newTestServer(t, mock)

	w := do(t, s, http.MethodPost, "/api/chat", chatRequest{Message: "hi"})
	events := parseSSE(w.Body.String())
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: %+v", len(events), events)
	}
	last := events[1]
	if last.name != "error" {
		t.Fatalf("last event = %q, want error", last.name)
	}
	var payload errorEvent
	if err := json.Unmarshal([]byte(last.data), &payload); err != nil {
		t.Fatalf("decode error event: %v", err)
	}
	if payload.Text != model.ChatFailureText {
		t.Errorf("fallback = %q", payload.Text)
	}
}

func TestChatRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body chatRequest
		code string
	}{
		{"empty message", chatRequest{Message: " "}, "empty_input"},
		{"bad role", chatRequest{Message: "hi", History: []model.ChatTurn{{Role: "system", Text: "x"}}}, "invalid_request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, testutil.NewMockProvider("mock"))
			w := do(t, s, http.MethodPost, "/api/chat", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if got := decodeError(t, w).Code; got != tt.code {
				t.Errorf("code = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestHistoryAndProgress(t *testing.T) {
	s, _ := newTestServer(t, testutil.NewMockProvider("mock"))

	for range 2 {
		if w := do(t, s, http.MethodPost, "/api/solve", solveRequest{Prompt: "x^2-5x+6=0"}); w.Code != http.StatusOK {
			t.Fatalf("solve status = %d", w.Code)
		}
	}

	w := do(t, s, http.MethodGet, "/api/history?limit=1", nil)
	var list struct {
		Records []historyItem `json:"records"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(list.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(list.Records))
	}
	id := list.Records[0].ID

	w = do(t, s, http.MethodGet, "/api/history/"+id, nil)
	var detail historyDetail
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if detail.Solution == nil || detail.Solution.PrimarySolution.FinalAnswer != "$x = 2$ or $x = 3$" {
		t.Errorf("detail solution = %+v", detail.Solution)
	}

	w = do(t, s, http.MethodGet, "/api/progress", nil)
	var progress struct {
		Topics []topicItem `json:"topics"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &progress); err != nil {
		t.Fatalf("decode progress: %v", err)
	}
	if len(progress.Topics) != 1 || progress.Topics[0].ProblemsSolved != 2 {
		t.Errorf("topics = %+v", progress.Topics)
	}

	if w := do(t, s, http.MethodDelete, "/api/history/"+id, nil); w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", w.Code)
	}
	if w := do(t, s, http.MethodGet, "/api/history/"+id, nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", w.Code)
	}
	if w := do(t, s, http.MethodGet, "/api/history?limit=zero", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t, testutil.NewMockProvider("mock"))

	req := httptest.NewRequest(http.MethodOptions, "/api/solve", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestCORSOriginSettings(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		want    string
	}{
		{"empty list disables cors", []string{}, ""},
		{"origin without scheme is dropped", []string{"localhost:5173"}, ""},
		{"invalid entries skipped", []string{"localhost:5173", "http://localhost:5173"}, "http://localhost:5173"},
		{"any origin", []string{"*"}, "*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Server.AllowedOrigins = tt.origins
			s := New(cfg, testutil.NewMockProvider("mock"), nil, nil)

			req := httptest.NewRequest(http.MethodOptions, "/api/solve", nil)
			req.Header.Set("Origin", "http://localhost:5173")
			req.Header.Set("Access-Control-Request-Method", "POST")
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, req)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.want)
			}
		})
	}
}
