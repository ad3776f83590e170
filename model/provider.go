package model

import "context"

// Provider abstracts the hosted generation services (Gemini, OpenAI, Anthropic,
// Ollama) behind the two operations the solver needs.
//
// The interface lives in model, not provider, so provider implementations can
// import model without a cycle.
type Provider interface {
	// Name returns the provider id ("gemini", "openai", ...).
	Name() string

	// Generate runs one JSON-mode request constrained by req.Schema and returns
	// the raw response text.
	Generate(ctx context.Context, req GenerationRequest) (string, error)

	// ChatStream sends history plus the new message and delivers reply fragments
	// to callback in arrival order. Fragments may be empty.
	ChatStream(ctx context.Context, req ChatRequest, callback StreamCallback) error

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}

// ChatRole is the author of a chat turn.
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

// ChatTurn is one prior exchange sent upstream.
type ChatTurn struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}

// ChatRequest is a streaming tutor request.
type ChatRequest struct {
	Model             string
	SystemInstruction string
	History           []ChatTurn
	Message           string
}

// StreamCallback is called for each fragment of a streamed reply. Returning an
// error aborts the stream.
type StreamCallback func(fragment string) error
