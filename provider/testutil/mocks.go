package testutil

import (
	"context"
	"sync"

	"edusolver/model"
)

// MockProvider implements model.Provider for testing
type MockProvider struct {
	// Configurable responses
	GenerateFunc   func(ctx context.Context, req model.GenerationRequest) (string, error)
	ChatStreamFunc func(ctx context.Context, req model.ChatRequest, callback model.StreamCallback) error
	PingFunc       func(ctx context.Context) error

	name string

	mu           sync.Mutex
	generateReqs []model.GenerationRequest
	chatReqs     []model.ChatRequest
}

// NewMockProvider creates a mock provider with default implementations
func NewMockProvider(name string) *MockProvider {
	mock := &MockProvider{name: name}
	mock.GenerateFunc = mock.defaultGenerate
	mock.ChatStreamFunc = mock.defaultChatStream
	mock.PingFunc = mock.defaultPing
	return mock
}

func (m *MockProvider) defaultGenerate(ctx context.Context, req model.GenerationRequest) (string, error) {
	return SolutionJSON, nil
}

func (m *MockProvider) defaultChatStream(ctx context.Context, req model.ChatRequest, callback model.StreamCallback) error {
	return StreamFragments(callback, "Mock ", "response")
}

func (m *MockProvider) defaultPing(ctx context.Context) error {
	return nil
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Generate(ctx context.Context, req model.GenerationRequest) (string, error) {
	m.mu.Lock()
	m.generateReqs = append(m.generateReqs, req)
	m.mu.Unlock()
	return m.GenerateFunc(ctx, req)
}

func (m *MockProvider) ChatStream(ctx context.Context, req model.ChatRequest, callback model.StreamCallback) error {
	m.mu.Lock()
	m.chatReqs = append(m.chatReqs, req)
	m.mu.Unlock()
	return m.ChatStreamFunc(ctx, req, callback)
}

func (m *MockProvider) Ping(ctx context.Context) error {
	return m.PingFunc(ctx)
}

// GenerateRequests returns every request passed to Generate, in order.
func (m *MockProvider) GenerateRequests() []model.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.GenerationRequest(nil), m.generateReqs...)
}

// ChatRequests returns every request passed to ChatStream, in order.
func (m *MockProvider) ChatRequests() []model.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.ChatRequest(nil), m.chatReqs...)
}

// StreamFragments feeds fragments to callback, stopping at the first error.
func StreamFragments(callback model.StreamCallback, fragments ...string) error {
	for _, f := range fragments {
		if err := callback(f); err != nil {
			return err
		}
	}
	return nil
}
