package model

import (
	"context"
	"fmt"
	"sync"
)

// Request captures the normalized model input produced by callers. Schema,
// when set, is a JSON Schema object the model is asked to conform to; the
// adapters embed it into the prompt rather than relying on provider-specific
// structured-output modes.
type Request struct {
	System      string         `json:"system,omitempty"`
	Prompt      string         `json:"prompt"`
	Schema      map[string]any `json:"schema,omitempty"`
	Temperature float64        `json:"temperature,omitempty"`
	MaxTokens   int64          `json:"max_tokens,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the full completion returned by a model.
type Response struct {
	Text  string      `json:"text"`
	Usage *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the minimal interface required to drive generation.
type Model interface {
	Complete(ctx context.Context, req Request) (Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests. Responses are
// consumed in FIFO order regardless of prompt content; a canned error entry
// is returned in place of its response.
type MockModel struct {
	mu      sync.Mutex
	info    Info
	scripts []scriptEntry
	calls   []Request
}

type scriptEntry struct {
	text string
	err  error
}

// NewMockModel constructs an empty MockModel.
func NewMockModel() *MockModel {
	return &MockModel{
		info: Info{Name: "mock", Provider: "mock"},
	}
}

// AddResponse appends a canned completion to the script.
func (m *MockModel) AddResponse(text string) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts = append(m.scripts, scriptEntry{text: text})
	return m
}

// AddError appends a canned error to the script.
func (m *MockModel) AddError(err error) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts = append(m.scripts, scriptEntry{err: err})
	return m
}

// Calls returns a copy of every request seen so far.
func (m *MockModel) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// Complete implements Model by replaying the next scripted entry.
func (m *MockModel) Complete(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)

	if len(m.scripts) == 0 {
		return Response{}, fmt.Errorf("mock model: no scripted response for call %d", len(m.calls))
	}

	entry := m.scripts[0]
	m.scripts = m.scripts[1:]

	if entry.err != nil {
		return Response{}, entry.err
	}

	return Response{Text: entry.text}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
