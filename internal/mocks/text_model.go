package mocks

import (
	"context"
	"sync"
)

// MockTextModel implements generation.TextModel for testing
type MockTextModel struct {
	GenerateTextFn func(ctx context.Context, prompt string) (string, error)

	// Default response values
	Response string
	Err      error
	ModelID  string

	mu      sync.Mutex
	prompts []string
}

// GenerateText implements the generation.TextModel interface
func (m *MockTextModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.GenerateTextFn != nil {
		return m.GenerateTextFn(ctx, prompt)
	}
	return m.Response, m.Err
}

// Name implements the generation.TextModel interface
func (m *MockTextModel) Name() string {
	if m.ModelID == "" {
		return "mock-model"
	}
	return m.ModelID
}

// Prompts returns the prompts received so far.
func (m *MockTextModel) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}
