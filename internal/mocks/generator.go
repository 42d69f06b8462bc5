package mocks

import (
	"context"
	"sync"

	"github.com/cheerforge/cheerforge/internal/domain"
	"github.com/cheerforge/cheerforge/internal/generation"
)

// MockGenerator implements generation.Generator for testing
type MockGenerator struct {
	// GenerateFn allows test cases to mock the Generate behavior
	GenerateFn func(ctx context.Context, req generation.Request, progress generation.ProgressFunc) (*generation.Result, error)

	// Milestones are reported through the progress callback before returning
	// the default response.
	Milestones []int

	// Default response values
	Result *generation.Result
	Err    error

	mu    sync.Mutex
	calls []generation.Request
}

// Generate implements the generation.Generator interface
func (m *MockGenerator) Generate(
	ctx context.Context,
	req generation.Request,
	progress generation.ProgressFunc,
) (*generation.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, req, progress)
	}

	for _, p := range m.Milestones {
		if progress != nil {
			progress(p)
		}
	}

	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result != nil {
		return m.Result, nil
	}
	return &generation.Result{Payload: map[string]any{"type": req.Kind, "prompt": req.Prompt}}, nil
}

// Calls returns a copy of the requests received so far.
func (m *MockGenerator) Calls() []generation.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]generation.Request(nil), m.calls...)
}

// CallCount returns how many times Generate was called.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// NewMockGeneratorWithError creates a MockGenerator that returns the specified error
func NewMockGeneratorWithError(err error) *MockGenerator {
	return &MockGenerator{Err: err}
}

// MockGeneratorSet binds the same MockGenerator to every supported kind.
func MockGeneratorSet(gen *MockGenerator) generation.Set {
	return generation.Set{Banner: gen, Slogan: gen, Emoji: gen}
}

// MockDispatcher implements the engine's generator lookup with a custom hook.
type MockDispatcher struct {
	ForFn func(kind domain.Kind) (generation.Generator, error)
}

// For implements the dispatcher interface
func (m *MockDispatcher) For(kind domain.Kind) (generation.Generator, error) {
	return m.ForFn(kind)
}
