package embedding

import (
	"context"
	"sync"

	"vocabemb/internal/domain"
)

// MockProvider implements domain.Provider for testing purposes.
// Tokens missing from the map are absent. Calls are recorded in order.
type MockProvider struct {
	vectors map[string][]float32
	errs    map[string]error

	mu    sync.Mutex
	calls []string
}

// NewMockProvider creates a provider that serves the given vectors.
func NewMockProvider(vectors map[string][]float32) *MockProvider {
	return &MockProvider{vectors: vectors, errs: map[string]error{}}
}

// FailOn makes Embed return err for token.
func (m *MockProvider) FailOn(token string, err error) *MockProvider {
	m.errs[token] = err
	return m
}

// Name returns the identifier of this embedder implementation.
func (m *MockProvider) Name() string { return "mock" }

// Embed returns a copy of the configured vector for token.
func (m *MockProvider) Embed(_ context.Context, token string) ([]float32, error) {
	m.mu.Lock()
	m.calls = append(m.calls, token)
	m.mu.Unlock()
	if err, ok := m.errs[token]; ok {
		return nil, err
	}
	v, ok := m.vectors[token]
	if !ok {
		return nil, domain.ErrTokenAbsent
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out, nil
}

// Calls returns the tokens passed to Embed so far.
func (m *MockProvider) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}
