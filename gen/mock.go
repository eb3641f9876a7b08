package gen

import (
	"context"
	"sync"

	"github.com/randalmurphal/specflow/schema"
)

type mockReply struct {
	data []byte
	err  error
}

// MockProvider returns scripted responses, for tests and offline runs.
type MockProvider struct {
	mu         sync.Mutex
	replies    []mockReply
	calls      int
	lastReq    Request
	validation *schema.ProblemValidation
}

// NewMockProvider creates an empty mock. Queue responses with WithResponse
// and WithError; calls beyond the queue repeat the final reply.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		validation: &schema.ProblemValidation{IsValid: true, Feedback: "ok"},
	}
}

// WithResponse queues a raw generation response.
func (m *MockProvider) WithResponse(data string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, mockReply{data: []byte(data)})
	return m
}

// WithError queues a generation failure.
func (m *MockProvider) WithError(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, mockReply{err: err})
	return m
}

// WithValidation sets the verdict ValidateProblem returns.
func (m *MockProvider) WithValidation(v *schema.ProblemValidation) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validation = v
	return m
}

// Generate implements Provider.
func (m *MockProvider) Generate(_ context.Context, req Request) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastReq = req
	if len(m.replies) == 0 {
		return nil, ErrNoProvider
	}
	idx := m.calls
	if idx >= len(m.replies) {
		idx = len(m.replies) - 1
	}
	m.calls++
	reply := m.replies[idx]
	return reply.data, reply.err
}

// ValidateProblem implements ProblemValidator.
func (m *MockProvider) ValidateProblem(context.Context, string) (*schema.ProblemValidation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validation, nil
}

// Calls returns how many Generate calls the mock has served.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest returns the most recent Generate request.
func (m *MockProvider) LastRequest() Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastReq
}
