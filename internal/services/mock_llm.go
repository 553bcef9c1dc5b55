package services

import (
	"context"
	"errors"
	"sync"
)

// MockLLMAPI is a mock implementation of LLMService for testing.
// CompleteFunc wins over Responses; Responses are consumed in order.
type MockLLMAPI struct {
	CompleteFunc func(ctx context.Context, prompt string) (string, error)
	Responses    []MockResponse
	Model        string

	// Track calls for testing
	CompleteCalls []string

	mu sync.Mutex // protects all fields above
}

// MockResponse is one scripted reply
type MockResponse struct {
	Text string
	Err  error
}

// NewMockLLMAPI creates a new mock LLM service with scripted text replies
func NewMockLLMAPI(responses ...string) *MockLLMAPI {
	m := &MockLLMAPI{
		Model:         "mock-model",
		CompleteCalls: make([]string, 0),
	}
	for _, r := range responses {
		m.Responses = append(m.Responses, MockResponse{Text: r})
	}
	return m
}

// Complete records the prompt and returns the next scripted reply
func (m *MockLLMAPI) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CompleteCalls = append(m.CompleteCalls, prompt)

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	if err := ctx.Err(); err != nil {
		return "", transportError(err)
	}
	if len(m.Responses) == 0 {
		return "", errors.Join(ErrServiceUnavailable, errors.New("mock: no scripted response"))
	}
	next := m.Responses[0]
	m.Responses = m.Responses[1:]
	return next.Text, next.Err
}

func (m *MockLLMAPI) ModelName() string {
	return m.Model
}

// QueueResponse appends a scripted text reply
func (m *MockLLMAPI) QueueResponse(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses = append(m.Responses, MockResponse{Text: text})
}

// QueueError appends a scripted failure
func (m *MockLLMAPI) QueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses = append(m.Responses, MockResponse{Err: err})
}

// CallCount returns the number of Complete calls made so far
func (m *MockLLMAPI) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CompleteCalls)
}

// LastPrompt returns the most recent prompt, or "" if none
func (m *MockLLMAPI) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.CompleteCalls) == 0 {
		return ""
	}
	return m.CompleteCalls[len(m.CompleteCalls)-1]
}

// Reset clears all scripted replies and recorded calls
func (m *MockLLMAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses = nil
	m.CompleteCalls = make([]string, 0)
}
