package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one scripted reply of a MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Stop    StopReason
	Err     error
}

// MockProvider replays scripted replies in order and records requests.
// Replies go through the same schema check as real vendors. With no
// replies left it fails with KindUnavailable.
type MockProvider struct {
	mu       sync.Mutex
	replies  []MockResponse
	requests []Request
}

// NewMockProvider returns a MockProvider scripted with replies.
func NewMockProvider(replies ...MockResponse) *MockProvider {
	return &MockProvider{replies: replies}
}

// Script appends replies.
func (m *MockProvider) Script(replies ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, replies...)
}

func (m *MockProvider) ModelID() string { return "mock" }

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	if len(m.replies) == 0 {
		m.mu.Unlock()
		return nil, &Error{Kind: KindUnavailable}
	}
	r := m.replies[0]
	m.replies = m.replies[1:]
	m.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	stop := r.Stop
	if stop == "" {
		stop = StopEnd
	}
	return finish(req, r.Content, r.Usage, "mock", stop)
}

// Requests returns a copy of every request received.
func (m *MockProvider) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}
