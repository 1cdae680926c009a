package analysis

import (
	"context"
	"sync"

	"github.com/agenthands/vynda/internal/llm"
)

// MockLLMClient replays queued responses, then Response.
type MockLLMClient struct {
	mu            sync.Mutex
	Response      string
	ResponseQueue []string
	Err           error
	Requests      []llm.Request
}

func (m *MockLLMClient) Generate(ctx context.Context, req llm.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.ResponseQueue) > 0 {
		resp := m.ResponseQueue[0]
		m.ResponseQueue = m.ResponseQueue[1:]
		return resp, nil
	}
	return m.Response, nil
}

func (m *MockLLMClient) Chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	return "", nil
}

// BlockingLLMClient waits for the context to end, standing in for a provider
// that never answers.
type BlockingLLMClient struct{}

func (BlockingLLMClient) Generate(ctx context.Context, req llm.Request) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (BlockingLLMClient) Chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}
