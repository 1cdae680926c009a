package consult

import (
	"context"

	"github.com/agenthands/vynda/internal/llm"
)

type MockLLMClient struct {
	Response string
	Err      error
	Requests []llm.ChatRequest
}

func (m *MockLLMClient) Generate(ctx context.Context, req llm.Request) (string, error) {
	return "", nil
}

func (m *MockLLMClient) Chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}
