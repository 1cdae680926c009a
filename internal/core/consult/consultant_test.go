package consult

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/vynda/internal/config"
	"github.com/agenthands/vynda/internal/core/model"
	"github.com/agenthands/vynda/internal/llm"
)

func instantSettings() config.ChatConfig {
	return config.ChatConfig{Temperature: 0.4}
}

func TestReplyUsesModelWithHistoryFromFirstUserTurn(t *testing.T) {
	mockLLM := &MockLLMClient{Response: "File within 180 days."}
	c := NewConsultant(mockLLM, instantSettings(), config.Prompts{}, nil, nil)

	history := []model.ChatMessage{
		{Role: model.RoleModel, Text: "How can I help?"},
		{Role: model.RoleUser, Text: "Hi"},
		{Role: model.RoleModel, Text: "Hello"},
	}
	reply, err := c.Reply(context.Background(), `{"payer":"Aetna"}`, history, "What is the deadline?")
	require.NoError(t, err)
	assert.Equal(t, "File within 180 days.", reply)

	require.Len(t, mockLLM.Requests, 1)
	req := mockLLM.Requests[0]
	assert.Contains(t, req.System, `Context: {"payer":"Aetna"}.`)
	assert.Equal(t, "What is the deadline?", req.Message)
	assert.InDelta(t, 0.4, req.Temperature, 1e-6)
	assert.Equal(t, []llm.Turn{
		{Role: "user", Text: "Hi"},
		{Role: "model", Text: "Hello"},
	}, req.History)
}

func TestReplyEmptyModelText(t *testing.T) {
	c := NewConsultant(&MockLLMClient{Response: "  "}, instantSettings(), config.Prompts{}, nil, nil)

	reply, err := c.Reply(context.Background(), "{}", nil, "hello")
	require.NoError(t, err)
	assert.Equal(t, emptyReply, reply)
}

func TestReplyFallsBackOnError(t *testing.T) {
	c := NewConsultant(&MockLLMClient{Err: errors.New("503")}, instantSettings(), config.Prompts{}, nil, nil)

	reply, err := c.Reply(context.Background(), "{}", nil, "Should I hire an Attorney?")
	require.NoError(t, err)
	assert.Equal(t, lawyerReply, reply)
}

func TestFallbackReply(t *testing.T) {
	assert.Equal(t, lawyerReply, FallbackReply("do I need a lawyer"))
	assert.Equal(t, timelineReply, FallbackReply("How LONG will this take?"))
	assert.Equal(t, timelineReply, FallbackReply("what's the timeline"))
	assert.Equal(t, defaultReply, FallbackReply("thanks"))
}

func TestReplyFallbackDelay(t *testing.T) {
	clock := clockwork.NewFakeClock()
	settings := instantSettings()
	settings.FallbackDelayMS = 800
	c := NewConsultant(nil, settings, config.Prompts{}, clock, nil)

	done := make(chan string, 1)
	go func() {
		reply, err := c.Reply(context.Background(), "{}", nil, "thanks")
		assert.NoError(t, err)
		done <- reply
	}()

	clock.BlockUntil(1)
	clock.Advance(800 * time.Millisecond)
	select {
	case reply := <-done:
		assert.Equal(t, defaultReply, reply)
	case <-time.After(time.Second):
		t.Fatal("fallback reply did not arrive")
	}
}

func TestCustomTemplateWithoutPlaceholder(t *testing.T) {
	mockLLM := &MockLLMClient{Response: "ok"}
	c := NewConsultant(mockLLM, instantSettings(), config.Prompts{Consultant: "Be brief."}, nil, nil)

	_, err := c.Reply(context.Background(), "CASE", nil, "hi")
	require.NoError(t, err)
	assert.Equal(t, "Be brief.\n\nContext: CASE", mockLLM.Requests[0].System)
}

func TestStream(t *testing.T) {
	c := NewConsultant(nil, instantSettings(), config.Prompts{}, nil, nil)

	var chunks []string
	err := c.Stream(context.Background(), "we will win this", func(chunk string) {
		chunks = append(chunks, chunk)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"we ", "will ", "win ", "this "}, chunks)
	assert.Equal(t, "we will win this ", strings.Join(chunks, ""))
}

func TestStreamStopsOnCancel(t *testing.T) {
	settings := instantSettings()
	settings.StreamMinMS = 30
	settings.StreamJitterMS = 30
	c := NewConsultant(nil, settings, config.Prompts{}, clockwork.NewFakeClock(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var chunks []string
	err := c.Stream(ctx, "a b c", func(chunk string) { chunks = append(chunks, chunk) })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, chunks)
}
