package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
)

const claudeMaxTokens = 4096

type ClaudeClient struct {
	client *anthropic.Client
	model  string
}

func NewClaudeClient(apiKey string, model string, baseURL string) *ClaudeClient {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}

	client := anthropic.NewClient(apiKey, opts...)

	return &ClaudeClient{
		client: client,
		model:  model,
	}
}

func (c *ClaudeClient) Generate(ctx context.Context, req Request) (string, error) {
	content := []anthropic.MessageContent{anthropic.NewTextMessageContent(req.Prompt)}
	for _, a := range req.Attachments {
		if !strings.HasPrefix(a.MIMEType, "image/") {
			content = append(content, anthropic.NewTextMessageContent(
				fmt.Sprintf("[attachment of type %s omitted]", a.MIMEType)))
			continue
		}
		content = append(content, anthropic.NewImageMessageContent(anthropic.MessageContentSource{
			Type:      anthropic.MessagesContentSourceTypeBase64,
			MediaType: a.MIMEType,
			Data:      base64.StdEncoding.EncodeToString(a.Data),
		}))
	}

	return c.send(ctx, req.System, []anthropic.Message{
		{Role: anthropic.RoleUser, Content: content},
	}, req.Temperature)
}

func (c *ClaudeClient) Chat(ctx context.Context, req ChatRequest) (string, error) {
	var messages []anthropic.Message
	for _, turn := range req.History {
		role := anthropic.RoleUser
		if turn.Role == RoleModel {
			role = anthropic.RoleAssistant
		}
		messages = append(messages, anthropic.Message{
			Role:    role,
			Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(turn.Text)},
		})
	}
	messages = append(messages, anthropic.Message{
		Role:    anthropic.RoleUser,
		Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(req.Message)},
	})

	return c.send(ctx, req.System, messages, req.Temperature)
}

func (c *ClaudeClient) send(ctx context.Context, system string, messages []anthropic.Message, temperature float32) (string, error) {
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.model),
		System:      system,
		Messages:    messages,
		MaxTokens:   claudeMaxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Content) > 0 && resp.Content[0].Text != nil {
		return *resp.Content[0].Text, nil
	}
	return "", fmt.Errorf("no response content")
}
