package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey string, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

func (c *GeminiClient) generativeModel(system string, temperature float32) *genai.GenerativeModel {
	model := c.client.GenerativeModel(c.model)
	if system != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}
	model.SetTemperature(temperature)
	return model
}

func (c *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	model := c.generativeModel(req.System, req.Temperature)

	parts := []genai.Part{genai.Text(req.Prompt)}
	for _, a := range req.Attachments {
		parts = append(parts, genai.Blob{MIMEType: a.MIMEType, Data: a.Data})
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}
	return responseText(resp)
}

func (c *GeminiClient) Chat(ctx context.Context, req ChatRequest) (string, error) {
	model := c.generativeModel(req.System, req.Temperature)

	cs := model.StartChat()
	for _, turn := range req.History {
		role := RoleUser
		if turn.Role == RoleModel {
			role = RoleModel
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(turn.Text)},
		})
	}

	resp, err := cs.SendMessage(ctx, genai.Text(req.Message))
	if err != nil {
		return "", err
	}
	return responseText(resp)
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response candidates or content")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String(), nil
}
