package llm

import (
	"context"
)

// Attachment is a file passed inline to the model.
type Attachment struct {
	MIMEType string
	Data     []byte
}

type Request struct {
	System      string
	Prompt      string
	Attachments []Attachment
	Temperature float32
}

const (
	RoleUser  = "user"
	RoleModel = "model"
)

type Turn struct {
	Role string
	Text string
}

type ChatRequest struct {
	System      string
	History     []Turn
	Message     string
	Temperature float32
}

type LLMClient interface {
	Generate(ctx context.Context, req Request) (string, error)
	Chat(ctx context.Context, req ChatRequest) (string, error)
}
