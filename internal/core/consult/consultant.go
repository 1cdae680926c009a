package consult

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/agenthands/vynda/internal/config"
	"github.com/agenthands/vynda/internal/core/model"
	"github.com/agenthands/vynda/internal/llm"
)

const defaultSystemTemplate = "You are VYNDA's consultant. Context: %s. Be empathetic, concise (max 3 paragraphs), and actionable."

const (
	emptyReply    = "I'm processing that... could you rephrase?"
	lawyerReply   = "While many patients handle appeals successfully on their own using these tools, hiring a lawyer is a personal choice. Since your win probability is high (over 80%), you might try submitting this appeal first. If it's denied again, legal counsel would be a strong next step."
	timelineReply = "Based on similar cases in our memory bank, once the appeal is submitted, insurers typically respond within 15-30 calendar days. Expedited reviews can take as little as 72 hours if your doctor certifies it's urgent."
	defaultReply  = "That's a great question. Based on the policy contradiction we found, you have strong grounds for this appeal. I recommend focusing on the 'Standard of Care' argument in your letter, as that has been the winning lever in 94% of similar cases. Would you like me to help you edit the draft?"
)

type Consultant struct {
	LLM      llm.LLMClient
	Settings config.ChatConfig
	Template string
	Clock    clockwork.Clock
	Logger   *slog.Logger
	// Jitter returns a value in [0, n); defaults to math/rand.
	Jitter func(n int64) int64
}

func NewConsultant(client llm.LLMClient, settings config.ChatConfig, prompts config.Prompts, clock clockwork.Clock, logger *slog.Logger) *Consultant {
	template := prompts.Consultant
	if template == "" {
		template = defaultSystemTemplate
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Consultant{
		LLM:      client,
		Settings: settings,
		Template: template,
		Clock:    clock,
		Logger:   logger,
		Jitter:   rand.Int63n,
	}
}

// Reply answers message in the context of a case. Provider failures fall back
// to canned answers; only context cancellation is returned as an error.
func (c *Consultant) Reply(ctx context.Context, caseContext string, history []model.ChatMessage, message string) (string, error) {
	if c.LLM != nil {
		req := llm.ChatRequest{
			System:      systemPrompt(c.Template, caseContext),
			Message:     message,
			Temperature: c.Settings.Temperature,
		}
		// providers expect the conversation to open with a user turn
		for _, m := range history {
			if len(req.History) == 0 && m.Role != model.RoleUser {
				continue
			}
			req.History = append(req.History, llm.Turn{Role: m.Role, Text: m.Text})
		}

		text, err := c.LLM.Chat(ctx, req)
		if err == nil {
			if strings.TrimSpace(text) == "" {
				return emptyReply, nil
			}
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		c.Logger.Warn("consultant model failed, using canned reply", "error", err)
	}

	if err := c.sleep(ctx, c.Settings.FallbackDelay()); err != nil {
		return "", err
	}
	return FallbackReply(message), nil
}

// FallbackReply picks a canned answer by keyword.
func FallbackReply(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "lawyer") || strings.Contains(lower, "attorney"):
		return lawyerReply
	case strings.Contains(lower, "time") || strings.Contains(lower, "long"):
		return timelineReply
	default:
		return defaultReply
	}
}

// Stream emits text word by word with a short random pause before each word.
func (c *Consultant) Stream(ctx context.Context, text string, onChunk func(chunk string)) error {
	for _, word := range strings.Split(text, " ") {
		delay := c.Settings.StreamMin()
		if jitter := c.Settings.StreamJitter(); jitter > 0 && c.Jitter != nil {
			delay += time.Duration(c.Jitter(int64(jitter)))
		}
		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
		onChunk(word + " ")
	}
	return nil
}

func (c *Consultant) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.Clock.After(d):
		return nil
	}
}

func systemPrompt(template, caseContext string) string {
	if strings.Contains(template, "%s") {
		return fmt.Sprintf(template, caseContext)
	}
	return template + "\n\nContext: " + caseContext
}
