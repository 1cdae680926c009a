// Package analysis wraps the external analysis provider with a timeout, a
// bounded retry and a deterministic simulated fallback.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/agenthands/vynda/internal/config"
	"github.com/agenthands/vynda/internal/core/common"
	"github.com/agenthands/vynda/internal/core/model"
	"github.com/agenthands/vynda/internal/llm"
)

type Source string

const (
	SourceDemo       Source = "demo"
	SourceModel      Source = "model"
	SourceSimulation Source = "simulation"
)

type Request struct {
	Text     string
	Files    []model.UploadedFile
	NoPolicy bool
	// Seed feeds the simulated result; zero means the configured seed.
	Seed int
	Demo bool
}

type Outcome struct {
	Result *model.AnalysisResult
	Source Source
}

type Analyzer struct {
	LLM      llm.LLMClient
	Settings config.AnalysisConfig
	Prompt   string
	Clock    clockwork.Clock
	Logger   *slog.Logger
}

// NewAnalyzer accepts a nil client, in which case every analysis is simulated.
func NewAnalyzer(client llm.LLMClient, settings config.AnalysisConfig, prompts config.Prompts, clock clockwork.Clock, logger *slog.Logger) *Analyzer {
	prompt := prompts.Analysis
	if prompt == "" {
		prompt = defaultSystemPrompt
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		LLM:      client,
		Settings: settings,
		Prompt:   prompt,
		Clock:    clock,
		Logger:   logger,
	}
}

// Analyze never fails because of the provider: provider errors degrade to the
// simulated result. The only error returned is the context's.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Outcome, error) {
	seed := req.Seed
	if seed == 0 {
		seed = a.Settings.Seed
	}

	if req.Demo {
		if err := a.wait(ctx, a.Settings.DemoDelay()); err != nil {
			return nil, err
		}
		return &Outcome{Result: Mock(seed, DemoPatient), Source: SourceDemo}, nil
	}

	if a.LLM != nil {
		result, err := a.callModel(ctx, req)
		if err == nil {
			return &Outcome{Result: result, Source: SourceModel}, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		a.Logger.Warn("analysis model failed, falling back to simulation", "error", err)
	}

	if err := a.wait(ctx, a.Settings.FallbackDelay()); err != nil {
		return nil, err
	}

	patient := fallbackPatient
	if len(req.Files) > 0 {
		patient = uploadPatient
	}
	return &Outcome{Result: Mock(seed, patient), Source: SourceSimulation}, nil
}

func (a *Analyzer) callModel(ctx context.Context, req Request) (*model.AnalysisResult, error) {
	prompt := fmt.Sprintf(userPromptTemplate, req.Text)
	if req.NoPolicy {
		prompt += noPolicyNote
	}

	llmReq := llm.Request{
		System:      a.Prompt,
		Prompt:      prompt,
		Temperature: a.Settings.Temperature,
	}
	for _, f := range req.Files {
		if data, ok := f.Payload(); ok {
			llmReq.Attachments = append(llmReq.Attachments, llm.Attachment{MIMEType: f.MIMEType, Data: data})
		}
	}

	attempts := a.Settings.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var errs []error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := a.attempt(ctx, llmReq)
		if err == nil {
			return result, nil
		}
		errs = append(errs, fmt.Errorf("attempt %d: %w", attempt, err))
		if ctx.Err() != nil {
			break
		}
		a.Logger.Debug("analysis attempt failed", "attempt", attempt, "error", err)
	}
	return nil, errors.Join(errs...)
}

func (a *Analyzer) attempt(ctx context.Context, req llm.Request) (*model.AnalysisResult, error) {
	if timeout := a.Settings.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	text, err := a.LLM.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to generate analysis: %w", err)
	}
	if text == "" {
		return nil, fmt.Errorf("empty analysis response")
	}

	result, err := common.ParseJSON[model.AnalysisResult](text)
	if err != nil {
		return nil, fmt.Errorf("the analysis model returned a malformed response: %w", err)
	}

	Normalize(&result)
	return &result, nil
}

func (a *Analyzer) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-a.Clock.After(d):
		return nil
	}
}

// Normalize makes a model result safe to drive a session: the probability is
// clamped to [0, 100] and every checklist item gets a unique id.
func Normalize(r *model.AnalysisResult) {
	p := r.CaseSummary.WinProbabilityPercent
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	r.CaseSummary.WinProbabilityPercent = p

	items := r.MissingEvidence.ChecklistItems
	seen := make(map[string]bool, len(items))
	for i := range items {
		id := items[i].ID
		if id == "" || seen[id] {
			id = fmt.Sprintf("doc_%d", i+1)
			for n := 2; seen[id]; n++ {
				id = fmt.Sprintf("doc_%d_%d", i+1, n)
			}
		}
		seen[id] = true
		items[i].ID = id
	}
}
