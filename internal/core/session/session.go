// Package session owns the per-case state shown to a user: the analysis
// result, its probability engine, the consultant transcript and the edited
// appeal letter. Each concern has a single mutation entry point.
package session

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/agenthands/vynda/internal/core/analysis"
	"github.com/agenthands/vynda/internal/core/model"
	"github.com/agenthands/vynda/internal/core/probability"
	"github.com/agenthands/vynda/internal/core/schedule"
)

var (
	ErrNotFound    = errors.New("session: not found")
	ErrUnknownItem = errors.New("session: unknown evidence item")
)

const defaultGreeting = "I've analyzed your case. How can I help?"

type Session struct {
	ID        string
	CreatedAt time.Time
	Source    analysis.Source

	clock clockwork.Clock

	mu         sync.Mutex
	result     *model.AnalysisResult
	engine     *probability.Engine
	transcript []model.ChatMessage
	letter     *model.AppealLetter
	lastSeen   time.Time
}

func newSession(id string, out *analysis.Outcome, sched schedule.Scheduler, opts probability.Options, clock clockwork.Clock) *Session {
	result := out.Result
	now := clock.Now()

	greeting := result.ConsultantPrompt
	if greeting == "" {
		greeting = defaultGreeting
	}

	var letter *model.AppealLetter
	if result.AppealLetter != nil {
		l := *result.AppealLetter
		letter = &l
	}

	return &Session{
		ID:         id,
		CreatedAt:  now,
		Source:     out.Source,
		clock:      clock,
		result:     result,
		engine:     probability.New(EvidenceSeeds(result.MissingEvidence.ChecklistItems), result.CaseSummary.WinProbabilityPercent, sched, opts),
		transcript: []model.ChatMessage{{Role: model.RoleModel, Text: greeting}},
		letter:     letter,
		lastSeen:   now,
	}
}

// EvidenceSeeds maps checklist items onto engine seeds.
func EvidenceSeeds(items []model.MissingEvidenceItem) []probability.Seed {
	seeds := make([]probability.Seed, 0, len(items))
	for _, it := range items {
		seeds = append(seeds, probability.Seed{
			ID:           it.ID,
			Label:        it.Label,
			Importance:   string(it.Importance),
			Impact:       it.ImpactIfAdded,
			WhyItMatters: it.WhyItMatters,
			Weight:       it.ImpactWeight,
		})
	}
	return seeds
}

func (s *Session) touchLocked() {
	s.lastSeen = s.clock.Now()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Result returns the analysis with the current letter draft in place.
func (s *Session) Result() model.AnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()

	r := *s.result
	if s.letter != nil {
		l := *s.letter
		r.AppealLetter = &l
	}
	return r
}

// CaseContext is the case summary handed to the consultant.
func (s *Session) CaseContext() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := json.Marshal(s.result.CaseSummary)
	if err != nil {
		return s.result.CaseSummary.OverallRationale
	}
	return string(b)
}

// Probability is read by every view that shows the gauge.
func (s *Session) Probability() probability.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	return s.engine.Snapshot()
}

// ToggleEvidence flips one checklist item.
func (s *Session) ToggleEvidence(itemID string) (probability.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()

	if !s.engine.Has(itemID) {
		return probability.Snapshot{}, ErrUnknownItem
	}
	s.engine.Flip(itemID)
	return s.engine.Snapshot(), nil
}

// SetEvidence sets an explicit presence; a value equal to the current one
// changes nothing.
func (s *Session) SetEvidence(itemID string, present bool) (probability.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()

	if !s.engine.Has(itemID) {
		return probability.Snapshot{}, ErrUnknownItem
	}
	for _, it := range s.engine.Items() {
		if it.ID == itemID && it.Present != present {
			s.engine.Toggle(itemID, present)
			break
		}
	}
	return s.engine.Snapshot(), nil
}

func (s *Session) Transcript() []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	out := make([]model.ChatMessage, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// RecordExchange appends a user message and the consultant's reply.
func (s *Session) RecordExchange(message, reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.transcript = append(s.transcript,
		model.ChatMessage{Role: model.RoleUser, Text: message},
		model.ChatMessage{Role: model.RoleModel, Text: reply},
	)
}

func (s *Session) Letter() (model.AppealLetter, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	if s.letter == nil {
		return model.AppealLetter{}, false
	}
	return *s.letter, true
}

// EditLetter replaces the draft title and body; empty values keep the
// current ones. A case without a drafted letter gets a new one.
func (s *Session) EditLetter(title, body string) model.AppealLetter {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()

	if s.letter == nil {
		s.letter = &model.AppealLetter{}
	}
	if title != "" {
		s.letter.Title = title
	}
	if body != "" {
		s.letter.Body = body
	}
	return *s.letter
}

// Close tears down the engine timers.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Close()
}
