package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"

	"github.com/agenthands/vynda/internal/core/analysis"
	"github.com/agenthands/vynda/internal/core/probability"
	"github.com/agenthands/vynda/internal/core/schedule"
)

// Store keeps live sessions in memory. Nothing outlives the process.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	sched  schedule.Scheduler
	opts   probability.Options
	clock  clockwork.Clock
	logger *slog.Logger

	NewID func() string
}

func NewStore(sched schedule.Scheduler, opts probability.Options, clock clockwork.Clock, logger *slog.Logger) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		sessions: make(map[string]*Session),
		sched:    sched,
		opts:     opts,
		clock:    clock,
		logger:   logger,
		NewID:    func() string { return uuid.New().String() },
	}
}

func (st *Store) Create(out *analysis.Outcome) *Session {
	s := newSession(st.NewID(), out, st.sched, st.opts, st.clock)

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()

	st.logger.Info("session created", "session", s.ID, "source", out.Source,
		"baseline", out.Result.CaseSummary.WinProbabilityPercent,
		"evidence_items", len(out.Result.MissingEvidence.ChecklistItems))
	return s
}

func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete resets a case: the session is removed and its timers cancelled.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	s.Close()
	st.logger.Info("session reset", "session", id)
	return nil
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep closes sessions idle for longer than ttl and returns how many it removed.
// A ttl <= 0 disables eviction.
func (st *Store) Sweep(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	cutoff := st.clock.Now().Add(-ttl)

	st.mu.Lock()
	var stale []*Session
	for id, s := range st.sessions {
		if s.LastSeen().Before(cutoff) {
			stale = append(stale, s)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	return len(stale)
}

// Close drops every session.
func (st *Store) Close() {
	st.mu.Lock()
	sessions := st.sessions
	st.sessions = make(map[string]*Session)
	st.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

// StartSweeper runs Sweep on a cron schedule such as "@every 10m". An empty
// schedule or a ttl <= 0 disables sweeping and returns a nil cron.
func StartSweeper(st *Store, spec string, ttl time.Duration, logger *slog.Logger) (*cron.Cron, error) {
	if spec == "" || ttl <= 0 {
		return nil, nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if n := st.Sweep(ttl); n > 0 {
			logger.Info("swept idle sessions", "removed", n, "remaining", st.Len())
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid session sweep schedule '%s': %w", spec, err)
	}

	c.Start()
	return c, nil
}
