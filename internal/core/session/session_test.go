package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/vynda/internal/core/analysis"
	"github.com/agenthands/vynda/internal/core/model"
	"github.com/agenthands/vynda/internal/core/probability"
	"github.com/agenthands/vynda/internal/core/schedule"
)

func demoOutcome(baseline int) *analysis.Outcome {
	r := analysis.Mock(0, "Eleanor Vance")
	r.CaseSummary.WinProbabilityPercent = baseline
	return &analysis.Outcome{Result: r, Source: analysis.SourceDemo}
}

func newTestStore(t *testing.T) (*Store, *schedule.Manual, clockwork.FakeClock) {
	t.Helper()
	sched := schedule.NewManual()
	clock := clockwork.NewFakeClock()
	st := NewStore(sched, probability.DefaultOptions(), clock, nil)
	n := 0
	st.NewID = func() string {
		n++
		return "case-" + string(rune('0'+n))
	}
	t.Cleanup(st.Close)
	return st, sched, clock
}

func TestCreateAndGet(t *testing.T) {
	st, _, _ := newTestStore(t)

	s := st.Create(demoOutcome(80))
	assert.Equal(t, "case-1", s.ID)
	assert.Equal(t, analysis.SourceDemo, s.Source)

	got, err := st.Get("case-1")
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = st.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChecklistThroughSession(t *testing.T) {
	st, sched, _ := newTestStore(t)
	s := st.Create(demoOutcome(80))

	snap := s.Probability()
	assert.Equal(t, 80, snap.Target)
	assert.Equal(t, 0, snap.Displayed)
	require.Len(t, snap.Items, 3)

	snap, err := s.ToggleEvidence("doc_1")
	require.NoError(t, err)
	assert.Equal(t, 72, snap.Target)
	require.NotNil(t, snap.LastDelta)
	assert.Equal(t, -8, *snap.LastDelta)

	snap, err = s.ToggleEvidence("doc_2")
	require.NoError(t, err)
	assert.Equal(t, 67, snap.Target)

	snap, err = s.ToggleEvidence("doc_1")
	require.NoError(t, err)
	assert.Equal(t, 75, snap.Target)

	_, err = s.ToggleEvidence("doc_9")
	assert.ErrorIs(t, err, ErrUnknownItem)

	sched.Advance(3 * time.Second)
	snap = s.Probability()
	assert.Equal(t, 75, snap.Displayed, "header gauge and overview read the same value")
	assert.Nil(t, snap.LastDelta)
}

func TestSetEvidenceIsIdempotent(t *testing.T) {
	st, _, _ := newTestStore(t)
	s := st.Create(demoOutcome(80))

	snap, err := s.SetEvidence("doc_3", true)
	require.NoError(t, err)
	assert.Equal(t, 80, snap.Target)
	assert.Nil(t, snap.LastDelta)

	snap, err = s.SetEvidence("doc_3", false)
	require.NoError(t, err)
	assert.Equal(t, 77, snap.Target)

	snap, err = s.SetEvidence("doc_3", false)
	require.NoError(t, err)
	assert.Equal(t, 77, snap.Target)

	_, err = s.SetEvidence("nope", true)
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestTranscript(t *testing.T) {
	st, _, _ := newTestStore(t)

	s := st.Create(demoOutcome(80))
	tr := s.Transcript()
	require.Len(t, tr, 1)
	assert.Equal(t, model.RoleModel, tr[0].Role)
	assert.Contains(t, tr[0].Text, "I've completed the analysis")

	s.RecordExchange("How long?", "15-30 days.")
	tr = s.Transcript()
	require.Len(t, tr, 3)
	assert.Equal(t, model.ChatMessage{Role: model.RoleUser, Text: "How long?"}, tr[1])
	assert.Equal(t, model.ChatMessage{Role: model.RoleModel, Text: "15-30 days."}, tr[2])

	out := demoOutcome(50)
	out.Result.ConsultantPrompt = ""
	s2 := st.Create(out)
	assert.Equal(t, defaultGreeting, s2.Transcript()[0].Text)
}

func TestCaseContext(t *testing.T) {
	st, _, _ := newTestStore(t)
	s := st.Create(demoOutcome(80))

	var summary model.CaseSummary
	require.NoError(t, json.Unmarshal([]byte(s.CaseContext()), &summary))
	assert.Equal(t, "Eleanor Vance", summary.PatientName)
	assert.Equal(t, 80, summary.WinProbabilityPercent)
}

func TestEditLetter(t *testing.T) {
	st, _, _ := newTestStore(t)
	out := demoOutcome(80)
	original := out.Result.AppealLetter.Body
	s := st.Create(out)

	l := s.EditLetter("", "Dear team, please reconsider.")
	assert.Equal(t, "Dear team, please reconsider.", l.Body)
	assert.Equal(t, "Appeal of Denial - Eleanor Vance", l.Title)
	assert.Equal(t, original, out.Result.AppealLetter.Body, "analysis result is not mutated")

	r := s.Result()
	assert.Equal(t, "Dear team, please reconsider.", r.AppealLetter.Body)

	noLetter := demoOutcome(60)
	noLetter.Result.AppealLetter = nil
	s2 := st.Create(noLetter)
	_, ok := s2.Letter()
	assert.False(t, ok)
	l = s2.EditLetter("Appeal", "Body")
	assert.Equal(t, model.AppealLetter{Title: "Appeal", Body: "Body"}, l)
}

func TestDeleteCancelsTimers(t *testing.T) {
	st, sched, _ := newTestStore(t)
	s := st.Create(demoOutcome(80))
	_, err := s.ToggleEvidence("doc_1")
	require.NoError(t, err)
	require.Greater(t, sched.Pending(), 0)

	require.NoError(t, st.Delete(s.ID))
	assert.Equal(t, 0, sched.Pending())
	assert.Equal(t, 0, st.Len())
	assert.ErrorIs(t, st.Delete(s.ID), ErrNotFound)
}

func TestSweep(t *testing.T) {
	st, _, clock := newTestStore(t)
	idle := st.Create(demoOutcome(80))
	clock.Advance(90 * time.Minute)
	active := st.Create(demoOutcome(70))

	clock.Advance(45 * time.Minute)
	assert.Equal(t, 1, st.Sweep(2*time.Hour))

	_, err := st.Get(idle.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.Get(active.ID)
	assert.NoError(t, err)

	active.Probability()
	clock.Advance(119 * time.Minute)
	assert.Equal(t, 0, st.Sweep(2*time.Hour), "reads keep a session alive")
	assert.Equal(t, 1, st.Len())
}

func TestSweepWithoutTTLKeepsSessions(t *testing.T) {
	st, _, clock := newTestStore(t)
	st.Create(demoOutcome(80))
	clock.Advance(time.Minute)

	assert.Equal(t, 0, st.Sweep(0))
	assert.Equal(t, 0, st.Sweep(-time.Hour))
	assert.Equal(t, 1, st.Len())

	c, err := StartSweeper(st, "@every 10m", 0, nil)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestStartSweeper(t *testing.T) {
	st, _, _ := newTestStore(t)

	c, err := StartSweeper(st, "", time.Hour, nil)
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = StartSweeper(st, "every now and then", time.Hour, nil)
	assert.Error(t, err)

	c, err = StartSweeper(st, "@every 10m", time.Hour, nil)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Len(t, c.Entries(), 1)
	c.Stop()
}
