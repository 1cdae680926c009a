package probability

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/agenthands/vynda/internal/core/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demoSeeds() []Seed {
	return []Seed{
		{ID: "a", Label: "Surgeon letter", Importance: "Critical", Impact: "+8%"},
		{ID: "b", Label: "PT summary", Importance: "Important", Impact: "+5%"},
		{ID: "c", Label: "WOMAC", Importance: "Helpful", Impact: "+3%"},
	}
}

func newEngine(t *testing.T, seeds []Seed, baseline int) (*Engine, *schedule.Manual) {
	t.Helper()
	sched := schedule.NewManual()
	e := New(seeds, baseline, sched, DefaultOptions())
	t.Cleanup(e.Close)
	return e, sched
}

func TestParseWeight(t *testing.T) {
	tests := []struct {
		impact string
		want   int
	}{
		{"+8%", 8},
		{"8", 8},
		{"-12%", 12},
		{"+ 15 points", 15},
		{"8.5%", 85},
		{"0%", 0},
		{"significant", 5},
		{"", 5},
		{"99999999999999999999999", 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseWeight(tt.impact, 5), "impact %q", tt.impact)
	}
}

func TestInitializeDefaults(t *testing.T) {
	seven := 7
	seeds := append(demoSeeds(),
		Seed{ID: "d", Impact: "significant"},
		Seed{ID: "e", Impact: "+40%", Weight: &seven},
	)
	e, _ := newEngine(t, seeds, 80)

	assert.Equal(t, 80, e.Target())
	assert.Equal(t, 80, e.Baseline())
	assert.Equal(t, 0, e.Displayed())
	_, ok := e.LastDelta()
	assert.False(t, ok)

	items := e.Items()
	require.Len(t, items, 5)
	weights := []int{8, 5, 3, 5, 7}
	for i, it := range items {
		assert.True(t, it.Present, "item %s starts present", it.ID)
		assert.Equal(t, weights[i], it.Weight, "item %s", it.ID)
	}
}

func TestToggleCompoundsFromCurrentTarget(t *testing.T) {
	e, _ := newEngine(t, demoSeeds(), 80)

	assert.Equal(t, 72, e.Toggle("a", false))
	assert.Equal(t, 67, e.Toggle("b", false))
	assert.Equal(t, 75, e.Toggle("a", true))
	assert.Equal(t, 75, e.Target())

	items := e.Items()
	assert.True(t, items[0].Present)
	assert.False(t, items[1].Present)
	assert.True(t, items[2].Present)
}

func TestFlipIsSelfInverse(t *testing.T) {
	e, _ := newEngine(t, demoSeeds(), 60)

	before := e.Target()
	e.Flip("b")
	assert.Equal(t, 55, e.Target())
	e.Flip("b")
	assert.Equal(t, before, e.Target())
}

func TestTargetStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	seeds := []Seed{
		{ID: "big", Impact: "+60%"},
		{ID: "mid", Impact: "+25%"},
		{ID: "small", Impact: "+3%"},
		{ID: "vague", Impact: "helps a lot"},
	}
	ids := []string{"big", "mid", "small", "vague"}

	for _, baseline := range []int{0, 1, 50, 98, 99, 100, 150, -10} {
		e, _ := newEngine(t, seeds, baseline)
		assert.GreaterOrEqual(t, e.Target(), 0)
		assert.LessOrEqual(t, e.Target(), 99)

		for i := 0; i < 500; i++ {
			id := ids[rng.Intn(len(ids))]
			got := e.Toggle(id, rng.Intn(2) == 0)
			require.GreaterOrEqual(t, got, 0)
			require.LessOrEqual(t, got, 99)
		}
	}
}

func TestCeilingIsNinetyNine(t *testing.T) {
	e, _ := newEngine(t, demoSeeds(), 95)
	assert.Equal(t, 99, e.Toggle("a", true))
	assert.Equal(t, 91, e.Toggle("a", false))
}

func TestHugeWeightSaturatesAtCeiling(t *testing.T) {
	huge := math.MaxInt
	seeds := []Seed{
		{ID: "digits", Impact: "+9223372036854775807%"},
		{ID: "numeric", Impact: "+8%", Weight: &huge},
	}
	e, _ := newEngine(t, seeds, 80)

	for _, it := range e.Items() {
		assert.Equal(t, 99, it.Weight, "item %s", it.ID)
	}

	assert.Equal(t, 99, e.Toggle("digits", true), "adding evidence never lowers the target")
	assert.Equal(t, 99, e.Toggle("numeric", true))
	assert.Equal(t, 0, e.Toggle("digits", false))
	assert.Equal(t, 99, e.Toggle("numeric", true))
}

func TestCeilingOptionCappedAtNinetyNine(t *testing.T) {
	for _, ceiling := range []int{100, 150, 0, -4} {
		opts := DefaultOptions()
		opts.Ceiling = ceiling
		e := New(demoSeeds(), 100, schedule.NewManual(), opts)

		assert.Equal(t, 99, e.Target(), "ceiling %d", ceiling)
		e.Flip("a")
		assert.Equal(t, 99, e.Flip("a"), "ceiling %d", ceiling)
		e.Close()
	}
}

func TestTargetIndependentOfAnimation(t *testing.T) {
	e, sched := newEngine(t, demoSeeds(), 80)

	e.Toggle("a", false)
	assert.Equal(t, 72, e.Target(), "no timer advance needed")

	sched.Advance(700 * time.Millisecond)
	assert.Equal(t, 72, e.Target())
}

func TestLastDeltaClearsAfterWindow(t *testing.T) {
	e, sched := newEngine(t, demoSeeds(), 80)

	e.Toggle("b", false)
	d, ok := e.LastDelta()
	require.True(t, ok)
	assert.Equal(t, -5, d)

	sched.Advance(2499 * time.Millisecond)
	d, ok = e.LastDelta()
	require.True(t, ok)
	assert.Equal(t, -5, d)

	sched.Advance(time.Millisecond)
	_, ok = e.LastDelta()
	assert.False(t, ok)
	assert.Equal(t, 75, e.Target())
}

func TestLastDeltaWindowRestartsOnEachToggle(t *testing.T) {
	e, sched := newEngine(t, demoSeeds(), 80)

	e.Toggle("a", false)
	sched.Advance(2 * time.Second)
	e.Toggle("a", true)

	sched.Advance(time.Second)
	d, ok := e.LastDelta()
	require.True(t, ok, "first window must not clear the second delta")
	assert.Equal(t, 8, d)

	sched.Advance(1500 * time.Millisecond)
	_, ok = e.LastDelta()
	assert.False(t, ok)
}

func TestDisplayedReachesTargetExactly(t *testing.T) {
	for _, baseline := range []int{0, 1, 7, 33, 67, 80, 99} {
		e, sched := newEngine(t, demoSeeds(), baseline)

		sched.Advance(1500 * time.Millisecond)
		assert.Equal(t, e.Target(), e.Displayed(), "baseline %d", baseline)
		assert.Equal(t, 0, sched.Pending(), "animation finished")
	}
}

func TestDisplayedAnimatesInSteps(t *testing.T) {
	e, sched := newEngine(t, demoSeeds(), 60)

	sched.Advance(25 * time.Millisecond)
	assert.Equal(t, 1, e.Displayed())

	sched.Advance(725 * time.Millisecond)
	assert.Equal(t, 30, e.Displayed())

	sched.Advance(750 * time.Millisecond)
	assert.Equal(t, 60, e.Displayed())
}

func TestRetargetMidAnimationRestartsFromCurrent(t *testing.T) {
	e, sched := newEngine(t, demoSeeds(), 80)

	sched.Advance(750 * time.Millisecond)
	assert.Equal(t, 40, e.Displayed())

	e.Toggle("a", false)
	sched.Advance(750 * time.Millisecond)
	assert.Equal(t, 56, e.Displayed(), "halfway from 40 to 72")

	sched.Advance(750 * time.Millisecond)
	assert.Equal(t, 72, e.Displayed())
}

func TestCloseCancelsTimers(t *testing.T) {
	sched := schedule.NewManual()
	e := New(demoSeeds(), 80, sched, DefaultOptions())
	e.Toggle("a", false)
	require.Equal(t, 2, sched.Pending())

	e.Close()
	e.Close()
	assert.Equal(t, 0, sched.Pending())

	displayed := e.Displayed()
	sched.Advance(5 * time.Second)
	assert.Equal(t, displayed, e.Displayed())

	assert.Equal(t, 80, e.Toggle("a", true))
	assert.Equal(t, 0, sched.Pending(), "closed engine schedules nothing")
}

func TestUnknownItemPanics(t *testing.T) {
	e, _ := newEngine(t, demoSeeds(), 80)

	assert.False(t, e.Has("zzz"))
	assert.True(t, e.Has("a"))
	assert.Panics(t, func() { e.Toggle("zzz", true) })
	assert.Panics(t, func() { e.Flip("zzz") })
	assert.Equal(t, 80, e.Target())
}

func TestDuplicateSeedPanics(t *testing.T) {
	seeds := []Seed{{ID: "a", Impact: "+1%"}, {ID: "a", Impact: "+2%"}}
	assert.Panics(t, func() { New(seeds, 50, schedule.NewManual(), DefaultOptions()) })
}

func TestSnapshot(t *testing.T) {
	e, sched := newEngine(t, demoSeeds(), 86)
	sched.Advance(1500 * time.Millisecond)

	e.Flip("c")
	s := e.Snapshot()
	assert.Equal(t, 83, s.Target)
	assert.Equal(t, 86, s.Baseline)
	assert.Equal(t, 86, s.Displayed)
	assert.Equal(t, "Excellent", s.Rating)
	assert.Equal(t, "green", s.Tone)
	require.NotNil(t, s.LastDelta)
	assert.Equal(t, -3, *s.LastDelta)
	require.Len(t, s.Items, 3)
	assert.False(t, s.Items[2].Present)
	assert.Equal(t, 3, s.Items[2].Weight)
}

func TestRatingAndTone(t *testing.T) {
	assert.Equal(t, "Excellent", Rating(81))
	assert.Equal(t, "Moderate", Rating(80))
	assert.Equal(t, "Moderate", Rating(51))
	assert.Equal(t, "Critical", Rating(50))

	assert.Equal(t, "green", Tone(85))
	assert.Equal(t, "yellow", Tone(84))
	assert.Equal(t, "yellow", Tone(61))
	assert.Equal(t, "red", Tone(60))
}
