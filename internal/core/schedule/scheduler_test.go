package schedule

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestClockSchedulerAfter(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(clock)

	var fired atomic.Int32
	s.After(time.Second, func() { fired.Add(1) })

	clock.BlockUntil(1)
	clock.Advance(999 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())

	clock.Advance(time.Millisecond)
	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)
}

func TestClockSchedulerAfterCancel(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(clock)

	var fired atomic.Int32
	h := s.After(time.Second, func() { fired.Add(1) })
	h.Cancel()
	h.Cancel()

	clock.Advance(2 * time.Second)
	assert.Never(t, func() bool { return fired.Load() != 0 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestClockSchedulerEveryStopsWhenFnReturnsFalse(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(clock)

	var ticks atomic.Int32
	s.Every(10*time.Millisecond, func() bool {
		return ticks.Add(1) < 3
	})

	clock.BlockUntil(1)
	for want := int32(1); want <= 3; want++ {
		clock.Advance(10 * time.Millisecond)
		assert.Eventually(t, func() bool { return ticks.Load() == want }, time.Second, time.Millisecond)
	}

	clock.Advance(10 * time.Millisecond)
	assert.Never(t, func() bool { return ticks.Load() > 3 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestManualOrdersAndRepeats(t *testing.T) {
	m := NewManual()
	var log []string

	m.After(30*time.Millisecond, func() { log = append(log, "after30") })
	n := 0
	m.Every(10*time.Millisecond, func() bool {
		n++
		log = append(log, "tick")
		return n < 4
	})

	m.Advance(25 * time.Millisecond)
	assert.Equal(t, []string{"tick", "tick"}, log)
	assert.Equal(t, 2, m.Pending())

	m.Advance(time.Second)
	assert.Equal(t, []string{"tick", "tick", "after30", "tick", "tick"}, log)
	assert.Equal(t, 0, m.Pending())
	assert.Equal(t, 1025*time.Millisecond, m.Now())
}

func TestManualCancel(t *testing.T) {
	m := NewManual()
	fired := false
	h := m.After(time.Millisecond, func() { fired = true })
	h.Cancel()

	m.Advance(time.Second)
	assert.False(t, fired)
	assert.Equal(t, 0, m.Pending())
}
