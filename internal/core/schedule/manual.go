package schedule

import (
	"sync"
	"time"
)

// Manual is a deterministic Scheduler driven by Advance. Callbacks run on the
// goroutine calling Advance, in due-time order (ties by creation order).
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	tasks []*manualTask
}

type manualTask struct {
	m        *Manual
	seq      uint64
	due      time.Duration
	interval time.Duration
	once     func()
	repeat   func() bool
	done     bool
}

func NewManual() *Manual {
	return &Manual{}
}

func (t *manualTask) Cancel() {
	t.m.mu.Lock()
	t.done = true
	t.m.mu.Unlock()
}

func (m *Manual) add(t *manualTask) *manualTask {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t.m = m
	t.seq = m.seq
	m.tasks = append(m.tasks, t)
	return t
}

func (m *Manual) After(d time.Duration, fn func()) Handle {
	return m.add(&manualTask{due: m.Now() + d, once: fn})
}

func (m *Manual) Every(interval time.Duration, fn func() bool) Handle {
	if interval <= 0 {
		interval = time.Nanosecond
	}
	return m.add(&manualTask{due: m.Now() + interval, interval: interval, repeat: fn})
}

// Now is the virtual time elapsed since the scheduler was created.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending counts tasks that have neither fired nor been cancelled.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.done {
			n++
		}
	}
	return n
}

// Advance moves virtual time forward by d, firing every task that falls due.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	until := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.nextDue(until)
		if next == nil {
			m.now = until
			m.prune()
			m.mu.Unlock()
			return
		}
		m.now = next.due
		if next.once != nil {
			next.done = true
		}
		m.mu.Unlock()

		if next.once != nil {
			next.once()
			continue
		}

		keep := next.repeat()
		m.mu.Lock()
		if !keep {
			next.done = true
		} else if !next.done {
			next.due += next.interval
		}
		m.mu.Unlock()
	}
}

func (m *Manual) nextDue(until time.Duration) *manualTask {
	var next *manualTask
	for _, t := range m.tasks {
		if t.done || t.due > until {
			continue
		}
		if next == nil || t.due < next.due || (t.due == next.due && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

func (m *Manual) prune() {
	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.done {
			live = append(live, t)
		}
	}
	m.tasks = live
}
