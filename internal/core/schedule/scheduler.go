// Package schedule provides cancellable one-shot and repeating tasks.
//
// Every task hands back a Handle at start time. Cancel is idempotent and never
// blocks on a running callback, so owners may call it while holding their own
// locks; callbacks that race with Cancel must tolerate being stale.
package schedule

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type Handle interface {
	Cancel()
}

type Scheduler interface {
	// After runs fn once after d.
	After(d time.Duration, fn func()) Handle
	// Every runs fn each interval until fn returns false or the task is cancelled.
	Every(interval time.Duration, fn func() bool) Handle
}

// ClockScheduler runs tasks on a clockwork clock.
type ClockScheduler struct {
	clock clockwork.Clock
}

func New(clock clockwork.Clock) *ClockScheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ClockScheduler{clock: clock}
}

type task struct {
	done chan struct{}
	once sync.Once
	stop func()
}

func newTask() *task {
	return &task{done: make(chan struct{})}
}

func (t *task) Cancel() {
	t.once.Do(func() {
		close(t.done)
		if t.stop != nil {
			t.stop()
		}
	})
}

func (t *task) cancelled() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

func (s *ClockScheduler) After(d time.Duration, fn func()) Handle {
	t := newTask()
	timer := s.clock.AfterFunc(d, func() {
		if t.cancelled() {
			return
		}
		t.once.Do(func() { close(t.done) })
		fn()
	})
	t.stop = func() { timer.Stop() }
	return t
}

func (s *ClockScheduler) Every(interval time.Duration, fn func() bool) Handle {
	t := newTask()
	ticker := s.clock.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-t.done:
				return
			case <-ticker.Chan():
				if t.cancelled() {
					return
				}
				if !fn() {
					t.Cancel()
					return
				}
			}
		}
	}()

	return t
}
