// Package probability derives the displayed win probability from the
// evidence checklist of a case.
//
// Target is the authoritative value: it moves by an item's weight on every
// toggle, relative to the previous target, and is clamped to [0, Ceiling].
// Displayed trails Target through a stepped animation and is for rendering only.
package probability

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/agenthands/vynda/internal/config"
	"github.com/agenthands/vynda/internal/core/schedule"
)

type Options struct {
	DefaultWeight     int
	Ceiling           int
	DeltaWindow       time.Duration
	AnimationDuration time.Duration
	AnimationSteps    int
}

func DefaultOptions() Options {
	return OptionsFromConfig(config.Default().Probability)
}

func OptionsFromConfig(cfg config.ProbabilityConfig) Options {
	return Options{
		DefaultWeight:     cfg.DefaultWeight,
		Ceiling:           cfg.Ceiling,
		DeltaWindow:       cfg.DeltaWindow(),
		AnimationDuration: cfg.Animation(),
		AnimationSteps:    cfg.AnimationSteps,
	}
}

func (o Options) normalized() Options {
	if o.DefaultWeight < 0 {
		o.DefaultWeight = 0
	}
	if o.Ceiling <= 0 || o.Ceiling > 99 {
		o.Ceiling = 99
	}
	if o.AnimationSteps <= 0 {
		o.AnimationSteps = 1
	}
	if o.AnimationDuration < time.Duration(o.AnimationSteps) {
		o.AnimationDuration = time.Duration(o.AnimationSteps)
	}
	return o
}

// Seed is the checklist entry as delivered by the analysis.
type Seed struct {
	ID           string
	Label        string
	Importance   string
	Impact       string
	WhyItMatters string
	// Weight overrides Impact parsing when set and non-negative.
	Weight *int
}

type Item struct {
	ID           string
	Label        string
	Importance   string
	Impact       string
	WhyItMatters string
	Weight       int
	Present      bool
}

type Engine struct {
	mu    sync.Mutex
	sched schedule.Scheduler
	opts  Options

	items []Item
	index map[string]int

	baseline  int
	target    int
	displayed float64
	lastDelta *int

	anim     schedule.Handle
	animGen  uint64
	clearing schedule.Handle
	deltaGen uint64
	closed   bool
}

// New builds the engine with every item present and starts the counter
// animation from 0 toward the baseline. Duplicate ids panic.
func New(seeds []Seed, baseline int, sched schedule.Scheduler, opts Options) *Engine {
	opts = opts.normalized()
	e := &Engine{
		sched:    sched,
		opts:     opts,
		items:    make([]Item, 0, len(seeds)),
		index:    make(map[string]int, len(seeds)),
		baseline: clamp(baseline, 0, 100),
	}

	for _, s := range seeds {
		if _, dup := e.index[s.ID]; dup {
			panic(fmt.Sprintf("probability: duplicate evidence item %q", s.ID))
		}
		weight := ParseWeight(s.Impact, opts.DefaultWeight)
		if s.Weight != nil && *s.Weight >= 0 {
			weight = *s.Weight
		}
		// any weight past the ceiling saturates; capping keeps target+delta from overflowing
		weight = min(weight, opts.Ceiling)
		e.index[s.ID] = len(e.items)
		e.items = append(e.items, Item{
			ID:           s.ID,
			Label:        s.Label,
			Importance:   s.Importance,
			Impact:       s.Impact,
			WhyItMatters: s.WhyItMatters,
			Weight:       weight,
			Present:      true,
		})
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.target = clamp(e.baseline, 0, opts.Ceiling)
	e.animateLocked()
	return e
}

func (e *Engine) Has(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.index[id]
	return ok
}

// Toggle records the new presence of an item and returns the new target.
// The delta is applied even when nowPresent equals the current state; the
// caller decides the intended state. Unknown ids panic.
func (e *Engine) Toggle(id string, nowPresent bool) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.toggleLocked(id, nowPresent)
}

// Flip inverts the presence of an item and returns the new target.
func (e *Engine) Flip(id string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.toggleLocked(id, !e.itemLocked(id).Present)
}

func (e *Engine) itemLocked(id string) *Item {
	i, ok := e.index[id]
	if !ok {
		panic(fmt.Sprintf("probability: unknown evidence item %q", id))
	}
	return &e.items[i]
}

func (e *Engine) toggleLocked(id string, nowPresent bool) int {
	item := e.itemLocked(id)

	delta := item.Weight
	if !nowPresent {
		delta = -delta
	}
	item.Present = nowPresent

	e.target = clamp(e.target+delta, 0, e.opts.Ceiling)
	e.showDeltaLocked(delta)
	e.animateLocked()
	return e.target
}

func (e *Engine) showDeltaLocked(delta int) {
	e.lastDelta = &delta
	e.deltaGen++
	if e.clearing != nil {
		e.clearing.Cancel()
		e.clearing = nil
	}
	if e.closed {
		return
	}

	gen := e.deltaGen
	e.clearing = e.sched.After(e.opts.DeltaWindow, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if gen != e.deltaGen {
			return
		}
		e.lastDelta = nil
		e.clearing = nil
	})
}

// animateLocked abandons any running animation and starts a new one from the
// current displayed value toward the target.
func (e *Engine) animateLocked() {
	e.animGen++
	if e.anim != nil {
		e.anim.Cancel()
		e.anim = nil
	}
	if e.closed {
		return
	}

	end := float64(e.target)
	start := e.displayed
	if start == end {
		return
	}

	gen := e.animGen
	steps := e.opts.AnimationSteps
	step := 0

	e.anim = e.sched.Every(e.opts.AnimationDuration/time.Duration(steps), func() bool {
		e.mu.Lock()
		defer e.mu.Unlock()
		if gen != e.animGen {
			return false
		}
		step++
		if step >= steps {
			e.displayed = end
			e.anim = nil
			return false
		}
		e.displayed = start + (end-start)*float64(step)/float64(steps)
		return true
	})
}

func (e *Engine) Target() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.target
}

func (e *Engine) Baseline() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.baseline
}

// Displayed is the animated counter value, floored to whole percent.
func (e *Engine) Displayed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return int(math.Floor(e.displayed))
}

// LastDelta reports the signed weight of the most recent toggle while it is
// still inside the display window.
func (e *Engine) LastDelta() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastDelta == nil {
		return 0, false
	}
	return *e.lastDelta, true
}

func (e *Engine) Items() []Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Item, len(e.items))
	copy(out, e.items)
	return out
}

// Close cancels the animation and the delta timer. Later toggles still update
// the target but schedule nothing.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.animGen++
	e.deltaGen++
	if e.anim != nil {
		e.anim.Cancel()
		e.anim = nil
	}
	if e.clearing != nil {
		e.clearing.Cancel()
		e.clearing = nil
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
