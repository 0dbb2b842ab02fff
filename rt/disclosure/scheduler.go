// Package disclosure stages the construction of a heavy sub-scene over a few
// frames once it becomes visible, so setup cost does not land in a single frame.
package disclosure

import (
	"math"
	"sort"
	"time"
)

// Phase counts how many construction steps of a sub-scene are unlocked. 0 means
// nothing is built.
type Phase int

type Config struct {
	// Threshold is the opacity above which the sub-scene counts as visible.
	Threshold float32
	// Delays are offsets from the visibility rising edge, one per phase: the
	// i-th entry unlocks phase i+1.
	Delays []time.Duration
}

func DefaultConfig() Config {
	return Config{
		Threshold: 0.01,
		Delays:    []time.Duration{0, 100 * time.Millisecond, 250 * time.Millisecond, 400 * time.Millisecond},
	}
}

type timer struct {
	at         time.Duration
	generation uint64
	phase      Phase
}

// Scheduler tracks one sub-scene. Update is driven from the frame loop; pending
// phase advances are timers on the scheduler's own clock, invalidated as a group
// by bumping the generation.
type Scheduler struct {
	Name string

	cfg        Config
	clock      time.Duration
	visible    bool
	phase      Phase
	generation uint64
	pending    []timer
	stale      int

	onPhase func(name string, p Phase)
}

type Option func(*Scheduler)

// OnPhase is called once for every phase change, including the reset to 0.
func OnPhase(fn func(name string, p Phase)) Option {
	return func(s *Scheduler) { s.onPhase = fn }
}

func NewScheduler(name string, cfg Config, opts ...Option) *Scheduler {
	delays := append([]time.Duration(nil), cfg.Delays...)
	sort.Slice(delays, func(i, j int) bool { return delays[i] < delays[j] })
	cfg.Delays = delays
	s := &Scheduler{Name: name, cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) Phase() Phase { return s.phase }

func (s *Scheduler) MaxPhase() Phase { return Phase(len(s.cfg.Delays)) }

func (s *Scheduler) Visible() bool { return s.visible }

// Pending is the number of queued timers that can still fire.
func (s *Scheduler) Pending() int {
	n := 0
	for _, t := range s.pending {
		if t.generation == s.generation {
			n++
		}
	}
	return n
}

// StaleFired counts timers that came due after their generation was cancelled.
func (s *Scheduler) StaleFired() int { return s.stale }

// Unlocked reports whether construction step (1-based) may exist.
func (s *Scheduler) Unlocked(step int) bool {
	return step >= 1 && Phase(step) <= s.phase
}

// Update advances the scheduler clock by dt and applies the current opacity.
func (s *Scheduler) Update(opacity float32, dt time.Duration) Phase {
	if dt > 0 {
		s.clock += dt
	}

	visible := !math.IsNaN(float64(opacity)) && opacity > s.cfg.Threshold
	switch {
	case visible && !s.visible:
		s.visible = true
		s.arm()
	case !visible && s.visible:
		s.Reset()
	}

	s.fire()
	return s.phase
}

// Reset cancels every pending advance and drops back to phase 0. The next
// visible Update counts as a fresh entry and stages from the start.
func (s *Scheduler) Reset() {
	s.visible = false
	s.generation++
	s.setPhase(0)
}

func (s *Scheduler) arm() {
	s.generation++
	for i, d := range s.cfg.Delays {
		s.pending = append(s.pending, timer{at: s.clock + d, generation: s.generation, phase: Phase(i + 1)})
	}
}

func (s *Scheduler) fire() {
	kept := s.pending[:0]
	for _, t := range s.pending {
		if t.at > s.clock {
			kept = append(kept, t)
			continue
		}
		if t.generation != s.generation || !s.visible {
			s.stale++
			continue
		}
		for s.phase < t.phase {
			s.setPhase(s.phase + 1)
		}
	}
	s.pending = kept
}

func (s *Scheduler) setPhase(p Phase) {
	if p == s.phase {
		return
	}
	s.phase = p
	if s.onPhase != nil {
		s.onPhase(s.Name, p)
	}
}
