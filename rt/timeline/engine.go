// Package timeline is a small tween engine. It runs on its own ticker by default
// and can be switched to manual driving so a render loop advances it in lockstep.
package timeline

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Ease func(t float32) float32

func Linear(t float32) float32 { return t }

func EaseOutQuad(t float32) float32 { return 1 - (1-t)*(1-t) }

func EaseInOutCubic(t float32) float32 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	f := -2*t + 2
	return 1 - f*f*f/2
}

// Tween interpolates From..To over Duration seconds starting at Start (engine time).
type Tween struct {
	ID       uuid.UUID
	Start    float64
	Duration float64
	From     float32
	To       float32
	Ease     Ease
	Apply    func(v float32)
}

func (tw *Tween) value(now float64) (float32, bool) {
	if now < tw.Start {
		return tw.From, false
	}
	p := float32(1)
	if tw.Duration > 0 {
		p = float32((now - tw.Start) / tw.Duration)
		if p > 1 {
			p = 1
		}
	}
	ease := tw.Ease
	if ease == nil {
		ease = Linear
	}
	k := ease(p)
	return tw.From + (tw.To-tw.From)*k, p >= 1
}

type Engine struct {
	mu       sync.Mutex
	tweens   []*Tween
	now      float64
	advances uint64

	interval time.Duration
	auto     bool
	stop     chan struct{}
	done     chan struct{}
}

type Option func(*Engine)

// WithInterval sets the autonomous tick period.
func WithInterval(d time.Duration) Option { return func(e *Engine) { e.interval = d } }

// ManualOnly creates the engine with its ticker off.
func ManualOnly() Option { return func(e *Engine) { e.auto = false } }

func NewEngine(opts ...Option) *Engine {
	e := &Engine{interval: time.Second / 60, auto: true}
	for _, opt := range opts {
		opt(e)
	}
	if e.auto {
		e.startTickerLocked()
	}
	return e
}

// Add schedules a tween delay seconds after the current engine time.
func (e *Engine) Add(delay, duration float64, from, to float32, ease Ease, apply func(float32)) uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	tw := &Tween{
		ID:       uuid.New(),
		Start:    e.now + delay,
		Duration: duration,
		From:     from,
		To:       to,
		Ease:     ease,
		Apply:    apply,
	}
	e.tweens = append(e.tweens, tw)
	return tw.ID
}

func (e *Engine) Kill(id uuid.UUID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, tw := range e.tweens {
		if tw.ID == id {
			e.tweens = append(e.tweens[:i], e.tweens[i+1:]...)
			return true
		}
	}
	return false
}

func (e *Engine) Active() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.tweens)
}

func (e *Engine) Now() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now
}

// Advances counts calls to Advance, manual or automatic.
func (e *Engine) Advances() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.advances
}

// Advance moves engine time to elapsed seconds and applies every started tween.
// Finished tweens are applied one last time at their end value and dropped.
func (e *Engine) Advance(elapsed float64) {
	type update struct {
		apply func(float32)
		v     float32
	}

	e.mu.Lock()
	e.now = elapsed
	e.advances++
	var updates []update
	kept := e.tweens[:0]
	for _, tw := range e.tweens {
		v, finished := tw.value(elapsed)
		if elapsed >= tw.Start && tw.Apply != nil {
			updates = append(updates, update{tw.Apply, v})
		}
		if !finished {
			kept = append(kept, tw)
		}
	}
	for i := len(kept); i < len(e.tweens); i++ {
		e.tweens[i] = nil
	}
	e.tweens = kept
	e.mu.Unlock()

	// callbacks run unlocked so they may add or kill tweens
	for _, u := range updates {
		u.apply(u.v)
	}
}

func (e *Engine) AutoTicking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.auto
}

// DisableAutoTick stops the engine's own ticker and waits for it to exit.
func (e *Engine) DisableAutoTick() {
	e.mu.Lock()
	if !e.auto {
		e.mu.Unlock()
		return
	}
	e.auto = false
	stop, done := e.stop, e.done
	e.mu.Unlock()

	close(stop)
	<-done
}

// EnableAutoTick resumes autonomous ticking from the current engine time.
func (e *Engine) EnableAutoTick() {
	e.mu.Lock()
	if e.auto {
		e.mu.Unlock()
		return
	}
	e.auto = true
	e.startTickerLocked()
	e.mu.Unlock()
}

func (e *Engine) startTickerLocked() {
	stop := make(chan struct{})
	done := make(chan struct{})
	e.stop, e.done = stop, done
	base := e.now
	interval := e.interval

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		origin := time.Now()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				e.Advance(base + now.Sub(origin).Seconds())
			}
		}
	}()
}
