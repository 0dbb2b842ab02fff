package tier

import (
	"fmt"
	"math"
	"time"
)

type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
}

// Condition is the classification of the smoothed frame time.
type Condition int

const (
	Neutral Condition = iota
	Poor
	Excellent
)

func (c Condition) String() string {
	switch c {
	case Poor:
		return "poor"
	case Excellent:
		return "excellent"
	}
	return "neutral"
}

// Transition is one tier change stamped with the controller's sample clock.
type Transition struct {
	From Tier
	To   Tier
	At   time.Duration
}

const transitionHistory = 32

// Controller decides the quality tier from per-frame delta times.
// Degrades after DownshiftDuration of poor frames, improves after UpshiftDuration of
// excellent frames, moves one step at a time and never twice within CooldownDuration.
// Not safe for concurrent use; Sample is called from the frame loop only.
type Controller struct {
	cfg Config
	log Logger

	current  Tier
	smoothed float64
	seeded   bool

	downTimer   time.Duration
	upTimer     time.Duration
	sinceChange time.Duration
	clock       time.Duration

	overrideSet bool
	override    Tier

	transitions  []Transition
	onTransition func(Transition)
}

type Option func(*Controller)

func WithLogger(l Logger) Option {
	return func(c *Controller) { c.log = l }
}

// OnTransition registers a callback invoked synchronously inside Sample when the
// computed tier changes.
func OnTransition(fn func(Transition)) Option {
	return func(c *Controller) { c.onTransition = fn }
}

func NewController(cfg Config, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		cfg:     cfg,
		current: cfg.StartTier,
		// the first transition is not held back by a cooldown that never started
		sinceChange: cfg.CooldownDuration,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Controller) Config() Config { return c.cfg }

// Current is the tier the pipeline should render with: the override when pinned,
// the computed tier otherwise.
func (c *Controller) Current() Tier {
	if c.overrideSet {
		return c.override
	}
	return c.current
}

// Computed is the controller's own decision, ignoring any override.
func (c *Controller) Computed() Tier { return c.current }

// SetOverride pins Current to t. Sampling continues underneath.
func (c *Controller) SetOverride(t Tier) error {
	if t < 0 || t > c.cfg.MaxTier {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrTierOutOfRange, t, c.cfg.MaxTier)
	}
	c.override = t
	c.overrideSet = true
	return nil
}

// ClearOverride returns control to the computed tier. Accumulated condition timers
// and the smoothed metric are kept, so automatic mode resumes where sampling is.
func (c *Controller) ClearOverride() {
	c.overrideSet = false
}

func (c *Controller) Override() (Tier, bool) { return c.override, c.overrideSet }

// SmoothedFrameTime is the current EMA of the frame delta, zero before the first valid sample.
func (c *Controller) SmoothedFrameTime() time.Duration {
	return secondsToDuration(c.smoothed)
}

func (c *Controller) Condition() Condition {
	if !c.seeded {
		return Neutral
	}
	return c.classify(c.smoothed)
}

// Transitions returns the most recent tier changes, oldest first.
func (c *Controller) Transitions() []Transition {
	out := make([]Transition, len(c.transitions))
	copy(out, c.transitions)
	return out
}

// Sample folds one frame delta (seconds) into the controller and returns true if
// the computed tier changed. Zero, negative, non-finite or oversized deltas are dropped.
func (c *Controller) Sample(dt float64) bool {
	if !c.validDelta(dt) {
		if c.log != nil {
			c.log.Debugf("tier: discarded frame delta %v", dt)
		}
		return false
	}
	d := secondsToDuration(dt)
	if d <= 0 {
		return false
	}

	c.clock += d
	c.sinceChange += d
	c.fold(dt)

	switch c.classify(c.smoothed) {
	case Poor:
		c.downTimer += d
		c.upTimer = 0
	case Excellent:
		c.upTimer += d
		c.downTimer = 0
	default:
		c.downTimer = 0
		c.upTimer = 0
	}

	if c.sinceChange < c.cfg.CooldownDuration {
		return false
	}

	if c.downTimer > 0 && c.downTimer >= c.cfg.DownshiftDuration {
		if c.current == 0 {
			c.downTimer = 0
			return false
		}
		c.step(c.current - 1)
		return true
	}
	if c.upTimer > 0 && c.upTimer >= c.cfg.UpshiftDuration {
		if c.current >= c.cfg.MaxTier {
			c.upTimer = 0
			return false
		}
		c.step(c.current + 1)
		return true
	}
	return false
}

func (c *Controller) validDelta(dt float64) bool {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return false
	}
	if c.cfg.MaxSampleDelta > 0 && dt > c.cfg.MaxSampleDelta.Seconds() {
		return false
	}
	return true
}

func (c *Controller) fold(dt float64) {
	if !c.seeded {
		c.smoothed = dt
		c.seeded = true
		return
	}
	alpha := 1.0
	if tau := c.cfg.SmoothingTime.Seconds(); tau > 0 {
		alpha = 1 - math.Exp(-dt/tau)
	}
	c.smoothed += alpha * (dt - c.smoothed)
}

func (c *Controller) classify(frameTime float64) Condition {
	switch {
	case frameTime > c.cfg.PoorFrameTime.Seconds():
		return Poor
	case frameTime < c.cfg.ExcellentFrameTime.Seconds():
		return Excellent
	}
	return Neutral
}

func (c *Controller) step(to Tier) {
	tr := Transition{From: c.current, To: to, At: c.clock}
	c.current = to
	c.downTimer = 0
	c.upTimer = 0
	c.sinceChange = 0

	if len(c.transitions) == transitionHistory {
		copy(c.transitions, c.transitions[1:])
		c.transitions = c.transitions[:transitionHistory-1]
	}
	c.transitions = append(c.transitions, tr)

	if c.log != nil {
		c.log.Infof("tier: %d -> %d at %v (frame time %.2fms)", tr.From, tr.To, tr.At, c.smoothed*1000)
	}
	if c.onTransition != nil {
		c.onTransition(tr)
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
