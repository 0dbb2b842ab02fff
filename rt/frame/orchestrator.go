// Package frame sequences the per-frame work that has to happen before a frame is
// issued: the streaming budget reset and the manually driven animation timeline.
package frame

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrNotInitialized     = errors.New("frame: tick before init")
	ErrAlreadyInitialized = errors.New("frame: orchestrator already initialized")
	ErrNotActive          = errors.New("frame: dispose without matching init")
)

// BudgetTracker is the streaming work budget; StartFrame resets its per-frame allowance.
type BudgetTracker interface {
	StartFrame()
}

// Timeline is an animation engine that can be driven manually. While the
// orchestrator is active the engine's own ticker must be off.
type Timeline interface {
	Advance(elapsed float64)
	DisableAutoTick()
	EnableAutoTick()
}

type Logger interface {
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type Profiler interface {
	BeginScope(name string)
	EndScope(name string)
}

const (
	ScopeBudget   = "budget"
	ScopeTimeline = "timeline"
)

// Orchestrator is called once per rendered frame. It owns no state beyond its
// lifecycle flag and the camera velocity estimate.
type Orchestrator struct {
	budget   BudgetTracker
	timeline Timeline
	log      Logger
	profiler Profiler
	strict   bool

	active      bool
	warnedEarly bool
	frames      uint64

	camera     mgl32.Vec3
	velocity   mgl32.Vec3
	haveCamera bool
}

type Option func(*Orchestrator)

func WithLogger(l Logger) Option { return func(o *Orchestrator) { o.log = l } }

func WithProfiler(p Profiler) Option { return func(o *Orchestrator) { o.profiler = p } }

// Strict makes misuse visible: Tick before Init returns ErrNotInitialized and
// collaborator panics are not recovered. Tests run strict.
func Strict(strict bool) Option { return func(o *Orchestrator) { o.strict = strict } }

// New wires the collaborators. Either may be nil, in which case its step is skipped.
func New(budget BudgetTracker, timeline Timeline, opts ...Option) *Orchestrator {
	o := &Orchestrator{budget: budget, timeline: timeline}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Init takes the timeline off its own clock. Every Init must be paired with one Dispose.
func (o *Orchestrator) Init() error {
	if o.active {
		return ErrAlreadyInitialized
	}
	if o.timeline != nil {
		o.guard("timeline.DisableAutoTick", o.timeline.DisableAutoTick)
	}
	o.active = true
	o.warnedEarly = false
	return nil
}

// Dispose hands the timeline back to its own clock.
func (o *Orchestrator) Dispose() error {
	if !o.active {
		return ErrNotActive
	}
	if o.timeline != nil {
		o.guard("timeline.EnableAutoTick", o.timeline.EnableAutoTick)
	}
	o.active = false
	o.haveCamera = false
	o.velocity = mgl32.Vec3{}
	return nil
}

func (o *Orchestrator) Active() bool { return o.active }

// Frames counts ticks that ran after Init.
func (o *Orchestrator) Frames() uint64 { return o.frames }

// CameraVelocity is the camera displacement per second between the last two ticks.
func (o *Orchestrator) CameraVelocity() mgl32.Vec3 { return o.velocity }

func (o *Orchestrator) CameraSpeed() float32 { return o.velocity.Len() }

// Tick runs the fixed frame sequence: budget reset, then a single timeline advance
// to elapsed. Tier sampling is left to the caller.
func (o *Orchestrator) Tick(elapsed, dt float64, camera mgl32.Vec3) error {
	if !o.active {
		if o.strict {
			return ErrNotInitialized
		}
		if !o.warnedEarly && o.log != nil {
			o.log.Warnf("frame: tick before init, skipping frame work")
		}
		o.warnedEarly = true
		return nil
	}
	o.frames++

	if o.budget != nil {
		o.begin(ScopeBudget)
		o.guard("budget.StartFrame", o.budget.StartFrame)
		o.end(ScopeBudget)
	}

	if o.timeline != nil && finite(elapsed) {
		o.begin(ScopeTimeline)
		o.guard("timeline.Advance", func() { o.timeline.Advance(elapsed) })
		o.end(ScopeTimeline)
	}

	o.trackCamera(camera, dt)
	return nil
}

func (o *Orchestrator) trackCamera(camera mgl32.Vec3, dt float64) {
	if o.haveCamera && dt > 0 && finite(dt) {
		o.velocity = camera.Sub(o.camera).Mul(float32(1 / dt))
	}
	o.camera = camera
	o.haveCamera = true
}

// guard keeps a misbehaving collaborator from taking down the frame loop. In strict
// mode the panic propagates.
func (o *Orchestrator) guard(name string, fn func()) {
	if o.strict {
		fn()
		return
	}
	defer func() {
		if r := recover(); r != nil && o.log != nil {
			o.log.Errorf("frame: %s panicked: %v", name, r)
		}
	}()
	fn()
}

func (o *Orchestrator) begin(scope string) {
	if o.profiler != nil {
		o.profiler.BeginScope(scope)
	}
}

func (o *Orchestrator) end(scope string) {
	if o.profiler != nil {
		o.profiler.EndScope(scope)
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
