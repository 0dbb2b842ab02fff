package frame

import (
	"fmt"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls []string
}

type fakeBudget struct{ r *recorder }

func (b *fakeBudget) StartFrame() { b.r.calls = append(b.r.calls, "budget") }

type fakeTimeline struct {
	r        *recorder
	auto     bool
	advances []float64
	panicOn  bool
}

func (tl *fakeTimeline) Advance(elapsed float64) {
	if tl.panicOn {
		panic("timeline exploded")
	}
	tl.r.calls = append(tl.r.calls, fmt.Sprintf("advance %.3f", elapsed))
	tl.advances = append(tl.advances, elapsed)
}
func (tl *fakeTimeline) DisableAutoTick() { tl.auto = false; tl.r.calls = append(tl.r.calls, "disable") }
func (tl *fakeTimeline) EnableAutoTick()  { tl.auto = true; tl.r.calls = append(tl.r.calls, "enable") }

type fakeLogger struct{ warns, errs []string }

func (l *fakeLogger) Warnf(format string, args ...any)  { l.warns = append(l.warns, fmt.Sprintf(format, args...)) }
func (l *fakeLogger) Errorf(format string, args ...any) { l.errs = append(l.errs, fmt.Sprintf(format, args...)) }

func newFakes() (*recorder, *fakeBudget, *fakeTimeline) {
	r := &recorder{}
	return r, &fakeBudget{r: r}, &fakeTimeline{r: r, auto: true}
}

func TestOrchestrator_TickSequence(t *testing.T) {
	r, budget, tl := newFakes()
	o := New(budget, tl, Strict(true))

	require.NoError(t, o.Init())
	assert.False(t, tl.auto)

	require.NoError(t, o.Tick(0.016, 0.016, mgl32.Vec3{}))
	require.NoError(t, o.Tick(0.033, 0.017, mgl32.Vec3{}))
	require.NoError(t, o.Dispose())
	assert.True(t, tl.auto)

	assert.Equal(t, []string{
		"disable",
		"budget", "advance 0.016",
		"budget", "advance 0.033",
		"enable",
	}, r.calls)
	assert.Equal(t, []float64{0.016, 0.033}, tl.advances, "exactly one advance per frame")
	assert.Equal(t, uint64(2), o.Frames())
}

func TestOrchestrator_LifecycleIsPaired(t *testing.T) {
	_, budget, tl := newFakes()
	o := New(budget, tl, Strict(true))

	assert.ErrorIs(t, o.Dispose(), ErrNotActive)
	require.NoError(t, o.Init())
	assert.ErrorIs(t, o.Init(), ErrAlreadyInitialized)
	require.NoError(t, o.Dispose())
	assert.ErrorIs(t, o.Dispose(), ErrNotActive)

	// re-init after dispose is a fresh pair
	require.NoError(t, o.Init())
	assert.True(t, o.Active())
	require.NoError(t, o.Dispose())
}

func TestOrchestrator_TickBeforeInit(t *testing.T) {
	r, budget, tl := newFakes()

	strict := New(budget, tl, Strict(true))
	assert.ErrorIs(t, strict.Tick(0.016, 0.016, mgl32.Vec3{}), ErrNotInitialized)
	assert.Empty(t, r.calls)

	log := &fakeLogger{}
	prod := New(budget, tl, WithLogger(log))
	assert.NoError(t, prod.Tick(0.016, 0.016, mgl32.Vec3{}))
	assert.NoError(t, prod.Tick(0.032, 0.016, mgl32.Vec3{}))
	assert.Empty(t, r.calls, "no frame work before init")
	assert.Len(t, log.warns, 1, "warn once")
	assert.Zero(t, prod.Frames())
}

func TestOrchestrator_RecoversCollaboratorPanics(t *testing.T) {
	r, budget, tl := newFakes()
	tl.panicOn = true
	log := &fakeLogger{}
	o := New(budget, tl, WithLogger(log))
	require.NoError(t, o.Init())

	assert.NotPanics(t, func() {
		assert.NoError(t, o.Tick(0.016, 0.016, mgl32.Vec3{}))
	})
	assert.Equal(t, []string{"disable", "budget"}, r.calls)
	require.Len(t, log.errs, 1)
	assert.Contains(t, log.errs[0], "timeline.Advance")

	strict := New(budget, tl, Strict(true))
	require.NoError(t, strict.Init())
	assert.Panics(t, func() { _ = strict.Tick(0.016, 0.016, mgl32.Vec3{}) })
}

func TestOrchestrator_NilCollaboratorsAreSkipped(t *testing.T) {
	o := New(nil, nil, Strict(true))
	require.NoError(t, o.Init())
	assert.NoError(t, o.Tick(1, 0.016, mgl32.Vec3{}))
	require.NoError(t, o.Dispose())
}

func TestOrchestrator_SkipsNonFiniteElapsed(t *testing.T) {
	_, budget, tl := newFakes()
	o := New(budget, tl, Strict(true))
	require.NoError(t, o.Init())
	require.NoError(t, o.Tick(math.NaN(), 0.016, mgl32.Vec3{}))
	assert.Empty(t, tl.advances)
}

func TestOrchestrator_CameraVelocity(t *testing.T) {
	o := New(nil, nil, Strict(true))
	require.NoError(t, o.Init())

	require.NoError(t, o.Tick(0, 0.5, mgl32.Vec3{0, 0, 0}))
	assert.Equal(t, mgl32.Vec3{}, o.CameraVelocity(), "no velocity from a single sample")

	require.NoError(t, o.Tick(0.5, 0.5, mgl32.Vec3{1, 0, -2}))
	assert.True(t, o.CameraVelocity().ApproxEqual(mgl32.Vec3{2, 0, -4}))
	assert.InDelta(t, math.Sqrt(20), o.CameraSpeed(), 1e-5)

	// a zero delta keeps the previous estimate
	require.NoError(t, o.Tick(0.5, 0, mgl32.Vec3{5, 5, 5}))
	assert.True(t, o.CameraVelocity().ApproxEqual(mgl32.Vec3{2, 0, -4}))

	require.NoError(t, o.Dispose())
	assert.Zero(t, o.CameraSpeed())
}
