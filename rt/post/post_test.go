package post

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/cinescroll/rt/tier"
)

func TestPipeline_TopologyIsFixed(t *testing.T) {
	p := NewPipeline()
	m := DefaultMapping()

	stages := p.Stages()
	require.Len(t, stages, 7)
	names := make([]string, len(stages))
	for i, st := range stages {
		names[i] = st.Name
	}
	assert.Equal(t, []string{ToneMapping, Bloom, AntiAlias, Sharpen, Grain, ChromaticAberration, Vignette}, names)

	ptrs := make([]*Stage, len(stages))
	copy(ptrs, stages)

	for _, tr := range []tier.Tier{3, 0, 2, 1, 0, 3} {
		p.Apply(m.Resolve(tr, Signals{}))
		require.Len(t, p.Stages(), len(ptrs))
		for i, st := range p.Stages() {
			assert.Same(t, ptrs[i], st)
		}
	}
	assert.Equal(t, uint64(6), p.Applied())
}

func TestPipeline_LowTierZeroesStagesInsteadOfRemoving(t *testing.T) {
	p := NewPipeline()
	m := DefaultMapping()

	p.Apply(m.Resolve(0, Signals{}))
	assert.False(t, p.Stage(Bloom).Active())
	assert.False(t, p.Stage(ChromaticAberration).Active())
	assert.False(t, p.Stage(Sharpen).Active())
	assert.True(t, p.Stage(ToneMapping).Active())
	assert.True(t, p.Stage(Vignette).Active())

	p.Apply(m.Resolve(3, Signals{}))
	assert.True(t, p.Stage(Bloom).Active())
	v, ok := p.Stage(AntiAlias).Parameter("samples")
	require.True(t, ok)
	assert.Equal(t, float32(4), v)
}

func TestStage_SetParameter(t *testing.T) {
	p := NewPipeline()
	st := p.Stage(Bloom)
	require.NotNil(t, st)

	require.NoError(t, st.SetParameter("intensity", 0.7))
	v, ok := st.Parameter("intensity")
	assert.True(t, ok)
	assert.Equal(t, float32(0.7), v)
	assert.True(t, st.TakeDirty())
	assert.False(t, st.TakeDirty())

	require.NoError(t, st.SetParameter("intensity", 0.7))
	assert.False(t, st.TakeDirty(), "writing the same value is not a change")

	err := st.SetParameter("radius", 1)
	assert.ErrorIs(t, err, ErrUnknownParameter)
	assert.Equal(t, []string{"intensity", "threshold", "smoothing", "levels"}, st.Parameters())
}

func TestMapping_ResolveIsPure(t *testing.T) {
	m := DefaultMapping()
	s := Signals{
		Regions:        map[string]float32{"portal": 0.8, "nebula": 0.3},
		ScrollVelocity: 2.5,
		ScrollProgress: 0.4,
		CameraSpeed:    3,
	}
	first := m.Resolve(2, s)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, m.Resolve(2, s))
	}
	assert.Equal(t, map[string]float32{"portal": 0.8, "nebula": 0.3}, s.Regions)
	assert.Equal(t, DefaultTierTable(), m.Tiers)
}

func TestMapping_RegionBoostNeedsDominance(t *testing.T) {
	m := DefaultMapping()
	base := m.Resolve(3, Signals{})

	half := m.Resolve(3, Signals{Regions: map[string]float32{"portal": 0.5}})
	assert.Equal(t, base, half, "exactly 0.5 is not dominant")

	dom := m.Resolve(3, Signals{Regions: map[string]float32{"portal": 0.51}})
	assert.InDelta(t, base.BloomIntensity+0.6, dom.BloomIntensity, 1e-6)
	assert.InDelta(t, base.BloomThreshold-0.15, dom.BloomThreshold, 1e-6)
	assert.InDelta(t, 0.6, dom.VignetteDarkness, 1e-6)
	assert.InDelta(t, base.ChromaticOffset+0.0015, dom.ChromaticOffset, 1e-6)
}

func TestMapping_BoostsCombinePerStageRule(t *testing.T) {
	m := DefaultMapping()
	base := m.Resolve(2, Signals{})
	both := m.Resolve(2, Signals{Regions: map[string]float32{"portal": 1, "nebula": 1, "finale": 1}})

	// summed
	assert.InDelta(t, base.BloomIntensity+0.9, both.BloomIntensity, 1e-6)
	assert.InDelta(t, base.Exposure+0.4, both.Exposure, 1e-6)
	// maxed
	assert.InDelta(t, 0.7, both.VignetteDarkness, 1e-6)
	assert.InDelta(t, 0.06, both.GrainIntensity, 1e-6)
}

func TestMapping_BoostsDoNotEnableDisabledStages(t *testing.T) {
	m := DefaultMapping()
	p := m.Resolve(0, Signals{
		Regions:        map[string]float32{"portal": 1, "nebula": 1},
		ScrollVelocity: 50,
		CameraSpeed:    50,
	})
	assert.Zero(t, p.BloomIntensity)
	assert.Zero(t, p.ChromaticOffset)
	assert.Zero(t, p.GrainIntensity)
}

func TestMapping_MotionBoostIsCapped(t *testing.T) {
	m := DefaultMapping()
	base := m.Resolve(3, Signals{})

	slow := m.Resolve(3, Signals{CameraSpeed: 1})
	assert.InDelta(t, base.ChromaticOffset+m.Motion.CameraGain, slow.ChromaticOffset, 1e-7)

	for _, speed := range []float32{100, 1e6, float32(math.Inf(1))} {
		fast := m.Resolve(3, Signals{CameraSpeed: speed, ScrollVelocity: -speed})
		assert.InDelta(t, base.ChromaticOffset+m.Motion.Max, fast.ChromaticOffset, 1e-7)
	}

	nan := m.Resolve(3, Signals{ScrollVelocity: float32(math.NaN()), ScrollProgress: float32(math.NaN())})
	assert.Equal(t, base, nan)
}

func TestMapping_TierIsClampedToTable(t *testing.T) {
	m := DefaultMapping()
	assert.Equal(t, tier.Tier(3), m.MaxTier())
	assert.Equal(t, m.Resolve(3, Signals{}), m.Resolve(9, Signals{}))
	assert.Equal(t, m.Resolve(0, Signals{}), m.Resolve(-2, Signals{}))

	var prev float32
	for tr := tier.Tier(0); tr <= m.MaxTier(); tr++ {
		p := m.Resolve(tr, Signals{})
		assert.Greater(t, p.DPR, prev)
		prev = p.DPR
	}

	assert.ErrorIs(t, Mapping{}.Validate(), ErrTierTableEmpty)
	assert.Equal(t, Params{}, Mapping{}.Resolve(1, Signals{}))
}

func TestMapping_ScrollProgressRampsExposure(t *testing.T) {
	m := DefaultMapping()
	start := m.Resolve(1, Signals{ScrollProgress: 0})
	end := m.Resolve(1, Signals{ScrollProgress: 1})
	past := m.Resolve(1, Signals{ScrollProgress: 3})
	assert.InDelta(t, start.Exposure+m.ExposureRamp, end.Exposure, 1e-6)
	assert.Equal(t, end, past)
}

func TestTargetDPR(t *testing.T) {
	assert.Equal(t, float32(1.5), TargetDPR(2, 1.5))
	assert.Equal(t, float32(1), TargetDPR(1, 2))
	assert.Equal(t, float32(1.25), TargetDPR(0, 1.25))
}

func TestDPRSmoother_ConvergesWithoutSnapping(t *testing.T) {
	d := NewDPRSmoother(1, 250*time.Millisecond, 0.05)

	v, pushed := d.Update(2, 1.0/60)
	assert.Less(t, d.Current(), float32(1.2), "first frame must not snap to the target")
	if pushed {
		assert.Equal(t, d.Current(), v)
	}

	pushes := 0
	for i := 0; i < 120; i++ {
		if _, p := d.Update(2, 1.0/60); p {
			pushes++
		}
	}
	assert.Equal(t, float32(2), d.Current())
	assert.Equal(t, float32(2), d.Applied())
	assert.Greater(t, pushes, 1)
	assert.Less(t, pushes, 25)
}

func TestDPRSmoother_SettlesOnTargetGoingDown(t *testing.T) {
	d := NewDPRSmoother(2, 250*time.Millisecond, 0.05)

	var last float32
	pushes := 0
	for i := 0; i < 600; i++ {
		if v, p := d.Update(1.5, 1.0/60); p {
			last = v
			pushes++
		}
	}
	assert.Equal(t, float32(1.5), d.Current())
	assert.Equal(t, float32(1.5), d.Applied())
	assert.Equal(t, float32(1.5), last, "the final push is the exact target")
	assert.Less(t, pushes, 20)

	// settled: nothing more to push
	_, pushed := d.Update(1.5, 1.0/60)
	assert.False(t, pushed)
}

func TestDPRSmoother_IgnoresSmallFluctuations(t *testing.T) {
	d := NewDPRSmoother(1.5, 250*time.Millisecond, 0.05)
	for i := 0; i < 600; i++ {
		target := float32(1.5)
		if (i/30)%2 == 0 {
			target = 1.53
		}
		_, pushed := d.Update(target, 1.0/60)
		require.False(t, pushed, "frame %d", i)
	}
	assert.Equal(t, float32(1.5), d.Applied())
}

func TestDPRSmoother_InvalidDeltaHolds(t *testing.T) {
	d := NewDPRSmoother(1, 250*time.Millisecond, 0.05)
	for _, dt := range []float64{0, -1, math.Inf(1)} {
		v, pushed := d.Update(2, dt)
		assert.False(t, pushed)
		assert.Equal(t, float32(1), v)
		assert.Equal(t, float32(1), d.Current())
	}
}
