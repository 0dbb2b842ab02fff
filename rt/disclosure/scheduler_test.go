package disclosure

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = 10 * time.Millisecond

func run(s *Scheduler, opacity float32, d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += frame {
		s.Update(opacity, frame)
	}
}

func TestScheduler_StagesOnRisingEdge(t *testing.T) {
	var seen []Phase
	s := NewScheduler("vault", DefaultConfig(), OnPhase(func(name string, p Phase) {
		assert.Equal(t, "vault", name)
		seen = append(seen, p)
	}))
	assert.Equal(t, Phase(4), s.MaxPhase())

	run(s, 0, 200*time.Millisecond)
	assert.Equal(t, Phase(0), s.Phase())

	assert.Equal(t, Phase(1), s.Update(1, frame), "first step is immediate")
	assert.True(t, s.Unlocked(1))
	assert.False(t, s.Unlocked(2))

	run(s, 1, 90*time.Millisecond) // +90ms
	assert.Equal(t, Phase(1), s.Phase())
	run(s, 1, 10*time.Millisecond) // +100ms
	assert.Equal(t, Phase(2), s.Phase())
	run(s, 1, 150*time.Millisecond) // +250ms
	assert.Equal(t, Phase(3), s.Phase())
	run(s, 1, 150*time.Millisecond) // +400ms
	assert.Equal(t, Phase(4), s.Phase())
	assert.Zero(t, s.Pending())

	run(s, 1, time.Second)
	assert.Equal(t, []Phase{1, 2, 3, 4}, seen)
}

func TestScheduler_ReentryRestartsFromZero(t *testing.T) {
	var seen []Phase
	s := NewScheduler("vault", DefaultConfig(), OnPhase(func(_ string, p Phase) { seen = append(seen, p) }))

	s.Update(1, frame)
	run(s, 1, 300*time.Millisecond)
	require.Equal(t, Phase(3), s.Phase())

	assert.Equal(t, Phase(0), s.Update(0, frame), "drop resets immediately")
	assert.False(t, s.Visible())
	assert.Zero(t, s.Pending())

	assert.Equal(t, Phase(1), s.Update(0.9, frame), "re-entry starts over")
	run(s, 0.9, 50*time.Millisecond)
	assert.Equal(t, Phase(1), s.Phase())
	run(s, 0.9, 500*time.Millisecond)
	assert.Equal(t, Phase(4), s.Phase())

	assert.Equal(t, []Phase{1, 2, 3, 0, 1, 2, 3, 4}, seen)
	assert.Equal(t, 1, s.StaleFired(), "the cancelled phase 4 timer fired as a no-op")
}

func TestScheduler_StaleTimerAfterQuickFlicker(t *testing.T) {
	s := NewScheduler("vault", DefaultConfig())

	// rising edge at t=10ms, phase 2 due at 110ms
	s.Update(1, frame)
	run(s, 1, 40*time.Millisecond)
	// cancelled at t=60ms, new generation at t=70ms with phase 2 due at 170ms
	s.Update(0, frame)
	s.Update(1, frame)
	run(s, 1, 60*time.Millisecond) // t=130ms

	assert.Equal(t, Phase(1), s.Phase(), "old phase 2 timer must not fire")
	assert.Equal(t, 1, s.StaleFired())

	run(s, 1, 40*time.Millisecond) // t=170ms
	assert.Equal(t, Phase(2), s.Phase())
}

func TestScheduler_LongFrameUnlocksInOrder(t *testing.T) {
	var seen []Phase
	s := NewScheduler("vault", DefaultConfig(), OnPhase(func(_ string, p Phase) { seen = append(seen, p) }))
	s.Update(1, 0)
	s.Update(1, 2*time.Second)
	assert.Equal(t, Phase(4), s.Phase())
	assert.Equal(t, []Phase{1, 2, 3, 4}, seen)
}

func TestScheduler_ThresholdAndNaN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Threshold = 0.2
	s := NewScheduler("vault", cfg)

	assert.Equal(t, Phase(0), s.Update(0.2, frame))
	assert.Equal(t, Phase(0), s.Update(float32(math.NaN()), frame))
	assert.Equal(t, Phase(1), s.Update(0.21, frame))
	assert.Equal(t, Phase(0), s.Update(float32(math.NaN()), frame))
}

func TestScheduler_DelaysAreOrdered(t *testing.T) {
	s := NewScheduler("vault", Config{Threshold: 0, Delays: []time.Duration{300 * time.Millisecond, 0, 100 * time.Millisecond}})
	s.Update(1, frame)
	assert.Equal(t, Phase(1), s.Phase())
	run(s, 1, 100*time.Millisecond)
	assert.Equal(t, Phase(2), s.Phase())
	run(s, 1, 200*time.Millisecond)
	assert.Equal(t, Phase(3), s.Phase())
}

func TestScheduler_ResetCancels(t *testing.T) {
	s := NewScheduler("vault", DefaultConfig())
	s.Update(1, frame)
	require.Equal(t, 3, s.Pending())
	s.Reset()
	assert.Equal(t, Phase(0), s.Phase())
	assert.Zero(t, s.Pending())
	assert.False(t, s.Visible())

	// still fully visible: staging restarts from phase 1
	assert.Equal(t, Phase(1), s.Update(1, frame))
	var seen []Phase
	for i := 0; i < 60; i++ {
		p := s.Update(1, frame)
		if len(seen) == 0 || seen[len(seen)-1] != p {
			seen = append(seen, p)
		}
	}
	assert.Equal(t, []Phase{1, 2, 3, 4}, seen)
}
