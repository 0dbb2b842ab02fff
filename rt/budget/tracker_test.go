package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_PerFrameAllowance(t *testing.T) {
	tr := NewTracker(3)

	assert.True(t, tr.TryConsume(2))
	assert.False(t, tr.TryConsume(2))
	assert.True(t, tr.TryConsume(1))
	assert.Zero(t, tr.Remaining())
	assert.Equal(t, 1, tr.Deferred())

	tr.StartFrame()
	assert.Equal(t, 3, tr.Remaining())
	assert.Zero(t, tr.Deferred())
	assert.True(t, tr.TryConsume(2))
	assert.Equal(t, uint64(1), tr.Frames())
}

func TestTracker_OversizedJobRunsOnFreshFrame(t *testing.T) {
	tr := NewTracker(2)
	tr.StartFrame()
	assert.True(t, tr.TryConsume(1))
	assert.False(t, tr.TryConsume(5), "oversized job waits for a fresh frame")

	tr.StartFrame()
	assert.True(t, tr.TryConsume(5))
	assert.Zero(t, tr.Remaining())
	assert.False(t, tr.TryConsume(1))
}

func TestTracker_FreeWork(t *testing.T) {
	tr := NewTracker(0)
	assert.True(t, tr.TryConsume(0))
	assert.True(t, tr.TryConsume(-1))
	assert.Zero(t, tr.Spent())
}
