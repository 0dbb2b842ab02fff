// Package budget meters how much setup work (uploads, construction steps) may run
// in a single frame.
package budget

// Tracker hands out a fixed number of work units per frame. Work that does not fit
// waits for a later frame.
type Tracker struct {
	PerFrame int

	remaining int
	spent     int
	deferred  int
	frames    uint64
}

func NewTracker(perFrame int) *Tracker {
	return &Tracker{PerFrame: perFrame, remaining: perFrame}
}

// StartFrame resets the allowance. Called once per frame before any work.
func (t *Tracker) StartFrame() {
	t.remaining = t.PerFrame
	t.spent = 0
	t.deferred = 0
	t.frames++
}

// TryConsume takes cost units if they fit in what is left of this frame.
// A job larger than the whole allowance is admitted on an untouched frame so it
// cannot starve.
func (t *Tracker) TryConsume(cost int) bool {
	if cost <= 0 {
		return true
	}
	if cost <= t.remaining || (t.spent == 0 && cost > t.PerFrame) {
		t.remaining -= cost
		if t.remaining < 0 {
			t.remaining = 0
		}
		t.spent += cost
		return true
	}
	t.deferred++
	return false
}

func (t *Tracker) Remaining() int { return t.remaining }

func (t *Tracker) Spent() int { return t.spent }

// Deferred counts rejected requests in the current frame.
func (t *Tracker) Deferred() int { return t.deferred }

func (t *Tracker) Frames() uint64 { return t.frames }
