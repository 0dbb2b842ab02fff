package tier

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is a plain-value copy of the controller state for readers outside the
// frame loop (HUD, debug panels). It never aliases controller memory.
type Snapshot struct {
	Current           Tier
	Computed          Tier
	Override          Tier
	OverrideSet       bool
	SmoothedFrameTime time.Duration
	Condition         Condition
	DownshiftTimer    time.Duration
	UpshiftTimer      time.Duration
	SinceChange       time.Duration
	Last              Transition
	HasTransitioned   bool
}

func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		Current:           c.Current(),
		Computed:          c.current,
		Override:          c.override,
		OverrideSet:       c.overrideSet,
		SmoothedFrameTime: c.SmoothedFrameTime(),
		Condition:         c.Condition(),
		DownshiftTimer:    c.downTimer,
		UpshiftTimer:      c.upTimer,
		SinceChange:       c.sinceChange,
	}
	if n := len(c.transitions); n > 0 {
		s.Last = c.transitions[n-1]
		s.HasTransitioned = true
	}
	return s
}

// Observers is a listener list receiving one Snapshot per frame.
type Observers struct {
	ids       []uuid.UUID
	listeners []func(Snapshot)
}

func (o *Observers) Subscribe(fn func(Snapshot)) uuid.UUID {
	id := uuid.New()
	o.ids = append(o.ids, id)
	o.listeners = append(o.listeners, fn)
	return id
}

func (o *Observers) Unsubscribe(id uuid.UUID) bool {
	for i, existing := range o.ids {
		if existing == id {
			o.ids = append(o.ids[:i], o.ids[i+1:]...)
			o.listeners = append(o.listeners[:i], o.listeners[i+1:]...)
			return true
		}
	}
	return false
}

func (o *Observers) Len() int { return len(o.listeners) }

// Publish delivers s to every listener in subscription order.
func (o *Observers) Publish(s Snapshot) {
	for _, fn := range o.listeners {
		fn(s)
	}
}
