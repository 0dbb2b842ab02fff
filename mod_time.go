package cinescroll

import (
	"time"
)

// FrameClock reports seconds since some fixed origin. With a window installed
// the clock is glfw.GetTime; tests use a manual clock.
type FrameClock interface {
	Now() float64
}

type wallClock struct {
	start time.Time
}

func (c wallClock) Now() float64 { return time.Since(c.start).Seconds() }

// Time is refreshed in Prelude, once per frame. Dt is 0 on the first frame.
type Time struct {
	Elapsed float64
	Dt      float64
	Frame   uint64
}

type clockSource struct {
	clock   FrameClock
	started bool
}

type TimeModule struct {
	Clock FrameClock
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	clock := mod.Clock
	if clock == nil {
		if _, ok := Resource[WindowState](app); ok {
			clock = glfwClock{}
		} else {
			clock = wallClock{start: time.Now()}
		}
	}
	cmd.AddResources(&Time{}, &clockSource{clock: clock})
	cmd.UseSystem(System(timeSystem).InStage(Prelude))
}

func timeSystem(timeResource *Time, src *clockSource) {
	now := src.clock.Now()

	if src.started {
		timeResource.Dt = now - timeResource.Elapsed
	} else {
		src.started = true
	}
	timeResource.Elapsed = now
	timeResource.Frame++
}
