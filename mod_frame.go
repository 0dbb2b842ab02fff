package cinescroll

import (
	"fmt"

	"github.com/gekko3d/cinescroll/rt/budget"
	"github.com/gekko3d/cinescroll/rt/frame"
	"github.com/gekko3d/cinescroll/rt/timeline"
)

// Frame groups the orchestrator with the collaborators it drives.
type Frame struct {
	Orchestrator *frame.Orchestrator
	Budget       *budget.Tracker
	Timeline     *timeline.Engine

	log Logger
}

type FrameModule struct {
	BudgetPerFrame int
	// Timeline is driven manually while the App runs. A nil Timeline gets a
	// private engine that is stopped on shutdown.
	Timeline *timeline.Engine
	// Strict makes Tick errors and collaborator panics fatal.
	Strict bool
}

func (m FrameModule) Install(app *App, cmd *Commands) {
	log := Named(app.Logger(), "frame")
	ensureResource(app, NewSceneSignals)

	perFrame := m.BudgetPerFrame
	if perFrame <= 0 {
		perFrame = DefaultConfig().Budget.PerFrame
	}
	tracker := budget.NewTracker(perFrame)

	engine, owned := m.Timeline, false
	if engine == nil {
		engine, owned = timeline.NewEngine(), true
	}

	opts := []frame.Option{frame.WithLogger(log), frame.Strict(m.Strict)}
	if p, ok := Resource[Profiler](app); ok {
		opts = append(opts, frame.WithProfiler(p))
	}
	orch := frame.New(tracker, engine, opts...)
	if err := orch.Init(); err != nil {
		panic(fmt.Errorf("frame module: %w", err))
	}

	cmd.AddResources(&Frame{Orchestrator: orch, Budget: tracker, Timeline: engine, log: log})
	cmd.OnShutdown(func() {
		if err := orch.Dispose(); err != nil {
			log.Errorf("frame module: %v", err)
		}
		if owned {
			engine.DisableAutoTick()
		}
	})
	cmd.UseSystem(System(frameOrchestratorSystem).InStage(PreUpdate))
}

func frameOrchestratorSystem(t *Time, signals *SceneSignals, f *Frame) {
	if err := f.Orchestrator.Tick(t.Elapsed, t.Dt, signals.Camera); err != nil {
		f.log.Errorf("frame %d: %v", t.Frame, err)
	}
}
