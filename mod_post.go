package cinescroll

import (
	"fmt"
	"time"

	"github.com/gekko3d/cinescroll/rt/post"
)

const ScopeResolve = "resolve"

// Post holds the single post pipeline and the per-frame resolution state.
type Post struct {
	Pipeline *post.Pipeline
	Mapping  post.Mapping
	DPR      *post.DPRSmoother

	// NativeDPR is the display's pixel ratio, refreshed from the display every frame
	// when one is attached.
	NativeDPR float32

	display   DisplayScale
	params    post.Params
	applied   float32
	dprPushed bool
}

// Params is the parameter set resolved this frame.
func (p *Post) Params() post.Params { return p.params }

// AppliedDPR is the resolution scale render targets are currently sized for.
func (p *Post) AppliedDPR() float32 { return p.applied }

// DPRPushed reports whether this frame changed AppliedDPR.
func (p *Post) DPRPushed() bool { return p.dprPushed }

// DisplayScale reports the native pixel ratio of the display being rendered to.
// WindowState implements it.
type DisplayScale interface {
	ContentScale() float32
}

// PostModule installs the post pipeline. Display defaults to the window when a
// PlatformWindowModule is installed; without either, NativeDPR stays fixed.
type PostModule struct {
	Mapping       post.Mapping
	NativeDPR     float32
	Display       DisplayScale
	DPRSmoothTime time.Duration
	DPRHysteresis float32
}

func (m PostModule) Install(app *App, cmd *Commands) {
	ensureSinglePipeline(app, "post")
	q, ok := Resource[Quality](app)
	if !ok {
		panic("post module: QualityModule must be installed first")
	}
	if _, ok := Resource[Frame](app); !ok {
		panic("post module: FrameModule must be installed first")
	}
	if err := m.Mapping.Validate(); err != nil {
		panic(fmt.Errorf("post module: %w", err))
	}
	ensureResource(app, NewSceneSignals)
	ensureResource(app, NewProfiler)

	display := m.Display
	if display == nil {
		if ws, ok := Resource[WindowState](app); ok {
			display = ws
		}
	}
	native := m.NativeDPR
	if native <= 0 && display != nil {
		native = display.ContentScale()
	}
	if native <= 0 {
		native = 1
	}
	initial := post.TargetDPR(native, m.Mapping.Resolve(q.Current(), post.Signals{}).DPR)

	p := &Post{
		Pipeline:  post.NewPipeline(),
		Mapping:   m.Mapping,
		DPR:       post.NewDPRSmoother(initial, m.DPRSmoothTime, m.DPRHysteresis),
		NativeDPR: native,
		display:   display,
		applied:   initial,
	}
	Named(app.Logger(), "post").Infof("pipeline: %d stages, initial dpr %.2f", len(p.Pipeline.Stages()), initial)

	cmd.AddResources(p)
	if display != nil {
		cmd.UseSystem(System(postDisplaySystem).InStage(PreUpdate))
	}
	cmd.UseSystem(System(postResolveSystem).InStage(PreRender))
}

// postDisplaySystem picks up content scale changes before the frame resolves its
// DPR target.
func postDisplaySystem(p *Post) {
	if scale := p.display.ContentScale(); scale > 0 {
		p.NativeDPR = scale
	}
}

func postResolveSystem(t *Time, q *Quality, f *Frame, signals *SceneSignals, p *Post, prof *Profiler) {
	prof.BeginScope(ScopeResolve)
	defer prof.EndScope(ScopeResolve)

	p.params = p.Mapping.Resolve(q.Current(), post.Signals{
		Regions:        signals.Opacity,
		ScrollVelocity: signals.ScrollVelocity,
		ScrollProgress: signals.ScrollProgress,
		CameraSpeed:    f.Orchestrator.CameraSpeed(),
	})
	p.Pipeline.Apply(p.params)

	p.applied, p.dprPushed = p.DPR.Update(post.TargetDPR(p.NativeDPR, p.params.DPR), t.Dt)
}
