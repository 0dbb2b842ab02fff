package cinescroll

import (
	"fmt"
	"image"

	"github.com/gekko3d/cinescroll/rt/hud"
	"github.com/gekko3d/cinescroll/rt/tier"
)

// HUD keeps the debug overlay current while Visible. It reads the tier snapshot
// through the quality observers, not the controller.
type HUD struct {
	Overlay      *hud.Overlay
	Visible      bool
	ShowProfiler bool

	snapshot   tier.Snapshot
	profiler   *Profiler
	disclosure *Disclosure
	lines      []string
}

func (h *HUD) Toggle() { h.Visible = !h.Visible }

// Image is the last rendered overlay, nil until the HUD was first visible.
func (h *HUD) Image() *image.RGBA { return h.Overlay.Image() }

// Lines is the text of the last rendered overlay.
func (h *HUD) Lines() []string { return h.lines }

type HUDModule struct {
	Visible bool
}

func (m HUDModule) Install(app *App, cmd *Commands) {
	q, ok := Resource[Quality](app)
	if !ok {
		panic("hud module: QualityModule must be installed first")
	}
	h := &HUD{Overlay: hud.NewOverlay(), Visible: m.Visible, ShowProfiler: true, snapshot: q.Snapshot()}
	h.profiler, _ = Resource[Profiler](app)
	h.disclosure, _ = Resource[Disclosure](app)

	id := q.Observers.Subscribe(func(s tier.Snapshot) { h.snapshot = s })
	cmd.OnShutdown(func() { q.Observers.Unsubscribe(id) })

	cmd.AddResources(h)
	cmd.UseSystem(System(hudSystem).InStage(PostRender))
}

func hudSystem(h *HUD) {
	if !h.Visible {
		return
	}
	h.lines = append(h.lines[:0], hud.TierLines(h.snapshot)...)
	if h.disclosure != nil {
		for _, sc := range h.disclosure.Scenes {
			h.lines = append(h.lines, fmt.Sprintf("%s phase %d/%d mounted %d",
				sc.Scheduler.Name, sc.Scheduler.Phase(), sc.Scheduler.MaxPhase(), sc.Mounted()))
		}
	}
	if h.profiler != nil && h.ShowProfiler {
		h.lines = append(h.lines, h.profiler.Lines()...)
	}
	h.Overlay.Render(h.lines)
}
