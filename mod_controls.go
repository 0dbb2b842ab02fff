package cinescroll

import (
	"github.com/gekko3d/cinescroll/rt/tier"
)

// Controls maps keys to the manual override channel and the HUD:
// 0-3 pin a tier, A returns to automatic control, H toggles the HUD,
// P toggles the profiler lines, Escape quits.
type Controls struct {
	quality *Quality
	hud     *HUD
	log     Logger
}

type ControlsModule struct{}

func (ControlsModule) Install(app *App, cmd *Commands) {
	q, ok := Resource[Quality](app)
	if !ok {
		panic("controls module: QualityModule must be installed first")
	}
	c := &Controls{quality: q, log: Named(app.Logger(), "controls")}
	c.hud, _ = Resource[HUD](app)
	cmd.AddResources(c)
	cmd.UseSystem(System(controlsSystem).InStage(Update))
}

var pinKeys = [...]Key{Key0, Key1, Key2, Key3}

func controlsSystem(input *Input, c *Controls, cmd *Commands) {
	if input.JustPressed[KeyEscape] {
		cmd.Exit("escape pressed")
	}
	if c.hud != nil {
		if input.JustPressed[KeyH] {
			c.hud.Toggle()
		}
		if input.JustPressed[KeyP] {
			c.hud.ShowProfiler = !c.hud.ShowProfiler
		}
	}
	if input.JustPressed[KeyA] {
		c.quality.Controller.ClearOverride()
		c.log.Infof("tier override cleared, computed tier %d", c.quality.Controller.Computed())
	}
	for i, key := range pinKeys {
		if !input.JustPressed[key] {
			continue
		}
		if err := c.quality.Controller.SetOverride(tier.Tier(i)); err != nil {
			c.log.Warnf("override: %v", err)
			continue
		}
		c.log.Infof("tier pinned to %d", i)
	}
}
