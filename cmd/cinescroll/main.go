package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/cinescroll"
	"github.com/gekko3d/cinescroll/rt/tier"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "YAML session config (defaults when empty)")
	device := flag.String("device", "", "device class: mobile, laptop or desktop (overrides config)")
	pinned := flag.Int("tier", -1, "pin the quality tier; -1 lets the controller decide")
	debug := flag.Bool("debug", false, "debug logging")
	showHUD := flag.Bool("hud", false, "show the quality overlay at start")
	flag.Parse()

	logger := cinescroll.NewDefaultLogger("cinescroll", *debug)

	cfg := cinescroll.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = cinescroll.LoadConfig(*configPath); err != nil {
			logger.Errorf("%v", err)
			os.Exit(1)
		}
	}
	if *device != "" {
		cfg.Device = *device
	}
	tierCfg, err := cfg.TierConfig()
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}

	app := cinescroll.NewAppBuilder().
		UseModule(
			cinescroll.LoggingModule{Prefix: "cinescroll", Debug: *debug},
			cinescroll.NewPlatformWindow(1280, 720, "cinescroll"),
			cinescroll.InputModule{},
			cinescroll.TimeModule{},
			cinescroll.ProfilerModule{},
			cinescroll.FrameModule{BudgetPerFrame: cfg.Budget.PerFrame},
			cinescroll.QualityModule{Config: tierCfg, Pinned: *pinned >= 0, Override: tier.Tier(*pinned)},
			cinescroll.DisclosureModule{Config: cfg.DisclosureConfig(), Scenes: cinescroll.ScenesFromConfig(cfg, logger)},
			cinescroll.PostModule{Mapping: cfg.Mapping(), DPRSmoothTime: cfg.DPRSmoothTime(), DPRHysteresis: cfg.DPR.Hysteresis},
			cinescroll.HUDModule{Visible: *showHUD},
			cinescroll.ControlsModule{},
			cinescroll.GpuModule{},
			demoScrollModule{log: logger},
		).
		Build()

	app.Run()
}

func saveHUD(h *cinescroll.HUD) error {
	if h == nil {
		return fmt.Errorf("no HUD installed")
	}
	img := h.Image()
	if img == nil {
		return fmt.Errorf("overlay not rendered yet, press H first")
	}
	f, err := os.Create("hud.png")
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// demoScroll drives scroll progress, region opacities and the camera so the
// quality loop has something to react to without a real scene.
type demoScroll struct {
	progress float32
	velocity float32
	paused   bool

	hud *cinescroll.HUD
	log cinescroll.Logger
}

type demoScrollModule struct {
	log cinescroll.Logger
}

func (m demoScrollModule) Install(app *cinescroll.App, cmd *cinescroll.Commands) {
	h, _ := cinescroll.Resource[cinescroll.HUD](app)
	cmd.AddResources(&demoScroll{velocity: 0.02, hud: h, log: m.log})
	cmd.UseSystem(cinescroll.System(demoScrollSystem).InStage(cinescroll.Prelude))
}

var regions = []struct {
	name     string
	from, to float32
}{
	{"portal", 0.1, 0.4},
	{"nebula", 0.35, 0.7},
	{"finale", 0.75, 1.0},
}

func demoScrollSystem(t *cinescroll.Time, input *cinescroll.Input, s *demoScroll, signals *cinescroll.SceneSignals) {
	if input.JustPressed[cinescroll.KeySpace] {
		s.paused = !s.paused
	}
	if input.JustPressed[cinescroll.KeyF12] {
		if err := saveHUD(s.hud); err != nil {
			s.log.Warnf("hud snapshot: %v", err)
		} else {
			s.log.Infof("hud written to hud.png")
		}
	}
	s.velocity = mgl32.Clamp(s.velocity+float32(input.ScrollY)*0.01, -0.2, 0.2)

	if !s.paused {
		s.progress += s.velocity * float32(t.Dt)
		if s.progress > 1 {
			s.progress -= 1
		}
		if s.progress < 0 {
			s.progress += 1
		}
	}
	signals.ScrollProgress = s.progress
	signals.ScrollVelocity = s.velocity
	if s.paused {
		signals.ScrollVelocity = 0
	}
	for _, r := range regions {
		signals.SetOpacity(r.name, window(s.progress, r.from, r.to))
	}
	signals.Camera = mgl32.Vec3{0, 0, -100 * s.progress}
}

// window fades in over the first fifth of [from, to] and out over the last.
func window(p, from, to float32) float32 {
	if p <= from || p >= to {
		return 0
	}
	edge := (to - from) / 5
	return mgl32.Clamp(min(p-from, to-p)/edge, 0, 1)
}
