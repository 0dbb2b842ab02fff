package cinescroll

import (
	"time"

	"github.com/gekko3d/cinescroll/rt/disclosure"
)

// Step is one construction step of a sub-scene. Mount builds it, Unmount (if
// set) tears it down when the sub-scene is hidden again. Cost is charged
// against the per-frame budget when the step mounts.
type Step struct {
	Name    string
	Cost    int
	Mount   func()
	Unmount func()
}

// SubScene pairs a scheduler with the steps its phases unlock. The phase is
// never held back by the budget; only mounting is.
type SubScene struct {
	Scheduler *disclosure.Scheduler
	Steps     []Step

	mounted int
}

// Mounted counts steps that are currently built.
func (s *SubScene) Mounted() int { return s.mounted }

type Disclosure struct {
	Scenes []*SubScene

	byName map[string]*SubScene
	log    Logger
}

func (d *Disclosure) Scene(name string) *SubScene { return d.byName[name] }

type SceneSpec struct {
	Name  string
	Steps []Step
}

type DisclosureModule struct {
	Config disclosure.Config
	Scenes []SceneSpec
}

// ScenesFromConfig turns configured sub-scenes into specs whose steps only log
// when they mount. Callers replace Mount with real construction.
func ScenesFromConfig(cfg Config, log Logger) []SceneSpec {
	specs := make([]SceneSpec, 0, len(cfg.Scenes))
	for _, sc := range cfg.Scenes {
		spec := SceneSpec{Name: sc.Name}
		for _, st := range sc.Steps {
			scene, step := sc.Name, st.Name
			spec.Steps = append(spec.Steps, Step{
				Name:    st.Name,
				Cost:    st.Cost,
				Mount:   func() { log.Debugf("mount %s/%s", scene, step) },
				Unmount: func() { log.Debugf("unmount %s/%s", scene, step) },
			})
		}
		specs = append(specs, spec)
	}
	return specs
}

func (m DisclosureModule) Install(app *App, cmd *Commands) {
	if _, ok := Resource[Frame](app); !ok {
		panic("disclosure module: FrameModule must be installed first")
	}
	ensureResource(app, NewSceneSignals)
	log := Named(app.Logger(), "disclosure")

	d := &Disclosure{byName: make(map[string]*SubScene, len(m.Scenes)), log: log}
	onPhase := disclosure.OnPhase(func(name string, p disclosure.Phase) {
		log.Debugf("%s: phase %d", name, p)
	})
	for _, spec := range m.Scenes {
		if _, dup := d.byName[spec.Name]; dup {
			panic("disclosure module: duplicate sub-scene " + spec.Name)
		}
		sc := &SubScene{
			Scheduler: disclosure.NewScheduler(spec.Name, m.Config, onPhase),
			Steps:     spec.Steps,
		}
		d.Scenes = append(d.Scenes, sc)
		d.byName[spec.Name] = sc
	}

	cmd.AddResources(d)
	cmd.UseSystem(System(disclosureSystem).InStage(Update))
}

func disclosureSystem(t *Time, signals *SceneSignals, f *Frame, d *Disclosure) {
	var dt time.Duration
	if t.Dt > 0 {
		dt = time.Duration(t.Dt * float64(time.Second))
	}
	for _, sc := range d.Scenes {
		phase := int(sc.Scheduler.Update(signals.Opacity[sc.Scheduler.Name], dt))

		for sc.mounted > phase {
			sc.mounted--
			if step := sc.Steps[sc.mounted]; step.Unmount != nil {
				step.Unmount()
			}
		}
		for sc.mounted < phase && sc.mounted < len(sc.Steps) {
			step := sc.Steps[sc.mounted]
			if !f.Budget.TryConsume(step.Cost) {
				d.log.Debugf("%s: %s deferred", sc.Scheduler.Name, step.Name)
				break
			}
			if step.Mount != nil {
				step.Mount()
			}
			sc.mounted++
		}
	}
}
