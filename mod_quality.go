package cinescroll

import (
	"fmt"

	"github.com/gekko3d/cinescroll/rt/tier"
)

// Quality owns the tier controller for the session. Listeners subscribed to
// Observers receive a fresh snapshot once per frame in PostRender.
type Quality struct {
	Controller *tier.Controller
	Observers  tier.Observers

	snapshot tier.Snapshot
}

// Snapshot is the value published at the end of the last frame.
func (q *Quality) Snapshot() tier.Snapshot { return q.snapshot }

// Current is the tier every consumer should render at this frame.
func (q *Quality) Current() tier.Tier { return q.Controller.Current() }

type QualityModule struct {
	Config tier.Config
	// Pinned starts the session with Override forced, as the manual override
	// channel would.
	Pinned   bool
	Override tier.Tier
}

func (m QualityModule) Install(app *App, cmd *Commands) {
	log := Named(app.Logger(), "tier")
	ctrl, err := tier.NewController(m.Config, tier.WithLogger(log))
	if err != nil {
		panic(fmt.Errorf("quality module: %w", err))
	}
	if m.Pinned {
		if err := ctrl.SetOverride(m.Override); err != nil {
			panic(fmt.Errorf("quality module: override: %w", err))
		}
		log.Infof("tier pinned to %d", m.Override)
	}
	log.Infof("tier controller: start %d, max %d", m.Config.StartTier, m.Config.MaxTier)

	q := &Quality{Controller: ctrl}
	q.snapshot = ctrl.Snapshot()
	cmd.AddResources(q)
	cmd.UseSystem(System(tierSampleSystem).InStage(PreUpdate))
	cmd.UseSystem(System(tierPublishSystem).InStage(PostRender))
}

func tierSampleSystem(t *Time, q *Quality) {
	q.Controller.Sample(t.Dt)
}

func tierPublishSystem(q *Quality) {
	q.snapshot = q.Controller.Snapshot()
	q.Observers.Publish(q.snapshot)
}
