package cinescroll

import (
	"github.com/go-gl/mathgl/mgl32"
)

// SceneSignals is written by the scene (scroll handler, camera rig, region
// cross-fades) and read by the frame, post and disclosure systems.
type SceneSignals struct {
	// Opacity per region or sub-scene, in [0,1]. Missing names read as 0.
	Opacity        map[string]float32
	ScrollVelocity float32
	ScrollProgress float32
	Camera         mgl32.Vec3
}

func NewSceneSignals() *SceneSignals {
	return &SceneSignals{Opacity: make(map[string]float32)}
}

func (s *SceneSignals) SetOpacity(name string, v float32) {
	if s.Opacity == nil {
		s.Opacity = make(map[string]float32)
	}
	s.Opacity[name] = mgl32.Clamp(v, 0, 1)
}
