// Package gpu uploads the post pipeline state to WebGPU and owns the render
// targets whose size follows the applied pixel ratio.
package gpu

import (
	"math"

	"github.com/gekko3d/cinescroll/rt/post"
)

// UniformFloats is the size of the post uniform block in float32s (five vec4s).
const UniformFloats = 20

// stageFloats is the number of stage parameters the shader expects ahead of the
// frame values.
const stageFloats = 12

// FrameValues are the non-stage values appended to the uniform block.
type FrameValues struct {
	DPR     float32
	Time    float32
	Overlay [2]float32
	Output  [2]float32
}

// Pack writes stage parameters in pipeline order, then the frame values, into dst
// and pads to UniformFloats. dst is reused when it has the capacity.
func Pack(dst []float32, stages []*post.Stage, f FrameValues) []float32 {
	dst = dst[:0]
	for _, st := range stages {
		dst = append(dst, st.Values()...)
	}
	for len(dst) < stageFloats {
		dst = append(dst, 0)
	}
	dst = dst[:stageFloats]
	dst = append(dst, f.DPR, f.Time, f.Overlay[0], f.Overlay[1], f.Output[0], f.Output[1])
	for len(dst) < UniformFloats {
		dst = append(dst, 0)
	}
	return dst
}

// ScaledExtent is the render target size for a framebuffer of fbWidth x fbHeight
// physical pixels when rendering at pixel ratio applied on a display whose native
// ratio is native. Each side is at least one pixel.
func ScaledExtent(fbWidth, fbHeight int, applied, native float32) (uint32, uint32) {
	scale := float64(1)
	if native > 0 && applied > 0 {
		scale = float64(applied) / float64(native)
	}
	return scaleSide(fbWidth, scale), scaleSide(fbHeight, scale)
}

func scaleSide(px int, scale float64) uint32 {
	v := math.Round(float64(px) * scale)
	if v < 1 || math.IsNaN(v) {
		return 1
	}
	return uint32(v)
}
