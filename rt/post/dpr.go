package post

import (
	"math"
	"time"
)

// DPRSmoother eases the render pixel ratio toward the tier target with a critically
// damped spring and only reports a new value once it moved past Hysteresis from the
// last reported one. Reallocating render targets is expensive, so small drifts are
// never pushed. A move that did push ends with one more push of the exact target
// once the spring settles.
type DPRSmoother struct {
	SmoothTime time.Duration
	Hysteresis float32

	current  float32
	velocity float32
	applied  float32
	// moving is set by a hysteresis push and cleared when the spring settles.
	moving bool
}

func NewDPRSmoother(initial float32, smoothTime time.Duration, hysteresis float32) *DPRSmoother {
	return &DPRSmoother{
		SmoothTime: smoothTime,
		Hysteresis: hysteresis,
		current:    initial,
		applied:    initial,
	}
}

// TargetDPR caps the native pixel ratio at the tier's limit.
func TargetDPR(native, tierCap float32) float32 {
	if native <= 0 || tierCap < native {
		return tierCap
	}
	return native
}

func (d *DPRSmoother) Current() float32 { return d.current }

// Applied is the last value handed to the renderer.
func (d *DPRSmoother) Applied() float32 { return d.applied }

// Update advances the spring by dt seconds and returns the value to apply and
// whether it changed since the last push.
func (d *DPRSmoother) Update(target float32, dt float64) (float32, bool) {
	if dt > 0 && !math.IsInf(dt, 0) {
		d.current, d.velocity = smoothDamp(d.current, target, d.velocity, float32(d.SmoothTime.Seconds()), float32(dt))
		if math.Abs(float64(d.current-target)) < 1e-3 {
			d.current, d.velocity = target, 0
		}
	}
	if float32(math.Abs(float64(d.current-d.applied))) > d.Hysteresis {
		d.applied = d.current
		d.moving = true
		return d.applied, true
	}
	if d.current == target && d.velocity == 0 && d.moving {
		d.moving = false
		if d.applied != target {
			d.applied = target
			return d.applied, true
		}
	}
	return d.applied, false
}

func smoothDamp(current, target, velocity, smoothTime, dt float32) (float32, float32) {
	if smoothTime <= 0 {
		return target, 0
	}
	omega := 2 / smoothTime
	x := omega * dt
	decay := 1 / (1 + x + 0.48*x*x + 0.235*x*x*x)
	change := current - target
	temp := (velocity + omega*change) * dt
	velocity = (velocity - omega*temp) * decay
	out := target + (change+temp)*decay
	// no overshoot
	if (target-current > 0) == (out > target) {
		out = target
		velocity = 0
	}
	return out, velocity
}
