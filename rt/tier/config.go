package tier

import (
	"errors"
	"fmt"
	"time"
)

// Tier is a discrete quality level. 0 is the cheapest, higher values add fidelity.
type Tier int

var (
	ErrInvalidTierRange  = errors.New("tier: start tier must satisfy 0 <= start <= max")
	ErrInvalidDuration   = errors.New("tier: durations must not be negative")
	ErrInvalidThresholds = errors.New("tier: poor frame time must be greater than excellent frame time")
	ErrTierOutOfRange    = errors.New("tier: tier outside configured range")
)

// Config is the immutable per-session controller configuration.
type Config struct {
	StartTier Tier
	MaxTier   Tier

	DownshiftDuration time.Duration
	UpshiftDuration   time.Duration
	CooldownDuration  time.Duration

	// Smoothed frame time above PoorFrameTime is a downshift candidate,
	// below ExcellentFrameTime an upshift candidate.
	PoorFrameTime      time.Duration
	ExcellentFrameTime time.Duration

	// SmoothingTime is the time constant of the frame time EMA.
	SmoothingTime time.Duration

	// Deltas above MaxSampleDelta are treated like invalid ones (stalls, backgrounded window).
	MaxSampleDelta time.Duration
}

func DefaultConfig() Config {
	return Config{
		StartTier:          2,
		MaxTier:            3,
		DownshiftDuration:  1000 * time.Millisecond,
		UpshiftDuration:    5000 * time.Millisecond,
		CooldownDuration:   4000 * time.Millisecond,
		PoorFrameTime:      time.Second / 45,
		ExcellentFrameTime: time.Second / 58,
		SmoothingTime:      300 * time.Millisecond,
		MaxSampleDelta:     250 * time.Millisecond,
	}
}

func (c Config) Validate() error {
	if c.StartTier < 0 || c.MaxTier < 0 || c.StartTier > c.MaxTier {
		return fmt.Errorf("%w (start=%d, max=%d)", ErrInvalidTierRange, c.StartTier, c.MaxTier)
	}
	if c.DownshiftDuration < 0 || c.UpshiftDuration < 0 || c.CooldownDuration < 0 ||
		c.SmoothingTime < 0 || c.MaxSampleDelta < 0 {
		return ErrInvalidDuration
	}
	if c.PoorFrameTime <= c.ExcellentFrameTime {
		return fmt.Errorf("%w (poor=%v, excellent=%v)", ErrInvalidThresholds, c.PoorFrameTime, c.ExcellentFrameTime)
	}
	return nil
}

// DeviceClass is the coarse static classification used to pick the initial tier
// before any frame timing exists.
type DeviceClass int

const (
	DeviceMobile DeviceClass = iota
	DeviceLaptop
	DeviceDesktop
)

func (d DeviceClass) String() string {
	switch d {
	case DeviceMobile:
		return "mobile"
	case DeviceLaptop:
		return "laptop"
	case DeviceDesktop:
		return "desktop"
	}
	return fmt.Sprintf("DeviceClass(%d)", int(d))
}

func ParseDeviceClass(s string) (DeviceClass, error) {
	switch s {
	case "mobile":
		return DeviceMobile, nil
	case "laptop", "":
		return DeviceLaptop, nil
	case "desktop":
		return DeviceDesktop, nil
	}
	return DeviceLaptop, fmt.Errorf("tier: unknown device class %q", s)
}

// ConfigForDevice narrows the default configuration for constrained hardware.
func ConfigForDevice(d DeviceClass) Config {
	cfg := DefaultConfig()
	switch d {
	case DeviceMobile:
		cfg.StartTier = 1
		cfg.MaxTier = 2
		cfg.PoorFrameTime = time.Second / 40
		cfg.ExcellentFrameTime = time.Second / 55
	case DeviceLaptop:
		cfg.StartTier = 2
		cfg.MaxTier = 3
	case DeviceDesktop:
		cfg.StartTier = 3
		cfg.MaxTier = 3
	}
	return cfg
}
