package cinescroll

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gekko3d/cinescroll/rt/disclosure"
	"github.com/gekko3d/cinescroll/rt/post"
	"github.com/gekko3d/cinescroll/rt/tier"
)

var (
	ErrTooManySteps  = errors.New("cinescroll: sub-scene has more steps than disclosure phases")
	ErrDuplicateName = errors.New("cinescroll: duplicate sub-scene name")
	ErrBudget        = errors.New("cinescroll: budget per frame must be positive")
)

// Config is the session configuration file. Durations are in milliseconds.
// Tier fields left out fall back to the device class preset.
type Config struct {
	Device     string             `yaml:"device"`
	Tier       TierSection        `yaml:"tier"`
	Disclosure DisclosureSection  `yaml:"disclosure"`
	DPR        DPRSection         `yaml:"dpr"`
	Budget     BudgetSection      `yaml:"budget"`
	Regions    []post.RegionBoost `yaml:"regions"`
	Motion     *post.MotionBoost  `yaml:"motion"`
	Scenes     []SceneSection     `yaml:"scenes"`
}

type TierSection struct {
	StartTier   *int     `yaml:"start_tier"`
	MaxTier     *int     `yaml:"max_tier"`
	DownshiftMs *float64 `yaml:"downshift_ms"`
	UpshiftMs   *float64 `yaml:"upshift_ms"`
	CooldownMs  *float64 `yaml:"cooldown_ms"`
	PoorMs      *float64 `yaml:"poor_frame_ms"`
	ExcellentMs *float64 `yaml:"excellent_frame_ms"`
	SmoothingMs *float64 `yaml:"smoothing_ms"`
	MaxSampleMs *float64 `yaml:"max_sample_ms"`
}

type DisclosureSection struct {
	Threshold float32   `yaml:"threshold"`
	DelaysMs  []float64 `yaml:"delays_ms"`
}

type DPRSection struct {
	SmoothMs   float64 `yaml:"smooth_ms"`
	Hysteresis float32 `yaml:"hysteresis"`
}

type BudgetSection struct {
	PerFrame int `yaml:"per_frame"`
}

type SceneSection struct {
	Name  string        `yaml:"name"`
	Steps []StepSection `yaml:"steps"`
}

type StepSection struct {
	Name string `yaml:"name"`
	Cost int    `yaml:"cost"`
}

func DefaultConfig() Config {
	return Config{
		Device: tier.DeviceLaptop.String(),
		Disclosure: DisclosureSection{
			Threshold: 0.01,
			DelaysMs:  []float64{0, 100, 250, 400},
		},
		DPR:    DPRSection{SmoothMs: 250, Hysteresis: 0.05},
		Budget: BudgetSection{PerFrame: 4},
		Scenes: []SceneSection{
			{Name: "portal", Steps: []StepSection{{"rings", 1}, {"particles", 2}, {"volumetrics", 3}, {"reflections", 2}}},
			{Name: "nebula", Steps: []StepSection{{"dust", 1}, {"clouds", 3}, {"stars", 1}, {"lightning", 2}}},
			{Name: "finale", Steps: []StepSection{{"backdrop", 1}, {"title", 1}, {"credits", 1}}},
		},
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML on top of DefaultConfig and validates the result.
// Unknown keys are rejected. An empty document yields the defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := c.TierConfig(); err != nil {
		return err
	}
	if err := c.Mapping().Validate(); err != nil {
		return err
	}
	if c.Budget.PerFrame <= 0 {
		return fmt.Errorf("%w (got %d)", ErrBudget, c.Budget.PerFrame)
	}
	phases := len(c.Disclosure.DelaysMs)
	seen := make(map[string]bool, len(c.Scenes))
	for _, s := range c.Scenes {
		if seen[s.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateName, s.Name)
		}
		seen[s.Name] = true
		if len(s.Steps) > phases {
			return fmt.Errorf("%w: %q has %d steps, %d phases", ErrTooManySteps, s.Name, len(s.Steps), phases)
		}
	}
	return nil
}

func (c Config) DeviceClass() (tier.DeviceClass, error) {
	return tier.ParseDeviceClass(c.Device)
}

// TierConfig starts from the device preset and applies explicit overrides.
func (c Config) TierConfig() (tier.Config, error) {
	device, err := c.DeviceClass()
	if err != nil {
		return tier.Config{}, err
	}
	tc := tier.ConfigForDevice(device)
	t := c.Tier
	if t.StartTier != nil {
		tc.StartTier = tier.Tier(*t.StartTier)
	}
	if t.MaxTier != nil {
		tc.MaxTier = tier.Tier(*t.MaxTier)
	}
	setMs(&tc.DownshiftDuration, t.DownshiftMs)
	setMs(&tc.UpshiftDuration, t.UpshiftMs)
	setMs(&tc.CooldownDuration, t.CooldownMs)
	setMs(&tc.PoorFrameTime, t.PoorMs)
	setMs(&tc.ExcellentFrameTime, t.ExcellentMs)
	setMs(&tc.SmoothingTime, t.SmoothingMs)
	setMs(&tc.MaxSampleDelta, t.MaxSampleMs)
	if err := tc.Validate(); err != nil {
		return tier.Config{}, fmt.Errorf("tier: %w", err)
	}
	return tc, nil
}

func (c Config) DisclosureConfig() disclosure.Config {
	delays := make([]time.Duration, len(c.Disclosure.DelaysMs))
	for i, ms := range c.Disclosure.DelaysMs {
		delays[i] = millis(ms)
	}
	return disclosure.Config{Threshold: c.Disclosure.Threshold, Delays: delays}
}

// Mapping is the default tier table with the configured boosts.
func (c Config) Mapping() post.Mapping {
	m := post.DefaultMapping()
	if len(c.Regions) > 0 {
		m.Regions = c.Regions
	}
	if c.Motion != nil {
		m.Motion = *c.Motion
	}
	return m
}

func (c Config) DPRSmoothTime() time.Duration { return millis(c.DPR.SmoothMs) }

func setMs(dst *time.Duration, ms *float64) {
	if ms != nil {
		*dst = millis(*ms)
	}
}

func millis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
