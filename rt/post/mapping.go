package post

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/cinescroll/rt/tier"
)

var ErrTierTableEmpty = errors.New("post: tier table has no rows")

// DominanceThreshold is the opacity above which a scene region counts as the
// dominant visible content.
const DominanceThreshold = 0.5

// TierParams is one row of the static per-tier table. A zero strength disables the
// stage for that tier; boosts never re-enable a disabled stage.
type TierParams struct {
	Multisampling    int
	Exposure         float32
	BloomIntensity   float32
	BloomThreshold   float32
	BloomSmoothing   float32
	BloomLevels      int
	AAStrength       float32
	SharpenStrength  float32
	GrainIntensity   float32
	ChromaticOffset  float32
	VignetteDarkness float32
	VignetteOffset   float32
	DPR              float32
}

// RegionBoost adds to the base values while Region is dominant. Bloom, threshold,
// exposure and aberration boosts are summed; vignette and grain take the max.
type RegionBoost struct {
	Region         string  `yaml:"region"`
	Bloom          float32 `yaml:"bloom"`
	BloomThreshold float32 `yaml:"bloom_threshold"`
	Exposure       float32 `yaml:"exposure"`
	Aberration     float32 `yaml:"aberration"`
	Vignette       float32 `yaml:"vignette"`
	Grain          float32 `yaml:"grain"`
}

// MotionBoost turns camera and scroll speed into extra chromatic aberration,
// capped at Max.
type MotionBoost struct {
	CameraGain float32 `yaml:"camera_gain"`
	ScrollGain float32 `yaml:"scroll_gain"`
	Max        float32 `yaml:"max"`
}

// Signals are the per-frame scene inputs to parameter resolution.
type Signals struct {
	// Regions maps region name to opacity in [0,1]. Weights need not sum to 1.
	Regions        map[string]float32
	ScrollVelocity float32
	ScrollProgress float32
	CameraSpeed    float32
}

// Mapping is the table-driven function from (tier, signals) to Params.
// Adding a tier means adding a row to Tiers.
type Mapping struct {
	Tiers   []TierParams
	Regions []RegionBoost
	Motion  MotionBoost
	// ExposureRamp is added to exposure in proportion to scroll progress.
	ExposureRamp float32
}

func DefaultTierTable() []TierParams {
	return []TierParams{
		{Multisampling: 0, Exposure: 1.0, BloomIntensity: 0, BloomThreshold: 0.9, BloomSmoothing: 0.025, BloomLevels: 3,
			AAStrength: 0, SharpenStrength: 0, GrainIntensity: 0, ChromaticOffset: 0,
			VignetteDarkness: 0.35, VignetteOffset: 0.3, DPR: 1.0},
		{Multisampling: 0, Exposure: 1.0, BloomIntensity: 0.6, BloomThreshold: 0.85, BloomSmoothing: 0.025, BloomLevels: 4,
			AAStrength: 1, SharpenStrength: 0, GrainIntensity: 0.02, ChromaticOffset: 0.0005,
			VignetteDarkness: 0.4, VignetteOffset: 0.3, DPR: 1.25},
		{Multisampling: 2, Exposure: 1.0, BloomIntensity: 0.9, BloomThreshold: 0.82, BloomSmoothing: 0.03, BloomLevels: 5,
			AAStrength: 1, SharpenStrength: 0.15, GrainIntensity: 0.035, ChromaticOffset: 0.0008,
			VignetteDarkness: 0.45, VignetteOffset: 0.3, DPR: 1.5},
		{Multisampling: 4, Exposure: 1.0, BloomIntensity: 1.1, BloomThreshold: 0.8, BloomSmoothing: 0.03, BloomLevels: 6,
			AAStrength: 1, SharpenStrength: 0.25, GrainIntensity: 0.04, ChromaticOffset: 0.001,
			VignetteDarkness: 0.5, VignetteOffset: 0.3, DPR: 2.0},
	}
}

func DefaultMapping() Mapping {
	return Mapping{
		Tiers: DefaultTierTable(),
		Regions: []RegionBoost{
			{Region: "portal", Bloom: 0.6, BloomThreshold: -0.15, Aberration: 0.0015, Vignette: 0.6},
			{Region: "nebula", Bloom: 0.3, Exposure: 0.15, Grain: 0.06},
			{Region: "finale", Exposure: 0.25, Vignette: 0.7},
		},
		Motion:       MotionBoost{CameraGain: 0.0004, ScrollGain: 0.002, Max: 0.003},
		ExposureRamp: 0.1,
	}
}

func (m Mapping) MaxTier() tier.Tier { return tier.Tier(len(m.Tiers) - 1) }

func (m Mapping) Validate() error {
	if len(m.Tiers) == 0 {
		return ErrTierTableEmpty
	}
	return nil
}

func (m Mapping) row(t tier.Tier) TierParams {
	if t < 0 {
		t = 0
	}
	if t > m.MaxTier() {
		t = m.MaxTier()
	}
	return m.Tiers[t]
}

// Resolve computes the parameter set for a tier and the current signals. It is
// pure: the same inputs always yield the same Params.
func (m Mapping) Resolve(t tier.Tier, s Signals) Params {
	if len(m.Tiers) == 0 {
		return Params{}
	}
	row := m.row(t)

	p := Params{
		Exposure:         row.Exposure,
		BloomIntensity:   row.BloomIntensity,
		BloomThreshold:   row.BloomThreshold,
		BloomSmoothing:   row.BloomSmoothing,
		BloomLevels:      float32(row.BloomLevels),
		AAStrength:       row.AAStrength,
		Multisampling:    float32(row.Multisampling),
		SharpenStrength:  row.SharpenStrength,
		GrainIntensity:   row.GrainIntensity,
		ChromaticOffset:  row.ChromaticOffset,
		VignetteDarkness: row.VignetteDarkness,
		VignetteOffset:   row.VignetteOffset,
		DPR:              row.DPR,
	}

	p.Exposure += m.ExposureRamp * clampUnit(s.ScrollProgress)

	// iterate the boost table, not the signal map, so the result is order-stable
	var bloom, threshold, exposure, aberration float32
	for _, b := range m.Regions {
		if s.Regions[b.Region] <= DominanceThreshold {
			continue
		}
		bloom += b.Bloom
		threshold += b.BloomThreshold
		exposure += b.Exposure
		aberration += b.Aberration
		p.VignetteDarkness = gatedMax(row.VignetteDarkness, p.VignetteDarkness, b.Vignette)
		p.GrainIntensity = gatedMax(row.GrainIntensity, p.GrainIntensity, b.Grain)
	}
	p.Exposure += exposure
	if row.BloomIntensity > 0 {
		p.BloomIntensity += bloom
		p.BloomThreshold = mgl32.Clamp(p.BloomThreshold+threshold, 0, 1)
	}
	if row.ChromaticOffset > 0 {
		p.ChromaticOffset += aberration + m.motion(s)
	}
	return p
}

func (m Mapping) motion(s Signals) float32 {
	v := float32(math.Abs(float64(s.CameraSpeed)))*m.Motion.CameraGain +
		float32(math.Abs(float64(s.ScrollVelocity)))*m.Motion.ScrollGain
	if math.IsNaN(float64(v)) {
		return 0
	}
	return mgl32.Clamp(v, 0, m.Motion.Max)
}

func gatedMax(base, cur, boost float32) float32 {
	if base <= 0 {
		return cur
	}
	if boost > cur {
		return boost
	}
	return cur
}

func clampUnit(v float32) float32 {
	if math.IsNaN(float64(v)) {
		return 0
	}
	return mgl32.Clamp(v, 0, 1)
}
