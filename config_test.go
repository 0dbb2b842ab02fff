package cinescroll

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/cinescroll/rt/tier"
)

func TestParseConfig_EmptyYieldsDefaults(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	tc, err := cfg.TierConfig()
	require.NoError(t, err)
	assert.Equal(t, tier.ConfigForDevice(tier.DeviceLaptop), tc)

	dc := cfg.DisclosureConfig()
	assert.Equal(t, []time.Duration{0, 100 * time.Millisecond, 250 * time.Millisecond, 400 * time.Millisecond}, dc.Delays)
	assert.Equal(t, 250*time.Millisecond, cfg.DPRSmoothTime())
}

func TestParseConfig_PresetAndOverrides(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
device: mobile
tier:
  start_tier: 0
  poor_frame_ms: 30
  cooldown_ms: 2500
regions:
  - region: portal
    bloom: 0.4
    vignette: 0.55
scenes:
  - name: portal
    steps:
      - {name: rings, cost: 1}
`))
	require.NoError(t, err)

	tc, err := cfg.TierConfig()
	require.NoError(t, err)
	assert.Equal(t, tier.Tier(0), tc.StartTier)
	assert.Equal(t, tier.Tier(2), tc.MaxTier, "preset value kept")
	assert.Equal(t, 30*time.Millisecond, tc.PoorFrameTime)
	assert.Equal(t, time.Second/55, tc.ExcellentFrameTime, "preset value kept")
	assert.Equal(t, 2500*time.Millisecond, tc.CooldownDuration)

	m := cfg.Mapping()
	require.Len(t, m.Regions, 1)
	assert.Equal(t, float32(0.4), m.Regions[0].Bloom)
	require.Len(t, cfg.Scenes, 1)
	assert.Equal(t, "rings", cfg.Scenes[0].Steps[0].Name)
}

func TestParseConfig_Errors(t *testing.T) {
	_, err := ParseConfig([]byte("tier:\n  start_tier: 3\n  max_tier: 1\n"))
	assert.ErrorIs(t, err, tier.ErrInvalidTierRange)

	_, err = ParseConfig([]byte("tier:\n  poor_frame_ms: 10\n  excellent_frame_ms: 12\n"))
	assert.ErrorIs(t, err, tier.ErrInvalidThresholds)

	_, err = ParseConfig([]byte("device: toaster\n"))
	assert.Error(t, err)

	_, err = ParseConfig([]byte("budget:\n  per_frame: 0\n"))
	assert.ErrorIs(t, err, ErrBudget)

	_, err = ParseConfig([]byte("disclosure:\n  delays_ms: [0, 100]\n"))
	assert.ErrorIs(t, err, ErrTooManySteps)

	_, err = ParseConfig([]byte("scenes:\n  - name: a\n  - name: a\n"))
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = ParseConfig([]byte("tier:\n  downshift: 10\n"))
	assert.Error(t, err, "unknown keys are rejected")
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("device: desktop\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	tc, err := cfg.TierConfig()
	require.NoError(t, err)
	assert.Equal(t, tier.Tier(3), tc.StartTier)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
