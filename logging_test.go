package cinescroll

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLogger_NamedSharesOutputAndDebug(t *testing.T) {
	var out, errOut bytes.Buffer
	root := newDefaultLogger("cinescroll", false, &out, &errOut)
	tierLog := Named(root, "tier")

	tierLog.Infof("downshift to %d", 2)
	assert.Contains(t, out.String(), "[cinescroll/tier] INFO: downshift to 2")

	tierLog.Debugf("hidden")
	assert.NotContains(t, out.String(), "hidden")
	root.SetDebug(true)
	assert.True(t, tierLog.DebugEnabled())
	tierLog.Debugf("shown")
	assert.Contains(t, out.String(), "[cinescroll/tier] DEBUG: shown")

	Named(tierLog, "observers").Warnf("slow listener")
	assert.Contains(t, errOut.String(), "[cinescroll/tier/observers] WARN: slow listener")
	assert.NotContains(t, out.String(), "slow listener")
}

func TestNamed_LeavesOtherLoggersAlone(t *testing.T) {
	nop := NewNopLogger()
	assert.Same(t, nop, Named(nop, "tier"))

	var out bytes.Buffer
	unprefixed := newDefaultLogger("", false, &out, &out)
	Named(unprefixed, "gpu").Errorf("lost device")
	assert.Contains(t, out.String(), "[gpu] ERROR: lost device")
}
