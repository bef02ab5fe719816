package midi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/leandrodaf/midiin/internal/logger"
	"github.com/leandrodaf/midiin/sdk/contracts"
)

func TestApplyDefaultOptions(t *testing.T) {
	options, err := applyDefaultOptions()
	assert.NoError(t, err)

	assert.NotNil(t, options.Logger)
	assert.Equal(t, contracts.InfoLevel, options.LogLevel)
	assert.Equal(t, "midiin", options.CoreMIDIConfig.ClientName)
	assert.Equal(t, "midiin input port", options.CoreMIDIConfig.PortName)
	assert.Zero(t, options.Protocol)
	assert.Nil(t, options.EventFilter)
}

func TestApplyDefaultOptionsKeepsOverrides(t *testing.T) {
	log := logger.NewWith(zaptest.NewLogger(t))

	options, err := applyDefaultOptions(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.DebugLevel),
		contracts.WithCoreMIDIConfig(contracts.CoreMIDIConfig{ClientName: "score editor"}),
		contracts.WithProtocol(contracts.Protocol2),
		contracts.WithDeviceChangeDebounce(100*time.Millisecond),
		contracts.WithWatchInterval(5*time.Second),
	)
	assert.NoError(t, err)

	assert.Same(t, log, options.Logger)
	assert.Equal(t, contracts.DebugLevel, options.LogLevel)
	assert.Equal(t, "score editor", options.CoreMIDIConfig.ClientName)
	assert.Equal(t, "score editor input port", options.CoreMIDIConfig.PortName,
		"port name derives from the client name when unset")
	assert.Equal(t, contracts.Protocol2, options.Protocol)
	assert.Equal(t, 100*time.Millisecond, options.DeviceChangeDebounce)
	assert.Equal(t, 5*time.Second, options.WatchInterval)
}
