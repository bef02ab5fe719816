//go:build !darwin
// +build !darwin

package mididarwin

import (
	"fmt"
	"time"

	"github.com/leandrodaf/midiin/internal/inport"
	"github.com/leandrodaf/midiin/sdk/contracts"
)

// NewDriver returns a stub driver on non-macOS systems. Every resource call
// fails with a platform error and the source table is permanently empty.
func NewDriver(logger contracts.Logger, _ time.Duration) (inport.Driver, error) {
	logger.Warn("using dummy CoreMIDI driver on a non-macOS system")
	return &dummyDriver{}, nil
}

type dummyDriver struct{}

func (*dummyDriver) CreateClient(string, inport.NotifyFunc) error {
	return fmt.Errorf("CoreMIDI is not available on this platform")
}

func (*dummyDriver) CreatePort(string, inport.ReceiveFunc) error {
	return fmt.Errorf("CoreMIDI is not available on this platform")
}

func (*dummyDriver) HasClient() bool { return false }

func (*dummyDriver) HasPort() bool { return false }

func (*dummyDriver) PumpRunLoop() {}

func (*dummyDriver) SourceCount() int { return 0 }

func (*dummyDriver) Source(int) inport.Source { return nil }

func (*dummyDriver) ConnectSource(inport.Source) error {
	return fmt.Errorf("CoreMIDI is not available on this platform")
}

func (*dummyDriver) DisconnectSource(inport.Source) error {
	return inport.ErrNoConnection
}

func (*dummyDriver) Protocol() contracts.Protocol { return contracts.Protocol1 }

func (*dummyDriver) DisposePort() error { return nil }

func (*dummyDriver) DisposeClient() error { return nil }
