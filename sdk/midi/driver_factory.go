package midi

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/leandrodaf/midiin/internal/inport"
	"github.com/leandrodaf/midiin/internal/midi/mididarwin"
	"github.com/leandrodaf/midiin/internal/midi/midiwindows"
	"github.com/leandrodaf/midiin/sdk/contracts"
)

// ErrUnsupportedOS is returned when the operating system has no platform
// driver.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// driverInitializers maps OS names to corresponding driver constructors.
var driverInitializers = map[string]func(contracts.Logger, time.Duration) (inport.Driver, error){
	"darwin":  mididarwin.NewDriver,  // macOS (Darwin) CoreMIDI driver.
	"windows": midiwindows.NewDriver, // Windows winmm driver.
}

// newDriver builds the platform driver for the current operating system.
// It supports macOS (Darwin) and Windows, returning ErrUnsupportedOS
// elsewhere.
func newDriver(opts *contracts.ClientOptions) (inport.Driver, error) {
	if initializer, exists := driverInitializers[runtime.GOOS]; exists {
		return initializer(opts.Logger, opts.WatchInterval)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, runtime.GOOS)
}
