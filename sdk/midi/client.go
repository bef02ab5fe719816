package midi

import (
	"github.com/leandrodaf/midiin/internal/inport"
	"github.com/leandrodaf/midiin/sdk/contracts"
)

// NewInPort creates a MIDI input port with the specified options.
// It applies default options, builds the platform driver for the current
// operating system and wires the portable pipeline on top of it.
//
// opts ...contracts.Option: A variadic list of option functions to customize
// the port configuration.
//
// Returns:
//   - contracts.InPort: The input port.
//   - error: An error, if any occurred while building the platform driver.
func NewInPort(opts ...contracts.Option) (contracts.InPort, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	driver, err := newDriver(&options)
	if err != nil {
		return nil, err
	}

	return inport.New(driver, &options), nil
}
