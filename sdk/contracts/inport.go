package contracts

import (
	"github.com/leandrodaf/midiin/sdk/notify"
)

// InPort is a single logical MIDI input connection plus the device directory
// it draws sources from. At most one source is connected at a time;
// connecting while connected tears the previous connection down first.
//
// Devices, Connect, Disconnect, Run, Stop and Close may be called from any
// goroutine; the port serializes them against its own notification handling.
// Signal callbacks run on the port's delivery goroutine and must not block.
type InPort interface {
	// Devices enumerates the currently available input sources. Entries the
	// platform fails to describe are skipped, never fatal.
	Devices() ([]DeviceInfo, error)

	// Connect resolves deviceID to a source and starts receiving from it,
	// disconnecting any previous source first. Returns ErrFailedConnect when
	// the underlying client or port is missing, the ID does not resolve, or
	// the platform connect call fails.
	Connect(deviceID string) error

	// Disconnect stops reception and clears the connection. No-op when
	// already disconnected.
	Disconnect()

	// Run attaches the connected source to the input port. Returns
	// ErrNotConnected when no source is connected.
	Run() error

	// Stop detaches the source from the input port but keeps the connection
	// resolved; Run may be called again without re-connecting.
	Stop()

	IsConnected() bool
	DeviceID() string
	Protocol() Protocol

	// DevicesChanged fires when the platform device table changed: a source
	// appeared, disappeared, or was renamed. It carries no payload; callers
	// re-enumerate with Devices.
	DevicesChanged() *notify.Notifier[struct{}]

	// EventsReceived fires once per platform delivery with the decoded
	// events of that delivery, in packet order. Batches are atomic: a
	// subscriber never observes part of a delivery.
	EventsReceived() *notify.Notifier[[]TimedEvent]

	// Close disconnects if needed and releases the platform client and port.
	// Only the first call has effect.
	Close() error
}
