// Package inport implements the portable MIDI input pipeline: the device
// directory, the connection state machine and the notification bridge. All
// platform specifics live behind the Driver interface.
package inport

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/multierr"

	"github.com/leandrodaf/midiin/internal/ump"
	"github.com/leandrodaf/midiin/sdk/contracts"
	"github.com/leandrodaf/midiin/sdk/notify"
)

// Port owns one logical input connection over a Driver. It implements
// contracts.InPort.
//
// Connection state (source handle, device id, running flag) is guarded by
// mu. Driver callbacks take the same mutex, so a removal notification and a
// concurrent Connect cannot interleave into a stale-connected state.
type Port struct {
	logger contracts.Logger
	drv    Driver
	proto  contracts.Protocol
	filter *contracts.EventFilter

	devicesChanged *notify.Notifier[struct{}]
	events         *notify.Notifier[[]contracts.TimedEvent]

	mu       sync.Mutex
	source   Source
	deviceID string
	running  bool

	closeOnce sync.Once
}

var _ contracts.InPort = (*Port)(nil)

// New builds a Port over drv and creates the platform client and input port.
// Creation failures are logged, not fatal: the port stays usable for
// enumeration, and Connect reports ErrFailedConnect while a resource is
// missing.
func New(drv Driver, opts *contracts.ClientOptions) *Port {
	p := &Port{
		logger: opts.Logger,
		drv:    drv,
		filter: opts.EventFilter,
		events: notify.New[[]contracts.TimedEvent](),
	}

	if opts.DeviceChangeDebounce > 0 {
		p.devicesChanged = notify.New[struct{}](notify.WithDebounce(opts.DeviceChangeDebounce))
	} else {
		p.devicesChanged = notify.New[struct{}]()
	}

	if err := drv.CreateClient(opts.CoreMIDIConfig.ClientName, p.handleNotification); err != nil {
		p.logger.Error("failed to create midi input client", p.logger.Field().Error("error", err))
	}
	if err := drv.CreatePort(opts.CoreMIDIConfig.PortName, p.handleDelivery); err != nil {
		p.logger.Error("failed to create midi input port", p.logger.Field().Error("error", err))
	}

	p.proto = opts.Protocol
	if p.proto == 0 {
		p.proto = drv.Protocol()
	}
	return p
}

// Devices enumerates the platform source table. Empty slots are skipped;
// sources whose name cannot be fetched are skipped and logged.
func (p *Port) Devices() ([]contracts.DeviceInfo, error) {
	p.drv.PumpRunLoop()

	count := p.drv.SourceCount()
	devices := make([]contracts.DeviceInfo, 0, count)
	for index := 0; index < count; index++ {
		src := p.drv.Source(index)
		if src == nil {
			continue
		}

		name, err := src.Name()
		if err != nil {
			p.logger.Error("can't get source display name",
				p.logger.Field().Int("index", index),
				p.logger.Field().Error("error", err))
			continue
		}

		dev := contracts.DeviceInfo{
			ID:   strconv.Itoa(index),
			Name: name,
		}
		if details, ok := src.(SourceDetails); ok {
			dev.Manufacturer = details.Manufacturer()
			dev.EntityName = details.EntityName()
		}
		devices = append(devices, dev)
	}
	return devices, nil
}

// Connect resolves deviceID against the source table and starts reception,
// tearing down any previous connection first.
func (p *Port) Connect(deviceID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isConnectedLocked() {
		p.disconnectLocked()
	}

	if !p.drv.HasClient() {
		return fmt.Errorf("%w: client was not created", contracts.ErrFailedConnect)
	}
	if !p.drv.HasPort() {
		return fmt.Errorf("%w: input port was not created", contracts.ErrFailedConnect)
	}

	index, err := strconv.Atoi(deviceID)
	if err != nil {
		return fmt.Errorf("%w: invalid device id %q", contracts.ErrFailedConnect, deviceID)
	}

	src := p.drv.Source(index)
	if src == nil {
		return fmt.Errorf("%w: failed to get source %q", contracts.ErrFailedConnect, deviceID)
	}

	p.source = src
	p.deviceID = deviceID

	p.logger.Info("midi device connected",
		p.logger.Field().String("deviceID", deviceID))
	return p.runLocked()
}

// Run attaches the connected source to the input port.
func (p *Port) Run() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runLocked()
}

func (p *Port) runLocked() error {
	if !p.isConnectedLocked() {
		return contracts.ErrNotConnected
	}

	if err := p.drv.ConnectSource(p.source); err != nil {
		p.running = false
		return fmt.Errorf("%w: %v", contracts.ErrFailedConnect, err)
	}
	p.running = true
	return nil
}

// Stop detaches the source from the input port. A platform report that no
// connection existed is informational, not an error.
func (p *Port) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Port) stopLocked() {
	if !p.isConnectedLocked() {
		p.logger.Error("midi port is not connected")
		return
	}

	switch err := p.drv.DisconnectSource(p.source); {
	case err == nil:
	case errors.Is(err, ErrNoConnection):
		p.logger.Info("source wasn't attached")
	default:
		p.logger.Error("can't disconnect midi port", p.logger.Field().Error("error", err))
	}
	p.running = false
}

// Disconnect stops reception and clears the resolved source. No-op when
// already disconnected.
func (p *Port) Disconnect() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disconnectLocked()
}

func (p *Port) disconnectLocked() {
	if !p.isConnectedLocked() {
		return
	}

	p.stopLocked()
	p.source = nil
	p.deviceID = ""
}

func (p *Port) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isConnectedLocked()
}

func (p *Port) isConnectedLocked() bool {
	return p.source != nil && p.deviceID != ""
}

func (p *Port) DeviceID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.deviceID
}

func (p *Port) Protocol() contracts.Protocol {
	return p.proto
}

func (p *Port) DevicesChanged() *notify.Notifier[struct{}] {
	return p.devicesChanged
}

func (p *Port) EventsReceived() *notify.Notifier[[]contracts.TimedEvent] {
	return p.events
}

// Close disconnects if needed and disposes the platform port and client.
// Only the first call has effect; later calls return nil.
func (p *Port) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.mu.Lock()
		if p.isConnectedLocked() {
			p.disconnectLocked()
		}
		p.mu.Unlock()

		err = multierr.Append(p.drv.DisposePort(), p.drv.DisposeClient())
	})
	return err
}

// handleNotification is the bridge from platform device-table callbacks to
// the DevicesChanged signal. When the connected source is removed, the port
// disconnects before the signal fires, so observers never see a removed
// source still reported as connected.
func (p *Port) handleNotification(n Notification) {
	switch n.Kind {
	case SourceRemoved:
		p.mu.Lock()
		if p.isConnectedLocked() && n.Source != nil && n.Source.Is(p.source) {
			p.disconnectLocked()
		}
		p.mu.Unlock()
		p.devicesChanged.Notify(struct{}{})

	case SourceAdded:
		p.devicesChanged.Notify(struct{}{})

	case PropertyChanged:
		if n.Object != ObjectDevice && n.Object != ObjectSource {
			return
		}
		if n.Property != PropertyName && n.Property != PropertyDisplayName {
			return
		}
		p.devicesChanged.Notify(struct{}{})

	case SetupChanged, ThruConnectionsChanged, SerialPortOwnerChanged, IOError:
		// Deliberately unhandled: add/remove and renames are reported
		// through the specific notifications above.
	}
}

// handleDelivery decodes one platform delivery into one ordered batch and
// emits it atomically. Rejected packets are dropped without breaking the
// batch; a delivery with nothing decodable emits nothing.
func (p *Port) handleDelivery(d Delivery) {
	events := make([]contracts.TimedEvent, 0, len(d.Packets))
	for _, pkt := range d.Packets {
		ev, err := ump.Decode(pkt.Words, p.proto)
		switch {
		case err == nil:
			if p.filter != nil && !p.filter.Allows(ev.Message) {
				continue
			}
			events = append(events, contracts.TimedEvent{Timestamp: pkt.Timestamp, Event: ev})
		case errors.Is(err, ump.ErrEmptyPacket):
			// Zero-length packets are padding, not an error.
		case errors.Is(err, ump.ErrOversizedPacket):
			p.logger.Warn("unsupported midi message size",
				p.logger.Field().Int("words", len(pkt.Words)))
		default:
			p.logger.Debug("dropped midi packet", p.logger.Field().Error("error", err))
		}
	}

	if len(events) > 0 {
		p.events.Notify(events)
	}
}
