//go:build darwin
// +build darwin

// Package mididarwin provides the CoreMIDI driver for macOS.
package mididarwin

import (
	"fmt"
	"sync"
	"time"

	"github.com/youpy/go-coremidi"

	"github.com/leandrodaf/midiin/internal/inport"
	"github.com/leandrodaf/midiin/sdk/contracts"
)

// DefaultWatchInterval is how often the source table is polled for changes
// when no interval is configured.
const DefaultWatchInterval = time.Second

// portConnection is the part of a coremidi port connection the driver needs.
type portConnection interface {
	Disconnect()
}

// Driver implements inport.Driver over the go-coremidi binding.
//
// The binding does not surface MIDINotification callbacks, so hot-plug and
// rename events are synthesized by polling AllSources on a fixed interval
// and diffing against the previous table.
type Driver struct {
	logger        contracts.Logger
	watchInterval time.Duration

	mu        sync.Mutex
	client    coremidi.Client
	hasClient bool
	port      coremidi.InputPort
	hasPort   bool
	conn      portConnection
	notify    inport.NotifyFunc
	receive   inport.ReceiveFunc
	sources   []coremidi.Source
	names     []string

	watchQuit chan struct{}
	watchOnce sync.Once
}

// NewDriver builds the CoreMIDI driver. watchInterval <= 0 selects
// DefaultWatchInterval.
func NewDriver(logger contracts.Logger, watchInterval time.Duration) (inport.Driver, error) {
	if watchInterval <= 0 {
		watchInterval = DefaultWatchInterval
	}
	return &Driver{
		logger:        logger,
		watchInterval: watchInterval,
	}, nil
}

func (d *Driver) CreateClient(name string, notify inport.NotifyFunc) error {
	client, err := coremidi.NewClient(name)
	if err != nil {
		return fmt.Errorf("coremidi client: %w", err)
	}

	d.mu.Lock()
	d.client = client
	d.hasClient = true
	d.notify = notify
	d.refreshLocked()
	d.watchQuit = make(chan struct{})
	d.mu.Unlock()

	go d.watch()
	return nil
}

func (d *Driver) CreatePort(name string, receive inport.ReceiveFunc) error {
	d.mu.Lock()
	client, ok := d.client, d.hasClient
	d.receive = receive
	d.mu.Unlock()
	if !ok {
		return fmt.Errorf("coremidi port: client was not created")
	}

	port, err := coremidi.NewInputPort(client, name, d.handlePacket)
	if err != nil {
		return fmt.Errorf("coremidi port: %w", err)
	}

	d.mu.Lock()
	d.port = port
	d.hasPort = true
	d.mu.Unlock()
	return nil
}

func (d *Driver) HasClient() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hasClient
}

func (d *Driver) HasPort() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hasPort
}

// PumpRunLoop refreshes the cached source table. The binding services the
// CoreMIDI run loop on its own thread, so a snapshot of AllSources is the
// equivalent of one non-blocking loop turn.
func (d *Driver) PumpRunLoop() {
	d.mu.Lock()
	d.refreshLocked()
	d.mu.Unlock()
}

func (d *Driver) SourceCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sources)
}

func (d *Driver) Source(index int) inport.Source {
	d.mu.Lock()
	defer d.mu.Unlock()
	if index < 0 || index >= len(d.sources) {
		return nil
	}
	return &source{src: d.sources[index]}
}

func (d *Driver) ConnectSource(src inport.Source) error {
	s, ok := src.(*source)
	if !ok {
		return fmt.Errorf("foreign source handle %T", src)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.hasPort {
		return fmt.Errorf("input port was not created")
	}
	if d.conn != nil {
		d.conn.Disconnect()
		d.conn = nil
	}

	conn, err := d.port.Connect(s.src)
	if err != nil {
		return fmt.Errorf("connect source: %w", err)
	}
	d.conn = conn
	return nil
}

func (d *Driver) DisconnectSource(inport.Source) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return inport.ErrNoConnection
	}
	d.conn.Disconnect()
	d.conn = nil
	return nil
}

func (d *Driver) Protocol() contracts.Protocol {
	// The binding delivers legacy byte-stream packets.
	return contracts.Protocol1
}

func (d *Driver) DisposePort() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn != nil {
		d.conn.Disconnect()
		d.conn = nil
	}
	d.hasPort = false
	d.receive = nil
	return nil
}

func (d *Driver) DisposeClient() error {
	d.watchOnce.Do(func() {
		d.mu.Lock()
		quit := d.watchQuit
		d.mu.Unlock()
		if quit != nil {
			close(quit)
		}
	})

	d.mu.Lock()
	d.hasClient = false
	d.notify = nil
	d.mu.Unlock()
	return nil
}

// handlePacket adapts one binding callback into a single-packet delivery.
// The binding exposes neither the packet timestamp nor 2.0 words, so the
// bytes are packed into words LSB-first and stamped with host time.
func (d *Driver) handlePacket(_ coremidi.Source, packet coremidi.Packet) {
	d.mu.Lock()
	receive := d.receive
	d.mu.Unlock()
	if receive == nil {
		return
	}

	receive(inport.Delivery{
		Packets: []inport.Packet{{
			Timestamp: uint64(time.Now().UnixNano()),
			Words:     packWords(packet.Data),
		}},
	})
}

// refreshLocked snapshots the platform source table. Errors keep the
// previous snapshot; enumeration failure is never fatal.
func (d *Driver) refreshLocked() {
	sources, err := coremidi.AllSources()
	if err != nil {
		d.logger.Error("error listing midi sources", d.logger.Field().Error("error", err))
		return
	}
	d.sources = sources
	d.names = sourceNames(sources)
}

// watch polls for device-table changes and forwards them as notifications.
func (d *Driver) watch() {
	ticker := time.NewTicker(d.watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.watchQuit:
			return
		case <-ticker.C:
			d.scan()
		}
	}
}

func (d *Driver) scan() {
	current, err := coremidi.AllSources()
	if err != nil {
		d.logger.Error("error listing midi sources", d.logger.Field().Error("error", err))
		return
	}

	d.mu.Lock()
	previous, previousNames := d.sources, d.names
	notify := d.notify
	d.sources = current
	currentNames := sourceNames(current)
	d.names = currentNames
	d.mu.Unlock()

	if notify == nil {
		return
	}

	for _, prev := range previous {
		if !containsSource(current, prev) {
			notify(inport.Notification{Kind: inport.SourceRemoved, Source: &source{src: prev}})
		}
	}
	for _, cur := range current {
		if !containsSource(previous, cur) {
			notify(inport.Notification{Kind: inport.SourceAdded, Source: &source{src: cur}})
		}
	}

	// Same endpoints but a different name at some position: a rename.
	if len(previous) == len(current) && sameSources(previous, current) {
		for i := range currentNames {
			if currentNames[i] != previousNames[i] {
				notify(inport.Notification{
					Kind:     inport.PropertyChanged,
					Object:   inport.ObjectSource,
					Property: inport.PropertyDisplayName,
				})
				break
			}
		}
	}
}

func sourceNames(sources []coremidi.Source) []string {
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.Name()
	}
	return names
}

func containsSource(list []coremidi.Source, s coremidi.Source) bool {
	for _, candidate := range list {
		if candidate == s {
			return true
		}
	}
	return false
}

func sameSources(a, b []coremidi.Source) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// packWords packs legacy bytes into 32-bit words, least significant byte
// first. Long payloads (sysex) span multiple words; anything over four words
// is rejected downstream by the codec.
func packWords(data []byte) []uint32 {
	words := make([]uint32, 0, (len(data)+3)/4)
	for i := 0; i < len(data); i += 4 {
		var w uint32
		for j := 0; j < 4 && i+j < len(data); j++ {
			w |= uint32(data[i+j]) << (8 * j)
		}
		words = append(words, w)
	}
	return words
}

// source wraps a coremidi endpoint as an inport.Source.
type source struct {
	src coremidi.Source
}

func (s *source) Name() (string, error) {
	return s.src.Name(), nil
}

func (s *source) Is(other inport.Source) bool {
	o, ok := other.(*source)
	return ok && o.src == s.src
}

func (s *source) Manufacturer() string {
	return s.src.Entity().Manufacturer()
}

func (s *source) EntityName() string {
	return s.src.Entity().Name()
}
