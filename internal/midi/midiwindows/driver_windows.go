//go:build windows
// +build windows

// Package midiwindows provides the winmm driver for Windows.
package midiwindows

import (
	"fmt"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/leandrodaf/midiin/internal/inport"
	"github.com/leandrodaf/midiin/sdk/contracts"
)

// DefaultWatchInterval is how often the device table is polled for changes
// when no interval is configured.
const DefaultWatchInterval = time.Second

// HMIDIIN is a winmm MIDI input device handle.
type HMIDIIN windows.Handle

// Callback flags for midiInOpen.
const (
	CALLBACK_FUNCTION = 0x00030000
	MIDI_IO_STATUS    = 0x00000020
)

// winmm input callback message codes.
const (
	MIM_OPEN      = 0x3C1
	MIM_CLOSE     = 0x3C2
	MIM_DATA      = 0x3C3
	MIM_ERROR     = 0x3C5
	MIM_LONGERROR = 0x3C6
	MIM_MOREDATA  = 0x3CC
)

// midiInCaps mirrors the winmm MIDIINCAPSW structure.
type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

var (
	winmm                = windows.NewLazySystemDLL("winmm.dll")
	procMidiInGetNumDevs = winmm.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps = winmm.NewProc("midiInGetDevCapsW")
	procMidiInOpen       = winmm.NewProc("midiInOpen")
	procMidiInStart      = winmm.NewProc("midiInStart")
	procMidiInStop       = winmm.NewProc("midiInStop")
	procMidiInClose      = winmm.NewProc("midiInClose")
)

// Driver implements inport.Driver over winmm. There is no client object on
// this platform; loading winmm.dll stands in for client creation. Hot-plug
// is detected by polling the device table, since winmm has no notification
// channel short of a hidden window procedure.
type Driver struct {
	logger        contracts.Logger
	watchInterval time.Duration

	mu        sync.Mutex
	hasClient bool
	hasPort   bool
	callback  uintptr
	handle    HMIDIIN
	notify    inport.NotifyFunc
	receive   inport.ReceiveFunc
	names     []string

	watchQuit chan struct{}
	watchOnce sync.Once
}

// NewDriver builds the winmm driver. watchInterval <= 0 selects
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

func (d *Driver) CreateClient(_ string, notify inport.NotifyFunc) error {
	if err := winmm.Load(); err != nil {
		return fmt.Errorf("winmm: %w", err)
	}

	d.mu.Lock()
	d.hasClient = true
	d.notify = notify
	d.names = d.deviceNames()
	d.watchQuit = make(chan struct{})
	d.mu.Unlock()

	go d.watch()
	return nil
}

func (d *Driver) CreatePort(_ string, receive inport.ReceiveFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.hasClient {
		return fmt.Errorf("winmm was not loaded")
	}

	d.receive = receive
	d.callback = windows.NewCallback(d.handleMessage)
	d.hasPort = true
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

// PumpRunLoop is a no-op: winmm reads the device table directly, no event
// loop turn is required.
func (d *Driver) PumpRunLoop() {}

func (d *Driver) SourceCount() int {
	r0, _, _ := procMidiInGetNumDevs.Call()
	return int(uint32(r0))
}

func (d *Driver) Source(index int) inport.Source {
	if index < 0 || index >= d.SourceCount() {
		return nil
	}
	return &source{index: uint32(index)}
}

// ConnectSource opens and starts the device. winmm binds the device at open
// time, so open+start together form the "connect source to port" call.
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
	if d.handle != 0 {
		d.closeHandleLocked()
	}

	r1, _, err := procMidiInOpen.Call(
		uintptr(unsafe.Pointer(&d.handle)),
		uintptr(s.index),
		d.callback,
		0,
		uintptr(CALLBACK_FUNCTION|MIDI_IO_STATUS),
	)
	if r1 != 0 {
		return fmt.Errorf("midiInOpen device %d: %v", s.index, err)
	}

	r1, _, err = procMidiInStart.Call(uintptr(d.handle))
	if r1 != 0 {
		d.closeHandleLocked()
		return fmt.Errorf("midiInStart device %d: %v", s.index, err)
	}
	return nil
}

func (d *Driver) DisconnectSource(inport.Source) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.handle == 0 {
		return inport.ErrNoConnection
	}

	if r1, _, err := procMidiInStop.Call(uintptr(d.handle)); r1 != 0 {
		d.logger.Error("midiInStop failed", d.logger.Field().Error("error", err))
	}
	d.closeHandleLocked()
	return nil
}

func (d *Driver) Protocol() contracts.Protocol { return contracts.Protocol1 }

func (d *Driver) DisposePort() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.handle != 0 {
		procMidiInStop.Call(uintptr(d.handle))
		d.closeHandleLocked()
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

func (d *Driver) closeHandleLocked() {
	if r1, _, err := procMidiInClose.Call(uintptr(d.handle)); r1 != 0 {
		d.logger.Error("midiInClose failed", d.logger.Field().Error("error", err))
	}
	d.handle = 0
}

// handleMessage is the winmm input callback. MIM_DATA carries one packed
// legacy message in dwParam1 and a millisecond timestamp in dwParam2; it
// becomes a single-packet delivery.
func (d *Driver) handleMessage(_ uintptr, wMsg uint32, _ uintptr, dwParam1 uintptr, dwParam2 uintptr) uintptr {
	switch wMsg {
	case MIM_OPEN, MIM_CLOSE:
	case MIM_DATA:
		d.mu.Lock()
		receive := d.receive
		d.mu.Unlock()
		if receive == nil {
			return 0
		}
		receive(inport.Delivery{
			Packets: []inport.Packet{{
				Timestamp: uint64(dwParam2),
				Words:     []uint32{uint32(dwParam1)},
			}},
		})
	case MIM_ERROR, MIM_LONGERROR:
		d.logger.Error("winmm input error", d.logger.Field().Uint64("msg", uint64(wMsg)))
	case MIM_MOREDATA:
		d.logger.Debug("winmm MIM_MOREDATA ignored")
	}
	return 0
}

// watch polls the device table and forwards changes as notifications.
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
	current := d.deviceNames()

	d.mu.Lock()
	previous := d.names
	notify := d.notify
	d.names = current
	d.mu.Unlock()

	if notify == nil {
		return
	}

	removed := missingNames(previous, current)
	added := missingNames(current, previous)

	for _, name := range removed {
		for i, prev := range previous {
			if prev == name {
				notify(inport.Notification{
					Kind:   inport.SourceRemoved,
					Source: &source{index: uint32(i), cachedName: name},
				})
				break
			}
		}
	}
	for range added {
		notify(inport.Notification{Kind: inport.SourceAdded})
	}

	// Same population, different spelling somewhere: a rename.
	if len(removed) == 0 && len(added) == 0 && len(previous) == len(current) {
		for i := range current {
			if current[i] != previous[i] {
				notify(inport.Notification{
					Kind:     inport.PropertyChanged,
					Object:   inport.ObjectSource,
					Property: inport.PropertyName,
				})
				break
			}
		}
	}
}

func (d *Driver) deviceNames() []string {
	count := d.SourceCount()
	names := make([]string, 0, count)
	for i := 0; i < count; i++ {
		name, err := deviceName(uint32(i))
		if err != nil {
			names = append(names, "")
			continue
		}
		names = append(names, name)
	}
	return names
}

// missingNames returns the entries of a absent from b, multiset-style.
func missingNames(a, b []string) []string {
	remaining := make(map[string]int, len(b))
	for _, name := range b {
		remaining[name]++
	}

	var missing []string
	for _, name := range a {
		if remaining[name] > 0 {
			remaining[name]--
			continue
		}
		missing = append(missing, name)
	}
	return missing
}

func deviceName(index uint32) (string, error) {
	var caps midiInCaps
	r1, _, err := procMidiInGetDevCaps.Call(
		uintptr(index),
		uintptr(unsafe.Pointer(&caps)),
		unsafe.Sizeof(caps),
	)
	if r1 != 0 {
		return "", fmt.Errorf("midiInGetDevCaps device %d: %v", index, err)
	}
	return windows.UTF16ToString(caps.szPname[:]), nil
}

// source is a positional device handle. winmm exposes no endpoint object, so
// identity is the table index; the cached name is carried on removal
// notifications, where the index no longer resolves.
type source struct {
	index      uint32
	cachedName string
}

func (s *source) Name() (string, error) {
	if s.cachedName != "" {
		return s.cachedName, nil
	}
	return deviceName(s.index)
}

func (s *source) Is(other inport.Source) bool {
	o, ok := other.(*source)
	return ok && o.index == s.index
}

func (s *source) Manufacturer() string {
	var caps midiInCaps
	r1, _, _ := procMidiInGetDevCaps.Call(
		uintptr(s.index),
		uintptr(unsafe.Pointer(&caps)),
		unsafe.Sizeof(caps),
	)
	if r1 != 0 {
		return ""
	}
	return fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid)
}

func (s *source) EntityName() string {
	name, err := s.Name()
	if err != nil {
		return ""
	}
	return name
}
