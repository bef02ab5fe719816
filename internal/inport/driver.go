package inport

import (
	"errors"

	"github.com/leandrodaf/midiin/sdk/contracts"
)

// ErrNoConnection is returned by Driver.DisconnectSource when no connection
// existed. The port treats it as informational.
var ErrNoConnection = errors.New("no existing connection")

// Source is a handle to a platform input endpoint. Handles stay valid until
// the platform removes the endpoint; equality of the underlying endpoint is
// tested with Is, never with interface comparison.
type Source interface {
	Name() (string, error)
	Is(other Source) bool
}

// SourceDetails is implemented by sources whose platform exposes entity
// metadata beyond the display name.
type SourceDetails interface {
	Manufacturer() string
	EntityName() string
}

// Packet is one raw packet of a delivery: up to four 32-bit words plus the
// platform timestamp of their arrival.
type Packet struct {
	Timestamp uint64
	Words     []uint32
}

// Delivery is the full content of one platform receive callback, in packet
// order.
type Delivery struct {
	Packets []Packet
}

// NotificationKind identifies a device-table notification.
type NotificationKind int

const (
	SourceAdded NotificationKind = iota + 1
	SourceRemoved
	PropertyChanged
	SetupChanged
	ThruConnectionsChanged
	SerialPortOwnerChanged
	IOError
)

// ObjectType classifies the object a property change refers to.
type ObjectType int

const (
	ObjectOther ObjectType = iota
	ObjectDevice
	ObjectSource
)

// Property names carried by PropertyChanged notifications that affect the
// device directory.
const (
	PropertyName        = "name"
	PropertyDisplayName = "displayName"
)

// Notification is one device-table event from the platform.
type Notification struct {
	Kind     NotificationKind
	Source   Source     // set for SourceAdded and SourceRemoved
	Object   ObjectType // set for PropertyChanged
	Property string     // set for PropertyChanged
}

// ReceiveFunc consumes one delivery. Drivers call it from their delivery
// goroutine.
type ReceiveFunc func(Delivery)

// NotifyFunc consumes one device-table notification. Drivers call it from
// an arbitrary goroutine; calls for one driver are serialized.
type NotifyFunc func(Notification)

// Driver abstracts the platform MIDI subsystem underneath a Port: client and
// port resources, the source table, and source attachment. Implementations
// must keep DisposePort and DisposeClient idempotent and must stop invoking
// the registered callbacks once DisposeClient returns.
type Driver interface {
	// CreateClient registers this process with the platform MIDI subsystem
	// and installs the notification callback.
	CreateClient(name string, notify NotifyFunc) error
	// CreatePort creates the input port and installs the receive callback.
	CreatePort(name string, receive ReceiveFunc) error

	HasClient() bool
	HasPort() bool

	// PumpRunLoop gives the platform event loop one non-blocking turn so the
	// source table reflects pending changes. No-op where not needed.
	PumpRunLoop()
	// SourceCount reports the size of the platform source table.
	SourceCount() int
	// Source returns the handle at index, or nil when the slot is empty or
	// out of range.
	Source(index int) Source

	// ConnectSource attaches src to the input port and starts delivery.
	ConnectSource(src Source) error
	// DisconnectSource detaches src. Returns ErrNoConnection when nothing
	// was attached.
	DisconnectSource(src Source) error

	// Protocol is the packet protocol this driver delivers natively.
	Protocol() contracts.Protocol

	DisposePort() error
	DisposeClient() error
}
