package contracts

import (
	"time"

	"gitlab.com/gomidi/midi/v2"
)

// EventFilter restricts which decoded events are delivered on the
// EventsReceived signal. Events whose message type matches none of Types are
// dropped before batching.
type EventFilter struct {
	Types []midi.Type
}

// Allows reports whether msg passes the filter.
func (f *EventFilter) Allows(msg midi.Message) bool {
	for _, t := range f.Types {
		if msg.Is(t) {
			return true
		}
	}
	return false
}

// CoreMIDIConfig holds the names registered with the platform MIDI subsystem.
type CoreMIDIConfig struct {
	ClientName string // Name of the MIDI client.
	PortName   string // Name of the input port.
}

// ClientOptions defines the configuration options for the input port.
type ClientOptions struct {
	Logger      Logger
	LogLevel    LogLevel
	LogFilePath string

	CoreMIDIConfig *CoreMIDIConfig

	// Protocol overrides the driver's native packet protocol. Zero selects
	// the driver default.
	Protocol Protocol

	// EventFilter, when set, limits delivered events by message type.
	EventFilter *EventFilter

	// DeviceChangeDebounce coalesces bursts of device-table notifications
	// into a single DevicesChanged emission. Zero disables coalescing.
	DeviceChangeDebounce time.Duration

	// WatchInterval is how often drivers without a native hot-plug channel
	// poll the device table. Zero selects the driver default.
	WatchInterval time.Duration
}

// Option is a function that modifies ClientOptions.
type Option func(*ClientOptions)

// WithLogger sets the logger for the input port.
func WithLogger(l Logger) Option {
	return func(opts *ClientOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for the input port.
func WithLogLevel(level LogLevel) Option {
	return func(opts *ClientOptions) {
		opts.LogLevel = level
	}
}

// WithCoreMIDIConfig sets the client and port names registered with the
// platform.
func WithCoreMIDIConfig(config CoreMIDIConfig) Option {
	return func(opts *ClientOptions) {
		opts.CoreMIDIConfig = &config
	}
}

// WithProtocol forces the packet protocol instead of the driver default.
func WithProtocol(p Protocol) Option {
	return func(opts *ClientOptions) {
		opts.Protocol = p
	}
}

// WithEventFilter sets the event filter for delivered events.
func WithEventFilter(filter EventFilter) Option {
	return func(opts *ClientOptions) {
		opts.EventFilter = &filter
	}
}

// WithDeviceChangeDebounce coalesces device-table notification bursts.
func WithDeviceChangeDebounce(interval time.Duration) Option {
	return func(opts *ClientOptions) {
		opts.DeviceChangeDebounce = interval
	}
}

// WithWatchInterval sets the hot-plug poll interval for drivers that watch
// the device table by polling.
func WithWatchInterval(interval time.Duration) Option {
	return func(opts *ClientOptions) {
		opts.WatchInterval = interval
	}
}
