package contracts

import (
	"gitlab.com/gomidi/midi/v2"
)

// Protocol selects how raw packets are interpreted. It is chosen once when
// the input port is created, never per packet.
type Protocol int

const (
	// Protocol1 treats each packet as a legacy MIDI 1.0 byte-stream message
	// packed into the first word, least significant byte first.
	Protocol1 Protocol = iota + 1
	// Protocol2 treats each packet as a Universal MIDI Packet of 1-4 words.
	Protocol2
)

func (p Protocol) String() string {
	switch p {
	case Protocol1:
		return "MIDI 1.0"
	case Protocol2:
		return "MIDI 2.0"
	default:
		return "unknown"
	}
}

// Event is a decoded MIDI message normalized to the classic byte-stream
// form. MIDI 2.0 channel-voice packets are downconverted (16-bit velocity to
// 7-bit, 32-bit controller values to 7-bit, and so on) so that consumers
// handle one representation regardless of the wire protocol.
type Event struct {
	Message midi.Message
	Group   uint8 // Universal MIDI Packet group; 0 for legacy input.
}

// TimedEvent pairs an Event with the platform timestamp of the packet that
// produced it. Timestamps are monotonic device time, not wall-clock, and are
// comparable only within one input session.
type TimedEvent struct {
	Timestamp uint64
	Event     Event
}
