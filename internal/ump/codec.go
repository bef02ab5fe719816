// Package ump decodes raw MIDI packets into normalized events.
//
// Input arrives as up to four 32-bit words per packet. Under
// contracts.Protocol2 the words form a Universal MIDI Packet; under
// contracts.Protocol1 the first word carries a legacy byte-stream message
// packed least significant byte first. Either way the result is a classic
// MIDI 1.0 midi.Message, with 2.0 channel-voice payloads downconverted.
package ump

import (
	"errors"

	"gitlab.com/gomidi/midi/v2"

	"github.com/leandrodaf/midiin/sdk/contracts"
)

// MaxPacketWords is the largest packet Decode accepts.
const MaxPacketWords = 4

var (
	// ErrEmptyPacket marks a zero-word packet. Callers skip these silently.
	ErrEmptyPacket = errors.New("empty midi packet")
	// ErrOversizedPacket marks a packet of more than MaxPacketWords words.
	ErrOversizedPacket = errors.New("unsupported midi message size")
	// ErrUnsupportedMessage marks a packet whose message type has no
	// byte-stream equivalent (utility, sysex, data-128, per-note control).
	ErrUnsupportedMessage = errors.New("unsupported midi message")
	// ErrMalformedPacket marks a packet whose word count or status byte does
	// not match its declared message type.
	ErrMalformedPacket = errors.New("malformed midi packet")
)

// Decode parses one packet. It is pure: timestamps are the caller's concern,
// and no input ever causes a panic — packets that cannot be represented are
// reported through one of the sentinel errors above.
func Decode(words []uint32, proto contracts.Protocol) (contracts.Event, error) {
	switch {
	case len(words) == 0:
		return contracts.Event{}, ErrEmptyPacket
	case len(words) > MaxPacketWords:
		return contracts.Event{}, ErrOversizedPacket
	}

	if proto == contracts.Protocol2 {
		return decodeUniversal(words)
	}
	return decodeLegacy(words[0])
}

// decodeUniversal dispatches on the packet's message type nibble.
func decodeUniversal(words []uint32) (contracts.Event, error) {
	group := uint8(words[0]>>24) & 0x0F

	switch mt := words[0] >> 28; mt {
	case 0x1: // system common / real-time, one word
		if len(words) != 1 {
			return contracts.Event{}, ErrMalformedPacket
		}
		msg, err := systemMessage(byte(words[0]>>16), byte(words[0]>>8)&0x7F, byte(words[0])&0x7F)
		if err != nil {
			return contracts.Event{}, err
		}
		return contracts.Event{Message: msg, Group: group}, nil

	case 0x2: // MIDI 1.0 channel voice carried in a UMP, one word
		if len(words) != 1 {
			return contracts.Event{}, ErrMalformedPacket
		}
		msg, err := channelMessage(byte(words[0]>>16), byte(words[0]>>8)&0x7F, byte(words[0])&0x7F)
		if err != nil {
			return contracts.Event{}, err
		}
		return contracts.Event{Message: msg, Group: group}, nil

	case 0x4: // MIDI 2.0 channel voice, two words
		if len(words) != 2 {
			return contracts.Event{}, ErrMalformedPacket
		}
		msg, err := downconvert(words[0], words[1])
		if err != nil {
			return contracts.Event{}, err
		}
		return contracts.Event{Message: msg, Group: group}, nil

	default:
		// Utility (0x0), sysex (0x3) and data-128 (0x5) carry nothing the
		// byte-stream event model represents.
		return contracts.Event{}, ErrUnsupportedMessage
	}
}

// decodeLegacy reinterprets the first word's low-order bytes as a MIDI 1.0
// byte-stream message, least significant byte first.
func decodeLegacy(word uint32) (contracts.Event, error) {
	status := byte(word)
	data1 := byte(word>>8) & 0x7F
	data2 := byte(word>>16) & 0x7F

	var (
		msg midi.Message
		err error
	)
	if status >= 0xF0 {
		msg, err = systemMessage(status, data1, data2)
	} else {
		msg, err = channelMessage(status, data1, data2)
	}
	if err != nil {
		return contracts.Event{}, err
	}
	return contracts.Event{Message: msg}, nil
}

// channelMessage assembles a channel-voice message, trimming to two bytes
// for the program-change and channel-pressure families.
func channelMessage(status, data1, data2 byte) (midi.Message, error) {
	if status < 0x80 || status >= 0xF0 {
		return nil, ErrUnsupportedMessage
	}
	switch status & 0xF0 {
	case 0xC0, 0xD0:
		return midi.Message{status, data1}, nil
	default:
		return midi.Message{status, data1, data2}, nil
	}
}

// systemMessage assembles a system common or real-time message. Sysex framing
// bytes and the undefined status values are rejected.
func systemMessage(status, data1, data2 byte) (midi.Message, error) {
	switch status {
	case 0xF1, 0xF3: // MTC quarter frame, song select
		return midi.Message{status, data1}, nil
	case 0xF2: // song position pointer
		return midi.Message{status, data1, data2}, nil
	case 0xF6, 0xF8, 0xFA, 0xFB, 0xFC, 0xFE, 0xFF:
		return midi.Message{status}, nil
	default:
		return nil, ErrUnsupportedMessage
	}
}

// downconvert maps a MIDI 2.0 channel-voice packet onto the 1.0 byte stream.
// Velocities scale 16 to 7 bits, continuous values 32 to 7, pitch bend 32 to
// 14, per the UMP translation rules.
func downconvert(w0, w1 uint32) (midi.Message, error) {
	status := byte(w0 >> 16) // opcode nibble | channel nibble
	index := byte(w0>>8) & 0x7F

	switch status & 0xF0 {
	case 0x80: // note off
		return midi.Message{status, index, velocity7(uint16(w1 >> 16))}, nil
	case 0x90: // note on; a zero 16-bit velocity still means note on
		vel := velocity7(uint16(w1 >> 16))
		if vel == 0 {
			vel = 1
		}
		return midi.Message{status, index, vel}, nil
	case 0xA0: // poly pressure
		return midi.Message{status, index, byte(w1 >> 25)}, nil
	case 0xB0: // control change
		return midi.Message{status, index, byte(w1 >> 25)}, nil
	case 0xC0: // program change; bank valid flag and bank bytes are dropped
		return midi.Message{status, byte(w1>>24) & 0x7F}, nil
	case 0xD0: // channel pressure
		return midi.Message{status, byte(w1 >> 25)}, nil
	case 0xE0: // pitch bend, 32-bit value to 14-bit LSB/MSB
		v := w1 >> 18
		return midi.Message{status, byte(v) & 0x7F, byte(v>>7) & 0x7F}, nil
	default:
		// Registered/assignable per-note controllers and the other
		// 2.0-only opcodes have no 1.0 form.
		return nil, ErrUnsupportedMessage
	}
}

func velocity7(v uint16) byte {
	return byte(v >> 9)
}
