package ump

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/gomidi/midi/v2"

	"github.com/leandrodaf/midiin/sdk/contracts"
)

func TestDecodePacketSizes(t *testing.T) {
	_, err := Decode(nil, contracts.Protocol2)
	assert.ErrorIs(t, err, ErrEmptyPacket)

	_, err = Decode([]uint32{}, contracts.Protocol1)
	assert.ErrorIs(t, err, ErrEmptyPacket)

	_, err = Decode([]uint32{1, 2, 3, 4, 5}, contracts.Protocol2)
	assert.ErrorIs(t, err, ErrOversizedPacket)

	_, err = Decode(make([]uint32, 6), contracts.Protocol1)
	assert.ErrorIs(t, err, ErrOversizedPacket)
}

func TestDecodeLegacy(t *testing.T) {
	tests := []struct {
		name string
		word uint32
		want midi.Message
	}{
		{
			// status 0x90, note 60, velocity 64, packed LSB first
			name: "note on",
			word: 0x00403C90,
			want: midi.Message{0x90, 60, 64},
		},
		{
			name: "note off",
			word: 0x00403C80,
			want: midi.Message{0x80, 60, 64},
		},
		{
			// two-byte message family keeps only one data byte
			name: "program change",
			word: 0x000005C1,
			want: midi.Message{0xC1, 5},
		},
		{
			name: "channel pressure",
			word: 0x00007FD0,
			want: midi.Message{0xD0, 0x7F},
		},
		{
			name: "timing clock",
			word: 0x000000F8,
			want: midi.Message{0xF8},
		},
		{
			name: "song position pointer",
			word: 0x00221100 | 0xF2,
			want: midi.Message{0xF2, 0x11, 0x22},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := Decode([]uint32{tt.word}, contracts.Protocol1)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ev.Message)
			assert.EqualValues(t, 0, ev.Group)
		})
	}
}

func TestDecodeLegacyRejectsRunningStatus(t *testing.T) {
	// A first byte without the status bit has no message boundary to recover.
	_, err := Decode([]uint32{0x0000403C}, contracts.Protocol1)
	assert.ErrorIs(t, err, ErrUnsupportedMessage)
}

func TestDecodeUniversalMIDI1Voice(t *testing.T) {
	// mt=2, group=1, status 0x90, note 60, velocity 64
	ev, err := Decode([]uint32{0x21903C40}, contracts.Protocol2)
	assert.NoError(t, err)
	assert.Equal(t, midi.Message{0x90, 60, 64}, ev.Message)
	assert.EqualValues(t, 1, ev.Group)
	assert.True(t, ev.Message.Is(midi.NoteOnMsg))
}

func TestDecodeUniversalSystem(t *testing.T) {
	// mt=1, start (0xFA)
	ev, err := Decode([]uint32{0x10FA0000}, contracts.Protocol2)
	assert.NoError(t, err)
	assert.Equal(t, midi.Message{0xFA}, ev.Message)

	// sysex framing bytes never appear as packed events
	_, err = Decode([]uint32{0x10F00000}, contracts.Protocol2)
	assert.ErrorIs(t, err, ErrUnsupportedMessage)
}

func TestDecodeUniversalMIDI2Voice(t *testing.T) {
	tests := []struct {
		name string
		w0   uint32
		w1   uint32
		want midi.Message
	}{
		{
			// velocity 0x8000 scales to 64
			name: "note on",
			w0:   0x40913C00,
			w1:   0x80000000,
			want: midi.Message{0x91, 60, 64},
		},
		{
			// a zero 2.0 velocity is still a note on, floor 1
			name: "note on zero velocity",
			w0:   0x40913C00,
			w1:   0x00000000,
			want: midi.Message{0x91, 60, 1},
		},
		{
			name: "note off",
			w0:   0x40813C00,
			w1:   0x80000000,
			want: midi.Message{0x81, 60, 64},
		},
		{
			// controller 7, 32-bit max scales to 127
			name: "control change",
			w0:   0x40B00700,
			w1:   0xFFFFFFFF,
			want: midi.Message{0xB0, 7, 127},
		},
		{
			name: "program change",
			w0:   0x40C00000,
			w1:   0x05000000,
			want: midi.Message{0xC0, 5},
		},
		{
			name: "channel pressure",
			w0:   0x40D00000,
			w1:   0x80000000,
			want: midi.Message{0xD0, 64},
		},
		{
			// 32-bit center scales to the 14-bit center 0x2000
			name: "pitch bend center",
			w0:   0x40E00000,
			w1:   0x80000000,
			want: midi.Message{0xE0, 0x00, 0x40},
		},
		{
			name: "poly pressure",
			w0:   0x40A03C00,
			w1:   0xFFFFFFFF,
			want: midi.Message{0xA0, 60, 127},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := Decode([]uint32{tt.w0, tt.w1}, contracts.Protocol2)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ev.Message)
		})
	}
}

func TestDecodeUniversalWordCountMismatch(t *testing.T) {
	// MIDI 2.0 channel voice needs exactly two words
	_, err := Decode([]uint32{0x40913C00}, contracts.Protocol2)
	assert.ErrorIs(t, err, ErrMalformedPacket)

	// MIDI 1.0 channel voice needs exactly one
	_, err = Decode([]uint32{0x21903C40, 0}, contracts.Protocol2)
	assert.ErrorIs(t, err, ErrMalformedPacket)
}

func TestDecodeUniversalUnsupportedTypes(t *testing.T) {
	for _, words := range [][]uint32{
		{0x00000000},             // utility
		{0x30000000, 0},          // sysex 7-bit
		{0x50000000, 0, 0, 0},    // data 128
		{0x40003C00, 0x80000000}, // 2.0 per-note controller opcode
	} {
		_, err := Decode(words, contracts.Protocol2)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrOversizedPacket)
	}
}
