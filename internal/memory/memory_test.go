package memory

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestFromBytes(t *testing.T) {
	m := FromBytes(0x4000, []byte{0x01, 0x02, 0x03})

	assert.Equal(t, byte(0x00), m.Read(0x3FFF))
	assert.Equal(t, byte(0x01), m.Read(0x4000))
	assert.Equal(t, byte(0x03), m.Read(0x4002))
	assert.Equal(t, byte(0x00), m.Read(0x4003))
}

func TestLoadTruncatesAtEnd(t *testing.T) {
	m := New()
	copied := m.Load(0xFFFE, []byte{0xAA, 0xBB, 0xCC})

	assert.Equal(t, 2, copied)
	assert.Equal(t, byte(0xAA), m.Read(0xFFFE))
	assert.Equal(t, byte(0xBB), m.Read(0xFFFF))
	assert.Equal(t, byte(0x00), m.Read(0x0000))
}

func TestReadWord(t *testing.T) {
	tests := []struct {
		name     string
		address  uint16
		data     []byte
		expected uint16
	}{
		{name: "little endian", address: 0x0100, data: []byte{0x44, 0xFF}, expected: 0xFF44},
		{name: "wraps at end", address: 0xFFFF, data: []byte{0x34}, expected: 0x0034},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := FromBytes(tt.address, tt.data)
			assert.Equal(t, tt.expected, m.ReadWord(tt.address))
		})
	}
}

func TestReadSliceWraps(t *testing.T) {
	m := New()
	m.Load(0xFFFF, []byte{0x11})
	m.Load(0x0000, []byte{0x22, 0x33})

	assert.Equal(t, []byte{0x11, 0x22, 0x33}, m.ReadSlice(0xFFFF, 3))
}

func TestWindow(t *testing.T) {
	m := FromBytes(0x10, []byte{1, 2, 3, 4})

	assert.Equal(t, []byte{2, 3}, m.Window(0x11, 0x12))
	assert.Equal(t, 0, len(m.Window(0x12, 0x11)))
}

func TestFileName(t *testing.T) {
	m := New()
	assert.Equal(t, "", m.FileName())
	m.SetFileName("game.rom")
	assert.Equal(t, "game.rom", m.FileName())
}
