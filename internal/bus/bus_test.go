package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestROMAndWRAM(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x0100] = 0x42
	b := New(rom)

	assert.Equal(t, byte(0x42), b.Read(0x0100))

	b.Write(0xC000, 0x99)
	assert.Equal(t, byte(0x99), b.Read(0xC000))
}

func TestEchoRAMMirrorsWRAM(t *testing.T) {
	b := New(make([]byte, 0x8000))
	b.Write(0xE000, 0x55)
	assert.Equal(t, byte(0x55), b.Read(0xC000))

	b.Write(0xC123, 0x77)
	assert.Equal(t, byte(0x77), b.Read(0xE123))
}

func TestHRAMAndVRAMAndOAM(t *testing.T) {
	b := New(make([]byte, 0x8000))
	b.Write(0xFF80, 0xAB)
	assert.Equal(t, byte(0xAB), b.Read(0xFF80))

	b.Write(0x8000, 0x11)
	assert.Equal(t, byte(0x11), b.Read(0x8000))

	b.Write(0xFE00, 0x22)
	assert.Equal(t, byte(0x22), b.Read(0xFE00))
}

func TestUnusableRegionReadsFF(t *testing.T) {
	b := New(make([]byte, 0x8000))
	assert.Equal(t, byte(0xFF), b.Read(0xFEA0))
}

func TestIFReadsWithUpperBitsSet(t *testing.T) {
	b := New(make([]byte, 0x8000))
	b.Write(0xFF0F, 0x3F)
	assert.Equal(t, byte(0xE0|0x1F), b.Read(0xFF0F))
}

func TestIERegister(t *testing.T) {
	b := New(make([]byte, 0x8000))
	b.Write(0xFFFF, 0x1B)
	assert.Equal(t, byte(0x1B), b.Read(0xFFFF))
}

func TestDIVWriteResetsCounter(t *testing.T) {
	b := New(make([]byte, 0x8000))
	b.Write(0xFF04, 0x12) // any write resets DIV to 0
	assert.Equal(t, byte(0x00), b.Read(0xFF04))
}

func TestTACReadMasksReservedBits(t *testing.T) {
	b := New(make([]byte, 0x8000))
	b.Write(0xFF07, 0xFD)
	assert.Equal(t, byte(0xF8|(0xFD&0x07)), b.Read(0xFF07))
}

type fakeJoypad struct{ b Buttons }

func (f fakeJoypad) Buttons() Buttons { return f.b }

func TestJoypadSelectionAndEdgeInterrupt(t *testing.T) {
	b := New(make([]byte, 0x8000))
	b.SetJoypadProvider(fakeJoypad{Buttons{Right: true, Up: true}})

	b.Write(0xFF00, 0x20) // select D-pad (P14=0)
	got := b.Read(0xFF00)
	assert.Equal(t, byte(0x0A), got&0x0F) // Right(bit0) and Up(bit2) cleared
	assert.Equal(t, byte(0x10), b.Read(0xFF0F)&0x10) // falling edge raised the Joypad request (IF bit 4)

	b.Write(0xFF0F, 0x00)
	assert.Equal(t, byte(0xE0), b.Read(0xFF0F)&0xE0)
}

func TestOAMDMACopiesFromSourcePage(t *testing.T) {
	rom := make([]byte, 0x8000)
	for i := 0; i < 0xA0; i++ {
		rom[0x4000+i] = byte(i + 1)
	}
	b := New(rom)
	b.Write(0xFF46, 0x40) // DMA from 0x4000
	for i := 0; i < 0xA0; i++ {
		assert.Equal(t, byte(i+1), b.Read(0xFE00+uint16(i)))
	}
}

func TestSoundAndUnmappedIORegistersBehaveAsPlainCells(t *testing.T) {
	b := New(make([]byte, 0x8000))
	b.Write(0xFF11, 0x80)
	assert.Equal(t, byte(0x80), b.Read(0xFF11))
}
