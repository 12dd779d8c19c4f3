package emu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepFrameAdvancesLY144Times(t *testing.T) {
	rom := make([]byte, 0x8000)
	// Tight loop: JR -2, so the CPU just spins while PPU/timer run freely.
	rom[0x0100] = 0x18
	rom[0x0101] = 0xFE

	m := New(Config{})
	require := assert.New(t)
	require.NoError(m.LoadROM(rom))
	m.Bus().Write(0xFF40, 0x91) // LCD on: the PPU starts disabled and would never present a frame

	m.StepFrame()

	fb := m.Framebuffer()
	require.Equal(144, len(fb))
	require.Equal(byte(144), m.Bus().Read(0xFF44))
}

func TestLoadROMCapturesTitle(t *testing.T) {
	rom := make([]byte, 0x8000)
	copy(rom[0x0134:], []byte("TESTGAME"))
	m := New(Config{})
	assert.NoError(t, m.LoadROM(rom))
	assert.Contains(t, m.ROMTitle(), "TESTGAME")
}

func TestSaveBatteryFalseForNoRAMCartridge(t *testing.T) {
	rom := make([]byte, 0x8000) // cart type 0x00, ROM-only, no RAM
	m := New(Config{})
	assert.NoError(t, m.LoadROM(rom))
	_, ok := m.SaveBattery()
	assert.False(t, ok)
}
