package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pixelpocket/handheldcore/internal/bus"
)

func newTestCPU(prog ...byte) (*CPU, *bus.Bus) {
	rom := make([]byte, 0x8000)
	copy(rom[0x0100:], prog)
	b := bus.New(rom)
	return New(b), b
}

func TestResetMatchesPostBootState(t *testing.T) {
	c, _ := newTestCPU()
	assert.Equal(t, byte(0x01), c.A)
	assert.Equal(t, byte(0xB0), c.F)
	assert.Equal(t, uint16(0x13), c.bc())
	assert.Equal(t, uint16(0xD8), c.de())
	assert.Equal(t, uint16(0x014D), c.hl())
	assert.Equal(t, uint16(0xFFFE), c.SP())
	assert.Equal(t, uint16(0x0100), c.PC())
	assert.False(t, c.IME())
}

func TestLoopCounterTrace(t *testing.T) {
	// LD B,3 ; loop: DEC B ; JR NZ,loop ; HALT
	c, _ := newTestCPU(0x06, 0x03, 0x05, 0x20, 0xFD, 0x76)
	c.Step() // LD B,3
	assert.Equal(t, byte(3), c.B)
	for c.B != 0 {
		c.Step() // DEC B
		c.Step() // JR NZ,loop (falls through once B==0)
	}
	assert.Equal(t, byte(0), c.B)
	assert.True(t, c.F&flagZ != 0)
	c.Step() // HALT
	assert.True(t, c.Halted())
}

func TestPushPopRoundTrip(t *testing.T) {
	c, _ := newTestCPU(0xC5, 0xD1) // PUSH BC ; POP DE
	c.setBC(0xBEEF)
	c.Step()
	c.Step()
	assert.Equal(t, uint16(0xBEEF), c.de())
}

func TestXorAIdempotent(t *testing.T) {
	c, _ := newTestCPU(0xAF, 0xAF) // XOR A ; XOR A
	c.A = 0x42
	c.Step()
	assert.Equal(t, byte(0), c.A)
	assert.True(t, c.F&flagZ != 0)
	assert.Equal(t, byte(0), c.F&(flagN|flagH|flagC))
	first := c.F
	c.Step()
	assert.Equal(t, byte(0), c.A)
	assert.Equal(t, first, c.F)
}

func TestCplTwiceIsIdentity(t *testing.T) {
	c, _ := newTestCPU(0x2F, 0x2F) // CPL ; CPL
	c.A = 0x5A
	c.Step()
	assert.Equal(t, byte(0xA5), c.A)
	c.Step()
	assert.Equal(t, byte(0x5A), c.A)
}

func TestIncOverflowSetsZeroAndHalfCarry(t *testing.T) {
	c, _ := newTestCPU(0x3C) // INC A
	c.A = 0xFF
	c.Step()
	assert.Equal(t, byte(0), c.A)
	assert.True(t, c.F&flagZ != 0)
	assert.True(t, c.F&flagH != 0)
	assert.True(t, c.F&flagN == 0)
}

func TestDecUnderflowSetsHalfCarry(t *testing.T) {
	c, _ := newTestCPU(0x3D) // DEC A
	c.A = 0x00
	c.Step()
	assert.Equal(t, byte(0xFF), c.A)
	assert.True(t, c.F&flagH != 0)
	assert.True(t, c.F&flagN != 0)
}

func TestAddCarryOut(t *testing.T) {
	c, _ := newTestCPU(0xC6, 0x01) // ADD A,d8
	c.A = 0xFF
	c.Step()
	assert.Equal(t, byte(0), c.A)
	assert.True(t, c.F&flagC != 0)
	assert.True(t, c.F&flagZ != 0)
}

func TestRLCAWithTopBitSet(t *testing.T) {
	c, _ := newTestCPU(0x07) // RLCA
	c.A = 0x80
	c.Step()
	assert.Equal(t, byte(0x01), c.A)
	assert.True(t, c.F&flagC != 0)
	assert.True(t, c.F&flagZ == 0) // RLCA never sets Z
}

func TestCBBitOnHLConsumesExtraCycle(t *testing.T) {
	c, b := newTestCPU(0xCB, 0x46) // BIT 0,(HL)
	c.setHL(0xC000)
	b.Write(0xC000, 0x01)
	cyc := c.Step()
	assert.Equal(t, 3, cyc)
	assert.True(t, c.F&flagZ == 0)
}

func TestEIDelaysOneInstruction(t *testing.T) {
	c, _ := newTestCPU(0xFB, 0x00, 0x00) // EI ; NOP ; NOP
	c.Step() // EI
	assert.False(t, c.IME())
	c.Step() // NOP, delay elapses after this instruction
	assert.True(t, c.IME())
}

func TestLDA16AndBack(t *testing.T) {
	prog := []byte{
		0x3E, 0x77, // LD A,0x77
		0xEA, 0x00, 0xC0, // LD (0xC000),A
		0x3E, 0x00, // LD A,0x00
		0xFA, 0x00, 0xC0, // LD A,(0xC000)
	}
	c, b := newTestCPU(prog...)
	c.Step()
	c.Step()
	assert.Equal(t, byte(0x77), b.Read(0xC000))
	c.Step()
	c.Step()
	assert.Equal(t, byte(0x77), c.A)
}

func TestCallAndRet(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x0100] = 0xCD // CALL 0x0105
	rom[0x0101] = 0x05
	rom[0x0102] = 0x01
	rom[0x0105] = 0xC9 // RET
	b := bus.New(rom)
	c := New(b)
	cyc := c.Step()
	assert.Equal(t, 6, cyc)
	assert.Equal(t, uint16(0x0105), c.PC())
	cyc = c.Step()
	assert.Equal(t, 4, cyc)
	assert.Equal(t, uint16(0x0103), c.PC())
}
