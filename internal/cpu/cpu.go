// Package cpu implements the LR35902 core: fetch/decode/execute over the
// primary and CB-prefixed opcode tables, exact flag semantics, HALT, and the
// EI-enable delay.
package cpu

import "github.com/pixelpocket/handheldcore/internal/bus"

// Flag bit positions within F (low nibble always zero).
const (
	flagZ byte = 1 << 7
	flagN byte = 1 << 6
	flagH byte = 1 << 5
	flagC byte = 1 << 4
)

// CPU holds the seven 8-bit registers (as four 16-bit pairs), PC/SP, and the
// interrupt/halt bookkeeping described in §3.
type CPU struct {
	A, F byte
	B, C byte
	D, E byte
	H, L byte

	sp, pc uint16

	ime      bool
	imeDelay int // counts down once per executed instruction; IME is set true in the Step where it reaches 0
	halted   bool

	cycles uint64 // cumulative machine-cycle counter

	bus *bus.Bus
}

// New constructs a CPU wired to bus, in the documented DMG post-boot state
// (§8 scenario 1).
func New(b *bus.Bus) *CPU {
	c := &CPU{bus: b}
	c.Reset()
	return c
}

// Reset sets registers to the canonical post-boot-ROM DMG state.
func (c *CPU) Reset() {
	c.A, c.F = 0x01, 0xB0
	c.B, c.C = 0x00, 0x13
	c.D, c.E = 0x00, 0xD8
	c.H, c.L = 0x01, 0x4D
	c.sp = 0xFFFE
	c.pc = 0x0100
	c.ime = false
	c.imeDelay = 0
	c.halted = false
	c.cycles = 0
}

// PC/SetPC expose the program counter for tests, tooling, and the
// interrupt controller's CPU interface.
func (c *CPU) PC() uint16     { return c.pc }
func (c *CPU) SetPC(v uint16) { c.pc = v }
func (c *CPU) SP() uint16     { return c.sp }
func (c *CPU) SetSP(v uint16) { c.sp = v }

// IME/SetIME, Halted/SetHalted satisfy interrupt.CPU.
func (c *CPU) IME() bool         { return c.ime }
func (c *CPU) SetIME(v bool)     { c.ime = v; if !v { c.imeDelay = 0 } }
func (c *CPU) Halted() bool      { return c.halted }
func (c *CPU) SetHalted(v bool)  { c.halted = v }

// Cycles returns the cumulative machine-cycle count since reset.
func (c *CPU) Cycles() uint64 { return c.cycles }

// PushPC pushes the current PC (high byte then low byte, per §4.2) onto the
// stack. Exposed for interrupt.Controller.Service.
func (c *CPU) PushPC() { c.push16(c.pc) }

func (c *CPU) read8(addr uint16) byte     { return c.bus.Read(addr) }
func (c *CPU) write8(addr uint16, v byte) { c.bus.Write(addr, v) }

func (c *CPU) fetch8() byte {
	v := c.read8(c.pc)
	c.pc++
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := uint16(c.fetch8())
	hi := uint16(c.fetch8())
	return lo | hi<<8
}

func (c *CPU) read16(addr uint16) uint16 {
	lo := uint16(c.read8(addr))
	hi := uint16(c.read8(addr + 1))
	return lo | hi<<8
}

func (c *CPU) write16(addr uint16, v uint16) {
	c.write8(addr, byte(v))
	c.write8(addr+1, byte(v>>8))
}

func (c *CPU) push16(v uint16) {
	c.sp -= 2
	c.write16(c.sp, v)
}

func (c *CPU) pop16() uint16 {
	v := c.read16(c.sp)
	c.sp += 2
	return v
}

func (c *CPU) af() uint16   { return uint16(c.A)<<8 | uint16(c.F&0xF0) }
func (c *CPU) setAF(v uint16) { c.A = byte(v >> 8); c.F = byte(v) & 0xF0 }
func (c *CPU) bc() uint16   { return uint16(c.B)<<8 | uint16(c.C) }
func (c *CPU) setBC(v uint16) { c.B = byte(v >> 8); c.C = byte(v) }
func (c *CPU) de() uint16   { return uint16(c.D)<<8 | uint16(c.E) }
func (c *CPU) setDE(v uint16) { c.D = byte(v >> 8); c.E = byte(v) }
func (c *CPU) hl() uint16   { return uint16(c.H)<<8 | uint16(c.L) }
func (c *CPU) setHL(v uint16) { c.H = byte(v >> 8); c.L = byte(v) }

func (c *CPU) setFlags(z, n, h, cy bool) {
	var f byte
	if z {
		f |= flagZ
	}
	if n {
		f |= flagN
	}
	if h {
		f |= flagH
	}
	if cy {
		f |= flagC
	}
	c.F = f
}

// reg8 reads one of the eight 3-bit register selectors (6 = (HL)).
func (c *CPU) reg8(i byte) byte {
	switch i {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case 6:
		return c.read8(c.hl())
	default:
		return c.A
	}
}

func (c *CPU) setReg8(i byte, v byte) {
	switch i {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		c.H = v
	case 5:
		c.L = v
	case 6:
		c.write8(c.hl(), v)
	default:
		c.A = v
	}
}

// Step fetches and executes exactly one instruction (§4.5) and returns the
// machine cycles it consumed. Interrupt dispatch is the core loop's job
// (§4.6), not the CPU's; Step only handles HALT and the EI delay.
func (c *CPU) Step() int {
	if c.halted {
		c.cycles++
		return 1
	}

	op := c.fetch8()
	var cyc int
	if op == 0xCB {
		cb := c.fetch8()
		cyc = cbTable[cb](c)
	} else {
		cyc = primaryTable[op](c)
	}

	if c.imeDelay > 0 {
		c.imeDelay--
		if c.imeDelay == 0 {
			c.ime = true
		}
	}

	c.cycles += uint64(cyc)
	return cyc
}
