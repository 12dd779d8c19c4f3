// Package bus implements the 64 KiB LR35902 address space: region dispatch,
// echo RAM, the joypad matrix, OAM DMA, and the I/O register side effects
// that the CPU, PPU, and Timer all observe through it.
package bus

import (
	"github.com/pixelpocket/handheldcore/internal/cart"
	"github.com/pixelpocket/handheldcore/internal/interrupt"
	"github.com/pixelpocket/handheldcore/internal/ppu"
	"github.com/pixelpocket/handheldcore/internal/timer"
)

// JoypadProvider is polled synchronously on every 0xFF00 read; it must not
// block (§6).
type JoypadProvider interface {
	Buttons() Buttons
}

// Buttons reports the instantaneous pressed/released state of all eight
// Game Boy inputs.
type Buttons struct {
	Up, Down, Left, Right bool
	A, B, Select, Start   bool
}

// Bus is the single source of truth for every RAM array and I/O cell in the
// system (§3 Ownership). The CPU, PPU, and Timer all read and write through
// it; only one of them ever runs at a time, so no locking is needed (§5).
type Bus struct {
	cart cart.Cartridge

	vram [0x2000]byte // 0x8000-0x9FFF, lent to the PPU
	oam  [0x00A0]byte // 0xFE00-0xFE9F, lent to the PPU
	wram [0x2000]byte // 0xC000-0xDFFF (echoed at 0xE000-0xFDFF)
	hram [0x007F]byte // 0xFF80-0xFFFE

	// Generic backing for I/O cells this bus does not otherwise give
	// behavior to (sound registers FF10-FF3F, unmapped FF4C-FF7F, etc.):
	// "treat them as plain RAM cells" (§9).
	io [0x80]byte

	ppu   *ppu.PPU
	timer *timer.Timer
	ic    *interrupt.Controller

	ie byte // 0xFFFF
	ifr byte // 0xFF0F, low 5 bits meaningful

	joypSelect byte // last-written bits 5-4 of JOYP
	joypLower4 byte // last computed active-low button nibble, for edge detection
	joypad     JoypadProvider

	dmaActive bool
}

// New constructs a Bus around a cartridge image using the no-mapper base
// case; the header's cartridge-type byte does not change this (see
// cart.NewCartridge).
func New(rom []byte) *Bus {
	return NewWithCartridge(cart.NewCartridge(rom))
}

// NewWithCartridge wires a bus around an already-constructed cartridge.
func NewWithCartridge(c cart.Cartridge) *Bus {
	b := &Bus{cart: c, ic: interrupt.New(), timer: timer.New(), joypSelect: 0x30, joypLower4: 0x0F}
	b.ppu = ppu.New(b.vram[:], b.oam[:], ppuRequester{b}, nil)
	return b
}

// SetPresenter installs the callback invoked with the framebuffer at the
// mode 0->1 transition on scanline 144 (§6 Framebuffer presenter).
func (b *Bus) SetPresenter(f ppu.FrameFunc) { b.ppu.SetPresenter(f) }

// SetJoypadProvider installs the joypad polling hook (§6 Joypad provider).
func (b *Bus) SetJoypadProvider(p JoypadProvider) { b.joypad = p }

// PPU exposes the PPU for the core loop to drive with Step.
func (b *Bus) PPU() *ppu.PPU { return b.ppu }

// Interrupts exposes the interrupt controller for the core loop to drive
// with Service.
func (b *Bus) Interrupts() *interrupt.Controller { return b.ic }

// Cart exposes the cartridge for boundary operations (battery RAM, etc.).
func (b *Bus) Cart() cart.Cartridge { return b.cart }

// ppuRequester adapts Bus.RequestInterrupt to the PPU's narrow interrupter
// interface without exposing the whole Bus to the ppu package.
type ppuRequester struct{ b *Bus }

func (r ppuRequester) Request(kind interrupt.Kind) { r.b.ic.Request(r.b, kind) }

// RequestInterrupt sets the IF bit for kind. Exported so Timer.Step (called
// by the core loop with the Bus as its Registers/Requester) and the joypad
// matrix can both raise interrupts through the same path.
func (b *Bus) RequestInterrupt(kind interrupt.Kind) { b.ic.Request(b, kind) }

// IE/IF/SetIF satisfy interrupt.Registers; the Bus is the owner of both
// cells.
func (b *Bus) IE() byte       { return b.ie }
func (b *Bus) IF() byte       { return 0xE0 | (b.ifr & 0x1F) }
func (b *Bus) SetIF(v byte)   { b.ifr = v & 0x1F }

// SetDIV/TIMA/SetTIMA/TMA/TAC satisfy timer.Registers.
func (b *Bus) SetDIV(v byte) { b.io[0x04] = v }
func (b *Bus) TIMA() byte    { return b.io[0x05] }
func (b *Bus) SetTIMA(v byte) { b.io[0x05] = v }
func (b *Bus) TMA() byte     { return b.io[0x06] }
func (b *Bus) TAC() byte     { return 0xF8 | (b.io[0x07] & 0x07) }

// Request satisfies timer.Requester.
func (b *Bus) Request(kind interrupt.Kind) { b.RequestInterrupt(kind) }

// Tick advances the PPU and Timer by cycles machine-cycles. The core loop
// calls this once per CPU step and again for any cycles interrupt dispatch
// itself consumed (§4.6).
func (b *Bus) Tick(cycles int) {
	b.ppu.Step(cycles)
	b.timer.Step(b, b, cycles)
}

// Read implements the region dispatch of §4.1.
func (b *Bus) Read(addr uint16) byte {
	switch {
	case addr < 0x8000:
		return b.cart.Read(addr)
	case addr <= 0x9FFF:
		return b.vram[addr-0x8000]
	case addr <= 0xBFFF:
		return b.cart.Read(addr)
	case addr <= 0xDFFF:
		return b.wram[addr-0xC000]
	case addr <= 0xFDFF:
		return b.wram[addr-0x2000-0xC000]
	case addr <= 0xFE9F:
		if b.dmaActive {
			return 0xFF
		}
		return b.oam[addr-0xFE00]
	case addr <= 0xFEFF:
		return 0xFF // unusable
	case addr == 0xFF00:
		return b.readJoyp()
	case addr == 0xFF04:
		return b.io[0x04]
	case addr == 0xFF05:
		return b.io[0x05]
	case addr == 0xFF06:
		return b.io[0x06]
	case addr == 0xFF07:
		return b.TAC()
	case addr == 0xFF0F:
		return b.IF()
	case addr == 0xFF40, addr == 0xFF41, addr == 0xFF42, addr == 0xFF43,
		addr == 0xFF45, addr == 0xFF47, addr == 0xFF48, addr == 0xFF49,
		addr == 0xFF4A, addr == 0xFF4B:
		return b.ppu.ReadReg(addr)
	case addr == 0xFF44:
		return b.ppu.LY()
	case addr == 0xFF46:
		return b.io[0x46]
	case addr <= 0xFF7F:
		return b.io[addr-0xFF00]
	case addr <= 0xFFFE:
		return b.hram[addr-0xFF80]
	case addr == 0xFFFF:
		return b.ie
	}
	return 0xFF
}

// Write implements the region dispatch and side effects of §4.1.
func (b *Bus) Write(addr uint16, v byte) {
	switch {
	case addr < 0x8000:
		b.cart.Write(addr, v)
	case addr <= 0x9FFF:
		b.vram[addr-0x8000] = v
	case addr <= 0xBFFF:
		b.cart.Write(addr, v)
	case addr <= 0xDFFF:
		b.wram[addr-0xC000] = v
	case addr <= 0xFDFF:
		b.wram[addr-0x2000-0xC000] = v
	case addr <= 0xFE9F:
		if !b.dmaActive {
			b.oam[addr-0xFE00] = v
		}
	case addr <= 0xFEFF:
		// unusable, writes ignored
	case addr == 0xFF00:
		b.joypSelect = v & 0x30
	case addr == 0xFF04:
		b.io[0x04] = 0
		b.timer.Reset(b, b)
	case addr == 0xFF05:
		b.io[0x05] = v
	case addr == 0xFF06:
		b.io[0x06] = v
	case addr == 0xFF07:
		b.io[0x07] = v & 0x07
	case addr == 0xFF0F:
		b.SetIF(v)
	case addr == 0xFF40, addr == 0xFF41, addr == 0xFF42, addr == 0xFF43,
		addr == 0xFF45, addr == 0xFF47, addr == 0xFF48, addr == 0xFF49,
		addr == 0xFF4A, addr == 0xFF4B:
		b.ppu.WriteReg(addr, v)
	case addr == 0xFF44:
		// LY is read-only; ignored.
	case addr == 0xFF46:
		b.io[0x46] = v
		b.doDMA(v)
	case addr <= 0xFF7F:
		b.io[addr-0xFF00] = v
	case addr <= 0xFFFE:
		b.hram[addr-0xFF80] = v
	case addr == 0xFFFF:
		b.ie = v
	}
}

// doDMA performs the synchronous 160-byte OAM copy triggered by a write to
// 0xFF46: the written value is the source page, copied to 0xFE00-0xFE9F.
func (b *Bus) doDMA(page byte) {
	b.dmaActive = true
	src := uint16(page) << 8
	for i := uint16(0); i < 0xA0; i++ {
		b.oam[i] = b.Read(src + i)
	}
	b.dmaActive = false
}

// readJoyp computes the 0xFF00 value from the selection bits and the
// joypad provider's current state (§4.1, §6).
func (b *Bus) readJoyp() byte {
	res := byte(0xC0 | (b.joypSelect & 0x30) | 0x0F)
	if b.joypad == nil {
		return res
	}
	state := b.joypad.Buttons()
	if b.joypSelect&0x10 == 0 { // P14 low selects D-pad
		if state.Right {
			res &^= 0x01
		}
		if state.Left {
			res &^= 0x02
		}
		if state.Up {
			res &^= 0x04
		}
		if state.Down {
			res &^= 0x08
		}
	}
	if b.joypSelect&0x20 == 0 { // P15 low selects buttons
		if state.A {
			res &^= 0x01
		}
		if state.B {
			res &^= 0x02
		}
		if state.Select {
			res &^= 0x04
		}
		if state.Start {
			res &^= 0x08
		}
	}
	newLower := res & 0x0F
	if falling := b.joypLower4 &^ newLower; falling != 0 {
		b.RequestInterrupt(interrupt.Joypad)
	}
	b.joypLower4 = newLower
	return res
}
