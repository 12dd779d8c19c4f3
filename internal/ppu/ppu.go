// Package ppu implements the four-mode scanline state machine: OAM scan,
// pixel transfer, HBlank and VBlank, plus the background/window/sprite
// scanline renderer and the STAT interrupt line.
package ppu

import "github.com/pixelpocket/handheldcore/internal/interrupt"

// Mode cycle lengths in m-cycles (§4.4).
const (
	oamCycles    = 20
	drawCycles   = 43
	hblankCycles = 51
	lineCycles   = oamCycles + drawCycles + hblankCycles // 114
	vblankLines  = 10
	visibleLines = 144
	totalLines   = visibleLines + vblankLines // 154
)

// PPU modes.
const (
	ModeHBlank byte = 0
	ModeVBlank byte = 1
	ModeOAM    byte = 2
	ModeDraw   byte = 3
)

// FrameFunc receives the completed framebuffer at the mode 0->1 transition
// on scanline 144. The callback must not retain the pointer past the call;
// the PPU keeps writing the same backing array on the next frame.
type FrameFunc func(frame *[visibleLines][160]byte)

// PPU owns the register/mode-machine state described in §3; VRAM and OAM
// storage are lent slices owned by the Bus (§9 "Shared bus access").
type PPU struct {
	vram []byte // 0x2000 bytes, lent from Bus, addressed 0x8000-based
	oam  []byte // 0xA0 bytes, lent from Bus, addressed 0xFE00-based

	lcdc, stat         byte
	scy, scx           byte
	ly, lyc            byte
	bgp, obp0, obp1    byte
	wy, wx             byte
	latchedSCX byte
	latchedSCY byte
	windowLine byte

	cycles int // accumulator within the current mode

	statLine bool // previous level of the OR'd STAT interrupt line

	frame   [visibleLines][160]byte
	bgRaw   [160]byte // raw (pre-palette) bg/window colors of the line being drawn, for sprite priority
	present FrameFunc

	req interrupter
}

type interrupter interface {
	Request(kind interrupt.Kind)
}

// New constructs a PPU over lent VRAM/OAM storage. req raises interrupts
// through the shared bus/interrupt-controller pairing; present is called
// with the finished framebuffer once per frame.
func New(vram, oam []byte, req interrupter, present FrameFunc) *PPU {
	return &PPU{vram: vram, oam: oam, req: req, present: present, stat: ModeOAM}
}

// LY returns the current scanline; the Bus mirrors this directly at 0xFF44.
func (p *PPU) LY() byte { return p.ly }

// SetPresenter installs (or replaces) the frame-ready callback.
func (p *PPU) SetPresenter(f FrameFunc) { p.present = f }

// Mode returns the current PPU mode (bits 1-0 of STAT).
func (p *PPU) Mode() byte { return p.stat & 0x03 }

// Frame returns the live framebuffer. Only the PPU mutates it; callers
// besides the presenter should treat it as read-only between frames.
func (p *PPU) Frame() *[visibleLines][160]byte { return &p.frame }

// ReadReg serves CPU reads of LCDC, STAT, SCY, SCX, LYC, BGP, OBP0/1, WY/WX.
// (LY is handled specially by the Bus via the LY() accessor above.)
func (p *PPU) ReadReg(addr uint16) byte {
	switch addr {
	case 0xFF40:
		return p.lcdc
	case 0xFF41:
		return 0x80 | (p.stat & 0x7F)
	case 0xFF42:
		return p.scy
	case 0xFF43:
		return p.scx
	case 0xFF45:
		return p.lyc
	case 0xFF47:
		return p.bgp
	case 0xFF48:
		return p.obp0
	case 0xFF49:
		return p.obp1
	case 0xFF4A:
		return p.wy
	case 0xFF4B:
		return p.wx
	}
	return 0xFF
}

// WriteReg serves CPU writes to the same register set.
func (p *PPU) WriteReg(addr uint16, v byte) {
	switch addr {
	case 0xFF40:
		prevEnabled := p.lcdc&0x80 != 0
		p.lcdc = v
		if prevEnabled && v&0x80 == 0 {
			// LCD disabled: force mode/LY/cycle accumulator to 0 (§3 invariant).
			p.ly = 0
			p.cycles = 0
			p.windowLine = 0
			p.setMode(ModeHBlank)
		} else if !prevEnabled && v&0x80 != 0 {
			// Re-enabling starts cleanly in mode 2.
			p.ly = 0
			p.cycles = 0
			p.setMode(ModeOAM)
		}
	case 0xFF41:
		// Bits 2, 1-0 are read-only (coincidence flag, mode); only enables are writable.
		p.stat = (p.stat & 0x87) | (v & 0x78)
	case 0xFF42:
		p.scy = v
	case 0xFF43:
		p.scx = v
	case 0xFF45:
		p.lyc = v
		p.updateCoincidence()
	case 0xFF47:
		p.bgp = v
	case 0xFF48:
		p.obp0 = v
	case 0xFF49:
		p.obp1 = v
	case 0xFF4A:
		p.wy = v
	case 0xFF4B:
		p.wx = v
	}
}

func (p *PPU) enabled() bool { return p.lcdc&0x80 != 0 }

// Step advances the PPU by cycles m-cycles, running the mode state machine
// described in §4.4.
func (p *PPU) Step(cycles int) {
	if !p.enabled() {
		return
	}
	for i := 0; i < cycles; i++ {
		p.cycles++
		switch p.Mode() {
		case ModeOAM:
			if p.cycles >= oamCycles {
				p.cycles -= oamCycles
				p.latchedSCX, p.latchedSCY = p.scx, p.scy
				p.setMode(ModeDraw)
			}
		case ModeDraw:
			if p.cycles >= drawCycles {
				p.cycles -= drawCycles
				p.renderScanline()
				p.setMode(ModeHBlank)
			}
		case ModeHBlank:
			if p.cycles >= hblankCycles {
				p.cycles -= hblankCycles
				p.advanceLine()
			}
		case ModeVBlank:
			if p.cycles >= lineCycles {
				p.cycles -= lineCycles
				p.advanceLine()
			}
		}
	}
}

// advanceLine bumps LY at a mode boundary and selects the next mode.
func (p *PPU) advanceLine() {
	p.ly++
	if p.ly == visibleLines {
		p.setMode(ModeVBlank)
		p.req.Request(interrupt.VBlank)
		if p.present != nil {
			p.present(&p.frame)
		}
	} else if p.ly >= totalLines {
		p.ly = 0
		p.windowLine = 0
		p.setMode(ModeOAM)
	} else if p.Mode() == ModeVBlank {
		// still inside the 10 VBlank lines
	} else {
		p.setMode(ModeOAM)
	}
	p.updateCoincidence()
}

// setMode updates STAT's mode bits and evaluates the STAT interrupt line.
func (p *PPU) setMode(mode byte) {
	p.stat = (p.stat &^ 0x03) | mode
	p.evaluateStatLine()
}

func (p *PPU) updateCoincidence() {
	if p.ly == p.lyc {
		p.stat |= 1 << 2
	} else {
		p.stat &^= 1 << 2
	}
	p.evaluateStatLine()
}

// evaluateStatLine ORs together the enabled STAT sources and requests the
// LCD interrupt exactly on a low-to-high transition (§4.4, §9).
func (p *PPU) evaluateStatLine() {
	line := false
	switch p.Mode() {
	case ModeHBlank:
		line = p.stat&(1<<3) != 0
	case ModeVBlank:
		line = p.stat&(1<<4) != 0
	case ModeOAM:
		line = p.stat&(1<<5) != 0
	}
	if p.stat&(1<<6) != 0 && p.stat&(1<<2) != 0 {
		line = true
	}
	if line && !p.statLine {
		p.req.Request(interrupt.LCDStat)
	}
	p.statLine = line
}
