// Package emu wires the Bus, CPU, PPU, and Timer into the runnable core
// loop of §4.6: one CPU step, then ticking the bus-owned peripherals by the
// cycles it consumed, then servicing any pending interrupt and ticking the
// peripherals again for the cycles interrupt dispatch itself consumed.
package emu

import (
	"os"

	"github.com/pixelpocket/handheldcore/internal/bus"
	"github.com/pixelpocket/handheldcore/internal/cart"
	"github.com/pixelpocket/handheldcore/internal/cpu"
)

// Buttons mirrors bus.Buttons at the package boundary so callers outside
// internal/bus don't need to import it directly.
type Buttons struct {
	A, B, Start, Select   bool
	Up, Down, Left, Right bool
}

// Machine is a headless, presenter-agnostic Game Boy: it owns the Bus/CPU
// pair and exposes one finished frame at a time plus the current button
// state sink, with no rendering or windowing dependency.
type Machine struct {
	cfg Config

	bus *bus.Bus
	cpu *cpu.CPU

	romPath, romTitle string

	buttons    bus.Buttons
	frame      [144][160]byte
	frameReady bool
}

// New returns a Machine with no cartridge loaded yet.
func New(cfg Config) *Machine {
	return &Machine{cfg: cfg}
}

type buttonsProvider struct{ m *Machine }

func (p buttonsProvider) Buttons() bus.Buttons { return p.m.buttons }

// LoadROM wires a fresh Bus/CPU pair around rom, discarding any
// previously-loaded cartridge and its state.
func (m *Machine) LoadROM(rom []byte) error {
	if h, err := cart.ParseHeader(rom); err == nil {
		m.romTitle = h.Title
	}
	m.bus = bus.New(rom)
	m.cpu = cpu.New(m.bus)
	m.bus.SetPresenter(m.onFrame)
	m.bus.SetJoypadProvider(buttonsProvider{m})
	m.frameReady = false
	return nil
}

// LoadROMFromFile reads path and loads it as the active cartridge.
func (m *Machine) LoadROMFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := m.LoadROM(data); err != nil {
		return err
	}
	m.romPath = path
	return nil
}

func (m *Machine) onFrame(frame *[144][160]byte) {
	m.frame = *frame
	m.frameReady = true
}

// Bus/CPU expose the wired components for tooling (tracing, debuggers) that
// needs to reach below the Machine's frame-stepping API.
func (m *Machine) Bus() *bus.Bus { return m.bus }
func (m *Machine) CPU() *cpu.CPU { return m.cpu }

// ROMPath/ROMTitle report the currently-loaded cartridge, empty if none.
func (m *Machine) ROMPath() string  { return m.romPath }
func (m *Machine) ROMTitle() string { return m.romTitle }

// SetButtons updates the instantaneous joypad state the Bus polls on the
// next 0xFF00 read.
func (m *Machine) SetButtons(b Buttons) {
	m.buttons = bus.Buttons{
		Up: b.Up, Down: b.Down, Left: b.Left, Right: b.Right,
		A: b.A, B: b.B, Select: b.Select, Start: b.Start,
	}
}

// StepFrame runs the core loop until the PPU presents exactly one frame.
func (m *Machine) StepFrame() {
	if m.cpu == nil {
		return
	}
	m.frameReady = false
	for !m.frameReady {
		pc := m.cpu.PC()
		cyc := m.cpu.Step()
		if m.cfg.Trace {
			traceLine(pc, cyc, m.cpu)
		}
		m.bus.Tick(cyc)
		if n := m.bus.Interrupts().Service(m.cpu, m.bus); n > 0 {
			m.bus.Tick(n)
		}
	}
}

// StepFrameNoRender is StepFrame under a different name for headless
// callers (benchmarks, test-ROM runners) that never attach anything beyond
// the Machine's own presenter.
func (m *Machine) StepFrameNoRender() { m.StepFrame() }

// StepInstruction runs exactly one core-loop iteration (§4.6): one CPU
// instruction, the Bus/PPU/Timer tick for its cycles, and interrupt
// service. Used by cmd/gbdebug to single-step instead of single-frame.
func (m *Machine) StepInstruction() int {
	if m.cpu == nil {
		return 0
	}
	cyc := m.cpu.Step()
	m.bus.Tick(cyc)
	if n := m.bus.Interrupts().Service(m.cpu, m.bus); n > 0 {
		m.bus.Tick(n)
		cyc += n
	}
	return cyc
}

// Framebuffer returns the most recently completed frame: 144 rows of 160
// 2-bit shade indices (0 lightest .. 3 darkest). The caller must not retain
// the pointer past its next call into the Machine.
func (m *Machine) Framebuffer() *[144][160]byte { return &m.frame }

// SaveBattery returns the cartridge's battery-backed RAM, if any.
func (m *Machine) SaveBattery() ([]byte, bool) {
	if m.bus == nil {
		return nil, false
	}
	bb, ok := m.bus.Cart().(cart.BatteryBacked)
	if !ok {
		return nil, false
	}
	return bb.SaveRAM(), true
}

// LoadBattery restores previously-saved battery RAM into the active
// cartridge, if it supports it.
func (m *Machine) LoadBattery(data []byte) bool {
	if m.bus == nil {
		return false
	}
	bb, ok := m.bus.Cart().(cart.BatteryBacked)
	if !ok {
		return false
	}
	bb.LoadRAM(data)
	return true
}
