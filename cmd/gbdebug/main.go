// Command gbdebug is an interactive single-step TUI debugger: it loads a
// ROM the same way cpurunner does and steps one CPU instruction per
// keypress, rendering a memory page table around PC alongside a
// register/flag panel and a full spew.Sdump of the CPU's state.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pixelpocket/handheldcore/internal/emu"
)

type model struct {
	m      *emu.Machine
	prevPC uint16
	lastN  int
	err    error
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "j":
			m.prevPC = m.m.CPU().PC()
			m.lastN = m.m.StepInstruction()
		}
	}
	return m, nil
}

// renderPage renders one 16-byte row of the address space as a line, with
// the byte at PC bracketed.
func (m model) renderPage(start uint16) string {
	pc := m.m.CPU().PC()
	b := m.m.Bus()
	s := fmt.Sprintf("%04X | ", start)
	for i := uint16(0); i < 16; i++ {
		addr := start + i
		v := b.Read(addr)
		if addr == pc {
			s += fmt.Sprintf("[%02X] ", v)
		} else {
			s += fmt.Sprintf(" %02X  ", v)
		}
	}
	return s
}

// pageTable renders the five 16-byte rows of memory surrounding PC.
func (m model) pageTable() string {
	header := "addr | "
	for b := 0; b < 16; b++ {
		header += fmt.Sprintf("  %01X  ", b)
	}

	pc := m.m.CPU().PC()
	base := pc &^ 0x0F
	offsets := []uint16{base - 32, base - 16, base, base + 16, base + 32}

	rows := []string{header}
	for _, off := range offsets {
		rows = append(rows, m.renderPage(off))
	}
	return strings.Join(rows, "\n")
}

// status renders the register/flag panel: AF/BC/DE/HL pairs, SP, PC, IME,
// and halted state, plus the Z/N/H/C flag bits.
func (m model) status() string {
	c := m.m.CPU()
	flagBits := []struct {
		name string
		set  bool
	}{
		{"Z", c.F&0x80 != 0},
		{"N", c.F&0x40 != 0},
		{"H", c.F&0x20 != 0},
		{"C", c.F&0x10 != 0},
	}
	var flagLine, nameLine string
	for _, fb := range flagBits {
		nameLine += fb.name + " "
		if fb.set {
			flagLine += "1 "
		} else {
			flagLine += "0 "
		}
	}
	return fmt.Sprintf(`
PC: %04X (was %04X)
SP: %04X
AF: %02X%02X  BC: %02X%02X
DE: %02X%02X  HL: %02X%02X
IME: %-5t HALT: %-5t
cyc: +%-3d
%s
%s
`,
		c.PC(), m.prevPC,
		c.SP(),
		c.A, c.F, c.B, c.C,
		c.D, c.E, c.H, c.L,
		c.IME(), c.Halted(),
		m.lastN,
		nameLine, flagLine,
	)
}

func (m model) View() string {
	top := lipgloss.JoinHorizontal(lipgloss.Top, m.pageTable(), m.status())
	return lipgloss.JoinVertical(
		lipgloss.Left,
		top,
		"",
		"space/j: step one instruction   q: quit",
		"",
		m.m.CPU().Dump(),
	)
}

func main() {
	romPath := flag.String("rom", "", "path to ROM (.gb)")
	flag.Parse()

	if *romPath == "" {
		log.Fatal("-rom is required")
	}
	rom, err := os.ReadFile(*romPath)
	if err != nil {
		log.Fatalf("read rom: %v", err)
	}

	mach := emu.New(emu.Config{})
	if err := mach.LoadROM(rom); err != nil {
		log.Fatalf("load rom: %v", err)
	}

	p := tea.NewProgram(model{m: mach, prevPC: mach.CPU().PC()})
	if _, err := p.Run(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
