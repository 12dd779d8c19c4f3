package cpu

import "github.com/davecgh/go-spew/spew"

// regSnapshot is the plain-data view of a CPU's register file, dumped by
// Dump for debugging tools that want more than the one-line trace format.
type regSnapshot struct {
	A, F, B, C, D, E, H, L byte
	SP, PC                 uint16
	IME                    bool
	Halted                 bool
	Cycles                 uint64
}

// Dump renders the CPU's register file for debugging. Not used on any hot
// path; shown by cpurunner's -dump flag, by gbdebug, and in the panic raised
// for an illegal opcode.
func (c *CPU) Dump() string {
	return spew.Sdump(regSnapshot{
		A: c.A, F: c.F, B: c.B, C: c.C, D: c.D, E: c.E, H: c.H, L: c.L,
		SP: c.sp, PC: c.pc, IME: c.ime, Halted: c.halted, Cycles: c.cycles,
	})
}
