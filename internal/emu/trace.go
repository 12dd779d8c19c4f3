package emu

import (
	"fmt"

	"github.com/pixelpocket/handheldcore/internal/cpu"
)

// traceLine prints one instruction-boundary trace entry in the format the
// cpurunner tool expects, gated by Config.Trace.
func traceLine(pc uint16, cyc int, c *cpu.CPU) {
	fmt.Printf("PC=%04X cyc=%d A=%02X F=%02X SP=%04X IME=%t\n",
		pc, cyc, c.A, c.F, c.SP(), c.IME())
}
