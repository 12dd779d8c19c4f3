// Package timer implements the DIV/TIMA/TMA/TAC divider chain: a 16-bit
// internal counter whose falling edges, gated by TAC, drive TIMA.
package timer

import "github.com/pixelpocket/handheldcore/internal/interrupt"

// selectedBit maps TAC's low two bits to the internal-counter bit that
// feeds TIMA when the timer is enabled.
var selectedBit = [4]uint{9, 3, 5, 7}

// Registers is the bus-owned state the Timer reads and mutates. DIV is
// exposed as a plain mirror of the internal counter's high byte; TIMA/TMA/TAC
// are the bus's I/O cells.
type Registers interface {
	SetDIV(byte)
	TIMA() byte
	SetTIMA(byte)
	TMA() byte
	TAC() byte
}

// Requester raises an interrupt; satisfied by *bus.Bus, which forwards to
// its interrupt controller, or any equivalent.
type Requester interface {
	Request(kind interrupt.Kind)
}

// Timer holds the internal 16-bit divider and the previous AND-gate level
// used for falling-edge detection. This state belongs to the Timer, not the
// bus, since the bus only ever sees the mirrored 8-bit DIV register.
type Timer struct {
	counter uint16
	prevAnd bool
}

// New returns a Timer with its divider at zero.
func New() *Timer { return &Timer{} }

// Step advances the internal counter by cycles machine-cycles (4 T-states
// each), checking for a TIMA falling-edge increment after every T-state.
func (t *Timer) Step(regs Registers, req Requester, cycles int) {
	for i := 0; i < cycles; i++ {
		for ts := 0; ts < 4; ts++ {
			t.tick(regs, req)
		}
	}
}

func (t *Timer) tick(regs Registers, req Requester) {
	t.counter++
	regs.SetDIV(byte(t.counter >> 8))
	t.evaluateEdge(regs, req)
}

// evaluateEdge recomputes the TAC-gated AND level and increments TIMA on a
// 1->0 transition. Exported behavior via Reset below also routes through
// this so a DIV write's spurious tick is reproduced.
func (t *Timer) evaluateEdge(regs Registers, req Requester) {
	enable := (regs.TAC() >> 2) & 1
	sel := regs.TAC() & 3
	bit := (t.counter >> selectedBit[sel]) & 1
	andNow := bit != 0 && enable != 0

	if t.prevAnd && !andNow {
		t.increment(regs, req)
	}
	t.prevAnd = andNow
}

func (t *Timer) increment(regs Registers, req Requester) {
	next := regs.TIMA() + 1
	if next == 0 {
		regs.SetTIMA(regs.TMA())
		req.Request(interrupt.Timer)
		return
	}
	regs.SetTIMA(next)
}

// Reset zeroes the internal counter, as required on any write to FF04 from
// any party. Per §4.3 this itself can produce a falling edge and a
// spurious TIMA tick, which this reproduces by re-evaluating the AND gate
// against the now-zero counter.
func (t *Timer) Reset(regs Registers, req Requester) {
	t.counter = 0
	regs.SetDIV(0)
	t.evaluateEdge(regs, req)
}
