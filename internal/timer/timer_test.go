package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pixelpocket/handheldcore/internal/interrupt"
)

type fakeRegs struct {
	div, tima, tma, tac byte
}

func (f *fakeRegs) SetDIV(v byte)  { f.div = v }
func (f *fakeRegs) TIMA() byte     { return f.tima }
func (f *fakeRegs) SetTIMA(v byte) { f.tima = v }
func (f *fakeRegs) TMA() byte      { return f.tma }
func (f *fakeRegs) TAC() byte      { return f.tac }

type fakeReq struct {
	kinds []interrupt.Kind
}

func (f *fakeReq) Request(kind interrupt.Kind) { f.kinds = append(f.kinds, kind) }

func TestTimerOverflowReloadsAndInterrupts(t *testing.T) {
	regs := &fakeRegs{tima: 0xFF, tma: 0x12, tac: 0x05} // enabled, bit 3 (262144 Hz)
	req := &fakeReq{}
	tm := New()

	// Drive enough m-cycles to produce a falling edge on bit 3 of the
	// internal counter: that bit toggles every 8 T-states, so its first
	// falling edge comes at T-state 16, the end of the fourth m-cycle.
	tm.Step(regs, req, 4)

	assert.Equal(t, byte(0x12), regs.tima)
	assert.Contains(t, req.kinds, interrupt.Timer)
}

func TestTimerDisabledNeverTicks(t *testing.T) {
	regs := &fakeRegs{tima: 0x00, tac: 0x00} // disabled
	req := &fakeReq{}
	tm := New()
	tm.Step(regs, req, 1000)
	assert.Equal(t, byte(0x00), regs.tima)
	assert.Empty(t, req.kinds)
}

func TestResetZeroesDivider(t *testing.T) {
	regs := &fakeRegs{div: 0xAB, tac: 0x04}
	req := &fakeReq{}
	tm := New()
	tm.Step(regs, req, 10)
	tm.Reset(regs, req)
	assert.Equal(t, byte(0), regs.div)
	assert.Equal(t, uint16(0), tm.counter)
}
