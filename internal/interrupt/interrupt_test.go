package interrupt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeRegs struct {
	ie, ifr byte
}

func (f *fakeRegs) IE() byte     { return f.ie }
func (f *fakeRegs) IF() byte     { return f.ifr }
func (f *fakeRegs) SetIF(v byte) { f.ifr = v }

type fakeCPU struct {
	halted    bool
	ime       bool
	pc        uint16
	pushed    []uint16
}

func (c *fakeCPU) Halted() bool     { return c.halted }
func (c *fakeCPU) SetHalted(v bool) { c.halted = v }
func (c *fakeCPU) IME() bool        { return c.ime }
func (c *fakeCPU) SetIME(v bool)    { c.ime = v }
func (c *fakeCPU) PushPC()          { c.pushed = append(c.pushed, c.pc) }
func (c *fakeCPU) SetPC(v uint16)   { c.pc = v }

func TestServiceDispatchesHighestPriority(t *testing.T) {
	regs := &fakeRegs{ie: 0x1F, ifr: (1 << Timer) | (1 << VBlank)}
	cpu := &fakeCPU{ime: true, pc: 0x1234}
	ctrl := New()

	cyc := ctrl.Service(cpu, regs)

	assert.Equal(t, 5, cyc)
	assert.Equal(t, Vectors[VBlank], cpu.pc)
	assert.False(t, cpu.ime)
	assert.Equal(t, byte(1<<Timer), regs.ifr)
	assert.Equal(t, []uint16{0x1234}, cpu.pushed)
}

func TestServiceWakesHaltedCPUEvenWithIMEOff(t *testing.T) {
	regs := &fakeRegs{ie: 0x01, ifr: 0x01}
	cpu := &fakeCPU{halted: true, ime: false}
	ctrl := New()

	cyc := ctrl.Service(cpu, regs)

	assert.Equal(t, 0, cyc)
	assert.False(t, cpu.halted)
	assert.Empty(t, cpu.pushed)
}

func TestServiceNoOpWhenNothingPending(t *testing.T) {
	regs := &fakeRegs{ie: 0x1F, ifr: 0x00}
	cpu := &fakeCPU{ime: true}
	ctrl := New()

	cyc := ctrl.Service(cpu, regs)

	assert.Equal(t, 0, cyc)
}

func TestRequestSetsIFBit(t *testing.T) {
	regs := &fakeRegs{}
	ctrl := New()
	ctrl.Request(regs, Joypad)
	assert.Equal(t, byte(1<<Joypad), regs.ifr)
}
