package device

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dcpu16/asm/ast"
	"dcpu16/mem"
)

// fakeMachine is a minimal Machine test double -- just enough register
// storage to exercise a device's Interrupt/Tick without a real Cpu.
type fakeMachine struct {
	regs [8]uint16
	pc   uint16
	ram  *mem.Ram
}

func (m *fakeMachine) Reg(r ast.Register) uint16       { return m.regs[r] }
func (m *fakeMachine) SetReg(r ast.Register, v uint16) { m.regs[r] = v }
func (m *fakeMachine) PC() uint16                      { return m.pc }
func (m *fakeMachine) SetPC(v uint16)                  { m.pc = v }
func (m *fakeMachine) Stall(cycles int)                {}
func (m *fakeMachine) Ram() *mem.Ram                   { return m.ram }
func (m *fakeMachine) TriggerInterrupt(msg uint16)     {}

func TestClockIdentity(t *testing.T) {
	c := NewClock(100000)
	assert.Equal(t, uint32(0x12d0b402), c.HardwareID())
	assert.Equal(t, uint16(1), c.HardwareVersion())
}

func TestClockSetSpeedAndTick(t *testing.T) {
	c := NewClock(100000)
	m := &fakeMachine{}
	m.SetReg(ast.A, 0) // SET_SPEED
	m.SetReg(ast.B, 60)
	_, err := c.Interrupt(m)
	assert.NoError(t, err)

	m.SetReg(ast.A, 2) // SET_INT
	m.SetReg(ast.B, 0x40)
	_, err = c.Interrupt(m)
	assert.NoError(t, err)

	res, err := c.Tick(m, 100000)
	assert.NoError(t, err)
	assert.True(t, res.Interrupt)
	assert.Equal(t, uint16(0x40), res.Message)
}

func TestClockGetTicksResetsCounter(t *testing.T) {
	c := NewClock(100000)
	m := &fakeMachine{}
	m.SetReg(ast.A, 0)
	m.SetReg(ast.B, 60)
	c.Interrupt(m)
	m.SetReg(ast.A, 2)
	m.SetReg(ast.B, 1)
	c.Interrupt(m)
	c.Tick(m, 100000)

	m.SetReg(ast.A, 1) // GET_TICKS
	_, err := c.Interrupt(m)
	assert.NoError(t, err)
	assert.Equal(t, uint16(1), m.Reg(ast.C))
	assert.Equal(t, uint64(0), c.lastCall)
}

func TestClockDisabledWithoutSpeedOrInt(t *testing.T) {
	c := NewClock(100000)
	m := &fakeMachine{}
	res, err := c.Tick(m, 100000)
	assert.NoError(t, err)
	assert.False(t, res.Interrupt)
}

func TestClockUnknownCommand(t *testing.T) {
	c := NewClock(100000)
	m := &fakeMachine{}
	m.SetReg(ast.A, 0x99)
	_, err := c.Interrupt(m)
	assert.Error(t, err)
}
