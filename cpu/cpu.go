// Package cpu implements the DCPU-16 fetch/execute loop: registers, the
// interrupt queue, the conditional-skip cascade, and the full basic/special
// opcode table.
package cpu

import (
	"log"

	"dcpu16/asm/ast"
	"dcpu16/device"
	"dcpu16/mem"
)

// OnDecodeError selects what Tick does when it cannot decode the word at
// PC: keep running past it (logging a warning) or return the decode error.
type OnDecodeError int

const (
	ContinueOnDecodeError OnDecodeError = iota
	FailOnDecodeError
)

// State is what Tick reports about the step it just took.
type State int

const (
	Executing State = iota
	Waiting
)

// maxQueuedInterrupts is the point at which a pending INT makes the DCPU-16
// "catch fire" -- see ErrInFire.
const maxQueuedInterrupts = 256

// Cpu holds the full architectural state of one DCPU-16: eight general
// registers, PC/SP/EX/IA, the hardware interrupt queue, the LOG opcode's
// message queue, and the RAM it executes against.
type Cpu struct {
	ram *mem.Ram

	registers [8]uint16
	pc        uint16
	sp        uint16
	ex        uint16
	ia        uint16

	wait int

	onDecodeError  OnDecodeError
	isQueueEnabled bool
	interruptQueue []uint16
	LogQueue       []uint16
	halted         bool

	Logger *log.Logger
}

// New returns a Cpu with SP initialized to 0xffff (the conventional
// DCPU-16 reset state) and a fresh zeroed Ram.
func New(onDecodeError OnDecodeError) *Cpu {
	return &Cpu{
		ram:           mem.New(),
		sp:            0xffff,
		onDecodeError: onDecodeError,
		Logger:        log.Default(),
	}
}

// Reg, SetReg, PC, SetPC, Stall, and TriggerInterrupt implement
// device.Machine.

func (c *Cpu) Reg(r ast.Register) uint16       { return c.registers[r] }
func (c *Cpu) SetReg(r ast.Register, v uint16) { c.registers[r] = v }
func (c *Cpu) PC() uint16                      { return c.pc }
func (c *Cpu) SetPC(v uint16)                  { c.pc = v }
func (c *Cpu) Stall(cycles int)                { c.wait += cycles }
func (c *Cpu) Ram() *mem.Ram                   { return c.ram }

var _ device.Machine = (*Cpu)(nil)

// TriggerInterrupt enqueues a hardware interrupt message, to be delivered
// the next time Tick runs with the software interrupt queue disabled.
func (c *Cpu) TriggerInterrupt(msg uint16) {
	c.interruptQueue = append(c.interruptQueue, msg)
}

// Halted reports whether HLT has executed.
func (c *Cpu) Halted() bool { return c.halted }

// EX returns the overflow/extra register.
func (c *Cpu) EX() uint16 { return c.ex }

// IA returns the interrupt handler address.
func (c *Cpu) IA() uint16 { return c.ia }

// SP returns the stack pointer.
func (c *Cpu) SP() uint16 { return c.sp }

// Load copies a linked program image into Ram at offset.
func (c *Cpu) Load(data []uint16, offset uint16) {
	c.ram.Load(data, offset)
}

// LoadOps encodes and writes a sequence of instructions starting at offset,
// returning the offset just past the last one written. It exists for tests
// and tooling that build programs directly from ast.Instruction values
// rather than through the assembler.
func (c *Cpu) LoadOps(ops []ast.Instruction, offset uint16) uint16 {
	var buf [3]uint16
	for _, op := range ops {
		n := ast.Encode(op, buf[:])
		for i := 0; i < n; i++ {
			c.ram.Write(offset, buf[i])
			offset++
		}
	}
	return offset
}

// GetString reads a NUL-terminated string out of Ram starting at addr, for
// host-side diagnostics.
func (c *Cpu) GetString(addr uint16) string {
	return c.ram.GetString(addr)
}

// get reads the value an operand refers to, applying side effects (Push
// pops, AtRegPlus reads from [register+offset]).
func (c *Cpu) get(v ast.Value) uint16 {
	switch v.Kind {
	case ast.VReg:
		return c.registers[v.Reg]
	case ast.VAtReg:
		return c.ram.Read(c.registers[v.Reg])
	case ast.VAtRegPlus:
		return c.ram.Read(v.Imm + c.registers[v.Reg])
	case ast.VPush:
		val := c.ram.Read(c.sp)
		c.sp++
		return val
	case ast.VPeek:
		return c.ram.Read(c.sp)
	case ast.VPick:
		return c.ram.Read(c.sp + v.Imm)
	case ast.VSP:
		return c.sp
	case ast.VPC:
		return c.pc
	case ast.VEX:
		return c.ex
	case ast.VAtAddr:
		return c.ram.Read(v.Imm)
	case ast.VLitteral:
		return v.Imm
	default:
		return 0
	}
}

// set writes val to the location an operand refers to. Writing to a
// literal operand is a silent no-op, per the DCPU-16 spec.
func (c *Cpu) set(v ast.Value, val uint16) {
	switch v.Kind {
	case ast.VReg:
		c.registers[v.Reg] = val
	case ast.VAtReg:
		c.ram.Write(c.registers[v.Reg], val)
	case ast.VAtRegPlus:
		c.ram.Write(v.Imm+c.registers[v.Reg], val)
	case ast.VPush:
		c.sp--
		c.ram.Write(c.sp, val)
	case ast.VPeek:
		c.ram.Write(c.sp, val)
	case ast.VPick:
		c.ram.Write(c.sp+v.Imm, val)
	case ast.VSP:
		c.sp = val
	case ast.VPC:
		c.pc = val
	case ast.VEX:
		c.ex = val
	case ast.VAtAddr:
		c.ram.Write(v.Imm, val)
	case ast.VLitteral:
		// no-op
	}
}

// Tick executes a single step: if the CPU is waiting out a prior
// instruction's delay, that counts as the step; otherwise it delivers one
// queued hardware interrupt (if interrupt queueing is not enabled),
// decodes and executes the instruction at PC, and sets up the
// wait counter for its delay.
func (c *Cpu) Tick(devices []device.Device) (State, error) {
	if c.halted {
		return Executing, ErrHalted
	}
	if c.wait != 0 {
		c.wait--
		return Waiting, nil
	}

	if !c.isQueueEnabled && len(c.interruptQueue) > 0 {
		msg := c.interruptQueue[0]
		c.interruptQueue = c.interruptQueue[1:]
		c.execInterrupt(msg)
	}

	pc := c.pc
	words, instruction, err := c.decode(pc)
	if err != nil {
		switch c.onDecodeError {
		case FailOnDecodeError:
			return Executing, err
		default:
			c.Logger.Printf("instruction decode error at %#x: %v", pc, err)
			c.pc++
			return Executing, nil
		}
	}
	c.pc += uint16(words)

	delay := ast.Delay(instruction)
	if delay < 1 {
		delay = 1
	}
	c.wait = delay - 1

	if err := c.exec(instruction, devices); err != nil {
		return Executing, err
	}
	return Executing, nil
}

// decode reads the three-word window starting at offset (wrapping around
// the top of Ram) and decodes one instruction from it.
func (c *Cpu) decode(offset uint16) (int, ast.Instruction, error) {
	window := [3]uint16{
		c.ram.Read(offset),
		c.ram.Read(offset + 1),
		c.ram.Read(offset + 2),
	}
	return ast.Decode(window)
}

// execInterrupt delivers a hardware interrupt: push PC then A, jump to IA,
// and put the message in A. A zero IA silently drops the interrupt.
func (c *Cpu) execInterrupt(msg uint16) {
	if c.ia == 0 {
		return
	}
	c.isQueueEnabled = true
	c.set(ast.Value{Kind: ast.VPush}, c.pc)
	c.set(ast.Value{Kind: ast.VPush}, c.registers[ast.A])
	c.pc = c.ia
	c.registers[ast.A] = msg
}
