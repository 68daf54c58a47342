// Package device defines the hardware-device contract that the DCPU-16 HWN/
// HWQ/HWI opcodes drive, and the Machine interface a device uses to reach
// back into the CPU it's attached to. Machine is an interface rather than a
// concrete *cpu.Cpu so this package never imports cpu -- cpu imports
// device, not the other way around.
package device

import (
	"dcpu16/asm/ast"
	"dcpu16/mem"
)

// Machine is the subset of CPU state a device needs: register and RAM
// access, the ability to stall the CPU for its own processing delay, and
// the ability to enqueue a hardware interrupt for a later tick.
type Machine interface {
	Reg(r ast.Register) uint16
	SetReg(r ast.Register, v uint16)
	PC() uint16
	SetPC(v uint16)
	Stall(cycles int)
	Ram() *mem.Ram
	TriggerInterrupt(msg uint16)
}

// TickResult is what a device's Tick reports back to the orchestrator: at
// most one hardware interrupt per tick.
type TickResult struct {
	Interrupt bool
	Message   uint16
}

// Device is one piece of hardware attached to the bus. HWN enumerates
// devices by index, HWQ reads their identity triple through HardwareID,
// HardwareVersion and Manufacturer (it does not call Interrupt -- see the
// cpu package's opHWQ), and HWI dispatches to Interrupt.
// Tick is called once per orchestrator tick for every attached device,
// independent of whether HWI was ever used, so devices like the generic
// clock can raise interrupts on their own schedule.
type Device interface {
	HardwareID() uint32
	HardwareVersion() uint16
	Manufacturer() uint32

	Interrupt(m Machine) (delay int, err error)
	Tick(m Machine, currentTick uint64) (TickResult, error)

	Inspect() string
}
