// Package machine wires a Cpu to a set of attached devices, advancing them
// in lockstep one tick at a time.
package machine

import (
	"dcpu16/cpu"
	"dcpu16/device"
)

// Computer is a DCPU-16 plus its attached hardware, ticked as one unit.
type Computer struct {
	Cpu         *cpu.Cpu
	Devices     []device.Device
	currentTick uint64
}

// New returns a Computer wrapping an already-constructed Cpu and device
// list. The device list's order is the HWN/HWQ/HWI index order.
func New(c *cpu.Cpu, devices []device.Device) *Computer {
	return &Computer{Cpu: c, Devices: devices}
}

// Tick steps the CPU once, then gives every attached device a chance to
// tick and raise an interrupt, then advances the tick counter. This mirrors
// the CPU-then-devices ordering the original implementation uses: a device
// interrupt raised this tick is only delivered starting next tick, since
// Cpu.Tick only drains the interrupt queue at the start of its own step.
func (m *Computer) Tick() (cpu.State, error) {
	state, err := m.Cpu.Tick(m.Devices)
	if err != nil {
		return state, err
	}

	for _, d := range m.Devices {
		result, err := d.Tick(m.Cpu, m.currentTick)
		if err != nil {
			return state, err
		}
		if result.Interrupt {
			m.Cpu.TriggerInterrupt(result.Message)
		}
	}

	m.currentTick++
	return state, nil
}

// CurrentTick returns the number of ticks executed so far.
func (m *Computer) CurrentTick() uint64 { return m.currentTick }
