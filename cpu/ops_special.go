package cpu

import (
	"dcpu16/asm/ast"
	"dcpu16/device"
)

func (c *Cpu) opJSR(a ast.Value) error {
	valA := c.get(a)
	c.set(ast.Value{Kind: ast.VPush}, c.pc)
	c.pc = valA
	return nil
}

func (c *Cpu) opINT(a ast.Value) error {
	if c.ia == 0 {
		return nil
	}
	if len(c.interruptQueue) >= maxQueuedInterrupts {
		return ErrInFire
	}
	c.interruptQueue = append(c.interruptQueue, c.get(a))
	return nil
}

func (c *Cpu) opIAG(a ast.Value) error {
	c.set(a, c.ia)
	return nil
}

func (c *Cpu) opIAS(a ast.Value) error {
	c.ia = c.get(a)
	return nil
}

func (c *Cpu) opRFI(_ ast.Value) error {
	c.isQueueEnabled = false
	a := c.get(ast.Value{Kind: ast.VPush})
	c.registers[ast.A] = a
	pc := c.get(ast.Value{Kind: ast.VPush})
	c.pc = pc
	return nil
}

func (c *Cpu) opIAQ(a ast.Value) error {
	c.isQueueEnabled = c.get(a) != 0
	return nil
}

func (c *Cpu) opHWN(a ast.Value, devices []device.Device) error {
	c.set(a, uint16(len(devices)))
	return nil
}

func (c *Cpu) opHWQ(a ast.Value, devices []device.Device) error {
	idx := c.get(a)
	if int(idx) >= len(devices) {
		return InvalidHardwareIDError{ID: idx}
	}
	d := devices[idx]
	id := d.HardwareID()
	version := d.HardwareVersion()
	manufacturer := d.Manufacturer()

	c.registers[ast.A] = uint16(id)
	c.registers[ast.B] = uint16(id >> 16)
	c.registers[ast.C] = version
	c.registers[ast.X] = uint16(manufacturer)
	c.registers[ast.Y] = uint16(manufacturer >> 16)
	return nil
}

func (c *Cpu) opHWI(a ast.Value, devices []device.Device) error {
	idx := c.get(a)
	if int(idx) >= len(devices) {
		return InvalidHardwareIDError{ID: idx}
	}
	delay, err := devices[idx].Interrupt(c)
	if err != nil {
		return err
	}
	c.wait += delay
	return nil
}

func (c *Cpu) opLOG(a ast.Value) error {
	c.LogQueue = append(c.LogQueue, c.get(a))
	return nil
}

func (c *Cpu) opBRK(a ast.Value) error {
	return BreakError{Message: c.get(a)}
}

func (c *Cpu) opHLT() error {
	c.halted = true
	return ErrHalted
}
