package cpu

import "dcpu16/asm/ast"

func (c *Cpu) opSET(b, a ast.Value) error {
	c.set(b, c.get(a))
	return nil
}

func (c *Cpu) opADD(b, a ast.Value) error {
	valA, valB := c.get(a), c.get(b)
	sum := uint32(valB) + uint32(valA)
	c.set(b, uint16(sum))
	if sum > 0xffff {
		c.ex = 1
	} else {
		c.ex = 0
	}
	return nil
}

func (c *Cpu) opSUB(b, a ast.Value) error {
	valA, valB := c.get(a), c.get(b)
	diff := int32(valB) - int32(valA)
	c.set(b, uint16(diff))
	if diff < 0 {
		c.ex = 0xffff
	} else {
		c.ex = 0
	}
	return nil
}

func (c *Cpu) opMUL(b, a ast.Value) error {
	valA, valB := uint32(c.get(a)), uint32(c.get(b))
	newB := valA * valB
	c.set(b, uint16(newB))
	c.ex = uint16(newB >> 16)
	return nil
}

func (c *Cpu) opMLI(b, a ast.Value) error {
	valA, valB := int32(int16(c.get(a))), int32(int16(c.get(b)))
	newB := uint32(valA * valB)
	c.set(b, uint16(newB))
	c.ex = uint16(newB >> 16)
	return nil
}

func (c *Cpu) opDIV(b, a ast.Value) error {
	valA := c.get(a)
	if valA == 0 {
		c.set(b, 0)
		c.ex = 0
		return nil
	}
	valB := c.get(b)
	c.set(b, valB/valA)
	c.ex = uint16((uint32(valB) << 16) / uint32(valA))
	return nil
}

func (c *Cpu) opDVI(b, a ast.Value) error {
	valA := int16(c.get(a))
	if valA == 0 {
		c.set(b, 0)
		c.ex = 0
		return nil
	}
	valB := int16(c.get(b))
	c.set(b, uint16(valB/valA))
	c.ex = uint16((int32(valB) << 16) / int32(valA))
	return nil
}

func (c *Cpu) opMOD(b, a ast.Value) error {
	valA := c.get(a)
	if valA == 0 {
		c.set(b, 0)
		return nil
	}
	c.set(b, c.get(b)%valA)
	return nil
}

func (c *Cpu) opMDI(b, a ast.Value) error {
	valA := int16(c.get(a))
	if valA == 0 {
		c.set(b, 0)
		return nil
	}
	valB := int16(c.get(b))
	c.set(b, uint16(valB%valA))
	return nil
}

func (c *Cpu) opAND(b, a ast.Value) error {
	c.set(b, c.get(b)&c.get(a))
	return nil
}

func (c *Cpu) opBOR(b, a ast.Value) error {
	c.set(b, c.get(b)|c.get(a))
	return nil
}

func (c *Cpu) opXOR(b, a ast.Value) error {
	c.set(b, c.get(b)^c.get(a))
	return nil
}

func (c *Cpu) opSHR(b, a ast.Value) error {
	valA, valB := c.get(a), c.get(b)
	c.set(b, valB>>valA)
	c.ex = uint16((uint32(valB) << 16) >> valA)
	return nil
}

func (c *Cpu) opASR(b, a ast.Value) error {
	valA := c.get(a)
	valB := int16(c.get(b))
	c.set(b, uint16(valB>>valA))
	c.ex = uint16((int32(valB) << 16) >> valA)
	return nil
}

func (c *Cpu) opSHL(b, a ast.Value) error {
	valA, valB := c.get(a), c.get(b)
	c.set(b, valB<<valA)
	c.ex = uint16((uint32(valB) << valA) >> 16)
	return nil
}

// execIf implements the conditional-skip cascade shared by all IFx ops: a
// false condition skips the following instruction, and that skip chains
// through any further IFx instructions it lands on.
func (c *Cpu) execIf(cond bool) error {
	if cond {
		return nil
	}
	c.wait++
	for {
		words, op, err := c.decode(c.pc)
		if err != nil {
			return err
		}
		c.pc += uint16(words)
		if op.IsIf() {
			c.wait++
			continue
		}
		break
	}
	return nil
}

func (c *Cpu) opIFB(b, a ast.Value) error {
	valA, valB := c.get(a), c.get(b)
	return c.execIf((valB & valA) != 0)
}

func (c *Cpu) opIFC(b, a ast.Value) error {
	valA, valB := c.get(a), c.get(b)
	return c.execIf((valB & valA) == 0)
}

func (c *Cpu) opIFE(b, a ast.Value) error {
	return c.execIf(c.get(b) == c.get(a))
}

func (c *Cpu) opIFN(b, a ast.Value) error {
	return c.execIf(c.get(b) != c.get(a))
}

func (c *Cpu) opIFG(b, a ast.Value) error {
	return c.execIf(c.get(b) > c.get(a))
}

func (c *Cpu) opIFA(b, a ast.Value) error {
	valA, valB := int16(c.get(a)), int16(c.get(b))
	return c.execIf(valB > valA)
}

func (c *Cpu) opIFL(b, a ast.Value) error {
	return c.execIf(c.get(b) < c.get(a))
}

func (c *Cpu) opIFU(b, a ast.Value) error {
	valA, valB := int16(c.get(a)), int16(c.get(b))
	return c.execIf(valB < valA)
}

func (c *Cpu) opADX(b, a ast.Value) error {
	valA, valB := uint32(c.get(a)), uint32(c.get(b))
	sum := valB + valA + uint32(c.ex)
	c.set(b, uint16(sum))
	if sum > 0xffff {
		c.ex = 1
	} else {
		c.ex = 0
	}
	return nil
}

func (c *Cpu) opSBX(b, a ast.Value) error {
	valA, valB := c.get(a), c.get(b)
	diff := valB - valA         // wraps mod 2^16
	overflow1 := valB < valA    // the subtraction borrowed
	sum := diff + c.ex          // wraps mod 2^16
	overflow2 := uint32(diff)+uint32(c.ex) > 0xffff
	c.set(b, sum)
	if overflow1 || overflow2 {
		c.ex = 0xffff
	} else {
		c.ex = 0
	}
	return nil
}

func (c *Cpu) opSTI(b, a ast.Value) error {
	c.set(b, c.get(a))
	c.registers[ast.I]++
	c.registers[ast.J]++
	return nil
}

func (c *Cpu) opSTD(b, a ast.Value) error {
	c.set(b, c.get(a))
	c.registers[ast.I]--
	c.registers[ast.J]--
	return nil
}
