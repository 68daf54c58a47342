package cpu

import (
	"fmt"

	"dcpu16/asm/ast"
	"dcpu16/device"
)

func (c *Cpu) exec(ins ast.Instruction, devices []device.Device) error {
	if ins.IsSpecial {
		return c.specialOp(ins.Special, ins.A, devices)
	}
	return c.basicOp(ins.Op, ins.B, ins.A)
}

func (c *Cpu) basicOp(op ast.BasicOp, b, a ast.Value) error {
	switch op {
	case ast.SET:
		return c.opSET(b, a)
	case ast.ADD:
		return c.opADD(b, a)
	case ast.SUB:
		return c.opSUB(b, a)
	case ast.MUL:
		return c.opMUL(b, a)
	case ast.MLI:
		return c.opMLI(b, a)
	case ast.DIV:
		return c.opDIV(b, a)
	case ast.DVI:
		return c.opDVI(b, a)
	case ast.MOD:
		return c.opMOD(b, a)
	case ast.MDI:
		return c.opMDI(b, a)
	case ast.AND:
		return c.opAND(b, a)
	case ast.BOR:
		return c.opBOR(b, a)
	case ast.XOR:
		return c.opXOR(b, a)
	case ast.SHR:
		return c.opSHR(b, a)
	case ast.ASR:
		return c.opASR(b, a)
	case ast.SHL:
		return c.opSHL(b, a)
	case ast.IFB:
		return c.opIFB(b, a)
	case ast.IFC:
		return c.opIFC(b, a)
	case ast.IFE:
		return c.opIFE(b, a)
	case ast.IFN:
		return c.opIFN(b, a)
	case ast.IFG:
		return c.opIFG(b, a)
	case ast.IFA:
		return c.opIFA(b, a)
	case ast.IFL:
		return c.opIFL(b, a)
	case ast.IFU:
		return c.opIFU(b, a)
	case ast.ADX:
		return c.opADX(b, a)
	case ast.SBX:
		return c.opSBX(b, a)
	case ast.STI:
		return c.opSTI(b, a)
	case ast.STD:
		return c.opSTD(b, a)
	default:
		return fmt.Errorf("cpu: unreachable basic op %#x", op)
	}
}

func (c *Cpu) specialOp(op ast.SpecialOp, a ast.Value, devices []device.Device) error {
	switch op {
	case ast.JSR:
		return c.opJSR(a)
	case ast.INT:
		return c.opINT(a)
	case ast.IAG:
		return c.opIAG(a)
	case ast.IAS:
		return c.opIAS(a)
	case ast.RFI:
		return c.opRFI(a)
	case ast.IAQ:
		return c.opIAQ(a)
	case ast.HWN:
		return c.opHWN(a, devices)
	case ast.HWQ:
		return c.opHWQ(a, devices)
	case ast.HWI:
		return c.opHWI(a, devices)
	case ast.LOG:
		return c.opLOG(a)
	case ast.BRK:
		return c.opBRK(a)
	case ast.HLT:
		return c.opHLT()
	default:
		return fmt.Errorf("cpu: unreachable special op %#x", op)
	}
}
