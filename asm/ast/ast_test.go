package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeSetLiteralIntoRegister(t *testing.T) {
	// SET A, 5 -- inline literal 5 encodes as 0x20+5+1=0x26 in the a field.
	word := uint16(SET) | uint16(0x00)<<shiftB | uint16(0x26)<<shiftA
	used, ins, err := Decode([3]uint16{word, 0, 0})
	assert.NoError(t, err)
	assert.Equal(t, 1, used)
	assert.False(t, ins.IsSpecial)
	assert.Equal(t, SET, ins.Op)
	assert.Equal(t, Value{Kind: VReg, Reg: A}, ins.B)
	assert.Equal(t, Value{Kind: VLitteral, Imm: 5}, ins.A)
}

func TestDecodeSetWithNextWordLiteral(t *testing.T) {
	// SET A, 0x400 -- too big for inline, needs a trailing word.
	word := uint16(SET) | uint16(0x00)<<shiftB | uint16(0x1f)<<shiftA
	used, ins, err := Decode([3]uint16{word, 0x400, 0})
	assert.NoError(t, err)
	assert.Equal(t, 2, used)
	assert.Equal(t, Value{Kind: VLitteral, Imm: 0x400}, ins.A)
}

func TestDecodeInvalidBasicOp(t *testing.T) {
	// 0x18 and 0x19 are not assigned BasicOp values.
	word := uint16(0x18)
	_, _, err := Decode([3]uint16{word, 0, 0})
	assert.Error(t, err)
	assert.IsType(t, InvalidBasicOpError{}, err)
}

func TestDecodeInvalidSpecialOp(t *testing.T) {
	word := uint16(0x00) | uint16(0x02)<<shiftB // special op field = 2, unassigned
	_, _, err := Decode([3]uint16{word, 0, 0})
	assert.Error(t, err)
	assert.IsType(t, InvalidSpecialOpError{}, err)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []Instruction{
		{Op: SET, B: Value{Kind: VReg, Reg: A}, A: Value{Kind: VLitteral, Imm: 5}},
		{Op: ADD, B: Value{Kind: VReg, Reg: B}, A: Value{Kind: VReg, Reg: C}},
		{Op: SET, B: Value{Kind: VAtReg, Reg: X}, A: Value{Kind: VLitteral, Imm: 0x1234}},
		{Op: STI, B: Value{Kind: VAtRegPlus, Reg: I, Imm: 0x10}, A: Value{Kind: VReg, Reg: J}},
		{IsSpecial: true, Special: JSR, A: Value{Kind: VPush}},
		{IsSpecial: true, Special: HWI, A: Value{Kind: VLitteral, Imm: 0xffff}},
	}

	for _, ins := range cases {
		var buf [3]uint16
		n := Encode(ins, buf[:])
		used, got, err := Decode(buf)
		assert.NoError(t, err)
		assert.Equal(t, n, used)
		assert.Equal(t, ins, got)
	}
}

func TestDelayTable(t *testing.T) {
	assert.Equal(t, 1, Delay(Instruction{Op: SET, B: Value{Kind: VReg}, A: Value{Kind: VReg, Reg: B}}))
	assert.Equal(t, 3, Delay(Instruction{Op: DIV, B: Value{Kind: VReg}, A: Value{Kind: VReg, Reg: B}}))
	assert.Equal(t, 0, Delay(Instruction{IsSpecial: true, Special: HLT, A: Value{Kind: VReg}}))
	assert.Equal(t, 5, Delay(Instruction{IsSpecial: true, Special: INT, A: Value{Kind: VLitteral, Imm: 0x400}}))
}

func TestIsIf(t *testing.T) {
	assert.True(t, Instruction{Op: IFE}.IsIf())
	assert.False(t, Instruction{Op: SET}.IsIf())
	assert.False(t, Instruction{IsSpecial: true, Special: JSR}.IsIf())
}
