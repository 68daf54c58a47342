package ast

import "dcpu16/word"

const (
	shiftA uint16 = 10
	shiftB uint16 = 5
)

// Decode reads one instruction out of the three-word window data, returning
// the number of words actually consumed (1, 2, or 3). data[1] and data[2]
// are only read if the opcode's operands require them; a caller decoding
// near the top of Ram should still pass a full window (wrapping) since
// Decode has no way to signal "I needed a word you didn't give me".
func Decode(data [3]uint16) (int, Instruction, error) {
	opBin := word.Range(data[0], word.B12, word.B16)
	aBin := word.Range(data[0], word.B1, word.B6)
	bBin := word.Range(data[0], word.B7, word.B11)

	if opBin == 0 {
		op, err := decodeSpecialOp(bBin)
		if err != nil {
			return 0, Instruction{}, err
		}
		used, a := decodeValue(aBin, data[1], true)
		return int(1 + used), Instruction{IsSpecial: true, Special: op, A: a}, nil
	}

	op, err := decodeBasicOp(opBin)
	if err != nil {
		return 0, Instruction{}, err
	}
	usedA, a := decodeValue(aBin, data[1], true)
	usedB, b := decodeValue(bBin, data[1+usedA], false)
	return int(1 + usedA + usedB), Instruction{Op: op, B: b, A: a}, nil
}

func decodeValue(val uint16, next uint16, isA bool) (uint16, Value) {
	switch {
	case val <= 0x17:
		reg := Register(val % 8)
		switch {
		case val <= 0x07:
			return 0, Value{Kind: VReg, Reg: reg}
		case val <= 0x0f:
			return 0, Value{Kind: VAtReg, Reg: reg}
		default:
			return 1, Value{Kind: VAtRegPlus, Reg: reg, Imm: next}
		}
	case val == 0x18:
		return 0, Value{Kind: VPush}
	case val == 0x19:
		return 0, Value{Kind: VPeek}
	case val == 0x1a:
		return 1, Value{Kind: VPick, Imm: next}
	case val == 0x1b:
		return 0, Value{Kind: VSP}
	case val == 0x1c:
		return 0, Value{Kind: VPC}
	case val == 0x1d:
		return 0, Value{Kind: VEX}
	case val == 0x1e:
		return 1, Value{Kind: VAtAddr, Imm: next}
	case val == 0x1f:
		return 1, Value{Kind: VLitteral, Imm: next}
	case isA && val >= 0x20 && val <= 0x3f:
		return 0, Value{Kind: VLitteral, Imm: val - 0x21}
	default:
		// val in [0x20,0x3f] but not in the a position: the b field is only
		// 5 bits wide so this is unreachable from Decode.
		return 0, Value{Kind: VLitteral, Imm: val}
	}
}
