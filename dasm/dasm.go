// Package dasm disassembles a DCPU-16 word stream back into instructions:
// the inverse of asm/ast.Encode, buffering a 3-word sliding window and
// guaranteeing forward progress even when the stream desyncs.
package dasm

import (
	"errors"
	"fmt"
	"strings"

	"dcpu16/asm/ast"
)

// ErrTruncated is reported for a trailing partial instruction: decode
// needs more words than the source has left to give.
var ErrTruncated = errors.New("dasm: truncated instruction at end of stream")

// Source supplies the next word of a stream, the same shape as the
// original's plain Iterator<Item=u16>.
type Source interface {
	Next() (uint16, bool)
}

// SliceSource adapts a []uint16 (e.g. a RAM dump) into a Source.
type SliceSource struct {
	words []uint16
	pos   int
}

// NewSliceSource wraps words for sequential disassembly starting at index 0.
func NewSliceSource(words []uint16) *SliceSource {
	return &SliceSource{words: words}
}

func (s *SliceSource) Next() (uint16, bool) {
	if s.pos >= len(s.words) {
		return 0, false
	}
	w := s.words[s.pos]
	s.pos++
	return w, true
}

// Entry is one disassembled step: either a successfully decoded
// instruction, or a single skipped word when decode failed and the
// disassembler advanced to keep making progress.
type Entry struct {
	Address     uint16
	Words       []uint16
	Instruction ast.Instruction
	Err         error
}

// Disassembler buffers up to 3 words from a Source and repeatedly invokes
// ast.Decode, refilling the buffer after each instruction the same way the
// original's U16ToInstruction chain does.
type Disassembler struct {
	src  Source
	buf  [3]uint16
	n    int
	addr uint16
}

// New creates a Disassembler reading from src.
func New(src Source) *Disassembler {
	return &Disassembler{src: src}
}

func (d *Disassembler) fill() {
	for d.n < 3 {
		w, ok := d.src.Next()
		if !ok {
			break
		}
		d.buf[d.n] = w
		d.n++
	}
}

func (d *Disassembler) shift(n int) {
	copy(d.buf[:], d.buf[n:d.n])
	d.n -= n
}

// Next decodes the next instruction, or the next single word as an error
// entry if decode failed or the stream ran out mid-instruction. It returns
// false once the buffer and source are both exhausted.
func (d *Disassembler) Next() (Entry, bool) {
	d.fill()
	if d.n == 0 {
		return Entry{}, false
	}

	used, ins, err := ast.Decode(d.buf)
	if err == nil && used <= d.n {
		words := append([]uint16(nil), d.buf[:used]...)
		entry := Entry{Address: d.addr, Words: words, Instruction: ins}
		d.shift(used)
		d.addr += uint16(used)
		return entry, true
	}

	if err == nil {
		err = ErrTruncated
	}
	entry := Entry{Address: d.addr, Words: []uint16{d.buf[0]}, Err: err}
	d.shift(1)
	d.addr++
	return entry, true
}

// All drains the disassembler into a slice, for callers that don't need
// streaming (tests, one-shot tools).
func All(d *Disassembler) []Entry {
	var out []Entry
	for {
		e, ok := d.Next()
		if !ok {
			return out
		}
		out = append(out, e)
	}
}

var basicOpMnemonics = map[ast.BasicOp]string{
	ast.SET: "SET", ast.ADD: "ADD", ast.SUB: "SUB", ast.MUL: "MUL", ast.MLI: "MLI",
	ast.DIV: "DIV", ast.DVI: "DVI", ast.MOD: "MOD", ast.MDI: "MDI", ast.AND: "AND",
	ast.BOR: "BOR", ast.XOR: "XOR", ast.SHR: "SHR", ast.ASR: "ASR", ast.SHL: "SHL",
	ast.IFB: "IFB", ast.IFC: "IFC", ast.IFE: "IFE", ast.IFN: "IFN", ast.IFG: "IFG",
	ast.IFA: "IFA", ast.IFL: "IFL", ast.IFU: "IFU", ast.ADX: "ADX", ast.SBX: "SBX",
	ast.STI: "STI", ast.STD: "STD",
}

var specialOpMnemonics = map[ast.SpecialOp]string{
	ast.JSR: "JSR", ast.INT: "INT", ast.IAG: "IAG", ast.IAS: "IAS", ast.RFI: "RFI",
	ast.IAQ: "IAQ", ast.HWN: "HWN", ast.HWQ: "HWQ", ast.HWI: "HWI", ast.LOG: "LOG",
	ast.BRK: "BRK", ast.HLT: "HLT",
}

func valueText(v ast.Value) string {
	switch v.Kind {
	case ast.VReg:
		return v.Reg.String()
	case ast.VAtReg:
		return fmt.Sprintf("[%s]", v.Reg)
	case ast.VAtRegPlus:
		return fmt.Sprintf("[%s+0x%x]", v.Reg, v.Imm)
	case ast.VPush:
		return "PUSH/POP"
	case ast.VPeek:
		return "PEEK"
	case ast.VPick:
		return fmt.Sprintf("PICK 0x%x", v.Imm)
	case ast.VSP:
		return "SP"
	case ast.VPC:
		return "PC"
	case ast.VEX:
		return "EX"
	case ast.VAtAddr:
		return fmt.Sprintf("[0x%x]", v.Imm)
	case ast.VLitteral:
		return fmt.Sprintf("0x%x", v.Imm)
	default:
		return "?"
	}
}

// Text renders the decoded instruction as assembly source text. PUSH/POP
// is disambiguated using operand position (PUSH as b, POP as a), the same
// rule asm/parser's parseValue applies through its isB parameter.
func (e Entry) Text() string {
	if e.Err != nil {
		return fmt.Sprintf("; bad opcode 0x%04x (%s)", e.Words[0], e.Err)
	}
	ins := e.Instruction
	if ins.IsSpecial {
		name := specialOpMnemonics[ins.Special]
		if name == "" {
			name = fmt.Sprintf("0x%02x", ins.Special)
		}
		return fmt.Sprintf("%s %s", name, disambiguatePushPop(ins.A, false))
	}
	name := basicOpMnemonics[ins.Op]
	if name == "" {
		name = fmt.Sprintf("0x%02x", ins.Op)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s, %s", name, disambiguatePushPop(ins.B, true), disambiguatePushPop(ins.A, false))
	return b.String()
}

func disambiguatePushPop(v ast.Value, isB bool) string {
	if v.Kind == ast.VPush {
		if isB {
			return "PUSH"
		}
		return "POP"
	}
	return valueText(v)
}
