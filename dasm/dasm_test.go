package dasm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dcpu16/asm/ast"
)

func TestDisassembleSingleWordInstruction(t *testing.T) {
	// SET A, 1 -> encode(B=VReg A, A=VLitteral 1)
	var buf [3]uint16
	n := ast.Encode(ast.Instruction{Op: ast.SET, B: ast.Value{Kind: ast.VReg, Reg: ast.A}, A: ast.Value{Kind: ast.VLitteral, Imm: 1}}, buf[:])
	d := New(NewSliceSource(buf[:n]))
	entry, ok := d.Next()
	assert.True(t, ok)
	assert.NoError(t, entry.Err)
	assert.Equal(t, ast.SET, entry.Instruction.Op)
	assert.Equal(t, uint16(0), entry.Address)

	_, ok = d.Next()
	assert.False(t, ok)
}

func TestDisassembleMultiWordInstructionAdvancesAddress(t *testing.T) {
	var buf [3]uint16
	n1 := ast.Encode(ast.Instruction{Op: ast.SET, B: ast.Value{Kind: ast.VReg, Reg: ast.A}, A: ast.Value{Kind: ast.VLitteral, Imm: 0x1234}}, buf[:])
	words := append([]uint16(nil), buf[:n1]...)
	n2 := ast.Encode(ast.Instruction{Op: ast.SET, B: ast.Value{Kind: ast.VReg, Reg: ast.B}, A: ast.Value{Kind: ast.VLitteral, Imm: 1}}, buf[:])
	words = append(words, buf[:n2]...)

	d := New(NewSliceSource(words))
	first, ok := d.Next()
	assert.True(t, ok)
	assert.Equal(t, uint16(0), first.Address)
	assert.Len(t, first.Words, 2)

	second, ok := d.Next()
	assert.True(t, ok)
	assert.Equal(t, uint16(2), second.Address)
}

func TestDisassembleBadOpcodeAdvancesByOneWord(t *testing.T) {
	// opBin=0 (special), bBin (special op field) unassigned -> decode error.
	words := []uint16{0x0000 | 0x1f<<5, 0xaaaa, 0xbbbb}
	d := New(NewSliceSource(words))

	e1, ok := d.Next()
	assert.True(t, ok)
	assert.Error(t, e1.Err)
	assert.Equal(t, uint16(0), e1.Address)
	assert.Equal(t, []uint16{words[0]}, e1.Words)

	e2, ok := d.Next()
	assert.True(t, ok)
	assert.Equal(t, uint16(1), e2.Address)
	assert.Equal(t, uint16(0xaaaa), e2.Words[0])
}

func TestDisassembleTruncatedStreamStillProgresses(t *testing.T) {
	// AtRegPlus needs a trailing word that isn't there.
	words := []uint16{uint16(ast.SET) | 0x10<<10}
	d := New(NewSliceSource(words))
	e, ok := d.Next()
	assert.True(t, ok)
	assert.Error(t, e.Err)

	_, ok = d.Next()
	assert.False(t, ok)
}

func TestEntryTextRendersBasicInstruction(t *testing.T) {
	var buf [3]uint16
	n := ast.Encode(ast.Instruction{Op: ast.ADD, B: ast.Value{Kind: ast.VReg, Reg: ast.A}, A: ast.Value{Kind: ast.VReg, Reg: ast.B}}, buf[:])
	d := New(NewSliceSource(buf[:n]))
	e, _ := d.Next()
	assert.Equal(t, "ADD A, B", e.Text())
}

func TestEntryTextDisambiguatesPushPop(t *testing.T) {
	var buf [3]uint16
	n := ast.Encode(ast.Instruction{Op: ast.SET, B: ast.Value{Kind: ast.VPush}, A: ast.Value{Kind: ast.VReg, Reg: ast.A}}, buf[:])
	d := New(NewSliceSource(buf[:n]))
	e, _ := d.Next()
	assert.Equal(t, "SET PUSH, A", e.Text())
}

func TestAllDrainsEntries(t *testing.T) {
	var buf [3]uint16
	n := ast.Encode(ast.Instruction{Op: ast.SET, B: ast.Value{Kind: ast.VReg, Reg: ast.A}, A: ast.Value{Kind: ast.VLitteral, Imm: 1}}, buf[:])
	entries := All(New(NewSliceSource(buf[:n])))
	assert.Len(t, entries, 1)
}
