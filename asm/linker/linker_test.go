package linker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dcpu16/asm/parser"
)

func link(t *testing.T, src string) *Output {
	t.Helper()
	items, err := parser.Parse(src)
	assert.NoError(t, err)
	out, err := Link(items)
	assert.NoError(t, err)
	return out
}

func TestLinkSimpleProgram(t *testing.T) {
	out := link(t, "SET A, 1\nSET B, 2\n")
	assert.Equal(t, []uint16{0x8801, 0x8c21}, out.Words)
}

func TestLinkForwardLabelReference(t *testing.T) {
	out := link(t, "SET PC, foo\n:foo\nSET A, 1\n")
	// JSR/SET PC,foo needs foo's address, which is only known after this
	// instruction's own size is counted -- exercises the fixed point.
	assert.Equal(t, uint16(1), out.Globals["foo"])
}

func TestLinkLocalLabelScopedToGlobal(t *testing.T) {
	out := link(t, ":a\n:.loop\nSET A, 1\n:b\n:.loop\nSET B, 2\n")
	assert.Equal(t, uint16(0), out.Globals["a"])
	assert.Equal(t, uint16(1), out.Globals["b"])
}

func TestLinkDuplicatedLabel(t *testing.T) {
	items, err := parser.Parse(":a\nSET A,1\n:a\nSET B,2\n")
	assert.NoError(t, err)
	_, err = Link(items)
	assert.IsType(t, DuplicatedLabelError{}, err)
}

func TestLinkLocalBeforeGlobal(t *testing.T) {
	items, err := parser.Parse(":.loop\nSET A,1\n")
	assert.NoError(t, err)
	_, err = Link(items)
	assert.IsType(t, LocalBeforeGlobalError{}, err)
}

func TestLinkUnknownLabel(t *testing.T) {
	items, err := parser.Parse("SET A, missing\n")
	assert.NoError(t, err)
	_, err = Link(items)
	assert.IsType(t, parser.UnknownLabelError{}, err)
}

func TestLinkDatDirectiveEmitsStringAndNumbers(t *testing.T) {
	out := link(t, `.dat "hi", 1`+"\n")
	assert.Equal(t, []uint16{'h', 'i', 0, 1}, out.Words)
}

func TestLinkOrgPadsToAddress(t *testing.T) {
	out := link(t, "SET A, 1\n.org 3\nSET B, 2\n")
	assert.Len(t, out.Words, 4)
	assert.Equal(t, uint16(0), out.Words[1])
	assert.Equal(t, uint16(0), out.Words[2])
}

func TestLinkZeroDirectiveReservesWords(t *testing.T) {
	out := link(t, ".zero 3\nSET A, 1\n")
	assert.Equal(t, []uint16{0, 0, 0, 0x8801}, out.Words)
}

func TestLinkLcommReservesAndDeclaresSymbol(t *testing.T) {
	out := link(t, ".lcomm buf, 4\nSET A, buf\n")
	assert.Equal(t, uint16(0), out.Globals["buf"])
	assert.Len(t, out.Words, 5)
}

func TestSymbolsJSON(t *testing.T) {
	out := link(t, ":start\nSET A, 1\n")
	data, err := out.SymbolsJSON()
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"start": 0`)
}
