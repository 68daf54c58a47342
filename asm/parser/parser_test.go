package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dcpu16/asm/ast"
)

type fakeSymbols map[string]uint16

func (s fakeSymbols) Global(name string) (uint16, bool) { v, ok := s[name]; return v, ok }
func (s fakeSymbols) Local(name string) (uint16, bool)  { v, ok := s["."+name]; return v, ok }

func TestParseBasicInstruction(t *testing.T) {
	items, err := Parse("SET A, 5\n")
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	ins := items[0].Instruction
	assert.Equal(t, ast.SET, ins.Op)
	assert.Equal(t, VReg, ins.B.Kind)
	assert.Equal(t, ast.A, ins.B.Reg)
	assert.Equal(t, VLitteral, ins.A.Kind)

	v, err := ins.A.Expr.Eval(fakeSymbols{})
	assert.NoError(t, err)
	assert.Equal(t, uint16(5), v)
}

func TestParseSpecialInstruction(t *testing.T) {
	items, err := Parse("JSR foo\n")
	assert.NoError(t, err)
	ins := items[0].Instruction
	assert.True(t, ins.IsSpecial)
	assert.Equal(t, ast.JSR, ins.Special)
	assert.Equal(t, ExprLabel, ins.A.Expr.Kind)
	assert.Equal(t, "foo", ins.A.Expr.Label)
}

func TestParseAtRegPlus(t *testing.T) {
	items, err := Parse("SET [A+1], B\n")
	assert.NoError(t, err)
	ins := items[0].Instruction
	assert.Equal(t, VAtRegPlus, ins.B.Kind)
	assert.Equal(t, ast.A, ins.B.Reg)
}

func TestParsePushPop(t *testing.T) {
	items, err := Parse("SET PUSH, POP\n")
	assert.NoError(t, err)
	ins := items[0].Instruction
	assert.Equal(t, VPush, ins.B.Kind)
	assert.Equal(t, VPush, ins.A.Kind)
}

func TestParseLabelDecl(t *testing.T) {
	items, err := Parse(":start\nSET A, 1\n")
	assert.NoError(t, err)
	assert.Equal(t, ItemLabelDecl, items[0].Kind)
	assert.Equal(t, "start", items[0].Label)
}

func TestParseLocalLabelDecl(t *testing.T) {
	items, err := Parse(":start\n:.loop\nSET A, 1\n")
	assert.NoError(t, err)
	assert.Equal(t, ItemLocalLabelDecl, items[1].Kind)
	assert.Equal(t, "loop", items[1].Label)
}

func TestParseComment(t *testing.T) {
	items, err := Parse("; hello world\n")
	assert.NoError(t, err)
	assert.Equal(t, ItemComment, items[0].Kind)
	assert.Equal(t, "hello world", items[0].Comment)
}

func TestParseDatDirectiveWithStringAndNumbers(t *testing.T) {
	items, err := Parse(`.dat "hi", 1, 0x2` + "\n")
	assert.NoError(t, err)
	d := items[0].Directive
	assert.Equal(t, DirDat, d.Kind)
	assert.Len(t, d.Items, 3)
	assert.True(t, d.Items[0].IsStr)
	assert.Equal(t, "hi", d.Items[0].Str)
	v, _ := d.Items[2].Expr.Eval(fakeSymbols{})
	assert.Equal(t, uint16(2), v)
}

func TestParseOrgDirective(t *testing.T) {
	items, err := Parse(".org 0x200\n")
	assert.NoError(t, err)
	d := items[0].Directive
	assert.Equal(t, DirOrg, d.Kind)
	n, _ := d.N.Eval(fakeSymbols{})
	assert.Equal(t, uint16(0x200), n)
	v, _ := d.V.Eval(fakeSymbols{})
	assert.Equal(t, uint16(0), v)
}

func TestParseLcommDirective(t *testing.T) {
	items, err := Parse(".lcomm buf, 16\n")
	assert.NoError(t, err)
	d := items[0].Directive
	assert.Equal(t, DirLcomm, d.Kind)
	assert.Equal(t, "buf", d.Sym)
	n, _ := d.N.Eval(fakeSymbols{})
	assert.Equal(t, uint16(16), n)
}

func TestParseExpressionPrecedence(t *testing.T) {
	items, err := Parse("SET A, 1+2*3\n")
	assert.NoError(t, err)
	v, err := items[0].Instruction.A.Expr.Eval(fakeSymbols{})
	assert.NoError(t, err)
	assert.Equal(t, uint16(7), v)
}

func TestParseNegativeLiteral(t *testing.T) {
	items, err := Parse("SET A, -1\n")
	assert.NoError(t, err)
	v, err := items[0].Instruction.A.Expr.Eval(fakeSymbols{})
	assert.NoError(t, err)
	assert.Equal(t, uint16(0xffff), v)
}

func TestEvalUnknownLabel(t *testing.T) {
	items, err := Parse("SET A, missing\n")
	assert.NoError(t, err)
	_, err = items[0].Instruction.A.Expr.Eval(fakeSymbols{})
	assert.IsType(t, UnknownLabelError{}, err)
}
