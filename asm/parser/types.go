// Package parser turns DCPU-16 assembly text into a stream of ParsedItems:
// label declarations, directives, instructions, and comments. It does not
// resolve label addresses or encode instructions -- that is the linker's
// job (package asm/linker).
package parser

import "dcpu16/asm/ast"

// BinOp is an Expression's binary operator.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpShl
	OpShr
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
)

// ExprKind tags which case of Expression is populated.
type ExprKind int

const (
	ExprNum ExprKind = iota
	ExprLabel
	ExprLocalLabel
	ExprBinary
	ExprNeg
	ExprNot
)

// Expression is an arithmetic/comparison expression over labels and
// numeric literals, evaluated against a symbol table at link time. It is
// a tagged struct rather than an interface-per-variant, the same sum-type
// idiom used by asm/ast.Value.
type Expression struct {
	Kind  ExprKind
	Num   uint16
	Label string
	Op    BinOp
	Left  *Expression
	Right *Expression
}

// ValueKind tags which case of ParsedValue is populated.
type ValueKind int

const (
	VReg ValueKind = iota
	VAtReg
	VAtRegPlus
	VPush
	VPeek
	VPick
	VSP
	VPC
	VEX
	VAtAddr
	VLitteral
)

// ParsedValue is one operand as written in source, before label addresses
// are known.
type ParsedValue struct {
	Kind ValueKind
	Reg  ast.Register
	Expr *Expression
}

// ParsedInstruction is one instruction line, still holding unresolved
// operand expressions.
type ParsedInstruction struct {
	IsSpecial bool
	Op        ast.BasicOp
	Special   ast.SpecialOp
	B         ParsedValue
	A         ParsedValue
}

// DirectiveKind is which assembler directive a Directive represents.
type DirectiveKind int

const (
	DirDat DirectiveKind = iota
	DirOrg
	DirSkip
	DirZero
	DirGlobl
	DirText
	DirBss
	DirLcomm
)

// DatItem is one element of a dat/byte/word/short directive's item list:
// either a numeric expression or a NUL-terminated string (one byte per
// emitted word).
type DatItem struct {
	Str  string
	IsStr bool
	Expr *Expression
}

// Directive is one `.name args...` line.
type Directive struct {
	Kind  DirectiveKind
	Items []DatItem      // dat/byte/word/short
	N     *Expression    // org's target address; skip/zero/lcomm's count
	V     *Expression    // org/skip's fill value
	Sym   string         // lcomm's reserved symbol
}

// ItemKind is which case of ParsedItem is populated.
type ItemKind int

const (
	ItemDirective ItemKind = iota
	ItemLabelDecl
	ItemLocalLabelDecl
	ItemInstruction
	ItemComment
)

// ParsedItem is one element of the item stream Parse produces.
type ParsedItem struct {
	Kind        ItemKind
	Directive   Directive
	Label       string
	Instruction ParsedInstruction
	Comment     string
}
