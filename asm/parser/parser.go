package parser

import (
	"fmt"
	"strconv"
	"strings"

	"dcpu16/asm/ast"
)

var basicOpNames = map[string]ast.BasicOp{
	"SET": ast.SET, "ADD": ast.ADD, "SUB": ast.SUB, "MUL": ast.MUL, "MLI": ast.MLI,
	"DIV": ast.DIV, "DVI": ast.DVI, "MOD": ast.MOD, "MDI": ast.MDI, "AND": ast.AND,
	"BOR": ast.BOR, "XOR": ast.XOR, "SHR": ast.SHR, "ASR": ast.ASR, "SHL": ast.SHL,
	"IFB": ast.IFB, "IFC": ast.IFC, "IFE": ast.IFE, "IFN": ast.IFN, "IFG": ast.IFG,
	"IFA": ast.IFA, "IFL": ast.IFL, "IFU": ast.IFU, "ADX": ast.ADX, "SBX": ast.SBX,
	"STI": ast.STI, "STD": ast.STD,
}

var specialOpNames = map[string]ast.SpecialOp{
	"JSR": ast.JSR, "INT": ast.INT, "IAG": ast.IAG, "IAS": ast.IAS, "RFI": ast.RFI,
	"IAQ": ast.IAQ, "HWN": ast.HWN, "HWQ": ast.HWQ, "HWI": ast.HWI, "LOG": ast.LOG,
	"BRK": ast.BRK, "HLT": ast.HLT,
}

var registerNames = map[string]ast.Register{
	"A": ast.A, "B": ast.B, "C": ast.C, "X": ast.X, "Y": ast.Y, "Z": ast.Z, "I": ast.I, "J": ast.J,
}

var directiveNames = map[string]DirectiveKind{
	"dat": DirDat, "byte": DirDat, "word": DirDat, "short": DirDat,
	"org": DirOrg, "skip": DirSkip, "zero": DirZero,
	"globl": DirGlobl, "text": DirText, "bss": DirBss, "lcomm": DirLcomm,
}

type parser struct {
	toks []token
	pos  int
}

// Parse lexes and parses DCPU-16 assembly source into a flat stream of
// ParsedItems, in source order.
func Parse(src string) ([]ParsedItem, error) {
	toks, err := newLexer(src).tokens()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	var items []ParsedItem
	for {
		p.skipNewlines()
		if p.cur().kind == tokEOF {
			return items, nil
		}
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
}

func (p *parser) cur() token  { return p.toks[p.pos] }
func (p *parser) next() token { t := p.toks[p.pos]; p.pos++; return t }

func (p *parser) skipNewlines() {
	for p.cur().kind == tokNewline {
		p.pos++
	}
}

func (p *parser) errorf(format string, args ...any) error {
	return SyntaxError{Line: p.cur().line, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) parseItem() (ParsedItem, error) {
	t := p.cur()
	switch {
	case t.kind == tokComment:
		p.next()
		return ParsedItem{Kind: ItemComment, Comment: t.text}, nil
	case t.kind == tokPunct && t.text == ".":
		return p.parseDirective()
	case t.kind == tokPunct && t.text == ":":
		return p.parseLabelDecl()
	case t.kind == tokIdent:
		upper := strings.ToUpper(t.text)
		if _, ok := basicOpNames[upper]; ok {
			return p.parseInstruction()
		}
		if _, ok := specialOpNames[upper]; ok {
			return p.parseInstruction()
		}
		return p.parseBareLabelDecl()
	default:
		return ParsedItem{}, p.errorf("unexpected token %q", t.text)
	}
}

func (p *parser) parseLabelDecl() (ParsedItem, error) {
	p.next() // ':'
	if p.cur().kind == tokPunct && p.cur().text == "." {
		p.next()
		name := p.next()
		if name.kind != tokIdent {
			return ParsedItem{}, p.errorf("expected local label name")
		}
		p.maybeConsumeColon()
		return ParsedItem{Kind: ItemLocalLabelDecl, Label: name.text}, nil
	}
	name := p.next()
	if name.kind != tokIdent {
		return ParsedItem{}, p.errorf("expected label name")
	}
	p.maybeConsumeColon()
	return ParsedItem{Kind: ItemLabelDecl, Label: name.text}, nil
}

func (p *parser) parseBareLabelDecl() (ParsedItem, error) {
	name := p.next()
	p.maybeConsumeColon()
	return ParsedItem{Kind: ItemLabelDecl, Label: name.text}, nil
}

func (p *parser) maybeConsumeColon() {
	if p.cur().kind == tokPunct && p.cur().text == ":" {
		p.next()
	}
}

func (p *parser) parseInstruction() (ParsedItem, error) {
	name := p.next()
	upper := strings.ToUpper(name.text)
	if op, ok := basicOpNames[upper]; ok {
		b, err := p.parseValue(true)
		if err != nil {
			return ParsedItem{}, err
		}
		if !(p.cur().kind == tokPunct && p.cur().text == ",") {
			return ParsedItem{}, p.errorf("expected ',' after first operand of %s", upper)
		}
		p.next()
		a, err := p.parseValue(false)
		if err != nil {
			return ParsedItem{}, err
		}
		return ParsedItem{Kind: ItemInstruction, Instruction: ParsedInstruction{Op: op, B: b, A: a}}, nil
	}
	op := specialOpNames[upper]
	a, err := p.parseValue(false)
	if err != nil {
		return ParsedItem{}, err
	}
	return ParsedItem{Kind: ItemInstruction, Instruction: ParsedInstruction{IsSpecial: true, Special: op, A: a}}, nil
}

// parseValue parses one operand. isB selects whether PUSH (destination
// position) or POP (source position) is the valid bare push/pop keyword.
func (p *parser) parseValue(isB bool) (ParsedValue, error) {
	t := p.cur()
	if t.kind == tokIdent {
		upper := strings.ToUpper(t.text)
		switch upper {
		case "SP":
			p.next()
			return ParsedValue{Kind: VSP}, nil
		case "PC":
			p.next()
			return ParsedValue{Kind: VPC}, nil
		case "EX":
			p.next()
			return ParsedValue{Kind: VEX}, nil
		case "PEEK":
			p.next()
			return ParsedValue{Kind: VPeek}, nil
		case "PUSH":
			if isB {
				p.next()
				return ParsedValue{Kind: VPush}, nil
			}
		case "POP":
			if !isB {
				p.next()
				return ParsedValue{Kind: VPush}, nil
			}
		case "PICK":
			p.next()
			e, err := p.parseExpression()
			if err != nil {
				return ParsedValue{}, err
			}
			return ParsedValue{Kind: VPick, Expr: e}, nil
		}
		if reg, ok := registerNames[upper]; ok {
			p.next()
			return ParsedValue{Kind: VReg, Reg: reg}, nil
		}
	}
	if t.kind == tokPunct && t.text == "[" {
		p.next()
		if p.cur().kind == tokIdent {
			if reg, ok := registerNames[strings.ToUpper(p.cur().text)]; ok {
				save := p.pos
				p.next()
				if p.cur().kind == tokPunct && p.cur().text == "]" {
					p.next()
					return ParsedValue{Kind: VAtReg, Reg: reg}, nil
				}
				if p.cur().kind == tokPunct && p.cur().text == "+" {
					p.next()
					e, err := p.parseExpression()
					if err != nil {
						return ParsedValue{}, err
					}
					if !(p.cur().kind == tokPunct && p.cur().text == "]") {
						return ParsedValue{}, p.errorf("expected ']'")
					}
					p.next()
					return ParsedValue{Kind: VAtRegPlus, Reg: reg, Expr: e}, nil
				}
				p.pos = save
			}
		}
		e, err := p.parseExpression()
		if err != nil {
			return ParsedValue{}, err
		}
		if !(p.cur().kind == tokPunct && p.cur().text == "]") {
			return ParsedValue{}, p.errorf("expected ']'")
		}
		p.next()
		return ParsedValue{Kind: VAtAddr, Expr: e}, nil
	}
	e, err := p.parseExpression()
	if err != nil {
		return ParsedValue{}, err
	}
	return ParsedValue{Kind: VLitteral, Expr: e}, nil
}

var binOpByPunct = map[string]BinOp{
	"+": OpAdd, "-": OpSub, "*": OpMul, "/": OpDiv, "%": OpMod,
	"<<": OpShl, ">>": OpShr,
	"<": OpLt, "<=": OpLe, ">": OpGt, ">=": OpGe, "==": OpEq, "!=": OpNe,
}

// precedence groups, lowest first; operators within a group are left
// associative, matching ordinary arithmetic expectations even though the
// original grammar itself was a flat right-recursive chain.
var precedence = [][]string{
	{"<", "<=", ">", ">=", "==", "!="},
	{"<<", ">>"},
	{"+", "-"},
	{"*", "/", "%"},
}

func (p *parser) parseExpression() (*Expression, error) {
	return p.parseBinary(0)
}

func (p *parser) parseBinary(level int) (*Expression, error) {
	if level >= len(precedence) {
		return p.parseUnary()
	}
	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		t := p.cur()
		if t.kind != tokPunct || !inSet(precedence[level], t.text) {
			return left, nil
		}
		p.next()
		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		left = &Expression{Kind: ExprBinary, Op: binOpByPunct[t.text], Left: left, Right: right}
	}
}

func inSet(set []string, s string) bool {
	for _, x := range set {
		if x == s {
			return true
		}
	}
	return false
}

func (p *parser) parseUnary() (*Expression, error) {
	t := p.cur()
	if t.kind == tokPunct && t.text == "!" {
		p.next()
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Expression{Kind: ExprNot, Left: e}, nil
	}
	if t.kind == tokPunct && t.text == "-" {
		p.next()
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Expression{Kind: ExprNeg, Left: e}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (*Expression, error) {
	t := p.cur()
	if t.kind == tokPunct && t.text == "(" {
		p.next()
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if !(p.cur().kind == tokPunct && p.cur().text == ")") {
			return nil, p.errorf("expected ')'")
		}
		p.next()
		return e, nil
	}
	if t.kind == tokNumber {
		p.next()
		n, err := parseNumber(t.text)
		if err != nil {
			return nil, p.errorf("%s", err.Error())
		}
		return &Expression{Kind: ExprNum, Num: n}, nil
	}
	if t.kind == tokPunct && t.text == "." {
		p.next()
		name := p.next()
		if name.kind != tokIdent {
			return nil, p.errorf("expected local label name")
		}
		return &Expression{Kind: ExprLocalLabel, Label: name.text}, nil
	}
	if t.kind == tokIdent {
		p.next()
		return &Expression{Kind: ExprLabel, Label: t.text}, nil
	}
	return nil, p.errorf("expected expression, got %q", t.text)
}

func parseNumber(text string) (uint16, error) {
	switch {
	case strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X"):
		v, err := strconv.ParseUint(text[2:], 16, 32)
		return uint16(v), err
	case strings.HasPrefix(text, "0o"):
		v, err := strconv.ParseUint(text[2:], 8, 32)
		return uint16(v), err
	case strings.HasPrefix(text, "0b"):
		v, err := strconv.ParseUint(text[2:], 2, 32)
		return uint16(v), err
	default:
		v, err := strconv.ParseUint(text, 10, 32)
		return uint16(v), err
	}
}

func (p *parser) parseDirective() (ParsedItem, error) {
	p.next() // '.'
	name := p.next()
	if name.kind != tokIdent {
		return ParsedItem{}, p.errorf("expected directive name")
	}
	kind, ok := directiveNames[strings.ToLower(name.text)]
	if !ok {
		return ParsedItem{}, p.errorf("unknown directive %q", name.text)
	}

	d := Directive{Kind: kind}
	switch kind {
	case DirDat:
		for {
			if p.cur().kind == tokString {
				d.Items = append(d.Items, DatItem{IsStr: true, Str: p.next().text})
			} else {
				e, err := p.parseExpression()
				if err != nil {
					return ParsedItem{}, err
				}
				d.Items = append(d.Items, DatItem{Expr: e})
			}
			if p.cur().kind == tokPunct && p.cur().text == "," {
				p.next()
				continue
			}
			break
		}
	case DirOrg, DirSkip:
		n, err := p.parseExpression()
		if err != nil {
			return ParsedItem{}, err
		}
		d.N = n
		if p.cur().kind == tokPunct && p.cur().text == "," {
			p.next()
			v, err := p.parseExpression()
			if err != nil {
				return ParsedItem{}, err
			}
			d.V = v
		} else {
			d.V = &Expression{Kind: ExprNum, Num: 0}
		}
	case DirZero:
		n, err := p.parseExpression()
		if err != nil {
			return ParsedItem{}, err
		}
		d.N = n
		d.V = &Expression{Kind: ExprNum, Num: 0}
	case DirLcomm:
		sym := p.next()
		if sym.kind != tokIdent {
			return ParsedItem{}, p.errorf("expected symbol name after .lcomm")
		}
		d.Sym = sym.text
		if !(p.cur().kind == tokPunct && p.cur().text == ",") {
			return ParsedItem{}, p.errorf("expected ',' after .lcomm symbol")
		}
		p.next()
		n, err := p.parseExpression()
		if err != nil {
			return ParsedItem{}, err
		}
		d.N = n
	case DirGlobl, DirText, DirBss:
		// no-op hints; some assemblers take a symbol argument for globl.
		if p.cur().kind == tokIdent {
			p.next()
		}
	}
	return ParsedItem{Kind: ItemDirective, Directive: d}, nil
}
