// Package linker resolves a parser.ParsedItem stream into a flat DCPU-16
// memory image plus its global symbol table, by iterating layout to a
// fixed point: instruction sizes depend on operand values (the inline-
// literal encoding), which depend on label addresses, which depend on
// instruction sizes.
package linker

import (
	"encoding/json"
	"fmt"

	"dcpu16/asm/ast"
	"dcpu16/asm/parser"
)

// Output is a linked program: the flat word image and the resolved global
// symbol table (local labels are scoping detail, not part of the public
// interface -- see SPEC_FULL.md §6).
type Output struct {
	Words   []uint16
	Globals map[string]uint16
}

// SymbolsJSON renders the global symbol table as JSON, for tooling that
// wants to inspect a linked image's labels (a debugger, a test harness).
func (o *Output) SymbolsJSON() ([]byte, error) {
	return json.MarshalIndent(o.Globals, "", "  ")
}

// DuplicatedLabelError is returned when a global label is declared twice.
type DuplicatedLabelError struct{ Label string }

func (e DuplicatedLabelError) Error() string { return fmt.Sprintf("duplicated label %q", e.Label) }

// DuplicatedLocalLabelError is returned when a local label is declared
// twice under the same enclosing global label.
type DuplicatedLocalLabelError struct{ Label string }

func (e DuplicatedLocalLabelError) Error() string {
	return fmt.Sprintf("duplicated local label %q", e.Label)
}

// LocalBeforeGlobalError is returned when a local label appears before any
// enclosing global label has been declared.
type LocalBeforeGlobalError struct{ Label string }

func (e LocalBeforeGlobalError) Error() string {
	return fmt.Sprintf("local label %q declared before any global label", e.Label)
}

type symbolTable struct {
	globals         map[string]uint16
	locals          map[string]uint16 // keyed "globalName\x00localName"
	lastPassChanged bool
}

func newSymbolTable() *symbolTable {
	return &symbolTable{globals: map[string]uint16{}, locals: map[string]uint16{}}
}

type scopedSymbols struct {
	table *symbolTable
	scope string
}

func (s scopedSymbols) Global(name string) (uint16, bool) {
	v, ok := s.table.globals[name]
	return v, ok
}

func (s scopedSymbols) Local(name string) (uint16, bool) {
	v, ok := s.table.locals[s.scope+"\x00"+name]
	return v, ok
}

// Link runs the fixed-point layout algorithm over items and returns the
// linked image.
func Link(items []parser.ParsedItem) (*Output, error) {
	syms := newSymbolTable()

	if err := firstPass(items, syms); err != nil {
		return nil, err
	}

	var words []uint16
	for {
		var err error
		words, err = layoutPass(items, syms)
		if err != nil {
			return nil, err
		}
		if !syms.lastPassChanged {
			break
		}
	}

	return &Output{Words: words, Globals: syms.globals}, nil
}

func firstPass(items []parser.ParsedItem, syms *symbolTable) error {
	lastGlobal := ""
	for _, item := range items {
		switch item.Kind {
		case parser.ItemLabelDecl:
			if _, ok := syms.globals[item.Label]; ok {
				return DuplicatedLabelError{Label: item.Label}
			}
			syms.globals[item.Label] = 0
			lastGlobal = item.Label
		case parser.ItemLocalLabelDecl:
			if lastGlobal == "" {
				return LocalBeforeGlobalError{Label: item.Label}
			}
			key := lastGlobal + "\x00" + item.Label
			if _, ok := syms.locals[key]; ok {
				return DuplicatedLocalLabelError{Label: item.Label}
			}
			syms.locals[key] = 0
		case parser.ItemDirective:
			if item.Directive.Kind == parser.DirLcomm {
				if _, ok := syms.globals[item.Directive.Sym]; ok {
					return DuplicatedLabelError{Label: item.Directive.Sym}
				}
				syms.globals[item.Directive.Sym] = 0
			}
		}
	}
	return nil
}

func layoutPass(items []parser.ParsedItem, syms *symbolTable) ([]uint16, error) {
	var words []uint16
	var index uint16
	lastGlobal := ""
	syms.lastPassChanged = false

	for _, item := range items {
		switch item.Kind {
		case parser.ItemComment:
			// no-op

		case parser.ItemLabelDecl:
			if syms.globals[item.Label] != index {
				syms.globals[item.Label] = index
				syms.lastPassChanged = true
			}
			lastGlobal = item.Label

		case parser.ItemLocalLabelDecl:
			key := lastGlobal + "\x00" + item.Label
			if syms.locals[key] != index {
				syms.locals[key] = index
				syms.lastPassChanged = true
			}

		case parser.ItemDirective:
			scope := scopedSymbols{table: syms, scope: lastGlobal}
			n, err := appendDirective(item.Directive, &words, index, scope)
			if err != nil {
				return nil, err
			}
			if item.Directive.Kind == parser.DirLcomm {
				if syms.globals[item.Directive.Sym] != index {
					syms.globals[item.Directive.Sym] = index
					syms.lastPassChanged = true
				}
			}
			index += n

		case parser.ItemInstruction:
			scope := scopedSymbols{table: syms, scope: lastGlobal}
			n, err := appendInstruction(item.Instruction, &words, scope)
			if err != nil {
				return nil, err
			}
			index += n
		}
	}
	return words, nil
}

func appendInstruction(pi parser.ParsedInstruction, words *[]uint16, syms parser.Symbols) (uint16, error) {
	b, err := resolveValue(pi.B, syms)
	if err != nil {
		return 0, err
	}
	a, err := resolveValue(pi.A, syms)
	if err != nil {
		return 0, err
	}
	ins := ast.Instruction{IsSpecial: pi.IsSpecial, Op: pi.Op, Special: pi.Special, B: b, A: a}
	var buf [3]uint16
	n := ast.Encode(ins, buf[:])
	*words = append(*words, buf[:n]...)
	return uint16(n), nil
}

func resolveValue(pv parser.ParsedValue, syms parser.Symbols) (ast.Value, error) {
	eval := func() (uint16, error) {
		if pv.Expr == nil {
			return 0, nil
		}
		return pv.Expr.Eval(syms)
	}
	switch pv.Kind {
	case parser.VReg:
		return ast.Value{Kind: ast.VReg, Reg: pv.Reg}, nil
	case parser.VAtReg:
		return ast.Value{Kind: ast.VAtReg, Reg: pv.Reg}, nil
	case parser.VAtRegPlus:
		imm, err := eval()
		return ast.Value{Kind: ast.VAtRegPlus, Reg: pv.Reg, Imm: imm}, err
	case parser.VPush:
		return ast.Value{Kind: ast.VPush}, nil
	case parser.VPeek:
		return ast.Value{Kind: ast.VPeek}, nil
	case parser.VPick:
		imm, err := eval()
		return ast.Value{Kind: ast.VPick, Imm: imm}, err
	case parser.VSP:
		return ast.Value{Kind: ast.VSP}, nil
	case parser.VPC:
		return ast.Value{Kind: ast.VPC}, nil
	case parser.VEX:
		return ast.Value{Kind: ast.VEX}, nil
	case parser.VAtAddr:
		imm, err := eval()
		return ast.Value{Kind: ast.VAtAddr, Imm: imm}, err
	case parser.VLitteral:
		imm, err := eval()
		return ast.Value{Kind: ast.VLitteral, Imm: imm}, err
	default:
		return ast.Value{}, fmt.Errorf("linker: unreachable operand kind %d", pv.Kind)
	}
}

func appendDirective(d parser.Directive, words *[]uint16, index uint16, syms parser.Symbols) (uint16, error) {
	switch d.Kind {
	case parser.DirDat:
		var n uint16
		for _, item := range d.Items {
			if item.IsStr {
				for _, r := range item.Str {
					*words = append(*words, uint16(byte(r)))
					n++
				}
				*words = append(*words, 0)
				n++
				continue
			}
			v, err := item.Expr.Eval(syms)
			if err != nil {
				return 0, err
			}
			*words = append(*words, v)
			n++
		}
		return n, nil

	case parser.DirOrg:
		target, err := d.N.Eval(syms)
		if err != nil {
			return 0, err
		}
		fill, err := d.V.Eval(syms)
		if err != nil {
			return 0, err
		}
		var n uint16
		for index+n < target {
			*words = append(*words, fill)
			n++
		}
		return n, nil

	case parser.DirSkip:
		count, err := d.N.Eval(syms)
		if err != nil {
			return 0, err
		}
		fill, err := d.V.Eval(syms)
		if err != nil {
			return 0, err
		}
		for i := uint16(0); i < count; i++ {
			*words = append(*words, fill)
		}
		return count, nil

	case parser.DirZero:
		count, err := d.N.Eval(syms)
		if err != nil {
			return 0, err
		}
		for i := uint16(0); i < count; i++ {
			*words = append(*words, 0)
		}
		return count, nil

	case parser.DirLcomm:
		count, err := d.N.Eval(syms)
		if err != nil {
			return 0, err
		}
		for i := uint16(0); i < count; i++ {
			*words = append(*words, 0)
		}
		return count, nil

	case parser.DirGlobl, parser.DirText, parser.DirBss:
		return 0, nil

	default:
		return 0, fmt.Errorf("linker: unreachable directive kind %d", d.Kind)
	}
}
