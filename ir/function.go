package ir

import (
	"fmt"
	"strings"
)

// Program is the IR of a whole translation unit.
type Program struct {
	// The global variables in declaration order.
	Globals []*GlobalVar

	// The string literals in order of first use.
	Strings []*StringLit

	// The defined functions in source order.
	Funcs []*Function
}

// GlobalVar is a global variable definition.
type GlobalVar struct {
	Name string

	// The size and alignment of the variable in bytes.
	Size, Align int

	// The type of the variable's value.  This is only meaningful for scalar
	// variables.
	Type Type

	// The initial value of the variable.  This is nil for zero initialized
	// variables.  It may be an *IntConst, a *FloatConst or a *Global naming a
	// string literal.
	Init Value
}

// StringLit is a string literal stored in read-only data.
type StringLit struct {
	Label string
	Value string
}

// Function is the IR of a single function.
type Function struct {
	Name string

	// The types of the function's parameters.
	Params []Type

	// The return type of the function.  This is nil for void functions.
	ReturnType *Type

	// The stack frame slots of the function's variables.
	Slots []*SlotInfo

	// The blocks of the function.  The first block is the entry block.
	Blocks []*Block

	// The number of temporaries the function defines.  Temporary IDs are in
	// the range [0, NumTemps).
	NumTemps int
}

// SlotInfo describes a stack frame slot.
type SlotInfo struct {
	// The name of the slot: the label of the variable it holds.
	Name string

	Size, Align int
}

// Block is a labeled sequence of instructions ending in a terminator.
type Block struct {
	Label  string
	Instrs []*Instruction
}

// Terminated returns whether the block ends with a terminator.
func (b *Block) Terminated() bool {
	return len(b.Instrs) > 0 && IsTerminator(b.Instrs[len(b.Instrs)-1].OpCode)
}

// Successors returns the labels of the blocks control can flow to from b.
func (b *Block) Successors() []string {
	if len(b.Instrs) == 0 {
		return nil
	}

	last := b.Instrs[len(b.Instrs)-1]
	switch last.OpCode {
	case OpJmp:
		return []string{last.Label}
	case OpBr:
		return []string{last.Label, last.ElseLabel}
	}

	return nil
}

// BlockByLabel returns the block with the given label or nil.
func (fn *Function) BlockByLabel(label string) *Block {
	for _, block := range fn.Blocks {
		if block.Label == label {
			return block
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

func (p *Program) Repr() string {
	sb := strings.Builder{}

	for _, global := range p.Globals {
		sb.WriteString(global.Repr())
		sb.WriteRune('\n')
	}

	for _, str := range p.Strings {
		fmt.Fprintf(&sb, "string @%s = %q\n", str.Label, str.Value)
	}

	for _, fn := range p.Funcs {
		sb.WriteRune('\n')
		sb.WriteString(fn.Repr())
	}

	return sb.String()
}

func (g *GlobalVar) Repr() string {
	if g.Init == nil {
		return fmt.Sprintf("global @%s [%d]", g.Name, g.Size)
	}

	return fmt.Sprintf("global @%s [%d] = %s %s", g.Name, g.Size, g.Type.Repr(), g.Init.Repr())
}

func (fn *Function) Repr() string {
	sb := strings.Builder{}

	sb.WriteString("func @")
	sb.WriteString(fn.Name)
	sb.WriteRune('(')

	for i, param := range fn.Params {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(param.Repr())
	}

	sb.WriteRune(')')

	if fn.ReturnType != nil {
		sb.WriteRune(' ')
		sb.WriteString(fn.ReturnType.Repr())
	}

	sb.WriteString(" {\n")

	for _, slot := range fn.Slots {
		fmt.Fprintf(&sb, "  slot &%s [%d]\n", slot.Name, slot.Size)
	}

	for _, block := range fn.Blocks {
		sb.WriteString(block.Label)
		sb.WriteString(":\n")

		for _, instr := range block.Instrs {
			sb.WriteString("  ")
			sb.WriteString(instr.Repr())
			sb.WriteRune('\n')
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}
