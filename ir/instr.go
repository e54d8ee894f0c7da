package ir

import (
	"strconv"
	"strings"
)

// Instruction represents a single operation within the IR.
type Instruction struct {
	// OpCode must be one of the enumerated instruction op codes.
	OpCode int

	// Dest is the temporary the instruction defines.  This is nil for
	// instructions that yield no value.
	Dest *Temp

	// TypeSpec is the type the instruction operates on.  For instructions
	// that define a value, this is the type of the value except for
	// comparisons which always yield i32 but compare operands of TypeSpec.  For
	// `store`, `arg` and `ret`, it is the type of the value stored, passed or
	// returned.
	TypeSpec Type

	// Operands are the list of operands that this instruction is applied to.
	Operands []Value

	// Label is the target block of a jump or call, or the true branch of a
	// conditional branch.  For `call`, it is the name of the callee.
	Label string

	// ElseLabel is the false branch of a conditional branch.
	ElseLabel string

	// Index is the argument or parameter index of `arg` and `param`.  For
	// `call`, it is the number of arguments passed.
	Index int

	// Line is the (one-based) source line the instruction was lowered from.
	Line int
}

// Enumeration of instruction op codes.
const (
	// Data Movement
	OpCopy = iota
	OpLoad
	OpStore

	// Arithmetic and Bitwise
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpRem
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr

	// Comparison
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	// Unary
	OpNeg
	OpNot

	// Conversions
	OpSext
	OpZext
	OpTrunc
	OpItof
	OpFtoi

	// Function Calling
	OpParam
	OpArg
	OpCall
	OpResult

	// Control Flow
	OpJmp
	OpBr
	OpRet
)

// Table of Op Code names
var opCodeNames = []string{
	"copy",
	"load",
	"store",

	"add",
	"sub",
	"mul",
	"div",
	"rem",
	"and",
	"or",
	"xor",
	"shl",
	"shr",

	"eq",
	"ne",
	"lt",
	"le",
	"gt",
	"ge",

	"neg",
	"not",

	"sext",
	"zext",
	"trunc",
	"itof",
	"ftoi",

	"param",
	"arg",
	"call",
	"result",

	"jmp",
	"br",
	"ret",
}

// OpName returns the name of an op code.
func OpName(opcode int) string {
	return opCodeNames[opcode]
}

// IsBinary returns whether the op code is a binary arithmetic, bitwise or
// comparison operation.
func IsBinary(opcode int) bool {
	return OpAdd <= opcode && opcode <= OpGe
}

// IsComparison returns whether the op code is a comparison.
func IsComparison(opcode int) bool {
	return OpEq <= opcode && opcode <= OpGe
}

// IsConversion returns whether the op code is a conversion.
func IsConversion(opcode int) bool {
	return OpSext <= opcode && opcode <= OpFtoi
}

// IsTerminator returns whether the op code ends a block.
func IsTerminator(opcode int) bool {
	return opcode == OpJmp || opcode == OpBr || opcode == OpRet
}

// Uses returns the temporaries the instruction reads in operand order.
func (instr *Instruction) Uses() []*Temp {
	var uses []*Temp
	for _, op := range instr.Operands {
		if temp, ok := op.(*Temp); ok {
			uses = append(uses, temp)
		}
	}

	return uses
}

func (instr *Instruction) Repr() string {
	sb := strings.Builder{}

	if instr.Dest != nil {
		sb.WriteString(instr.Dest.Repr())
		sb.WriteString(" = ")
	}

	sb.WriteString(opCodeNames[instr.OpCode])

	switch instr.OpCode {
	case OpJmp:
		sb.WriteRune(' ')
		sb.WriteString(instr.Label)
		return sb.String()
	case OpBr:
		sb.WriteRune(' ')
		sb.WriteString(instr.Operands[0].Repr())
		sb.WriteString(", ")
		sb.WriteString(instr.Label)
		sb.WriteString(", ")
		sb.WriteString(instr.ElseLabel)
		return sb.String()
	case OpCall:
		sb.WriteString(" @")
		sb.WriteString(instr.Label)
		return sb.String()
	case OpRet:
		if len(instr.Operands) == 0 {
			return sb.String()
		}
	}

	sb.WriteRune(' ')
	sb.WriteString(instr.TypeSpec.Repr())

	if instr.OpCode == OpParam || instr.OpCode == OpArg {
		sb.WriteRune(' ')
		sb.WriteString(strconv.Itoa(instr.Index))

		if instr.OpCode == OpArg {
			sb.WriteRune(',')
		}
	}

	for i, op := range instr.Operands {
		if i == 0 {
			sb.WriteRune(' ')
		} else {
			sb.WriteString(", ")
		}

		sb.WriteString(op.Repr())
	}

	return sb.String()
}
