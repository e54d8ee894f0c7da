package codegen

import (
	"fmt"
	"minicc/ir"
	"strings"
)

// Reg is a physical x86-64 register.
type Reg int

// Enumeration of registers.  The general purpose registers come first in
// encoding order followed by the SSE registers.
const (
	RAX Reg = iota
	RCX
	RDX
	RBX
	RSP
	RBP
	RSI
	RDI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
	XMM0
	XMM1
	XMM2
	XMM3
	XMM4
	XMM5
	XMM6
	XMM7
	XMM8
	XMM9
	XMM10
	XMM11
	XMM12
	XMM13
	XMM14
	XMM15

	// NoReg marks an interval that was not given a register.
	NoReg Reg = -1
)

var gpRegNames = [...][3]string{
	{"rax", "eax", "al"},
	{"rcx", "ecx", "cl"},
	{"rdx", "edx", "dl"},
	{"rbx", "ebx", "bl"},
	{"rsp", "esp", "spl"},
	{"rbp", "ebp", "bpl"},
	{"rsi", "esi", "sil"},
	{"rdi", "edi", "dil"},
	{"r8", "r8d", "r8b"},
	{"r9", "r9d", "r9b"},
	{"r10", "r10d", "r10b"},
	{"r11", "r11d", "r11b"},
	{"r12", "r12d", "r12b"},
	{"r13", "r13d", "r13b"},
	{"r14", "r14d", "r14b"},
	{"r15", "r15d", "r15b"},
}

// IsFloat returns whether the register is an SSE register.
func (r Reg) IsFloat() bool {
	return r >= XMM0
}

// Name returns the name of the register when accessed with the given size.
// SSE registers have the same name at every size.
func (r Reg) Name(size int) string {
	if r.IsFloat() {
		return fmt.Sprintf("xmm%d", r-XMM0)
	}

	switch size {
	case 1:
		return gpRegNames[r][2]
	case 4:
		return gpRegNames[r][1]
	default:
		return gpRegNames[r][0]
	}
}

func (r Reg) String() string {
	if r == NoReg {
		return "none"
	}

	return r.Name(8)
}

// -----------------------------------------------------------------------------

// Operand is an operand of a machine instruction.  Its string form is its
// Intel syntax.
type Operand interface {
	String() string
}

// RegOp is a register operand.
type RegOp struct {
	Reg  Reg
	Size int
}

func (ro RegOp) String() string {
	return ro.Reg.Name(ro.Size)
}

// MemOp is a memory operand: either `[base + disp]` or `[rip + symbol]`.
type MemOp struct {
	Base Reg
	Disp int

	// The symbol of a rip-relative operand.  This is empty for based
	// operands.
	Symbol string

	// The size of the access in bytes.  This is zero if no size should be
	// specified as is the case for `lea`.
	Size int
}

var sizePrefixes = map[int]string{
	1:  "byte ptr ",
	4:  "dword ptr ",
	8:  "qword ptr ",
	16: "xmmword ptr ",
}

func (mo MemOp) String() string {
	sb := strings.Builder{}
	sb.WriteString(sizePrefixes[mo.Size])
	sb.WriteRune('[')

	if mo.Symbol != "" {
		sb.WriteString("rip + ")
		sb.WriteString(mo.Symbol)
	} else {
		sb.WriteString(mo.Base.Name(8))

		if mo.Disp > 0 {
			fmt.Fprintf(&sb, " + %d", mo.Disp)
		} else if mo.Disp < 0 {
			fmt.Fprintf(&sb, " - %d", -mo.Disp)
		}
	}

	sb.WriteRune(']')
	return sb.String()
}

// withSize returns the operand accessed with a different size.
func (mo MemOp) withSize(size int) MemOp {
	mo.Size = size
	return mo
}

// ImmOp is an immediate operand.
type ImmOp struct {
	Val int64
}

func (io ImmOp) String() string {
	return fmt.Sprintf("%d", io.Val)
}

// LabelOp is a code label operand of a jump or call.
type LabelOp struct {
	Name string
}

func (lo LabelOp) String() string {
	return lo.Name
}

// -----------------------------------------------------------------------------

// Instr is a single machine instruction or a label.
type Instr struct {
	// The instruction mnemonic.  This is empty if the instruction is a label.
	Op string

	Args []Operand

	// The label defined at this position.
	Label string

	// The (one-based) source line the instruction was generated from.  This is
	// zero for instructions with no source line.
	Line int
}

func (instr *Instr) String() string {
	if instr.Op == "" {
		return instr.Label + ":"
	}

	if len(instr.Args) == 0 {
		return instr.Op
	}

	args := make([]string, len(instr.Args))
	for i, arg := range instr.Args {
		args[i] = arg.String()
	}

	return instr.Op + " " + strings.Join(args, ", ")
}

// Func is the machine code of a single function.
type Func struct {
	Name string

	// The instructions that set up the stack frame.
	Prologue []*Instr

	// The body of the function.
	Body []*Instr

	// The instructions that tear down the stack frame and return.  The first
	// instruction is always the epilogue label.
	Epilogue []*Instr

	// The size of the stack frame excluding the saved frame pointer.
	FrameSize int

	// The callee-saved registers the function saves.
	SavedRegs []Reg

	// The register allocation the body was generated with.
	Alloc *Allocation
}

// FloatLit is a floating-point constant stored in read-only data.
type FloatLit struct {
	Label string

	// The IEEE 754 bits of the constant.
	Bits uint64
}

// Program is a machine program: the machine code of every function together
// with the data it references.
type Program struct {
	Funcs   []*Func
	Globals []*ir.GlobalVar
	Strings []*ir.StringLit
	Floats  []*FloatLit
}
