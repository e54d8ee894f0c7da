package codegen

import (
	"fmt"
	"math"
	"minicc/ir"
	"minicc/report"
)

// Generator converts an IR program into a machine program.  Every function is
// generated independently: the only state shared between functions is the
// pool of floating-point constants.
type Generator struct {
	prog *Program

	// The functions defined in the translation unit.  Calls to any other
	// function go through the PLT.
	defined map[string]struct{}

	// The labels of the floating-point constants by their bits.
	floatLabels map[uint64]string
}

// Generate performs instruction selection, register allocation and frame
// layout for every function of an IR program.
func Generate(irp *ir.Program) (prog *Program, err error) {
	defer report.CatchErrors(&err)

	g := &Generator{
		prog: &Program{
			Globals: irp.Globals,
			Strings: irp.Strings,
		},
		defined:     make(map[string]struct{}),
		floatLabels: make(map[uint64]string),
	}

	for _, fn := range irp.Funcs {
		g.defined[fn.Name] = struct{}{}
	}

	for _, fn := range irp.Funcs {
		g.prog.Funcs = append(g.prog.Funcs, g.generateFunc(fn))
	}

	prog = g.prog
	return
}

// generateFunc generates the machine code of a single function.
func (g *Generator) generateFunc(fn *ir.Function) *Func {
	alloc := Allocate(fn)
	if err := CheckAllocation(alloc); err != nil {
		report.ReportICE("invalid register allocation for `%s`: %s", fn.Name, err)
	}

	fr := layoutFrame(fn, alloc)

	fg := &funcGen{
		g:             g,
		fn:            fn,
		alloc:         alloc,
		frame:         fr,
		epilogueLabel: fmt.Sprintf(".L%s.epilogue", fn.Name),
	}
	fg.paramLocs, _, _ = classifyArgs(fn.Params)

	for i, block := range fn.Blocks {
		next := ""
		if i+1 < len(fn.Blocks) {
			next = fn.Blocks[i+1].Label
		}

		// Nothing ever jumps to the entry block.
		if i > 0 {
			fg.body = append(fg.body, &Instr{Label: fg.blockLabel(block.Label)})
		}

		for j, instr := range block.Instrs {
			fg.line = instr.Line
			fg.genInstr(block, j, next, i == len(fn.Blocks)-1 && j == len(block.Instrs)-1)
		}
	}

	firstLine, lastLine := 0, 0
	for _, instr := range fg.body {
		if instr.Line > 0 {
			if firstLine == 0 {
				firstLine = instr.Line
			}

			lastLine = instr.Line
		}
	}

	return &Func{
		Name:      fn.Name,
		Prologue:  fr.prologue(firstLine),
		Body:      fg.body,
		Epilogue:  fr.epilogue(fg.epilogueLabel, lastLine),
		FrameSize: fr.size,
		SavedRegs: fr.savedRegs,
		Alloc:     alloc,
	}
}

// floatLabel returns the label of the read-only constant holding val, adding it
// to the pool if necessary.
func (g *Generator) floatLabel(val float64) string {
	bits := math.Float64bits(val)
	if label, ok := g.floatLabels[bits]; ok {
		return label
	}

	label := fmt.Sprintf(".LF%d", len(g.prog.Floats))
	g.floatLabels[bits] = label
	g.prog.Floats = append(g.prog.Floats, &FloatLit{Label: label, Bits: bits})
	return label
}

// -----------------------------------------------------------------------------

// argLoc is the location of an argument or parameter under the calling
// convention: either a register or a stack word.
type argLoc struct {
	reg Reg

	// The index of the eight byte stack word holding the argument counted
	// from the lowest address.  Only meaningful if reg is NoReg.
	stackIndex int
}

var (
	intArgRegs   = []Reg{RDI, RSI, RDX, RCX, R8, R9}
	floatArgRegs = []Reg{XMM0, XMM1, XMM2, XMM3, XMM4, XMM5, XMM6, XMM7}
)

// classifyArgs assigns a location to each argument of the given types.  It
// also returns the number of stack words and the number of SSE registers used.
func classifyArgs(typs []ir.Type) (locs []argLoc, stackWords, nvec int) {
	nint := 0
	locs = make([]argLoc, len(typs))

	for i, typ := range typs {
		switch {
		case typ.IsFloat() && nvec < len(floatArgRegs):
			locs[i] = argLoc{reg: floatArgRegs[nvec]}
			nvec++
		case !typ.IsFloat() && nint < len(intArgRegs):
			locs[i] = argLoc{reg: intArgRegs[nint]}
			nint++
		default:
			locs[i] = argLoc{reg: NoReg, stackIndex: stackWords}
			stackWords++
		}
	}

	return
}
