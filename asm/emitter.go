package asm

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"minicc/codegen"
	"minicc/ir"
	"minicc/report"
	"os"
	"strings"
)

// Options controls the generated assembly text.
type Options struct {
	// Whether to emit line information for debuggers.
	Debug bool

	// The source file name recorded in the line information.
	SourceName string
}

// Emitter serializes a machine program as GNU assembler input in Intel syntax.
type Emitter struct {
	w    *bufio.Writer
	opts Options

	// The last source line recorded with a `.loc` directive.
	line int
}

// Emit writes the assembly text of prog to w.  A failed write is reported as
// an IO error.
func Emit(w io.Writer, prog *codegen.Program, opts Options) (err error) {
	defer report.CatchErrors(&err)

	e := &Emitter{w: bufio.NewWriter(w), opts: opts}
	e.emitProgram(prog)

	// Write errors are sticky so checking the flush covers every write.
	if ferr := e.w.Flush(); ferr != nil {
		return report.IOError(ferr, "failed to write assembly")
	}

	return nil
}

// EmitString returns the assembly text of prog.
func EmitString(prog *codegen.Program, opts Options) (string, error) {
	sb := &strings.Builder{}
	if err := Emit(sb, prog, opts); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// WriteFile writes the assembly text of prog to the file at path.
func WriteFile(path string, prog *codegen.Program, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return report.IOError(err, "failed to create `%s`", path)
	}

	if err := Emit(f, prog, opts); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return report.IOError(err, "failed to close `%s`", path)
	}

	return nil
}

// -----------------------------------------------------------------------------

// directive writes an indented assembler directive.
func (e *Emitter) directive(format string, args ...interface{}) {
	e.w.WriteString("  ")
	fmt.Fprintf(e.w, format, args...)
	e.w.WriteByte('\n')
}

// label writes a label definition.
func (e *Emitter) label(name string) {
	e.w.WriteString(name)
	e.w.WriteString(":\n")
}

func (e *Emitter) emitProgram(prog *codegen.Program) {
	e.directive(".intel_syntax noprefix")

	if e.opts.Debug {
		e.directive(".file 1 %s", quote(e.opts.SourceName))
	}

	e.emitGlobals(prog.Globals)
	e.emitStrings(prog.Strings)
	e.emitFloats(prog.Floats)

	if len(prog.Funcs) > 0 {
		e.directive(".text")
	}

	for _, fn := range prog.Funcs {
		e.emitFunc(fn)
	}

	// Mark the stack non-executable.
	e.directive(".section .note.GNU-stack,\"\",@progbits")
}

// emitGlobals writes initialized globals to `.data` and zero initialized ones to
// `.bss`.
func (e *Emitter) emitGlobals(globals []*ir.GlobalVar) {
	var data, bss []*ir.GlobalVar
	for _, global := range globals {
		if global.Init == nil {
			bss = append(bss, global)
		} else {
			data = append(data, global)
		}
	}

	if len(data) > 0 {
		e.directive(".data")

		for _, global := range data {
			e.globalHeader(global)
			e.globalValue(global)
		}
	}

	if len(bss) > 0 {
		e.directive(".bss")

		for _, global := range bss {
			e.globalHeader(global)
			e.directive(".zero %d", global.Size)
		}
	}
}

func (e *Emitter) globalHeader(global *ir.GlobalVar) {
	e.directive(".globl %s", global.Name)
	e.directive(".align %d", global.Align)
	e.directive(".type %s, @object", global.Name)
	e.directive(".size %s, %d", global.Name, global.Size)
	e.label(global.Name)
}

func (e *Emitter) globalValue(global *ir.GlobalVar) {
	switch v := global.Init.(type) {
	case *ir.IntConst:
		switch global.Type {
		case ir.I8:
			e.directive(".byte %d", v.Val)
		case ir.I32:
			e.directive(".long %d", v.Val)
		default:
			e.directive(".quad %d", v.Val)
		}
	case *ir.FloatConst:
		e.directive(".quad %d  # %s", math.Float64bits(v.Val), v.Repr())
	case *ir.Global:
		e.directive(".quad %s", v.Name)
	default:
		panic(report.Raise(report.KindAsmEmit, nil, "global `%s` has an initializer with no data representation", global.Name))
	}
}

func (e *Emitter) emitStrings(strs []*ir.StringLit) {
	if len(strs) == 0 {
		return
	}

	e.directive(".section .rodata")
	for _, str := range strs {
		e.label(str.Label)
		e.directive(".string %s", quote(str.Value))
	}
}

func (e *Emitter) emitFloats(floats []*codegen.FloatLit) {
	if len(floats) == 0 {
		return
	}

	e.directive(".section .rodata")
	e.directive(".align 8")
	for _, fl := range floats {
		e.label(fl.Label)
		e.directive(".quad %d  # %s", fl.Bits, ir.NewFloatConst(math.Float64frombits(fl.Bits)).Repr())
	}
}

func (e *Emitter) emitFunc(fn *codegen.Func) {
	e.directive(".globl %s", fn.Name)
	e.directive(".type %s, @function", fn.Name)
	e.label(fn.Name)

	for _, part := range [][]*codegen.Instr{fn.Prologue, fn.Body, fn.Epilogue} {
		for _, instr := range part {
			e.emitInstr(instr)
		}
	}

	e.directive(".size %s, .-%s", fn.Name, fn.Name)
}

func (e *Emitter) emitInstr(instr *codegen.Instr) {
	if instr.Op == "" {
		e.label(instr.Label)
		return
	}

	if e.opts.Debug && instr.Line > 0 && instr.Line != e.line {
		e.directive(".loc 1 %d", instr.Line)
		e.line = instr.Line
	}

	e.w.WriteString("  ")
	e.w.WriteString(instr.String())
	e.w.WriteByte('\n')
}

// -----------------------------------------------------------------------------

// quote renders s as an assembler string literal.  Bytes outside of printable
// ASCII are written as octal escapes.
func quote(s string) string {
	sb := strings.Builder{}
	sb.WriteByte('"')

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case c == '"' || c == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c == '\n':
			sb.WriteString("\\n")
		case c == '\t':
			sb.WriteString("\\t")
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&sb, "\\%03o", c)
		default:
			sb.WriteByte(c)
		}
	}

	sb.WriteByte('"')
	return sb.String()
}
