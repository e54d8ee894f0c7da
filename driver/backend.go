package driver

import (
	"minicc/asm"
	"minicc/codegen"
	"minicc/generate"
	"minicc/ir"
	"minicc/lower"
	"minicc/report"
	"os"
)

// Backend lowers a type checked program to assembly text.  The driver selects
// one backend per invocation and depends on nothing else about it.
type Backend interface {
	// Name returns the configured name of the backend.
	Name() string

	// Lower runs the IR and code generation stages on the unit's program.  If
	// stop is at least StageCodegen, it writes the unit's assembly file and
	// returns its path.  Otherwise, it returns an empty path.
	Lower(unit *Unit, stop Stage) (asmPath string, err error)
}

// NativeBackend lowers programs through the compiler's own IR and x86-64 code
// generator.
type NativeBackend struct {
	// Whether to emit debug line information.
	Debug bool
}

func (nb *NativeBackend) Name() string {
	return "native"
}

func (nb *NativeBackend) Lower(unit *Unit, stop Stage) (string, error) {
	report.ReportBeginPhase("Generating IR")

	irp := lower.Lower(unit.Program)
	if err := ir.Verify(irp); err != nil {
		report.ReportICE("generated malformed IR: %s", err)
	}

	report.ReportEndPhase()
	report.ReportDebug("IR", irp.Repr())
	unit.IR = irp

	if !stop.Reached(StageCodegen) {
		return "", nil
	}

	report.ReportBeginPhase("Generating Code")

	mprog, err := codegen.Generate(irp)
	if err != nil {
		return "", err
	}

	opts := asm.Options{Debug: nb.Debug, SourceName: unit.InputPath}
	if report.LogLevel() >= report.LogLevelDebug {
		if text, err := asm.EmitString(mprog, opts); err == nil {
			report.ReportDebug("Assembly", text)
		}
	}

	asmPath := unit.Path(".s")
	unit.Artifacts.Acquire(asmPath)
	if err := asm.WriteFile(asmPath, mprog, opts); err != nil {
		return "", err
	}

	report.ReportEndPhase()
	return asmPath, nil
}

// -----------------------------------------------------------------------------

// LLVMBackend lowers programs to LLVM IR and translates that IR to assembly
// with an external translator.
type LLVMBackend struct {
	Translator Translator
}

func (lb *LLVMBackend) Name() string {
	return "llvm"
}

func (lb *LLVMBackend) Lower(unit *Unit, stop Stage) (string, error) {
	report.ReportBeginPhase("Generating LLVM IR")

	mod, err := generate.Generate(unit.Program, unit.InputPath)
	if err != nil {
		return "", err
	}

	llText := mod.String()
	report.ReportEndPhase()
	report.ReportDebug("LLVM IR", llText)

	if !stop.Reached(StageCodegen) {
		return "", nil
	}

	report.ReportBeginPhase("Translating LLVM IR")

	llPath := unit.Path(".ll")
	unit.Artifacts.Acquire(llPath)
	if err := os.WriteFile(llPath, []byte(llText), 0644); err != nil {
		return "", report.IOError(err, "failed to write LLVM IR to `%s`", llPath)
	}

	asmPath := unit.Path(".s")
	unit.Artifacts.Acquire(asmPath)

	unit.Artifacts.Consume(llPath)
	if err := lb.Translator.Translate(llPath, asmPath); err != nil {
		return "", err
	}

	report.ReportEndPhase()
	return asmPath, nil
}
