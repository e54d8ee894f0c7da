package driver

import (
	"bytes"
	"minicc/report"
	"os/exec"
)

// Preprocessor expands the macros and comments of a source file.
type Preprocessor interface {
	// Preprocess writes the expansion of the source file at srcPath to outPath.
	Preprocess(srcPath, outPath string) error
}

// Assembler assembles an assembly file into an object file or, when linking,
// an executable.
type Assembler interface {
	Assemble(asmPath, outPath string, link, debug bool) error
}

// Translator translates LLVM IR text to assembly text.
type Translator interface {
	Translate(llPath, asmPath string) error
}

// -----------------------------------------------------------------------------

// ExecPreprocessor runs an external preprocessor command: eg. `gcc -E -P`.
type ExecPreprocessor struct {
	Command []string
}

func (ep *ExecPreprocessor) Preprocess(srcPath, outPath string) error {
	return runTool("preprocessor", ep.Command, srcPath, "-o", outPath)
}

// ExecAssembler runs an external assembler/linker command: eg. `gcc`.
type ExecAssembler struct {
	Command []string
}

func (ea *ExecAssembler) Assemble(asmPath, outPath string, link, debug bool) error {
	var args []string
	if debug {
		args = append(args, "-g")
	}

	if !link {
		args = append(args, "-c")
	}

	args = append(args, asmPath, "-o", outPath)
	return runTool("assembler", ea.Command, args...)
}

// ExecTranslator runs an external LLVM IR translator command: eg. `llc`.
type ExecTranslator struct {
	Command []string
}

func (et *ExecTranslator) Translate(llPath, asmPath string) error {
	return runTool("translator", et.Command, llPath, "-o", asmPath)
}

// runTool runs an external tool synchronously.  The tool's standard error is
// captured so it can be shown to the user if the tool fails.
func runTool(role string, command []string, args ...string) error {
	if len(command) == 0 {
		report.ReportICE("no command configured for the %s", role)
	}

	fullCommand := append(append([]string{}, command...), args...)

	cmd := exec.Command(fullCommand[0], fullCommand[1:]...)
	stderrBuff := bytes.Buffer{}
	cmd.Stderr = &stderrBuff

	if err := cmd.Run(); err != nil {
		return &report.ToolError{
			Role:    role,
			Command: fullCommand,
			Err:     err,
			Stderr:  stderrBuff.String(),
		}
	}

	return nil
}
