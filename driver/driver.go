package driver

import (
	"minicc/ast"
	"minicc/config"
	"minicc/ir"
	"minicc/report"
	"minicc/resolve"
	"minicc/syntax"
	"minicc/walk"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sanity-io/litter"
)

// Unit is a single compilation unit: one input file and everything derived
// from it.  Every intermediate path is derived from the input's name stem.
type Unit struct {
	// The path to the input file as it was given.
	InputPath string

	// The input path without its extension.
	Stem string

	// The preprocessed source text.
	Src string

	// The derived representations of the unit.  Each is nil until the stage
	// producing it has run.
	Tokens   []*syntax.Token
	Program  *ast.Program
	Warnings []walk.Warning
	IR       *ir.Program

	// The temporary files of the unit.
	Artifacts *Artifacts
}

// NewUnit creates a new compilation unit for the given input file.
func NewUnit(inputPath string) *Unit {
	return &Unit{
		InputPath: inputPath,
		Stem:      strings.TrimSuffix(inputPath, filepath.Ext(inputPath)),
		Artifacts: NewArtifacts(),
	}
}

// Path returns the path of the unit's artifact with the given extension.
func (u *Unit) Path(ext string) string {
	return u.Stem + ext
}

// -----------------------------------------------------------------------------

// Driver runs the compilation pipeline.  Stages run strictly in order: the
// driver stops after its stop stage or at the first stage that fails,
// whichever comes first.
type Driver struct {
	// The last stage to run.
	Stop Stage

	// Whether the full stage links an executable instead of producing an
	// object file.
	Link bool

	// Whether to emit debug information.
	Debug bool

	Backend      Backend
	Preprocessor Preprocessor
	Assembler    Assembler
}

// New creates a driver using the collaborators named by cfg.
func New(cfg *config.Config, stop Stage, link bool) *Driver {
	d := &Driver{
		Stop:         stop,
		Link:         link,
		Debug:        cfg.Debug,
		Preprocessor: &ExecPreprocessor{Command: cfg.Preprocessor},
		Assembler:    &ExecAssembler{Command: cfg.Assembler},
	}

	if cfg.Backend == config.BackendLLVM {
		d.Backend = &LLVMBackend{Translator: &ExecTranslator{Command: cfg.Translator}}
	} else {
		d.Backend = &NativeBackend{Debug: cfg.Debug}
	}

	return d
}

// Compile compiles the file at inputPath.  It returns the path of the final
// output: the assembly file when stopping after code generation, the object
// file or executable after the full pipeline, and nothing for earlier stops.
// Errors are reported as they are returned.
func (d *Driver) Compile(inputPath string) (string, error) {
	unit := NewUnit(inputPath)

	outputPath, err := d.compileUnit(unit)
	if err != nil {
		report.ReportError(unit.InputPath, unit.Src, err)
	}

	return outputPath, err
}

func (d *Driver) compileUnit(unit *Unit) (string, error) {
	if unit.Stem == unit.InputPath {
		return "", report.Raise(report.KindIO, nil, "input file `%s` has no extension", unit.InputPath)
	}

	if err := d.preprocess(unit); err != nil {
		unit.Artifacts.ReleaseAll(true)
		return "", err
	}

	return d.Run(unit)
}

// preprocess runs the preprocessor on the unit's input file and loads the
// expanded source.
func (d *Driver) preprocess(unit *Unit) error {
	report.ReportBeginPhase("Preprocessing")

	expandedPath := unit.Path(".i")
	unit.Artifacts.Acquire(expandedPath)

	if err := d.Preprocessor.Preprocess(unit.InputPath, expandedPath); err != nil {
		return err
	}

	buff, err := os.ReadFile(expandedPath)
	if err != nil {
		return report.IOError(err, "unable to read preprocessed source `%s`", expandedPath)
	}

	unit.Artifacts.Consume(expandedPath)
	unit.Src = string(buff)

	report.ReportEndPhase()
	return nil
}

// Run runs the pipeline on a unit whose source has already been loaded.  The
// unit's temporaries are released before Run returns.
func (d *Driver) Run(unit *Unit) (outputPath string, err error) {
	defer func() {
		if rerr := unit.Artifacts.ReleaseAll(err != nil); rerr != nil && err == nil {
			err = rerr
		}
	}()

	if err = d.analyze(unit); err != nil || !d.Stop.Reached(StageIR) {
		return
	}

	asmPath, err := d.Backend.Lower(unit, d.Stop)
	if err != nil || !d.Stop.Reached(StageFull) {
		return asmPath, err
	}

	report.ReportBeginPhase("Assembling")

	outputPath = unit.Stem
	if !d.Link {
		outputPath += ".o"
	}

	unit.Artifacts.Consume(asmPath)
	if err = d.Assembler.Assemble(asmPath, outputPath, d.Link, d.Debug); err != nil {
		return "", err
	}

	report.ReportEndPhase()
	return
}

// dumpOptions are the options used to dump intermediate forms for debugging.
var dumpOptions = litter.Options{
	StripPackageNames: true,
	HidePrivateFields: true,
	HideZeroValues:    true,
	FieldExclusions:   regexp.MustCompile(`Span$`),
}

// analyze runs the stages up to and including validation.
func (d *Driver) analyze(unit *Unit) (err error) {
	report.ReportBeginPhase("Lexing")

	if unit.Tokens, err = syntax.Lex(unit.Src); err != nil {
		return
	}

	report.ReportEndPhase()
	report.ReportDebug("Tokens", dumpOptions.Sdump(unit.Tokens))

	if !d.Stop.Reached(StageParse) {
		return
	}

	report.ReportBeginPhase("Parsing")

	if unit.Program, err = syntax.Parse(unit.Tokens); err != nil {
		return
	}

	report.ReportEndPhase()
	report.ReportDebug("AST", dumpOptions.Sdump(unit.Program))

	if !d.Stop.Reached(StageValidate) {
		return
	}

	report.ReportBeginPhase("Validating")

	if err = resolve.Resolve(unit.Program); err != nil {
		return
	}

	if unit.Warnings, err = walk.Check(unit.Program); err != nil {
		return
	}

	report.ReportEndPhase()

	for _, warning := range unit.Warnings {
		report.ReportWarning(unit.InputPath, unit.Src, warning.Span, warning.Message)
	}

	report.ReportDebug("Typed AST", ast.Dump(unit.Program))
	return
}
