package report

import (
	"errors"
	"fmt"
	"strings"
)

// TextSpan represents a range or "span" of source text.  Text spans are
// inclusive on the start and exclusive on the end column.  The line and column
// numbers are zero-indexed; Offset is the byte offset of the first character.
type TextSpan struct {
	// The line and column beginning the text span.
	StartLine, StartCol int

	// The line and column ending the text span.
	EndLine, EndCol int

	// The byte offset of the start of the span within the source text.
	Offset int
}

// NewSpanOver returns a new text span which spans over and between the two
// given text spans.
func NewSpanOver(start, end *TextSpan) *TextSpan {
	return &TextSpan{
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
		Offset:    start.Offset,
	}
}

func (ts *TextSpan) String() string {
	return fmt.Sprintf("%d:%d", ts.StartLine+1, ts.StartCol+1)
}

// -----------------------------------------------------------------------------

// ErrorKind identifies the compilation stage that produced an error.
type ErrorKind int

// Enumeration of error kinds.  The order matches the order of the pipeline.
const (
	KindLex ErrorKind = iota
	KindParse
	KindSemantic
	KindType
	KindCodegen
	KindAsmEmit
	KindIO
	KindExternalTool
)

var errorKindNames = [...]string{
	KindLex:          "lex",
	KindParse:        "parse",
	KindSemantic:     "semantic",
	KindType:         "type",
	KindCodegen:      "codegen",
	KindAsmEmit:      "asm emission",
	KindIO:           "io",
	KindExternalTool: "external tool",
}

func (k ErrorKind) String() string {
	if 0 <= int(k) && int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}

	return "unknown"
}

// ExitCode returns the process exit code used when compilation fails with an
// error of this kind.  Exit code 1 is reserved for usage errors.
//
//	lex 2, parse 3, semantic 4, type 5, codegen 6, asm emission 7, io 8,
//	external tool 9
func (k ErrorKind) ExitCode() int {
	return int(k) + 2
}

// -----------------------------------------------------------------------------

// CompileError is an error produced by one of the compiler's stages.
type CompileError struct {
	// The stage which raised the error.
	Kind ErrorKind

	// The span over which the error occurs.  This may be nil if the error has
	// no meaningful source position (eg. IO errors).
	Span *TextSpan

	// The error message.
	Message string
}

func (ce *CompileError) Error() string {
	if ce.Span == nil {
		return fmt.Sprintf("%s error: %s", ce.Kind, ce.Message)
	}

	return fmt.Sprintf("%s: %s error: %s", ce.Span, ce.Kind, ce.Message)
}

// Raise creates a new compile error of the given kind.
func Raise(kind ErrorKind, span *TextSpan, msg string, args ...interface{}) *CompileError {
	return &CompileError{Kind: kind, Span: span, Message: fmt.Sprintf(msg, args...)}
}

// IOError wraps a standard Go error produced while reading or writing a file.
func IOError(err error, msg string, args ...interface{}) *CompileError {
	return &CompileError{Kind: KindIO, Message: fmt.Sprintf(msg, args...) + ": " + err.Error()}
}

// -----------------------------------------------------------------------------

// ToolError is raised when an external tool (preprocessor, assembler, LLVM
// translator) could not be launched or exited unsuccessfully.  It indicates a
// problem with the environment rather than with the input program.
type ToolError struct {
	// The name of the tool's role: eg. "preprocessor".
	Role string

	// The command line that was run.
	Command []string

	// The underlying launch or exit error.
	Err error

	// Whatever the tool wrote to its standard error.  This is attached
	// verbatim for the user and never interpreted.
	Stderr string
}

func (te *ToolError) Error() string {
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "%s failed (`%s`): %s", te.Role, strings.Join(te.Command, " "), te.Err)

	if te.Stderr != "" {
		sb.WriteString("\n")
		sb.WriteString(strings.TrimRight(te.Stderr, "\n"))
	}

	return sb.String()
}

func (te *ToolError) Unwrap() error {
	return te.Err
}

// -----------------------------------------------------------------------------

// ICE is an internal compiler error: a broken invariant between stages.  ICEs
// are raised by panicking and are never returned as ordinary errors.
type ICE struct {
	Message string
}

func (ice *ICE) Error() string {
	return "internal compiler error: " + ice.Message
}

// ReportICE reports an internal compiler error by panicking.  These are errors
// that specifically result from a bug in the compiler: they are not intended
// to ever happen.
func ReportICE(message string, args ...interface{}) {
	panic(&ICE{Message: fmt.Sprintf(message, args...)})
}

// -----------------------------------------------------------------------------

// ExitCode returns the process exit code corresponding to err.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var cerr *CompileError
	if errors.As(err, &cerr) {
		return cerr.Kind.ExitCode()
	}

	var terr *ToolError
	if errors.As(err, &terr) {
		return KindExternalTool.ExitCode()
	}

	return 1
}

// KindOf returns the error kind of err and whether err carries one.
func KindOf(err error) (ErrorKind, bool) {
	var cerr *CompileError
	if errors.As(err, &cerr) {
		return cerr.Kind, true
	}

	var terr *ToolError
	if errors.As(err, &terr) {
		return KindExternalTool, true
	}

	return 0, false
}

// CatchErrors catches a compile error thrown by a `panic` during a stage of
// compilation and stores it in errp.  Any other panic keeps unwinding.
// NB: This function must ALWAYS be deferred.
func CatchErrors(errp *error) {
	if x := recover(); x != nil {
		if cerr, ok := x.(*CompileError); ok {
			*errp = cerr
			return
		}

		panic(x)
	}
}
