package walk

import (
	"minicc/ast"
	"minicc/report"
)

// Walker is responsible for type checking a resolved program.  It annotates
// every expression with its type and makes every implicit conversion explicit
// by wrapping the converted expression in an implicit cast node.
type Walker struct {
	// The function whose body is being walked.  This is nil when walking
	// global declarations.
	enclosingFunc *ast.FuncDecl

	// The warnings produced while walking.
	warnings []Warning
}

// Warning is a non-fatal diagnostic produced by the type checker.
type Warning struct {
	Span    *report.TextSpan
	Message string
}

// Check type checks a resolved program.  Traversal is outer-to-inner and
// left-to-right so the first error returned for a given input is always the
// same.
func Check(prog *ast.Program) (warnings []Warning, err error) {
	w := &Walker{}

	defer func() {
		warnings = w.warnings
	}()
	defer report.CatchErrors(&err)

	for _, decl := range prog.Decls {
		switch v := decl.(type) {
		case *ast.FuncDecl:
			w.walkFuncDecl(v)
		case *ast.VarDecl:
			w.walkGlobalVar(v)
		default:
			report.ReportICE("unexpected top level declaration %T", decl)
		}
	}

	return
}

// -----------------------------------------------------------------------------

// error reports an error on the given span that aborts type checking.
func (w *Walker) error(span *report.TextSpan, msg string, args ...interface{}) {
	panic(report.Raise(report.KindType, span, msg, args...))
}

// warn records a warning on the given span.
func (w *Walker) warn(span *report.TextSpan, msg string) {
	w.warnings = append(w.warnings, Warning{Span: span, Message: msg})
}
