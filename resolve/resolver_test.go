package resolve

import (
	"testing"

	"minicc/ast"
	"minicc/common"
	"minicc/report"
	"minicc/syntax"

	"github.com/nalgeon/be"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()

	toks, err := syntax.Lex(src)
	be.Err(t, err, nil)

	prog, err := syntax.Parse(toks)
	be.Err(t, err, nil)

	return prog
}

func TestResolveUndeclared(t *testing.T) {
	err := Resolve(parse(t, "int f() { return x; }"))

	cerr, ok := err.(*report.CompileError)
	be.True(t, ok)
	be.Equal(t, cerr.Kind, report.KindSemantic)
	be.Err(t, err, "undeclared identifier `x`")

	// The span covers `x` exactly.
	be.Equal(t, *cerr.Span, report.TextSpan{StartLine: 0, StartCol: 17, EndLine: 0, EndCol: 18, Offset: 17})
}

func TestResolveDuplicates(t *testing.T) {
	tests := []struct {
		src string
		msg string
	}{
		{"int main() { int x; int x; return 0; }", "duplicate declaration of `x`"},
		{"int x; int x;", "duplicate declaration of `x`"},
		{"int f(int a) { int a; return a; }", "duplicate declaration of `a`"},
		{"int f(int a, int a) { return a; }", "duplicate declaration of `a`"},
		{"int f() { return 0; } int f() { return 1; }", "function is already defined"},
		{"int f(int); long f(int);", "conflicting types for `f`"},
		{"int f; int f() { return 0; }", "duplicate declaration of `f`"},
	}

	for _, test := range tests {
		err := Resolve(parse(t, test.src))
		be.Err(t, err, test.msg)

		kind, _ := report.KindOf(err)
		be.Equal(t, kind, report.KindSemantic)
	}
}

func TestResolveLoopControl(t *testing.T) {
	err := Resolve(parse(t, "void f() { break; }"))
	be.Err(t, err, "`break` statement not within a loop")

	err = Resolve(parse(t, "void f() { if (1) continue; }"))
	be.Err(t, err, "`continue` statement not within a loop")

	err = Resolve(parse(t, "void f() { while (1) { if (1) break; else continue; } for (;;) break; do continue; while (0); }"))
	be.Err(t, err, nil)
}

func TestResolveShadowing(t *testing.T) {
	prog := parse(t, `
int x;
int f(int x) {
	{
		int x;
		x = 1;
	}
	for (int x = 0; x < 1; x++) ;
	return x;
}`)

	be.Err(t, Resolve(prog), nil)

	fd := prog.Decls[1].(*ast.FuncDecl)
	param := fd.Params[0].Sym
	be.Equal(t, param.Storage, common.StorageParam)

	inner := fd.Body.Stmts[0].(*ast.Block)
	innerDecl := inner.Stmts[0].(*ast.VarDecl)
	innerUse := inner.Stmts[1].(*ast.ExprStmt).Expr.(*ast.Assign).Lhs.(*ast.Identifier)
	be.True(t, innerUse.Sym == innerDecl.Sym)
	be.True(t, innerDecl.Sym != param)

	loop := fd.Body.Stmts[1].(*ast.ForLoop)
	loopDecl := loop.Init[0].(*ast.VarDecl)
	be.True(t, loop.Cond.(*ast.BinaryOp).Lhs.(*ast.Identifier).Sym == loopDecl.Sym)

	ret := fd.Body.Stmts[2].(*ast.ReturnStmt).Value.(*ast.Identifier)
	be.True(t, ret.Sym == param)

	// Shadowed declarations get distinct labels.
	labels := map[string]bool{param.Label: true, innerDecl.Sym.Label: true, loopDecl.Sym.Label: true}
	be.Equal(t, len(labels), 3)

	global := prog.Decls[0].(*ast.VarDecl).Sym
	be.Equal(t, global.Label, "x")
	be.Equal(t, global.Storage, common.StorageGlobal)
}

func TestResolvePrototypeThenDefinition(t *testing.T) {
	prog := parse(t, "int f(int); int g() { return f(1); } int f(int n) { return n; }")
	be.Err(t, Resolve(prog), nil)

	proto := prog.Decls[0].(*ast.FuncDecl)
	def := prog.Decls[2].(*ast.FuncDecl)
	be.True(t, proto.Sym == def.Sym)
	be.True(t, def.Sym.Defined)

	call := prog.Decls[1].(*ast.FuncDecl).Body.Stmts[0].(*ast.ReturnStmt).Value.(*ast.Call)
	be.True(t, call.Func.(*ast.Identifier).Sym == def.Sym)
}

func TestResolveRecursion(t *testing.T) {
	be.Err(t, Resolve(parse(t, "int fact(int n) { if (n < 2) return 1; return n * fact(n - 1); }")), nil)
}
