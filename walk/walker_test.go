package walk

import (
	"testing"

	"minicc/ast"
	"minicc/report"
	"minicc/resolve"
	"minicc/syntax"

	"github.com/nalgeon/be"
)

func check(t *testing.T, src string) (*ast.Program, []Warning, error) {
	t.Helper()

	toks, err := syntax.Lex(src)
	be.Err(t, err, nil)

	prog, err := syntax.Parse(toks)
	be.Err(t, err, nil)

	be.Err(t, resolve.Resolve(prog), nil)

	warnings, err := Check(prog)
	return prog, warnings, err
}

// funcStmt returns the nth statement of the last function in src.
func funcStmt(t *testing.T, src string, n int) ast.ASTNode {
	t.Helper()

	prog, _, err := check(t, src)
	be.Err(t, err, nil)

	fd := prog.Decls[len(prog.Decls)-1].(*ast.FuncDecl)
	return fd.Body.Stmts[n]
}

func TestCheckReturnSum(t *testing.T) {
	ret := funcStmt(t, "int main() { return 1 + 2; }", 0).(*ast.ReturnStmt)
	be.Equal(t, ast.Dump(ret.Value), `(binary "+" (integer 1 :int) (integer 2 :int) :int)`)
}

func TestCheckConversions(t *testing.T) {
	tests := []struct {
		src  string
		n    int
		want string
	}{
		{
			"long f(int a) { return a; }", 0,
			`(return (conv (ident "a" :int) :long))`,
		},
		{
			"double d; int main() { d = 1; return 0; }", 0,
			`(expr (assign (ident "d" :double) (conv (integer 1 :int) :double) :double))`,
		},
		{
			"int f(char c) { return -c; }", 0,
			`(return (unary "-" (conv (ident "c" :char) :int) :int))`,
		},
		{
			"int f() { int a[3]; return a[1]; }", 1,
			`(return (deref (binary "+" (conv (ident "a" :int[3]) :int*) (conv (integer 1 :int) :long) :int*) :int))`,
		},
		{
			"int f(int i, double d) { i += d; return i; }", 0,
			`(expr (assign "+=" (ident "i" :int) (ident "d" :double) :int))`,
		},
		{
			"void f(int *p) { p += 1; }", 0,
			`(expr (assign "+=" (ident "p" :int*) (conv (integer 1 :int) :long) :int*))`,
		},
		{
			"int f() { int *p = 0; return 0; }", 0,
			`(var "p" "int*" (conv (integer 0 :int) :int*))`,
		},
		{
			"int f(long a, int b) { return a < b; }", 0,
			`(return (binary "<" (ident "a" :long) (conv (ident "b" :int) :long) :int))`,
		},
		{
			"int f(int *p, int *q) { return p - q; }", 0,
			`(return (conv (binary "-" (ident "p" :int*) (ident "q" :int*) :long) :int))`,
		},
		{
			"int f(double d) { return (int)d; }", 0,
			`(return (cast (ident "d" :double) :int))`,
		},
		{
			"int g(long x); int f() { return g(1); }", 0,
			`(return (call (ident "g" :int(long)) (conv (integer 1 :int) :long) :int))`,
		},
		{
			"int printf(char *fmt, ...); int f(char *s, char c, double d) { return printf(s, c, d); }", 0,
			`(return (call (ident "printf" :int(char*, ...)) (ident "s" :char*) (conv (ident "c" :char) :int) (ident "d" :double) :int))`,
		},
	}

	for _, test := range tests {
		stmt := funcStmt(t, test.src, test.n)
		be.Equal(t, ast.Dump(stmt), test.want)
	}
}

func TestCheckErrors(t *testing.T) {
	tests := []struct {
		src string
		msg string
	}{
		{"int main() { int *p; double d; p = d; return 0; }", "cannot convert double to int* in assignment"},
		{"int main() { 1 = 2; return 0; }", "expression is not assignable"},
		{"int f(int a) { return a; } int main() { return f(1, 2); }", "function `f` expects 1 arguments but got 2"},
		{"void f() { return 1; }", "void function `f` cannot return a value"},
		{"int f() { return; }", "function `f` must return a value"},
		{"int f(int a) { if (a) return 1; }", "missing return in function `f`"},
		{"int f() { while (1) { break; } }", "missing return in function `f`"},
		{"int main() { void *p; return *p; }", "cannot dereference a void pointer"},
		{"int main() { double d; return d % 2; }", "invalid operands to binary `%`: double and int"},
		{"int g = 1; int x = g;", "not a constant expression"},
		{"int main() { int a[2]; int b[2]; a = b; return 0; }", "array is not assignable"},
		{"int main() { return main; }", "function cannot be used as a value"},
		{"int main() { int *p; long *q; return p == q; }", "invalid operands to binary `==`: int* and long*"},
		{"int main() { int x; x(); return 0; }", "called object of type int is not a function"},
		{"int main() { double d; return (int*)d == 0; }", "cannot cast double to int*"},
		{"int main() { int a[2] = 1; return 0; }", "array `a` cannot have an initializer"},
		{"int x = \"s\";", "cannot convert char* to int in initialization"},
		{"int printf(char *fmt, ...); int main() { return printf(); }", "function `printf` expects at least 1 arguments but got 0"},
		{"void g(); int printf(char *fmt, ...); int main() { return printf(\"%d\", g()); }", "argument to `printf` has type void"},
	}

	for _, test := range tests {
		_, _, err := check(t, test.src)
		be.Err(t, err, test.msg)

		kind, _ := report.KindOf(err)
		be.Equal(t, kind, report.KindType)
	}
}

func TestCheckReturnPaths(t *testing.T) {
	srcs := []string{
		"int main() { }",
		"int f(int a) { if (a) return 1; else return 2; }",
		"int f() { for (;;) { } }",
		"int f() { while (1) { } }",
		"int f(int a) { do { return a; } while (a); }",
		"int f() { { return 1; } }",
		"void f() { }",
	}

	for _, src := range srcs {
		_, _, err := check(t, src)
		be.Err(t, err, nil)
	}
}

func TestCheckGlobalInitializers(t *testing.T) {
	prog, _, err := check(t, "int x = -1; double d = 2; char *s = \"hi\";")
	be.Err(t, err, nil)

	x := prog.Decls[0].(*ast.VarDecl)
	cv, ok := ast.EvalConst(x.Init)
	be.True(t, ok)
	be.Equal(t, cv.Int, int64(-1))

	d := prog.Decls[1].(*ast.VarDecl)
	cv, ok = ast.EvalConst(d.Init)
	be.True(t, ok)
	be.True(t, cv.IsFloat)
	be.Equal(t, cv.Float, 2.0)

	s := prog.Decls[2].(*ast.VarDecl)
	cv, ok = ast.EvalConst(s.Init)
	be.True(t, ok)
	be.Equal(t, cv.Str, "hi")
}

func TestCheckWarnings(t *testing.T) {
	_, warnings, err := check(t, "int f(double d) { return d; }")
	be.Err(t, err, nil)

	be.Equal(t, len(warnings), 1)
	be.Equal(t, warnings[0].Message, "implicit conversion from double to int may lose precision")
}
