package syntax

import (
	"testing"

	"minicc/ast"
	"minicc/report"

	"github.com/nalgeon/be"
)

func parseSource(t *testing.T, src string) (*ast.Program, error) {
	t.Helper()

	toks, err := Lex(src)
	be.Err(t, err, nil)

	return Parse(toks)
}

func parseExprSource(t *testing.T, src string) string {
	t.Helper()

	prog, err := parseSource(t, "void f() { "+src+"; }")
	be.Err(t, err, nil)

	body := prog.Decls[0].(*ast.FuncDecl).Body
	return ast.Dump(body.Stmts[0].(*ast.ExprStmt).Expr)
}

func TestParseReturnSum(t *testing.T) {
	prog, err := parseSource(t, "int main() { return 1 + 2; }")
	be.Err(t, err, nil)

	be.Equal(t, len(prog.Decls), 1)

	fd, ok := prog.Decls[0].(*ast.FuncDecl)
	be.True(t, ok)
	be.Equal(t, fd.Name, "main")
	be.Equal(t, len(fd.Body.Stmts), 1)

	_, ok = fd.Body.Stmts[0].(*ast.ReturnStmt)
	be.True(t, ok)

	be.Equal(t, ast.Dump(prog), `(program (func "main" "int()" (block (return (binary "+" (integer 1) (integer 2))))))`)
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", `(binary "+" (integer 1) (binary "*" (integer 2) (integer 3)))`},
		{"(1 + 2) * 3", `(binary "*" (binary "+" (integer 1) (integer 2)) (integer 3))`},
		{"1 - 2 - 3", `(binary "-" (binary "-" (integer 1) (integer 2)) (integer 3))`},
		{"a < b == c > d", `(binary "==" (binary "<" (ident "a") (ident "b")) (binary ">" (ident "c") (ident "d")))`},
		{"a || b && c", `(binary "||" (ident "a") (binary "&&" (ident "b") (ident "c")))`},
		{"a | b ^ c & d", `(binary "|" (ident "a") (binary "^" (ident "b") (binary "&" (ident "c") (ident "d"))))`},
		{"a = b = 1", `(assign (ident "a") (assign (ident "b") (integer 1)))`},
		{"a += b << 1", `(assign "+=" (ident "a") (binary "<<" (ident "b") (integer 1)))`},
		{"-a * !b", `(binary "*" (unary "-" (ident "a")) (unary "!" (ident "b")))`},
		{"*p++", `(deref (postfix "++" (ident "p")))`},
		{"&a[1]", `(addr (deref (binary "+" (ident "a") (integer 1))))`},
		{"f(1, x)(2)", `(call (call (ident "f") (integer 1) (ident "x")) (integer 2))`},
		{"(long)c + 1", `(binary "+" (cast (ident "c") :long) (integer 1))`},
		{"(char*)0", `(cast (integer 0) :char*)`},
		{"'a' + 07 + 0x10 + 5l + 3000000000", `(binary "+" (binary "+" (binary "+" (binary "+" (char 97) (integer 7)) (integer 16)) (long 5)) (long 3000000000))`},
		{`s = "ab" "cd"`, `(assign (ident "s") (string "abcd"))`},
	}

	for _, test := range tests {
		be.Equal(t, parseExprSource(t, test.src), test.want)
	}
}

func TestParseStatements(t *testing.T) {
	src := `
int g = 3, *p;
long arr[2][3];
int add(int a, int b);
void loop(int n) {
	int i;
	for (i = 0; i < n; i++) { if (i == 2) continue; else break; }
	for (int j = 0; ; ) ;
	while (n) n--;
	do { n += 1; } while (n < 10);
	return;
}`

	prog, err := parseSource(t, src)
	be.Err(t, err, nil)

	be.Equal(t, ast.Dump(prog), `(program`+
		` (var "g" "int" (integer 3)) (var "p" "int*")`+
		` (var "arr" "long[2][3]")`+
		` (func "add" "int(int, int)" (params (param "a" "int") (param "b" "int")))`+
		` (func "loop" "void(int)" (params (param "n" "int")) (block`+
		` (var "i" "int")`+
		` (for (init (expr (assign (ident "i") (integer 0)))) (binary "<" (ident "i") (ident "n")) (postfix "++" (ident "i"))`+
		` (block (if (binary "==" (ident "i") (integer 2)) (continue) (break))))`+
		` (for (init (var "j" "int" (integer 0))) () () (null))`+
		` (while (ident "n") (expr (postfix "--" (ident "n"))))`+
		` (do (block (expr (assign "+=" (ident "n") (integer 1)))) (binary "<" (ident "n") (integer 10)))`+
		` (return))))`)
}

func TestParseParams(t *testing.T) {
	prog, err := parseSource(t, "int main(void); double f(char *s, int v[]);")
	be.Err(t, err, nil)

	be.Equal(t, ast.Dump(prog), `(program (func "main" "int()") (func "f" "double(char*, int*)" (params (param "s" "char*") (param "v" "int*"))))`)
}

func TestParseVariadicPrototype(t *testing.T) {
	prog, err := parseSource(t, "int printf(char *fmt, ...);")
	be.Err(t, err, nil)

	be.Equal(t, ast.Dump(prog), `(program (func "printf" "int(char*, ...)" (params (param "fmt" "char*"))))`)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src string
		msg string
	}{
		{"int main() { return 0;", "expected `}` but found end of input"},
		{"int main() { return 0 }", "expected `;` but found `}`"},
		{"int main() { return (1 + ; }", "expected expression but found `;`"},
		{"int x", "expected `;` but found end of input"},
		{"int main() { } }", "expected declaration but found `}`"},
		{"x = 1;", "expected declaration but found identifier `x`"},
		{"void v;", "variable `v` declared void"},
		{"int a[0];", "invalid array length `0`"},
		{"int f(int) { return 0; }", "parameter name omitted"},
		{"int f() { if (1) int x; }", "declaration is not allowed here"},
		{"int f(...);", "expected parameter type but found `...`"},
		{"int f(int a, ...) { return a; }", "variadic function `f` can only be declared"},
	}

	for _, test := range tests {
		_, err := parseSource(t, test.src)
		be.Err(t, err, test.msg)

		kind, ok := report.KindOf(err)
		be.True(t, ok)
		be.Equal(t, kind, report.KindParse)
	}
}

func TestParseUnbalancedBraceSpan(t *testing.T) {
	src := "int main() {\n  if (1) { return 1;\n}"
	_, err := parseSource(t, src)

	cerr, ok := err.(*report.CompileError)
	be.True(t, ok)
	be.Equal(t, cerr.Kind, report.KindParse)
	be.Equal(t, cerr.Span.StartLine, 2)
	be.Equal(t, cerr.Span.StartCol, 1)
}
