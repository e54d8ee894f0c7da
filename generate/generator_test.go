package generate

import (
	"strings"
	"testing"

	"minicc/resolve"
	"minicc/syntax"
	"minicc/walk"

	"github.com/nalgeon/be"
)

func generateSource(t *testing.T, src string) string {
	t.Helper()

	toks, err := syntax.Lex(src)
	be.Err(t, err, nil)

	prog, err := syntax.Parse(toks)
	be.Err(t, err, nil)

	be.Err(t, resolve.Resolve(prog), nil)

	_, err = walk.Check(prog)
	be.Err(t, err, nil)

	mod, err := Generate(prog, "prog.c")
	be.Err(t, err, nil)
	return mod.String()
}

func assertContains(t *testing.T, text string, wants ...string) {
	t.Helper()

	for _, want := range wants {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}
}

func TestGenerateReturnSum(t *testing.T) {
	text := generateSource(t, "int main() { return 1 + 2; }")

	assertContains(t, text,
		`source_filename = "prog.c"`,
		`target triple = "x86_64-pc-linux-gnu"`,
		"define external i32 @main()",
		"add i32 1, 2",
		"ret i32 %",
	)
}

func TestGenerateVariadicDeclaration(t *testing.T) {
	text := generateSource(t, `int printf(char *fmt, ...); int main() { printf("%d", 'a'); return 0; }`)

	assertContains(t, text,
		"declare external i32 @printf(i8* %fmt, ...)",
		"call i32 (i8*, ...) @printf(",
	)
}

func TestGenerateGlobals(t *testing.T) {
	text := generateSource(t, `
char *msg = "hi";
int n = 4;
double d;
int puts(char *s);

int main() { puts(msg); return n; }
`)

	assertContains(t, text,
		`c"hi\00"`,
		"@msg = global i8* getelementptr",
		"@n = global i32 4",
		"@d = global double",
		"declare external i32 @puts(i8*",
		"call i32 @puts(",
	)
}

func TestGenerateControlFlow(t *testing.T) {
	text := generateSource(t, `
int count(int n) {
	int s = 0;
	for (int i = 0; i < n; i++) {
		if (i == 5) break;
		s += i;
	}
	while (s > 100) s = s - 1;
	do { s++; } while (s < 0);
	return s;
}
`)

	assertContains(t, text,
		"define external i32 @count(i32 %n)",
		"alloca i32",
		"icmp slt i32",
		"icmp eq i32",
		"br i1",
		"cond",
		"endloop",
		"post",
	)
}

func TestGenerateLogical(t *testing.T) {
	text := generateSource(t, "int f(int a, int b) { return a && !b || a; }")

	assertContains(t, text, "phi i1", "zext i1", "xor i1")
}

func TestGenerateFloats(t *testing.T) {
	text := generateSource(t, "double f(double x, int n) { return -x * 2.0 + n; }")

	assertContains(t, text, "fneg double", "fmul double", "sitofp i32", "fadd double")
}

func TestGeneratePointers(t *testing.T) {
	text := generateSource(t, `
long diff(int *p, int *q) { return p - q; }
int at(int *p, long i) { return *(p + i); }
int first() { int a[3]; a[0] = 7; return a[0]; }
`)

	assertContains(t, text,
		"ptrtoint i32*",
		"sdiv i64",
		"getelementptr i32, i32*",
		"alloca [3 x i32]",
		"getelementptr [3 x i32], [3 x i32]*",
	)
}

func TestGenerateCharArithmetic(t *testing.T) {
	text := generateSource(t, "char c; void bump() { c++; c += 2; }")

	assertContains(t, text,
		"@c = global i8",
		"sext i8",
		"trunc i32",
		"ret void",
	)
}
