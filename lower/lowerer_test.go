package lower

import (
	"strings"
	"testing"

	"minicc/ir"
	"minicc/resolve"
	"minicc/syntax"
	"minicc/walk"

	"github.com/nalgeon/be"
)

func lowerSource(t *testing.T, src string) *ir.Program {
	t.Helper()

	toks, err := syntax.Lex(src)
	be.Err(t, err, nil)

	prog, err := syntax.Parse(toks)
	be.Err(t, err, nil)

	be.Err(t, resolve.Resolve(prog), nil)

	_, err = walk.Check(prog)
	be.Err(t, err, nil)

	return Lower(prog)
}

func TestLowerReturnSum(t *testing.T) {
	irp := lowerSource(t, "int main() { return 1 + 2; }")

	be.Equal(t, irp.Repr(), "\nfunc @main() i32 {\nentry:\n  ret i32 3\n}\n")
}

func TestLowerParams(t *testing.T) {
	irp := lowerSource(t, "int add(int a, int b) { return a + b; }")

	want := `
func @add(i32, i32) i32 {
  slot &a.1 [4]
  slot &b.2 [4]
entry:
  %0 = param i32 0
  %1 = param i32 1
  store i32 &a.1, %0
  store i32 &b.2, %1
  %2 = load i32 &a.1
  %3 = load i32 &b.2
  %4 = add i32 %2, %3
  ret i32 %4
}
`
	be.Equal(t, irp.Repr(), want)
}

func TestLowerIf(t *testing.T) {
	irp := lowerSource(t, "int f(int a) { if (a) return 1; return 2; }")

	want := `
func @f(i32) i32 {
  slot &a.1 [4]
entry:
  %0 = param i32 0
  store i32 &a.1, %0
  %1 = load i32 &a.1
  br %1, then1, endif2
then1:
  ret i32 1
endif2:
  ret i32 2
}
`
	be.Equal(t, irp.Repr(), want)
}

func TestLowerImplicitReturns(t *testing.T) {
	irp := lowerSource(t, "void f() { } int main() { f(); }")

	want := `
func @f() {
entry:
  ret
}

func @main() i32 {
entry:
  call @f
  ret i32 0
}
`
	be.Equal(t, irp.Repr(), want)
}

func TestLowerGlobals(t *testing.T) {
	irp := lowerSource(t, `char *s = "hi"; int g = 5; double d; int main() { char *t = "hi"; return g; }`)

	be.Equal(t, len(irp.Globals), 3)
	be.Equal(t, irp.Globals[0].Repr(), "global @s [8] = i64 @.LC0")
	be.Equal(t, irp.Globals[1].Repr(), "global @g [4] = i32 5")
	be.Equal(t, irp.Globals[2].Repr(), "global @d [8]")

	// Identical string literals share storage.
	be.Equal(t, len(irp.Strings), 1)
	be.Equal(t, irp.Strings[0].Value, "hi")
}

func TestLowerLogicalValue(t *testing.T) {
	irp := lowerSource(t, "int f(int a, int b) { return a && b; }")
	be.Err(t, ir.Verify(irp), nil)

	fn := irp.Funcs[0]
	be.Equal(t, fn.Slots[len(fn.Slots)-1].Name, ".tmp1")

	// The right operand is only evaluated when the left is true.
	text := fn.Repr()
	be.True(t, strings.Contains(text, "br %2, and"))
}

func TestLowerConstantFolding(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"int main() { return 7 / 2 * 3 - (1 << 4); }", "ret i32 -7"},
		{"int main() { return !0 + ~0; }", "ret i32 0"},
		{"long main() { return 1 + 2L; }", "ret i64 3"},
		{"double main() { return 1.5 * 2; }", "ret f64 3.0"},
		{"int main() { return 2147483647 + 1; }", "ret i32 -2147483648"},
		{"int main() { return 3 < 4 && 2 > 1; }", "store i32 &.tmp1, 1"},
	}

	for _, test := range tests {
		text := lowerSource(t, test.src).Repr()
		be.True(t, strings.Contains(text, test.want))
	}

	// Division by zero is left for the machine.
	text := lowerSource(t, "int main() { return 1 / 0; }").Repr()
	be.True(t, strings.Contains(text, "div i32 1, 0"))
}

func TestLowerVerifies(t *testing.T) {
	srcs := []string{
		`int fib(int n) { if (n < 2) return n; return fib(n - 1) + fib(n - 2); }
		 int main() { return fib(10); }`,
		`int main() {
			int sum = 0;
			for (int i = 0; i < 10; i++) {
				if (i % 2 == 0) continue;
				if (i > 7) break;
				sum += i;
			}
			return sum;
		}`,
		`int main() { int i = 0; do { i++; } while (i < 5 || i == 7); return i; }`,
		`int main() { int a[4]; int *p = a; a[0] = 1; *(p + 1) = 2; return a[0] + p[1] + (int)(&a[3] - p); }`,
		`double scale(double x, int k) { x *= k; return -x; }
		 int main() { return (int)scale(1.5, 2); }`,
		`long many(int a, int b, int c, int d, int e, int f, int g, double x, long h) { return a + b + c + d + e + f + g + h + (long)x; }
		 int main() { return (int)many(1, 2, 3, 4, 5, 6, 7, 8.0, 9); }`,
		`char c; int main() { c = 'a'; c++; --c; c <<= 1; return c; }`,
		`int main() { int x = 1; int y = x && (x || !x); return y; }`,
		`int main() { while (1) { return 1; } }`,
		`int main() { return 0; int x = 1; x++; }`,
		`void *memset(void *p, int c, long n); int main() { char buf[8]; memset(buf, 0, 8); return buf[0]; }`,
	}

	for _, src := range srcs {
		be.Err(t, ir.Verify(lowerSource(t, src)), nil)
	}
}
