package codegen

import (
	"math"
	"strings"
	"testing"

	"minicc/ir"
	"minicc/lower"
	"minicc/resolve"
	"minicc/syntax"
	"minicc/walk"

	"github.com/nalgeon/be"
)

func generateSource(t *testing.T, src string) *Program {
	t.Helper()

	toks, err := syntax.Lex(src)
	be.Err(t, err, nil)

	prog, err := syntax.Parse(toks)
	be.Err(t, err, nil)

	be.Err(t, resolve.Resolve(prog), nil)

	_, err = walk.Check(prog)
	be.Err(t, err, nil)

	irp := lower.Lower(prog)
	be.Err(t, ir.Verify(irp), nil)

	mprog, err := Generate(irp)
	be.Err(t, err, nil)
	return mprog
}

func render(instrs []*Instr) []string {
	lines := make([]string, len(instrs))
	for i, instr := range instrs {
		lines[i] = instr.String()
	}

	return lines
}

func hasLine(lines []string, want string) bool {
	for _, line := range lines {
		if line == want {
			return true
		}
	}

	return false
}

func TestGenerateReturnSum(t *testing.T) {
	mprog := generateSource(t, "int main() { return 1 + 2; }")
	be.Equal(t, len(mprog.Funcs), 1)

	fn := mprog.Funcs[0]
	be.Equal(t, render(fn.Body), []string{"mov eax, 3"})
	be.Equal(t, render(fn.Prologue), []string{"push rbp", "mov rbp, rsp"})
	be.Equal(t, render(fn.Epilogue), []string{".Lmain.epilogue:", "mov rsp, rbp", "pop rbp", "ret"})
	be.Equal(t, fn.FrameSize, 0)
}

func TestGenerateFrame(t *testing.T) {
	mprog := generateSource(t, "int main() { int x = 5; char c = 1; return x; }")
	fn := mprog.Funcs[0]

	be.Equal(t, fn.FrameSize, 16)
	be.Equal(t, render(fn.Prologue), []string{"push rbp", "mov rbp, rsp", "sub rsp, 16"})

	body := render(fn.Body)
	be.True(t, hasLine(body, "mov dword ptr [rbp - 4], 5"))
	be.True(t, hasLine(body, "mov byte ptr [rbp - 5], 1"))
}

func TestGenerateAllocationValid(t *testing.T) {
	sources := []string{
		"int main() { int s = 0; for (int i = 0; i < 10; i++) s += i * i; return s; }",
		"long f(long a, long b) { return a / b + a % b; } int main() { return f(7, 2); }",
		"double g(double x, int n) { while (n > 0) { x = x * 2.0; n--; } return x; } int main() { return g(1.5, 3) > 4.0; }",
		"int h(int x) { return x; } int main() { return h(1) + (h(2) + (h(3) + (h(4) + (h(5) + (h(6) + h(7)))))); }",
		"int main() { int a[4]; int *p = a; *p = 3; p[1] = *p << 2; return p[1] == 12 && a[0] != 0; }",
		"char c; int main() { c = 'a'; c++; return c - 'a'; }",
	}

	for _, src := range sources {
		mprog := generateSource(t, src)
		for _, fn := range mprog.Funcs {
			be.Err(t, CheckAllocation(fn.Alloc), nil)
			be.Equal(t, fn.FrameSize%16, 0)
		}
	}
}

func TestGenerateSpillPressure(t *testing.T) {
	mprog := generateSource(t, "int h(int x) { return x; } int main() { return h(1) + (h(2) + (h(3) + (h(4) + (h(5) + (h(6) + h(7)))))); }")

	fn := mprog.Funcs[1]
	be.Equal(t, fn.Name, "main")
	be.Err(t, CheckAllocation(fn.Alloc), nil)

	// Six call results are live across calls but only five callee-saved
	// registers exist.
	be.True(t, len(fn.Alloc.Spills()) >= 1)
	be.Equal(t, fn.SavedRegs, []Reg{RBX, R12, R13, R14, R15})
	be.Equal(t, fn.FrameSize%16, 0)

	body := render(fn.Body)
	be.True(t, hasLine(body, "call h"))
	be.True(t, hasLine(body, "mov edi, 7"))

	epilogue := render(fn.Epilogue)
	be.Equal(t, epilogue[1], "mov rbx, qword ptr [rbp - 8]")
}

func TestGenerateStackArguments(t *testing.T) {
	mprog := generateSource(t, `
int sum(int a, int b, int c, int d, int e, int f, int g, int h, int i) {
	return a + b + c + d + e + f + g + h + i;
}

int main() { return sum(1, 2, 3, 4, 5, 6, 7, 8, 9); }
`)

	callee := render(mprog.Funcs[0].Body)
	be.True(t, strings.Contains(strings.Join(callee, "\n"), "dword ptr [rbp + 16]"))
	be.True(t, strings.Contains(strings.Join(callee, "\n"), "dword ptr [rbp + 32]"))

	body := render(mprog.Funcs[1].Body)
	be.Equal(t, body[:4], []string{"sub rsp, 8", "push 9", "push 8", "push 7"})
	be.True(t, hasLine(body, "mov r9d, 6"))
	be.True(t, hasLine(body, "mov edi, 1"))
	be.True(t, hasLine(body, "add rsp, 32"))
}

func TestGenerateExternalCall(t *testing.T) {
	mprog := generateSource(t, `int puts(char *s); int main() { puts("hi"); return 0; }`)

	body := render(mprog.Funcs[0].Body)
	be.True(t, hasLine(body, "lea rdi, [rip + .LC0]"))
	be.True(t, hasLine(body, "mov eax, 0"))
	be.True(t, hasLine(body, "call puts@PLT"))
}

func TestGenerateVariadicCall(t *testing.T) {
	mprog := generateSource(t, `int printf(char *fmt, ...); int main() { printf("%f %d", 1.5, 2); return 0; }`)

	body := render(mprog.Funcs[0].Body)
	be.True(t, hasLine(body, "mov esi, 2"))
	be.True(t, hasLine(body, "mov eax, 1"))
	be.True(t, hasLine(body, "call printf@PLT"))
}

func TestGenerateFloats(t *testing.T) {
	mprog := generateSource(t, `
double scale(double x) { return x * 2.5; }
double twice(double x) { return x * 2.5 + 2.5; }
`)

	be.Equal(t, len(mprog.Floats), 1)
	be.Equal(t, mprog.Floats[0].Label, ".LF0")
	be.Equal(t, mprog.Floats[0].Bits, math.Float64bits(2.5))

	body := render(mprog.Funcs[0].Body)
	be.True(t, hasLine(body, "movsd xmm8, xmm0"))
	be.True(t, strings.Contains(strings.Join(body, "\n"), "mulsd"))
	be.True(t, strings.Contains(strings.Join(body, "\n"), "qword ptr [rip + .LF0]"))
}

func TestGenerateDeterministic(t *testing.T) {
	src := `
int fib(int n) { if (n < 2) return n; return fib(n - 1) + fib(n - 2); }
int main() { return fib(10); }
`

	first := generateSource(t, src)
	second := generateSource(t, src)

	be.Equal(t, len(first.Funcs), len(second.Funcs))
	for i := range first.Funcs {
		be.Equal(t, render(first.Funcs[i].Body), render(second.Funcs[i].Body))
		be.Equal(t, render(first.Funcs[i].Prologue), render(second.Funcs[i].Prologue))
	}
}

func TestClassifyArgs(t *testing.T) {
	typs := []ir.Type{ir.I32, ir.F64, ir.I64, ir.I8, ir.I32, ir.I64, ir.I32, ir.I32, ir.F64}
	locs, stackWords, nvec := classifyArgs(typs)

	be.Equal(t, stackWords, 1)
	be.Equal(t, nvec, 2)
	be.Equal(t, locs[0].reg, RDI)
	be.Equal(t, locs[1].reg, XMM0)
	be.Equal(t, locs[6].reg, R9)
	be.Equal(t, locs[7], argLoc{reg: NoReg, stackIndex: 0})
	be.Equal(t, locs[8].reg, XMM1)
}
