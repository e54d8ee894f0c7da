package asm

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"minicc/codegen"
	"minicc/ir"
	"minicc/lower"
	"minicc/report"
	"minicc/resolve"
	"minicc/syntax"
	"minicc/walk"

	"github.com/nalgeon/be"
)

func compileSource(t *testing.T, src string) *codegen.Program {
	t.Helper()

	toks, err := syntax.Lex(src)
	be.Err(t, err, nil)

	prog, err := syntax.Parse(toks)
	be.Err(t, err, nil)

	be.Err(t, resolve.Resolve(prog), nil)

	_, err = walk.Check(prog)
	be.Err(t, err, nil)

	mprog, err := codegen.Generate(lower.Lower(prog))
	be.Err(t, err, nil)
	return mprog
}

func TestEmitReturnSum(t *testing.T) {
	text, err := EmitString(compileSource(t, "int main() { return 1 + 2; }"), Options{})
	be.Err(t, err, nil)

	want := `  .intel_syntax noprefix
  .text
  .globl main
  .type main, @function
main:
  push rbp
  mov rbp, rsp
  mov eax, 3
.Lmain.epilogue:
  mov rsp, rbp
  pop rbp
  ret
  .size main, .-main
  .section .note.GNU-stack,"",@progbits
`
	be.Equal(t, text, want)
}

func TestEmitData(t *testing.T) {
	mprog := compileSource(t, `
int count = 3;
long big;
char *greeting = "hi\n";
double ratio = 0.5;

int main() { return count; }
`)

	text, err := EmitString(mprog, Options{})
	be.Err(t, err, nil)

	for _, want := range []string{
		"  .data\n",
		"count:\n  .long 3\n",
		"greeting:\n  .quad .LC0\n",
		"ratio:\n  .quad 4602678819172646912  # 0.5\n",
		"  .bss\n",
		"  .size big, 8\nbig:\n  .zero 8\n",
		"  .section .rodata\n.LC0:\n  .string \"hi\\n\"\n",
	} {
		be.True(t, strings.Contains(text, want))
	}

	// Data comes before code.
	be.True(t, strings.Index(text, ".data") < strings.Index(text, ".text"))
}

func TestEmitDebugLines(t *testing.T) {
	mprog := compileSource(t, "int main() {\n  int x = 1;\n  return x;\n}\n")

	text, err := EmitString(mprog, Options{Debug: true, SourceName: "prog.c"})
	be.Err(t, err, nil)

	be.True(t, strings.Contains(text, "  .file 1 \"prog.c\"\n"))
	be.True(t, strings.Contains(text, "  .loc 1 2\n"))
	be.True(t, strings.Contains(text, "  .loc 1 3\n"))

	// Only line changes are recorded.
	be.Equal(t, strings.Count(text, ".loc 1 2\n"), 1)

	plain, err := EmitString(mprog, Options{})
	be.Err(t, err, nil)
	be.True(t, !strings.Contains(plain, ".loc"))
}

func TestEmitFloatPool(t *testing.T) {
	text, err := EmitString(compileSource(t, "double f(double x) { return x + 1.5; }"), Options{})
	be.Err(t, err, nil)

	be.True(t, strings.Contains(text, ".LF0:\n  .quad 4609434218613702656  # 1.5\n"))
	be.True(t, strings.Contains(text, "qword ptr [rip + .LF0]"))
}

func TestEmitMalformedGlobal(t *testing.T) {
	mprog := &codegen.Program{
		Globals: []*ir.GlobalVar{{Name: "g", Size: 4, Align: 4, Type: ir.I32, Init: ir.NewTemp(0, ir.I32)}},
	}

	_, err := EmitString(mprog, Options{})
	be.Err(t, err, "no data representation")

	kind, ok := report.KindOf(err)
	be.True(t, ok)
	be.Equal(t, kind, report.KindAsmEmit)
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestEmitWriteFailure(t *testing.T) {
	err := Emit(failingWriter{}, compileSource(t, "int main() { return 0; }"), Options{})
	be.Err(t, err, "disk full")

	kind, ok := report.KindOf(err)
	be.True(t, ok)
	be.Equal(t, kind, report.KindIO)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.s")

	be.Err(t, WriteFile(path, compileSource(t, "int main() { return 0; }"), Options{}), nil)

	data, err := os.ReadFile(path)
	be.Err(t, err, nil)
	be.True(t, strings.HasPrefix(string(data), "  .intel_syntax noprefix\n"))

	err = WriteFile(filepath.Join(t.TempDir(), "missing", "prog.s"), &codegen.Program{}, Options{})
	kind, _ := report.KindOf(err)
	be.Equal(t, kind, report.KindIO)
}

func TestQuote(t *testing.T) {
	be.Equal(t, quote(`say "hi"`), `"say \"hi\""`)
	be.Equal(t, quote("a\\b\tc\x01"), `"a\\b\tc\001"`)
}
