package golden

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestExtractTestCases(t *testing.T) {
	markdown := "# Arithmetic\n\n" +
		"Some commentary.\n\n" +
		"## Test: return sum\n\n" +
		"```c\nint main() { return 1 + 2; }\n```\n\n" +
		"```ir\nfunc @main() i32 {\nentry:\n  ret i32 3\n}\n```\n\n" +
		"## Test: bad token\n\n" +
		"```c\nint main() { return @; }\n```\n\n" +
		"```compile-error\nlex: unrecognized character\n```\n\n" +
		"```warnings\n```\n"

	cases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 2)

	be.Equal(t, cases[0].Name, "return sum")
	be.Equal(t, cases[0].Input, "int main() { return 1 + 2; }")
	be.Equal(t, len(cases[0].Assertions), 1)
	be.Equal(t, cases[0].Assertions[0].Type, AssertionIR)
	be.Equal(t, cases[0].Assertions[0].Content, "func @main() i32 {\nentry:\n  ret i32 3\n}")

	be.Equal(t, cases[1].Name, "bad token")
	be.Equal(t, len(cases[1].Assertions), 2)
	be.Equal(t, cases[1].Assertions[0].Type, AssertionCompileError)
	be.Equal(t, cases[1].Assertions[0].Content, "lex: unrecognized character")
	be.Equal(t, cases[1].Assertions[1].Type, AssertionWarnings)
	be.Equal(t, cases[1].Assertions[1].Content, "")
}

func TestExtractIgnoresUnlabeledFences(t *testing.T) {
	markdown := "## Test: plain\n\n" +
		"```\nnot an assertion\n```\n\n" +
		"```c\nint main() { }\n```\n\n" +
		"```asm\n  ret\n```\n"

	cases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 1)
	be.Equal(t, len(cases[0].Assertions), 1)
	be.Equal(t, cases[0].Assertions[0].Type, AssertionAsm)
}

func TestExtractAssertionLine(t *testing.T) {
	markdown := "## Test: lines\n\n```c\nint main() { }\n```\n\n```ast\n(program)\n```\n"

	cases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, cases[0].Assertions[0].Line, 8)
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		markdown string
		msg      string
	}{
		{"```c\nint main() { }\n```\n", "outside of a test case"},
		{"## Test: empty\n\n```ir\nx\n```\n", "test 'empty' has no input fence"},
		{"## Test: bare\n\n```c\nint main() { }\n```\n", "test 'bare' has no assertion fences"},
		{"## Test: two\n\n```c\nint a;\n```\n\n```c\nint b;\n```\n", "multiple input fences in test 'two'"},
		{"## Test: odd\n\n```c\nint a;\n```\n\n```python\nx\n```\n", "unknown fence language 'python'"},
		{"## Test: first\n\n```c\nint a;\n```\n\n## Test: second\n\n```c\nint b;\n```\n\n```ast\n()\n```\n", "test 'first' has no assertion fences"},
	}

	for _, test := range tests {
		_, err := ExtractTestCases(test.markdown)
		be.Err(t, err, test.msg)
	}
}
