package driver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"minicc/ast"
	"minicc/golden"
	"minicc/report"

	"github.com/nalgeon/be"
)

func TestGoldenCases(t *testing.T) {
	paths, err := filepath.Glob("../testdata/*.md")
	be.Err(t, err, nil)
	be.True(t, len(paths) > 0)

	for _, path := range paths {
		content, err := os.ReadFile(path)
		be.Err(t, err, nil)

		cases, err := golden.ExtractTestCases(string(content))
		be.Err(t, err, nil)

		for _, tc := range cases {
			t.Run(filepath.Base(path)+"/"+tc.Name, func(t *testing.T) {
				runGoldenCase(t, tc)
			})
		}
	}
}

func runGoldenCase(t *testing.T, tc golden.TestCase) {
	d, _ := newTestDriver(StageCodegen)
	unit := NewUnit(filepath.Join(t.TempDir(), "case.c"))
	unit.Src = tc.Input

	asmPath, err := d.Run(unit)

	for _, assertion := range tc.Assertions {
		want := strings.TrimSpace(assertion.Content)

		if assertion.Type == golden.AssertionCompileError {
			checkCompileError(t, err, want)
			continue
		}

		be.Err(t, err, nil)
		if err != nil {
			return
		}

		switch assertion.Type {
		case golden.AssertionAST:
			be.Equal(t, ast.Dump(unit.Program), want)
		case golden.AssertionIR:
			be.Equal(t, strings.TrimSpace(unit.IR.Repr()), want)
		case golden.AssertionAsm:
			buff, err := os.ReadFile(asmPath)
			be.Err(t, err, nil)
			be.Equal(t, strings.TrimSpace(string(buff)), want)
		case golden.AssertionWarnings:
			var msgs []string
			for _, warning := range unit.Warnings {
				msgs = append(msgs, warning.Message)
			}

			be.Equal(t, strings.Join(msgs, "\n"), want)
		}
	}
}

// checkCompileError checks err against an expectation of the form
// `kind: message prefix`.
func checkCompileError(t *testing.T, err error, want string) {
	t.Helper()

	wantKind, wantMsg, ok := strings.Cut(want, ": ")
	be.True(t, ok)

	var cerr *report.CompileError
	be.True(t, errors.As(err, &cerr))
	if cerr == nil {
		return
	}

	be.Equal(t, cerr.Kind.String(), wantKind)
	be.True(t, strings.HasPrefix(cerr.Message, wantMsg))
}
