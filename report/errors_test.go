package report

import (
	"errors"
	"fmt"
	"testing"

	"github.com/nalgeon/be"
)

func TestExitCodes(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		name string
		code int
	}{
		{KindLex, "lex", 2},
		{KindParse, "parse", 3},
		{KindSemantic, "semantic", 4},
		{KindType, "type", 5},
		{KindCodegen, "codegen", 6},
		{KindAsmEmit, "asm emission", 7},
		{KindIO, "io", 8},
		{KindExternalTool, "external tool", 9},
	}

	for _, test := range tests {
		err := Raise(test.kind, nil, "failed")
		be.Equal(t, test.kind.String(), test.name)
		be.Equal(t, ExitCode(err), test.code)

		kind, ok := KindOf(fmt.Errorf("wrapped: %w", err))
		be.True(t, ok)
		be.Equal(t, kind, test.kind)
	}

	be.Equal(t, ExitCode(nil), 0)
	be.Equal(t, ExitCode(errors.New("usage")), 1)

	_, ok := KindOf(errors.New("usage"))
	be.True(t, !ok)
}

func TestToolErrorKind(t *testing.T) {
	err := &ToolError{
		Role:    "assembler",
		Command: []string{"gcc", "-c", "main.s"},
		Err:     errors.New("exit status 1"),
		Stderr:  "main.s:1: Error: junk\n",
	}

	kind, ok := KindOf(err)
	be.True(t, ok)
	be.Equal(t, kind, KindExternalTool)
	be.Equal(t, ExitCode(err), 9)
	be.Equal(t, err.Error(), "assembler failed (`gcc -c main.s`): exit status 1\nmain.s:1: Error: junk")
}

func TestCompileErrorMessage(t *testing.T) {
	span := &TextSpan{StartLine: 2, StartCol: 4}
	be.Equal(t, Raise(KindType, span, "bad `%s`", "x").Error(), "3:5: type error: bad `x`")
	be.Equal(t, IOError(errors.New("denied"), "cannot write `%s`", "a.s").Error(), "io error: cannot write `a.s`: denied")
}

func raiseIn(fail func()) (err error) {
	defer CatchErrors(&err)
	fail()
	return
}

func TestCatchErrors(t *testing.T) {
	err := raiseIn(func() { panic(Raise(KindParse, nil, "unexpected `}`")) })
	be.Err(t, err, "unexpected `}`")

	err = raiseIn(func() {})
	be.Err(t, err, nil)
}

func TestCatchErrorsRepanics(t *testing.T) {
	tests := []func(){
		func() { ReportICE("broken invariant %d", 1) },
		func() { panic("not a compile error") },
	}

	for _, fail := range tests {
		recovered := func() (x interface{}) {
			defer func() { x = recover() }()
			raiseIn(fail)
			return nil
		}()

		be.True(t, recovered != nil)
	}

	recovered := func() (x interface{}) {
		defer func() { x = recover() }()
		raiseIn(func() { ReportICE("broken invariant %d", 2) })
		return nil
	}()

	ice, ok := recovered.(*ICE)
	be.True(t, ok)
	be.Equal(t, ice.Error(), "internal compiler error: broken invariant 2")
}
