package report

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestPhasePadding(t *testing.T) {
	be.Equal(t, len("Lexing"+phasePadding("Lexing")), maxPhaseLength+2)
	be.Equal(t, len("Translating LLVM IR"+phasePadding("Translating LLVM IR")), maxPhaseLength+2)
	be.Equal(t, phasePadding("A phase name longer than any other"), "  ")
}

func TestPhaseDisplayVerbose(t *testing.T) {
	InitReporter(LogLevelVerbose)
	defer InitReporter(LogLevelSilent)

	be.Equal(t, LogLevel(), LogLevelVerbose)

	for _, phase := range []string{"Preprocessing", "Translating LLVM IR", "A phase name longer than any other"} {
		ReportBeginPhase(phase)
		ReportEndPhase()
	}

	ReportBeginPhase("Parsing")
	ReportError("main.c", "int main() {\n", Raise(KindParse, &TextSpan{StartLine: 0, StartCol: 12, EndLine: 0, EndCol: 13}, "expected `}` but found end of input"))
	ReportCompilationFinished("")
}

func TestLogLevelNames(t *testing.T) {
	be.Equal(t, LogLevelNames["silent"], LogLevelSilent)
	be.Equal(t, LogLevelNames["verbose"], LogLevelVerbose)
	be.Equal(t, LogLevelNames["debug"], LogLevelDebug)
}
