package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"minicc/common"
	"minicc/driver"
	"minicc/report"

	"github.com/nalgeon/be"
)

func TestLogLevelFor(t *testing.T) {
	be.Equal(t, logLevelFor("debug", "silent"), report.LogLevelDebug)
	be.Equal(t, logLevelFor("", "warn"), report.LogLevelWarn)
	be.Equal(t, logLevelFor("", ""), report.LogLevelVerbose)
}

func TestStopFlagsInPipelineOrder(t *testing.T) {
	for i, sf := range stopFlags {
		be.Equal(t, sf.stage, driver.Stage(i))
	}

	be.Equal(t, len(stopFlags), int(driver.StageFull))
}

// writeProgram writes a source file together with a configuration whose
// preprocessor copies the source unchanged.
func writeProgram(t *testing.T, src string) string {
	t.Helper()

	dir := t.TempDir()
	cfgText := "[toolchain]\npreprocessor = [\"sh\", \"-c\", \"cat \\\"$0\\\" > \\\"$2\\\"\"]\n"
	be.Err(t, os.WriteFile(filepath.Join(dir, common.ConfigFileName), []byte(cfgText), 0o644), nil)

	path := filepath.Join(dir, "main.c")
	be.Err(t, os.WriteFile(path, []byte(src), 0o644), nil)

	t.Cleanup(func() { report.InitReporter(report.LogLevelSilent) })
	return path
}

func TestExecuteDefaultLogLevel(t *testing.T) {
	path := writeProgram(t, "int main() { return 1 + 2; }")

	exitCode := execute([]string{"minicc", path, "--codegen"})
	be.Equal(t, exitCode, 0)
	be.Equal(t, report.LogLevel(), report.LogLevelVerbose)

	_, err := os.Stat(strings.TrimSuffix(path, ".c") + ".s")
	be.Err(t, err, nil)
}

func TestExecuteExitCodes(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{"int main() { return @; }", 2},
		{"int main() { return 0 }", 3},
		{"int main() { return x; }", 4},
		{"int main() { 1 = 2; return 0; }", 5},
	}

	for _, test := range tests {
		path := writeProgram(t, test.src)
		be.Equal(t, execute([]string{"minicc", path, "--codegen"}), test.want)
	}
}

func TestExecuteConfigError(t *testing.T) {
	dir := t.TempDir()
	be.Err(t, os.WriteFile(filepath.Join(dir, common.ConfigFileName), []byte("[build]\nbackend = \"wasm\"\n"), 0o644), nil)
	t.Cleanup(func() { report.InitReporter(report.LogLevelSilent) })

	path := filepath.Join(dir, "main.c")
	be.Equal(t, execute([]string{"minicc", path}), 8)
}
