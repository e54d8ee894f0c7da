package report

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Reporter is responsible for reporting errors, warnings, and other kinds of
// messages to the user during program execution.  The reporter respects the set
// log level and is synchronized: its methods can be safely called from multiple
// goroutines.
type Reporter struct {
	// The mutex used to synchonize different error method calls.
	m *sync.Mutex

	// The selected log level of the reporter.  This must be one of the
	// enumerated log levels below.
	logLevel int

	// The number of errors and warnings reported so far.
	errorCount, warnCount int

	// When compilation started.
	startTime time.Time
}

// Enumeration of the different possible log levels.
const (
	LogLevelSilent  = iota // Displays no output.
	LogLevelError          // Displays only errors to the user.
	LogLevelWarn           // Displays only warnings and errors to the user.
	LogLevelVerbose        // Displays all compilation messages to the user (default).
	LogLevelDebug          // Also dumps the intermediate representations.
)

// LogLevelNames maps the textual log level names to their log levels.
var LogLevelNames = map[string]int{
	"silent":  LogLevelSilent,
	"error":   LogLevelError,
	"warn":    LogLevelWarn,
	"verbose": LogLevelVerbose,
	"debug":   LogLevelDebug,
}

// rep is the global reporter instance.  It starts out silent so that library
// use of the compiler stages does not print anything.
var rep = &Reporter{m: &sync.Mutex{}, logLevel: LogLevelSilent, startTime: time.Now()}

// InitReporter initializes the global reporter to the given log level.
func InitReporter(logLevel int) {
	rep.m.Lock()
	defer rep.m.Unlock()

	rep.logLevel = logLevel
	rep.errorCount = 0
	rep.warnCount = 0
	rep.startTime = time.Now()
}

// LogLevel returns the current log level.
func LogLevel() int {
	rep.m.Lock()
	defer rep.m.Unlock()

	return rep.logLevel
}

// -----------------------------------------------------------------------------

// ReportError reports an error produced by compilation.  src is the source text
// the error's span refers to and may be empty.
func ReportError(reprPath, src string, err error) {
	rep.m.Lock()
	defer rep.m.Unlock()

	rep.errorCount++
	if rep.logLevel < LogLevelError {
		return
	}

	displayEndPhase(false)

	switch v := err.(type) {
	case *CompileError:
		displayCompileMessage(v.Kind.String()+" error", reprPath, src, v.Span, v.Message, true)
	case *ToolError:
		displayToolError(v)
	default:
		displayStdError(reprPath, err)
	}
}

// ReportWarning reports a compilation warning.
func ReportWarning(reprPath, src string, span *TextSpan, msg string) {
	rep.m.Lock()
	defer rep.m.Unlock()

	rep.warnCount++
	if rep.logLevel < LogLevelWarn {
		return
	}

	displayCompileMessage("warning", reprPath, src, span, msg, false)
}

// ReportFatal reports a fatal error and exits the program.  These are errors
// in how the compiler was invoked: bad arguments, bad configuration.
func ReportFatal(msg string, args ...interface{}) {
	if LogLevel() > LogLevelSilent {
		displayFatal(fmt.Sprintf(msg, args...))
	}

	os.Exit(1)
}

// ReportInternalError displays a recovered internal compiler error.
func ReportInternalError(ice *ICE) {
	rep.m.Lock()
	defer rep.m.Unlock()

	displayEndPhase(false)
	displayICE(ice.Message)
}

// -----------------------------------------------------------------------------

// ReportBeginPhase reports the beginning of a compilation phase.
func ReportBeginPhase(phase string) {
	rep.m.Lock()
	defer rep.m.Unlock()

	if rep.logLevel >= LogLevelVerbose {
		displayBeginPhase(phase)
	}
}

// ReportEndPhase reports the successful end of a compilation phase.
func ReportEndPhase() {
	rep.m.Lock()
	defer rep.m.Unlock()

	if rep.logLevel >= LogLevelVerbose {
		displayEndPhase(true)
	}
}

// ReportDebug dumps an intermediate form of the program when debug logging is
// enabled.
func ReportDebug(title, body string) {
	rep.m.Lock()
	defer rep.m.Unlock()

	if rep.logLevel >= LogLevelDebug {
		displayDebug(title, body)
	}
}

// ReportCompilationFinished reports the concluding message for compilation.
func ReportCompilationFinished(outputPath string) {
	rep.m.Lock()
	defer rep.m.Unlock()

	if rep.logLevel >= LogLevelVerbose {
		displayCompilationFinished(rep.errorCount == 0, rep.errorCount, rep.warnCount, outputPath, time.Since(rep.startTime))
	}
}
