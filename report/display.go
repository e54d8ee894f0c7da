package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = pterm.FgLightCyan
)

// displayICE displays an internal compiler error message.
func displayICE(message string) {
	ErrorStyleBG.Print("Internal Compiler Error")
	ErrorColorFG.Println(" " + message)
	fmt.Print("This error was not supposed to happen: the compiler has a bug.\n\n")
}

// displayFatal displays a fatal error message.
func displayFatal(message string) {
	ErrorStyleBG.Print("Fatal Error")
	ErrorColorFG.Println(" " + message)
	fmt.Println()
}

// displayCompileMessage displays a compilation error or warning.  The label is
// the string to prefix the message with: eg. if we want to display a lex error,
// the label is "lex error".
func displayCompileMessage(label, reprPath, src string, span *TextSpan, message string, isErr bool) {
	style, color := ErrorStyleBG, ErrorColorFG
	if !isErr {
		style, color = WarnStyleBG, WarnColorFG
	}

	if span == nil {
		fmt.Printf("%s: ", reprPath)
		style.Print(label)
		color.Println(" " + message)
		fmt.Println()
		return
	}

	fmt.Printf("%s:%d:%d: ", reprPath, span.StartLine+1, span.StartCol+1)
	style.Print(label)
	color.Println(" " + message)
	fmt.Println()

	if src != "" {
		displaySourceText(src, span)
	}
}

// displayToolError displays a failure of an external tool.
func displayToolError(te *ToolError) {
	ErrorStyleBG.Print("External Tool Error")
	ErrorColorFG.Printf(" %s failed: %s\n", te.Role, te.Err)
	fmt.Printf("command: %s\n", strings.Join(te.Command, " "))

	if te.Stderr != "" {
		fmt.Println(strings.TrimRight(te.Stderr, "\n"))
	}

	fmt.Println()
}

// displayStdError displays a standard Go error.
func displayStdError(reprPath string, err error) {
	fmt.Printf("%s: ", reprPath)
	ErrorStyleBG.Print("error")
	ErrorColorFG.Println(" " + err.Error())
	fmt.Println()
}

// displayDebug displays a dump of some intermediate form of the program.
func displayDebug(title, body string) {
	pterm.DefaultSection.Println(title)
	fmt.Println(strings.TrimRight(body, "\n"))
	fmt.Println()
}

// -----------------------------------------------------------------------------

// displaySourceText displays a segment of source text defined by a text span.
func displaySourceText(src string, span *TextSpan) {
	// Collect all the source lines containing the given source text.
	var lines []string
	for ln, line := range strings.Split(src, "\n") {
		if span.StartLine <= ln && ln <= span.EndLine {
			lines = append(lines, strings.ReplaceAll(strings.TrimRight(line, "\r"), "\t", " "))
		}
	}

	if len(lines) == 0 {
		return
	}

	// Calculate the minimum line indentation.
	minIndent := math.MaxInt
	for _, line := range lines {
		lineIndent := len(line) - len(strings.TrimLeft(line, " "))
		if lineIndent < minIndent {
			minIndent = lineIndent
		}
	}

	maxLineNumLen := len(strconv.Itoa(span.EndLine + 1))
	lineNumFmtStr := "%-" + strconv.Itoa(maxLineNumLen) + "v | "

	for i, line := range lines {
		InfoColorFG.Printf(lineNumFmtStr, i+span.StartLine+1)
		fmt.Println(line[minIndent:])

		fmt.Print(strings.Repeat(" ", maxLineNumLen), " | ")

		// Underlining starts at the start column on the first line and
		// continues from the line's indentation on every other line.
		start := minIndent
		if i == 0 {
			start = max(span.StartCol, minIndent)
		}

		end := len(line)
		if i == len(lines)-1 && span.EndCol < end {
			end = span.EndCol
		}

		if end <= start {
			end = start + 1
		}

		fmt.Print(strings.Repeat(" ", start-minIndent))
		ErrorColorFG.Println(strings.Repeat("^", end-start))
	}

	fmt.Println()
}

// -----------------------------------------------------------------------------

// phaseSpinner stores the current phase spinner.
var phaseSpinner *pterm.SpinnerPrinter
var currentPhase string
var phaseStartTime time.Time

const maxPhaseLength = len("Translating LLVM IR")

// phasePadding returns the spaces which align the text following a phase name.
func phasePadding(phase string) string {
	return strings.Repeat(" ", max(0, maxPhaseLength-len(phase))+2)
}

// displayBeginPhase displays the beginning of a compilation phase.
func displayBeginPhase(phase string) {
	currentPhase = phase
	phaseText := phase + "..." + phasePadding(phase)
	phaseSpinner = pterm.DefaultSpinner.WithStyle(pterm.NewStyle(InfoColorFG))

	phaseSpinner.SuccessPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: SuccessStyleBG,
			Text:  "Done",
		},
	}

	phaseSpinner.FailPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: ErrorStyleBG,
			Text:  "Fail",
		},
	}

	phaseSpinner.Start(phaseText)
	phaseStartTime = time.Now()
}

// displayEndPhase displays the end of a compilation phase.
func displayEndPhase(success bool) {
	if phaseSpinner == nil {
		return
	}

	pad := phasePadding(currentPhase)
	if success {
		phaseSpinner.Success(currentPhase+pad, fmt.Sprintf("(%.3fs)", time.Since(phaseStartTime).Seconds()))
	} else {
		phaseSpinner.Fail(currentPhase + pad)
	}

	phaseSpinner = nil
}

// displayCompilationFinished displays a compilation finished message.
func displayCompilationFinished(success bool, errorCount, warnCount int, outputPath string, elapsed time.Duration) {
	fmt.Print("\n")

	if success {
		SuccessColorFG.Print("All done! ")
	} else {
		ErrorColorFG.Print("Oh no! ")
	}

	fmt.Print("(")

	if errorCount == 0 {
		SuccessColorFG.Print(0)
	} else {
		ErrorColorFG.Print(errorCount)
	}

	if errorCount == 1 {
		fmt.Print(" error, ")
	} else {
		fmt.Print(" errors, ")
	}

	if warnCount == 0 {
		SuccessColorFG.Print(0)
	} else {
		WarnColorFG.Print(warnCount)
	}

	if warnCount == 1 {
		fmt.Print(" warning)")
	} else {
		fmt.Print(" warnings)")
	}

	fmt.Printf(" in %.3fs\n", elapsed.Seconds())

	if success && outputPath != "" {
		fmt.Print("output written to ")
		InfoColorFG.Println(outputPath)
	}
}
