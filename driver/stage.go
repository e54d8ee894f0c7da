package driver

// Stage is a point in the compilation pipeline at which the driver can stop.
// Stages are totally ordered: a stage runs only after every stage before it.
type Stage int

// Enumeration of stages in pipeline order.
const (
	StageLex      Stage = iota // Lexing only.
	StageParse                 // Parsing.
	StageValidate              // Name resolution and type checking.
	StageIR                    // IR generation.
	StageCodegen               // Code generation and assembly emission.
	StageFull                  // Assembling (and optionally linking).
)

var stageNames = [...]string{
	StageLex:      "lex",
	StageParse:    "parse",
	StageValidate: "validate",
	StageIR:       "ir",
	StageCodegen:  "codegen",
	StageFull:     "full",
}

func (s Stage) String() string {
	if 0 <= int(s) && int(s) < len(stageNames) {
		return stageNames[s]
	}

	return "unknown"
}

// Reached returns whether a pipeline stopping at s runs the stage other.
func (s Stage) Reached(other Stage) bool {
	return other <= s
}

// EarliestStage returns the earliest of the requested stop stages.  If no stop
// stage is requested, the full pipeline runs.
func EarliestStage(requested ...Stage) Stage {
	stop := StageFull
	for _, stage := range requested {
		if stage < stop {
			stop = stage
		}
	}

	return stop
}
