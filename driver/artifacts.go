package driver

import (
	"errors"
	"io/fs"
	"minicc/report"
	"os"
)

// Artifacts tracks the temporary files of a single compilation.  A temporary
// is acquired right before the stage that produces it runs and consumed by the
// stage that reads it.  Releasing deletes every consumed temporary.  An
// unconsumed temporary is kept only if compilation succeeded: the requested
// stop stage halted the pipeline before the temporary could be consumed, so it
// is left for inspection.
type Artifacts struct {
	paths    []string
	consumed map[string]bool
}

// NewArtifacts creates an empty artifact set.
func NewArtifacts() *Artifacts {
	return &Artifacts{consumed: make(map[string]bool)}
}

// Acquire registers path as a temporary.
func (a *Artifacts) Acquire(path string) {
	if _, ok := a.consumed[path]; ok {
		return
	}

	a.paths = append(a.paths, path)
	a.consumed[path] = false
}

// Consume marks the temporary at path as consumed.
func (a *Artifacts) Consume(path string) {
	if _, ok := a.consumed[path]; !ok {
		report.ReportICE("consumed unacquired artifact `%s`", path)
	}

	a.consumed[path] = true
}

// Retained returns the temporaries that would be kept by a successful release.
func (a *Artifacts) Retained() []string {
	var retained []string
	for _, path := range a.paths {
		if !a.consumed[path] {
			retained = append(retained, path)
		}
	}

	return retained
}

// ReleaseAll deletes the temporaries that should not outlive compilation.
// failed indicates that compilation stopped with an error in which case every
// temporary is deleted.  It returns the first error encountered while
// deleting: temporaries that were never created are ignored.
func (a *Artifacts) ReleaseAll(failed bool) error {
	var firstErr error

	for _, path := range a.paths {
		if !a.consumed[path] && !failed {
			continue
		}

		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) && firstErr == nil {
			firstErr = report.IOError(err, "failed to remove temporary file `%s`", path)
		}
	}

	a.paths = nil
	a.consumed = make(map[string]bool)
	return firstErr
}
