// Package trace records structured verbose-mode events emitted while
// a book is built or a script is synthesized, each run tagged with a
// UUID so concurrent invocations writing to the same log stream stay
// distinguishable.
package trace

import (
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Recorder appends structured events to an output stream under a
// single run ID for the lifetime of the Recorder.
type Recorder struct {
	w       io.Writer
	runID   uuid.UUID
	enabled bool
	seq     int
}

// New creates a Recorder. When enabled is false, Event is a no-op —
// callers do not need to guard every call site with an `if verbose`.
func New(w io.Writer, enabled bool) *Recorder {
	return &Recorder{w: w, runID: uuid.New(), enabled: enabled}
}

// RunID returns the recorder's correlation ID.
func (r *Recorder) RunID() string { return r.runID.String() }

// Event writes one formatted trace line, prefixed with the run ID and
// a monotonic sequence number.
func (r *Recorder) Event(format string, args ...any) {
	if !r.enabled {
		return
	}
	r.seq++
	fmt.Fprintf(r.w, "[%s #%04d] %s\n", r.runID.String()[:8], r.seq, fmt.Sprintf(format, args...))
}

// Rule logs a successful rule application producing book index idx.
func (r *Recorder) Rule(name string, idx int, cited ...int) {
	if !r.enabled {
		return
	}
	r.Event("%s -> judgement %d (cites %v)", name, idx+1, incrAll(cited))
}

// Fail logs a rule application that was rejected.
func (r *Recorder) Fail(name string, reason error) {
	r.Event("%s failed: %v", name, reason)
}

func incrAll(xs []int) []int {
	out := make([]int, len(xs))
	for i, x := range xs {
		out[i] = x + 1
	}
	return out
}
