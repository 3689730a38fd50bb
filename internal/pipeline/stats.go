package pipeline

import (
	"fmt"
	"strings"
)

// RunResult is the aggregate outcome of one run.
//
// Total counts accepted texture files. Each lands in exactly one of
// Excluded (no preset for its content), Skipped (output up to date), or the
// dispatched set. Failed includes Cancelled.
type RunResult struct {
	Total       int
	Excluded    int
	Skipped     int
	Succeeded   int
	Failed      int
	Cancelled   int
	OutputBytes int64
	State       State
}

// OK reports whether the run had no failures and was not interrupted, which
// maps to exit status 0.
func (r RunResult) OK() bool { return r.Failed == 0 && r.State != Cancelled }

// Dispatched is the number of items handed to the dispatcher.
func (r RunResult) Dispatched() int { return r.Total - r.Excluded - r.Skipped }

// Summary renders the one-line "Done:" report.
func (r RunResult) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Done: %d built, %d skipped, %d failed", r.Succeeded, r.Skipped, r.Failed)
	switch {
	case r.Cancelled > 0:
		fmt.Fprintf(&b, " (%d cancelled)", r.Cancelled)
	case r.State == Cancelled:
		b.WriteString(" (interrupted)")
	}
	if r.Excluded > 0 {
		fmt.Fprintf(&b, ", %d excluded", r.Excluded)
	}
	return b.String()
}
