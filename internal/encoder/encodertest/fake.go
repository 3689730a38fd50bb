// Package encodertest provides a scriptable encoder.Runner for tests.
package encodertest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ErrFailed is returned for commands matched by Runner.FailOn.
var ErrFailed = errors.New("exit status 1")

// Call records one Run invocation.
type Call struct {
	Name string
	Args []string
}

// Line renders the call as a command line.
func (c Call) Line() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Runner records every call, optionally sleeps to simulate work, and fails
// commands whose line contains any FailOn substring. It tracks the peak
// number of concurrent calls. Safe for concurrent use.
type Runner struct {
	FailOn []string
	Delay  time.Duration

	// OnRun, when set, is called at the start of every Run.
	OnRun func(Call)

	mu       sync.Mutex
	calls    []Call
	inFlight atomic.Int32
	peak     atomic.Int32
}

// Run implements encoder.Runner.
func (r *Runner) Run(ctx context.Context, name string, args []string) error {
	c := Call{Name: name, Args: append([]string(nil), args...)}

	n := r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	for {
		p := r.peak.Load()
		if n <= p || r.peak.CompareAndSwap(p, n) {
			break
		}
	}

	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()

	if r.OnRun != nil {
		r.OnRun(c)
	}

	if r.Delay > 0 {
		select {
		case <-time.After(r.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	line := c.Line()
	for _, s := range r.FailOn {
		if strings.Contains(line, s) {
			return ErrFailed
		}
	}
	return nil
}

// Calls returns a copy of the recorded calls in start order.
func (r *Runner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Lines returns the recorded calls as command lines.
func (r *Runner) Lines() []string {
	calls := r.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Line()
	}
	return out
}

// Peak returns the highest number of calls that were running at once.
func (r *Runner) Peak() int { return int(r.peak.Load()) }
