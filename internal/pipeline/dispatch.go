package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/texbuild/internal/encoder"
	"github.com/backmassage/texbuild/internal/logging"
	"github.com/backmassage/texbuild/internal/script"
)

// State is a dispatcher's lifecycle position. Dispatchers move
// Idle -> Running -> Completed or Cancelled, once.
type State int32

const (
	Idle State = iota
	Running
	Completed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

// CancelToken is the run-wide stop flag, set by the signal handler and
// polled by workers before each new item. A nil token is never cancelled.
type CancelToken struct {
	flag atomic.Bool
}

// Cancel sets the flag. Safe to call repeatedly and from any goroutine.
func (t *CancelToken) Cancel() { t.flag.Store(true) }

// Cancelled reports whether Cancel has been called.
func (t *CancelToken) Cancelled() bool { return t != nil && t.flag.Load() }

// Workers clamps a configured job limit to the usable CPUs, never below 1.
func Workers(limit int) int {
	return max(1, min(limit, runtime.GOMAXPROCS(0)))
}

type lifecycle struct{ v atomic.Int32 }

func (l *lifecycle) get() State  { return State(l.v.Load()) }
func (l *lifecycle) set(s State) { l.v.Store(int32(s)) }

// Direct runs each item's stage chain on a pool of at most Workers
// goroutines. Completion order is unspecified.
type Direct struct {
	Pipeline *encoder.Pipeline
	Workers  int
	Token    *CancelToken
	Log      *logging.Logger
	Stat     StatFunc // Sizes outputs for the summary; nil means os.Stat.

	state lifecycle
}

// State reports where the dispatcher is in its lifecycle.
func (d *Direct) State() State { return d.state.get() }

// Dispatch runs every item and returns the aggregate counts. Once the token
// is cancelled (or ctx is done) no further items start; those are counted
// as cancelled failures.
func (d *Direct) Dispatch(ctx context.Context, items []encoder.Command) RunResult {
	d.state.set(Running)

	var (
		mu  sync.Mutex
		res RunResult
	)
	stopped := func() bool { return d.Token.Cancelled() || ctx.Err() != nil }
	cancelled := func(n int) {
		mu.Lock()
		res.Cancelled += n
		res.Failed += n
		mu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(max(1, d.Workers))

	for i, item := range items {
		if stopped() {
			cancelled(len(items) - i)
			break
		}
		g.Go(func() error {
			if stopped() {
				cancelled(1)
				return nil
			}
			err := d.Pipeline.Run(ctx, item)
			var size int64
			if err == nil {
				size = d.outputSize(item)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed++
				if ctx.Err() != nil {
					res.Cancelled++
				}
				d.logFailure(item, err)
				return nil
			}
			res.Succeeded++
			res.OutputBytes += size
			return nil
		})
	}
	// Workers never return errors; failures are counted instead.
	_ = g.Wait()

	res.State = Completed
	if res.Cancelled > 0 || stopped() {
		res.State = Cancelled
	}
	d.state.set(res.State)
	return res
}

func (d *Direct) outputSize(item encoder.Command) int64 {
	stat := d.Stat
	if stat == nil {
		stat = os.Stat
	}
	info, err := stat(d.Pipeline.Stages.Output(item))
	if err != nil {
		return 0
	}
	return info.Size()
}

func (d *Direct) logFailure(item encoder.Command, err error) {
	if d.Log == nil {
		return
	}
	var se *encoder.StageError
	if errors.As(err, &se) {
		d.Log.Error("%s: %s stage failed (exit %d)", filepath.Base(item.Src), se.Stage, se.ExitCode())
		return
	}
	d.Log.Error("%s: %v", filepath.Base(item.Src), err)
}

// Deferred appends commands to a script and runs it once, through the
// encoder's batch runner, in Finish. It does no work concurrently itself;
// Workers is passed to the batch runner as its job count.
type Deferred struct {
	Script      *script.Script
	Runner      encoder.Runner
	EncoderPath string
	Workers     int
	Token       *CancelToken
	Log         *logging.Logger

	state lifecycle
}

// State reports where the dispatcher is in its lifecycle.
func (d *Deferred) State() State { return d.state.get() }

// Add appends cmd to the script. Call in discovery order.
func (d *Deferred) Add(cmd encoder.Command) error {
	if d.state.get() == Idle {
		d.state.set(Running)
	}
	return d.Script.Append(cmd)
}

// BatchArgs is the encoder invocation that executes the script.
func (d *Deferred) BatchArgs() []string {
	return []string{"script", "-v", "-j", strconv.Itoa(max(1, d.Workers)), "-i", d.Script.Path()}
}

// Finish closes the script and hands it to the batch runner. The batch is
// a single command, so its failure counts as one failed item. An empty
// script is not run.
func (d *Deferred) Finish(ctx context.Context) RunResult {
	d.state.set(Running)
	n := d.Script.Len()
	res := RunResult{State: Completed}
	defer func() { d.state.set(res.State) }()

	if err := d.Script.Close(); err != nil {
		d.logError("cannot write script %s: %v", d.Script.Path(), err)
		res.Failed = 1
		return res
	}
	if n == 0 {
		if d.Log != nil {
			d.Log.Info("script is empty, nothing to run")
		}
		return res
	}
	if d.Token.Cancelled() || ctx.Err() != nil {
		res.Failed, res.Cancelled, res.State = n, n, Cancelled
		return res
	}

	if err := d.Runner.Run(ctx, d.EncoderPath, d.BatchArgs()); err != nil {
		d.logError("script batch failed: %v", err)
		res.Failed = 1
		if ctx.Err() != nil {
			res.Cancelled, res.State = 1, Cancelled
		}
		return res
	}
	res.Succeeded = n
	return res
}

func (d *Deferred) logError(format string, args ...any) {
	if d.Log != nil {
		d.Log.Error(format, args...)
	}
}
