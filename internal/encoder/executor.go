package encoder

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/backmassage/texbuild/internal/logging"
)

// Runner runs one external command to completion. A nil error means exit
// status zero.
type Runner interface {
	Run(ctx context.Context, name string, args []string) error
}

// ExecRunner runs commands as child processes. Output is captured and only
// shown when the command fails, or streamed live when Verbose is set.
type ExecRunner struct {
	Log     *logging.Logger
	Verbose bool
}

// NewExecRunner returns an ExecRunner logging to log.
func NewExecRunner(log *logging.Logger, verbose bool) *ExecRunner {
	return &ExecRunner{Log: log, Verbose: verbose}
}

// Run logs and executes name with args. Cancelling ctx kills the process.
func (r *ExecRunner) Run(ctx context.Context, name string, args []string) error {
	line := commandLine(name, args)
	r.Log.Info("running %s", line)

	cmd := exec.CommandContext(ctx, name, args...)

	var outBuf bytes.Buffer
	if r.Verbose {
		cmd.Stdout = io.MultiWriter(&outBuf, os.Stdout)
		cmd.Stderr = io.MultiWriter(&outBuf, os.Stderr)
	} else {
		cmd.Stdout = &outBuf
		cmd.Stderr = &outBuf
	}

	if err := cmd.Run(); err != nil {
		r.Log.Error("cmd: failed %s", line)
		if !r.Verbose {
			logOutput(r.Log, outBuf.String())
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// logOutput prints the tail of a failed command's combined output.
func logOutput(log *logging.Logger, output string) {
	output = strings.TrimSpace(output)
	if output == "" {
		return
	}
	lines := strings.Split(output, "\n")
	start := 0
	if len(lines) > 20 {
		start = len(lines) - 20
	}
	for _, l := range lines[start:] {
		log.Error("  %s", l)
	}
}
