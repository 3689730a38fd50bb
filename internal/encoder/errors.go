package encoder

import (
	"errors"
	"fmt"
	"strings"
)

// Stage names one step of the per-texture chain.
type Stage string

const (
	StageEncode        Stage = "encode"
	StageRepackage     Stage = "repackage"
	StageVerify        Stage = "verify"
	StageSupercompress Stage = "supercompress"
	StageVerifySC      Stage = "verify-supercompressed"
)

// StageError reports the stage that stopped a texture's chain and the full
// command that failed.
type StageError struct {
	Stage Stage
	Name  string
	Args  []string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %s: %v", e.Stage, commandLine(e.Name, e.Args), e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// ExitCode returns the failing process's exit status, or -1 when it did not
// run to completion (not found, killed by signal).
func (e *StageError) ExitCode() int {
	var exitErr interface{ ExitCode() int }
	if errors.As(e.Err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
