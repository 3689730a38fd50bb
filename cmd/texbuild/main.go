// Command texbuild builds a source texture tree into platform-specific KTX
// (and optionally supercompressed KTX2) files with the kram encoder,
// rebuilding only what changed.
//
//	texbuild -p <platform> [flags] <src_dir> <dst_dir>
package main

import (
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// version and commit are set at build time via -ldflags.
var (
	version = "0.1.0-dev"
	commit  = "unknown"
)

func simpleLogger(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, msg+"\n", args...)
}

func init() {
	// Worker count is clamped to GOMAXPROCS, so honor cgroup CPU quotas.
	if _, err := maxprocs.Set(maxprocs.Logger(simpleLogger)); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set maxprocs: %v\n", err)
	}
}

func main() {
	os.Exit(execute(os.Args[1:]))
}
