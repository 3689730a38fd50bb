// Package check provides tool diagnostics (--check mode) and the
// pre-run dependency validation (CheckDeps) for kram and the KTX tools.
package check

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/hashicorp/go-multierror"

	"github.com/backmassage/texbuild/internal/config"
)

// ErrToolNotFound is wrapped by CheckDeps for every missing executable.
var ErrToolNotFound = errors.New("tool not found")

// Logger is the minimal logging interface needed by RunCheck.
type Logger interface {
	Info(string, ...any)
	Success(string, ...any)
	Warn(string, ...any)
	Error(string, ...any)
}

// Tool is one external executable the build can invoke.
type Tool struct {
	Name    string // Flag name, e.g. "ktxsc".
	Path    string // Configured path or bare command name.
	Purpose string
}

// Tools lists every external tool cfg knows about, required or not.
func Tools(cfg *config.Config) []Tool {
	return []Tool{
		{"kram", cfg.EncoderPath, "encoder"},
		{"ktx2ktx2", cfg.RepackagePath, "ktx -> ktx2 repackage"},
		{"ktxsc", cfg.SupercompressPath, "ktx2 supercompression"},
		{"ktx2check", cfg.VerifyPath, "ktx2 verification"},
	}
}

// Required lists the tools the configured run will invoke.
func Required(cfg *config.Config) []Tool {
	all := Tools(cfg)
	req := []Tool{all[0]}
	if cfg.KTX2 {
		req = append(req, all[1], all[2])
		if cfg.CheckKTX2 {
			req = append(req, all[3])
		}
	}
	return req
}

// RunCheck prints the availability of every tool. It is informational and
// reports the number of tools missing.
func RunCheck(cfg *config.Config, log Logger) int {
	log.Info("=== System Check ===")
	log.Info("CPUs available: %d (jobs limit %d)", runtime.GOMAXPROCS(0), cfg.Jobs)

	missing := 0
	for _, t := range Tools(cfg) {
		if t.Path == "" {
			log.Warn("%s: not configured", t.Name)
			missing++
			continue
		}
		resolved, err := exec.LookPath(t.Path)
		if err != nil {
			log.Error("%s not found (%s): %s", t.Name, t.Purpose, t.Path)
			missing++
			continue
		}
		log.Success("%s: %s", t.Name, resolved)
	}
	return missing
}

// CheckDeps verifies that every tool the run needs can be executed. All
// missing tools are reported together; each wraps [ErrToolNotFound].
func CheckDeps(cfg *config.Config) error {
	var result *multierror.Error
	for _, t := range Required(cfg) {
		if _, err := exec.LookPath(t.Path); err != nil {
			result = multierror.Append(result, fmt.Errorf("%w: %s (%s)", ErrToolNotFound, t.Name, t.Path))
		}
	}
	return result.ErrorOrNil()
}
