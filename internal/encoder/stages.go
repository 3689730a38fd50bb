package encoder

import (
	"context"
	"path/filepath"
	"time"

	"github.com/backmassage/texbuild/internal/config"
	"github.com/backmassage/texbuild/internal/logging"
)

// Stages holds the executable for each stage. An empty post-stage path
// disables that stage; Encoder is required.
type Stages struct {
	Encoder       string
	Repackage     string // ktx2ktx2: ktx -> ktx2.
	Supercompress string // ktxsc: rewrites the ktx2 in place.
	Verify        string // ktx2check: run after repackage and after supercompress.
	Uastc         bool   // Basis UASTC supercompression instead of zstd.
}

// StagesFromConfig selects the stages enabled by cfg.
func StagesFromConfig(cfg *config.Config) Stages {
	s := Stages{Encoder: cfg.EncoderPath}
	if !cfg.KTX2 {
		return s
	}
	s.Repackage = cfg.RepackagePath
	s.Supercompress = cfg.SupercompressPath
	s.Uastc = cfg.Uastc
	if cfg.CheckKTX2 {
		s.Verify = cfg.VerifyPath
	}
	return s
}

// KTX2Path is where the repackage stage writes the ktx2 for an encoder
// output path.
func KTX2Path(dest string) string { return dest + "2" }

// Output is the final artifact path the stages leave behind for cmd.
func (s Stages) Output(cmd Command) string {
	if s.Repackage != "" {
		return KTX2Path(cmd.Dest)
	}
	return cmd.Dest
}

// Pipeline runs the stage chain for one texture at a time. It holds no
// per-item state and is safe for concurrent use when its Runner is.
type Pipeline struct {
	Runner        Runner
	Stages        Stages
	SlowThreshold time.Duration // Encodes slower than this are reported; zero disables.
	Log           *logging.Logger
}

type step struct {
	stage Stage
	name  string
	args  []string
}

// plan lists the invocations Run performs for cmd, in order.
func (p *Pipeline) plan(cmd Command) []step {
	steps := []step{{StageEncode, p.Stages.Encoder, cmd.Args}}
	if p.Stages.Repackage == "" {
		return steps
	}

	ktx2 := KTX2Path(cmd.Dest)
	steps = append(steps, step{StageRepackage, p.Stages.Repackage, []string{"-f", "-o", ktx2, cmd.Dest}})
	if p.Stages.Verify != "" {
		steps = append(steps, step{StageVerify, p.Stages.Verify, []string{"-q", ktx2}})
	}
	if p.Stages.Supercompress != "" {
		// zstd works on everything; UASTC only on content that isn't
		// already block encoded.
		args := []string{"--zcmp", "3", "--threads", "1", ktx2}
		if p.Stages.Uastc {
			args = []string{"--uastc", "2", "--uastc_rdo_q", "1.0", "--threads", "1", ktx2}
		}
		steps = append(steps, step{StageSupercompress, p.Stages.Supercompress, args})
	}
	// The final check runs even without a supercompressor.
	if p.Stages.Verify != "" {
		steps = append(steps, step{StageVerifySC, p.Stages.Verify, []string{"-q", ktx2}})
	}
	return steps
}

// Run executes every enabled stage for cmd in order and stops at the first
// failure, returning it as a *StageError.
func (p *Pipeline) Run(ctx context.Context, cmd Command) error {
	for _, s := range p.plan(cmd) {
		start := time.Now()
		if err := p.Runner.Run(ctx, s.name, s.args); err != nil {
			return &StageError{Stage: s.stage, Name: s.name, Args: s.args, Err: err}
		}
		if s.stage == StageEncode {
			p.reportSlow(cmd, time.Since(start))
		}
	}
	return nil
}

func (p *Pipeline) reportSlow(cmd Command, took time.Duration) {
	if p.SlowThreshold <= 0 || took <= p.SlowThreshold || p.Log == nil {
		return
	}
	p.Log.Perf("perf: encode %s took %.3fs", filepath.Base(cmd.Dest), took.Seconds())
}
