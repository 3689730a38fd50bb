package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/backmassage/texbuild/internal/config"
	"github.com/backmassage/texbuild/internal/display"
	"github.com/backmassage/texbuild/internal/encoder"
	"github.com/backmassage/texbuild/internal/logging"
	"github.com/backmassage/texbuild/internal/naming"
	"github.com/backmassage/texbuild/internal/preset"
	"github.com/backmassage/texbuild/internal/script"
)

// ErrNoSource is returned when the source root is missing or not a directory.
var ErrNoSource = errors.New("source directory not found")

// Deps are the run's process and filesystem seams.
type Deps struct {
	Runner encoder.Runner // nil means an encoder.ExecRunner logging to the run's logger.
	Stat   StatFunc       // nil means os.Stat.
}

// Run builds every stale texture under cfg.SrcDir into cfg.PlatformDir().
// It returns an error only for problems that stop the run before dispatch;
// item failures are counted in the result.
func Run(ctx context.Context, cfg *config.Config, table preset.Table, deps Deps, log *logging.Logger, token *CancelToken) (RunResult, error) {
	start := time.Now()
	if deps.Stat == nil {
		deps.Stat = os.Stat
	}
	if deps.Runner == nil {
		deps.Runner = encoder.NewExecRunner(log, cfg.Verbose)
	}

	if info, err := deps.Stat(cfg.SrcDir); err != nil || !info.IsDir() {
		return RunResult{}, fmt.Errorf("%w: %s", ErrNoSource, cfg.SrcDir)
	}
	dstDir := cfg.PlatformDir()
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return RunResult{}, fmt.Errorf("create output directory: %w", err)
	}

	workers := Workers(cfg.Jobs)
	logRunHeader(cfg, table, workers, log)

	var deferred *Deferred
	if cfg.Script {
		s, err := script.Create(cfg.ScriptPath)
		if err != nil {
			return RunResult{}, err
		}
		deferred = &Deferred{
			Script:      s,
			Runner:      deps.Runner,
			EncoderPath: cfg.EncoderPath,
			Workers:     workers,
			Token:       token,
			Log:         log,
		}
	}

	var (
		res        RunResult
		items      []encoder.Command
		collisions = naming.NewCollisionDetector()
	)
	for item := range Plan(cfg, table, deps.Stat, log) {
		res.Total++
		rel := relPath(cfg.SrcDir, item.Source.Path)

		if item.Action == ActionExclude {
			res.Excluded++
			log.Debug("exclude (no %s preset): %s", item.Content, rel)
			continue
		}
		if owner, hit := collisions.Claim(item.Source.Path, item.Cmd.Dest); hit {
			log.Warn("%s and %s both write %s; the later build wins", relPath(cfg.SrcDir, owner), rel, item.Cmd.Dest)
		}
		if item.Action == ActionSkip {
			res.Skipped++
			log.Debug("up to date: %s", rel)
			continue
		}
		// After an interrupt the walk still runs so every texture is
		// counted, but nothing more is queued.
		if token.Cancelled() {
			res.Cancelled++
			res.Failed++
			continue
		}

		if deferred == nil {
			items = append(items, item.Cmd)
			continue
		}
		if err := deferred.Add(item.Cmd); err != nil {
			log.Error("%v", err)
			res.Failed++
		}
	}

	var dr RunResult
	if deferred != nil {
		log.Info("Wrote %d commands to %s", deferred.Script.Len(), cfg.ScriptPath)
		dr = deferred.Finish(ctx)
	} else {
		direct := &Direct{
			Pipeline: &encoder.Pipeline{
				Runner:        deps.Runner,
				Stages:        encoder.StagesFromConfig(cfg),
				SlowThreshold: cfg.SlowThreshold,
				Log:           log,
			},
			Workers: workers,
			Token:   token,
			Log:     log,
			Stat:    deps.Stat,
		}
		log.Info("Building %d of %d textures", len(items), res.Total)
		dr = direct.Dispatch(ctx, items)
	}
	res.Succeeded = dr.Succeeded
	res.Failed += dr.Failed
	res.Cancelled += dr.Cancelled
	res.OutputBytes = dr.OutputBytes
	res.State = dr.State
	if token.Cancelled() {
		res.State = Cancelled
	}
	if n := collisions.Collisions(); n > 0 {
		log.Warn("%d destination collisions", n)
	}

	logSummary(log, &res, time.Since(start))
	return res, nil
}

func logRunHeader(cfg *config.Config, table preset.Table, workers int, log *logging.Logger) {
	mode := "direct"
	if cfg.Script {
		mode = "script"
	}
	log.Info("Platform: %s, quality %d, mipmax %d", cfg.Platform, cfg.Quality, cfg.MipMax)
	log.Info("Source: %s -> %s", cfg.SrcDir, cfg.PlatformDir())
	log.Info("Mode: %s, %d workers", mode, workers)
	if cfg.KTX2 {
		codec := "zstd"
		if cfg.Uastc {
			codec = "uastc"
		}
		log.Info("KTX2: repackage + %s supercompression (verify: %t)", codec, cfg.CheckKTX2)
	}
	if !cfg.SkipUnchanged {
		log.Info("Force: rebuilding regardless of modstamps")
	}
	if log.Verbose() {
		for _, line := range strings.Split(strings.TrimSuffix(table.String(), "\n"), "\n") {
			log.Debug("preset %s", line)
		}
	}
}

func logSummary(log *logging.Logger, res *RunResult, took time.Duration) {
	log.Info("took total %.3fs", took.Seconds())
	switch {
	case res.State == Cancelled:
		log.Warn("%s", res.Summary())
	case res.Failed > 0:
		log.Error("%s", res.Summary())
	default:
		log.Success("%s", res.Summary())
	}
	if res.OutputBytes > 0 {
		log.Info("  Output written: %s", display.FormatBytes(res.OutputBytes))
	}
}
