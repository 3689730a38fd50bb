package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/backmassage/texbuild/internal/check"
	"github.com/backmassage/texbuild/internal/config"
	"github.com/backmassage/texbuild/internal/display"
	"github.com/backmassage/texbuild/internal/logging"
	"github.com/backmassage/texbuild/internal/pipeline"
	"github.com/backmassage/texbuild/internal/preset"
)

// errReported marks failures that were already logged; execute prints
// nothing more for them.
var errReported = errors.New("texbuild: run failed")

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "texbuild -p <platform> [flags] <src_dir> <dst_dir>",
		Short: "Incremental, parallel texture builds with kram",
		Long: `texbuild walks src_dir, classifies each .png/.ktx by its name suffix
(-a albedo, -n normal, -sdf, -metal, -mask; -3d, -cube, -1darray, -2darray, -cubearray),
and encodes every texture whose output in dst_dir/<platform> is missing or older
than its source.

Settings can also come from TEXBUILD_* environment variables (TEXBUILD_JOBS,
TEXBUILD_SCRIPT_FILE, ...) or a --config file using the flag names as keys.`,
		Version:       version + " (" + commit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}
	config.BindFlags(cmd.Flags())
	return cmd
}

// execute runs the root command and maps the outcome to an exit status.
func execute(args []string) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "texbuild: %v\n", err)
		}
		return 1
	}
	return 0
}

func runRoot(cmd *cobra.Command, args []string) error {
	// Bootstrap: the logger doesn't exist yet, so config errors are returned
	// and printed by execute.
	v, err := config.NewViper(cmd.Flags())
	if err != nil {
		return err
	}
	cfg, err := config.Load(v, args)
	if err != nil {
		return err
	}
	notes := cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	display.PrintBanner(os.Stdout, "v"+version)
	for _, n := range notes {
		log.Warn("%s", n)
	}

	if cfg.CheckOnly {
		if missing := check.RunCheck(&cfg, log); missing > 0 {
			log.Warn("%d tool(s) unavailable", missing)
			return errReported
		}
		return nil
	}

	if err := validatePaths(&cfg); err != nil {
		log.Error("%v", err)
		return errReported
	}

	table, err := buildTable(&cfg)
	if err != nil {
		log.Error("%v", err)
		return errReported
	}

	if cfg.List {
		pipeline.Report(os.Stdout, &cfg, table, nil, log)
		return nil
	}

	// Fail fast if kram or an enabled KTX tool is missing.
	if err := check.CheckDeps(&cfg); err != nil {
		log.Error("%v", err)
		return errReported
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	token := &pipeline.CancelToken{}
	stopSignals := handleSignals(token, cancel, log)
	defer stopSignals()

	res, err := pipeline.Run(ctx, &cfg, table, pipeline.Deps{}, log, token)
	if err != nil {
		log.Error("%v", err)
		return errReported
	}
	if !res.OK() {
		return errReported
	}
	return nil
}

// validatePaths requires an existing source directory and an output root
// outside it, so a run never discovers its own output.
func validatePaths(cfg *config.Config) error {
	srcAbs, err := absPath(cfg.SrcDir)
	if err != nil {
		return fmt.Errorf("%w: %s", pipeline.ErrNoSource, cfg.SrcDir)
	}
	if err := os.MkdirAll(cfg.DstDir, 0o755); err != nil {
		return fmt.Errorf("cannot create output directory %s: %w", cfg.DstDir, err)
	}
	dstAbs, err := absPath(cfg.DstDir)
	if err != nil {
		return fmt.Errorf("cannot resolve output path %s: %w", cfg.DstDir, err)
	}
	if err := cfg.ValidatePaths(srcAbs, dstAbs); err != nil {
		return fmt.Errorf("%w; choose an output path outside %s", err, cfg.SrcDir)
	}
	return nil
}

// buildTable assembles the platform preset table with any YAML overrides.
func buildTable(cfg *config.Config) (preset.Table, error) {
	opts := preset.OptionsFromConfig(cfg)
	if cfg.PresetsFile != "" {
		overrides, err := preset.LoadOverrides(cfg.PresetsFile)
		if err != nil {
			return preset.Table{}, err
		}
		opts.Overrides = overrides.For(cfg.Platform)
	}
	return preset.Build(cfg.Platform, opts)
}

// handleSignals makes the first SIGINT/SIGTERM stop new items from
// starting and the second kill in-flight encoders. The returned func
// unregisters the handler.
func handleSignals(token *pipeline.CancelToken, cancel context.CancelFunc, log *logging.Logger) func() {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		select {
		case <-sigCh:
			log.Warn("Received interrupt, finishing current items (interrupt again to abort)")
			token.Cancel()
		case <-done:
			return
		}
		select {
		case <-sigCh:
			log.Warn("Aborting in-flight encodes")
			cancel()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}

// absPath returns the absolute path with symlinks resolved, for comparing
// the source and output hierarchies.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
