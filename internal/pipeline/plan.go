package pipeline

import (
	"iter"
	"os"
	"path/filepath"

	"github.com/backmassage/texbuild/internal/classify"
	"github.com/backmassage/texbuild/internal/config"
	"github.com/backmassage/texbuild/internal/encoder"
	"github.com/backmassage/texbuild/internal/logging"
	"github.com/backmassage/texbuild/internal/preset"
)

// Action is what a run does with one accepted source file.
type Action int

const (
	ActionBuild   Action = iota // Stale: dispatch cmd.
	ActionSkip                  // Output is newer than the source.
	ActionExclude               // No preset for the file's content kind.
)

func (a Action) String() string {
	switch a {
	case ActionBuild:
		return "build"
	case ActionSkip:
		return "up to date"
	case ActionExclude:
		return "excluded"
	}
	return "unknown"
}

// PlannedItem is an accepted source file with its classification and, for
// anything not excluded, the synthesized command.
type PlannedItem struct {
	Source  SourceFile
	Content classify.ContentKind
	Dim     classify.DimensionKind
	Cmd     encoder.Command
	Action  Action
}

// Plan yields a PlannedItem for every accepted texture under cfg.SrcDir, in
// discovery order. Unreadable entries and unsupported extensions are logged
// and skipped. Hidden files are skipped silently. A nil stat means os.Stat.
func Plan(cfg *config.Config, table preset.Table, stat StatFunc, log *logging.Logger) iter.Seq[PlannedItem] {
	if stat == nil {
		stat = os.Stat
	}
	dstDir := cfg.PlatformDir()
	onErr := func(path string, err error) {
		log.Warn("skip (unreadable): %s: %v", path, err)
	}

	return func(yield func(PlannedItem) bool) {
		for src := range Walk(cfg.SrcDir, onErr) {
			switch Accept(src.Path) {
			case Hidden:
				continue
			case Unsupported:
				log.Info("skip (unsupported extension): %s", relPath(cfg.SrcDir, src.Path))
				continue
			}

			content, dim := classify.Classify(src.Path)
			item := PlannedItem{Source: src, Content: content, Dim: dim}

			cmd, ok := encoder.Synthesize(src.Path, dstDir, content, dim, table)
			switch {
			case !ok:
				item.Action = ActionExclude
			case isStale(stat, src.ModTime, cmd.Dest, cfg.SkipUnchanged):
				item.Cmd, item.Action = cmd, ActionBuild
			default:
				item.Cmd, item.Action = cmd, ActionSkip
			}

			if !yield(item) {
				return
			}
		}
	}
}

// relPath shortens path for log lines, falling back to the full path.
func relPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}
