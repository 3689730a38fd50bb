package pipeline

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"

	"github.com/backmassage/texbuild/internal/config"
	"github.com/backmassage/texbuild/internal/logging"
	"github.com/backmassage/texbuild/internal/preset"
)

const maxNameWidth = 50

// Report writes a table of every accepted texture with its classification
// and the action a run would take, without running anything. The returned
// result carries the Total, Excluded and Skipped counts.
func Report(w io.Writer, cfg *config.Config, presets preset.Table, stat StatFunc, log *logging.Logger) RunResult {
	var (
		res  RunResult
		rows [][]string
		acts []Action
	)
	for item := range Plan(cfg, presets, stat, log) {
		res.Total++
		switch item.Action {
		case ActionExclude:
			res.Excluded++
		case ActionSkip:
			res.Skipped++
		}
		rows = append(rows, []string{
			truncateName(relPath(cfg.SrcDir, item.Source.Path)),
			item.Content.String(),
			item.Dim.String(),
			item.Action.String(),
		})
		acts = append(acts, item.Action)
	}

	if len(rows) == 0 {
		log.Warn("No textures found in %s", cfg.SrcDir)
		return res
	}
	fmt.Fprintln(w, renderReport(w, rows, acts))
	log.Info("%d textures: %d to build, %d up to date, %d excluded",
		res.Total, res.Dispatched(), res.Skipped, res.Excluded)
	return res
}

// truncateName keeps the tail of long paths; suffixes carry the
// classification.
func truncateName(name string) string {
	r := []rune(name)
	if len(r) <= maxNameWidth {
		return name
	}
	return "…" + string(r[len(r)-maxNameWidth+1:])
}

func renderReport(w io.Writer, rows [][]string, acts []Action) string {
	re := lipgloss.NewRenderer(w)
	if logging.NC == "" {
		re.SetColorProfile(termenv.Ascii)
	} else {
		re.SetColorProfile(termenv.ANSI)
	}

	header := re.NewStyle().Bold(true).Padding(0, 1)
	cell := re.NewStyle().Padding(0, 1)
	build := cell.Foreground(lipgloss.Color("2"))
	excluded := cell.Foreground(lipgloss.Color("3"))

	const actionCol = 3
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(re.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers("File", "Content", "Dimension", "Action").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case col != actionCol || row < 0 || row >= len(acts):
				return cell
			case acts[row] == ActionBuild:
				return build
			case acts[row] == ActionExclude:
				return excluded
			}
			return cell
		})
	return t.Render()
}
