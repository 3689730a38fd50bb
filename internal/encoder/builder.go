package encoder

import (
	"path/filepath"
	"strings"

	"github.com/backmassage/texbuild/internal/classify"
	"github.com/backmassage/texbuild/internal/preset"
)

// OutputExt is the extension of every encoder output. The KTX2 chain writes
// alongside it with OutputExt+"2".
const OutputExt = ".ktx"

// Command is one synthesized encoder invocation, without the encoder path.
type Command struct {
	Args []string
	Src  string
	Dest string
}

// String renders the command the way it appears in logs and kram scripts.
func (c Command) String() string {
	return strings.Join(c.Args, " ")
}

// DestPath returns the output path for src: its base name with the extension
// replaced by [OutputExt], inside dstDir. Sources differing only in
// extension (x.png, x.ktx) share a destination.
func DestPath(src, dstDir string) string {
	base := filepath.Base(src)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dstDir, stem+OutputExt)
}

// Synthesize builds the encode command for src. It returns false when the
// table has no fragment for content, which excludes the file from the run.
//
//	encode <fragment...> -type <dim> [-mipnone] -i <src> -o <dst>
func Synthesize(src, dstDir string, content classify.ContentKind, dim classify.DimensionKind, table preset.Table) (Command, bool) {
	fragment, ok := table.Fragment(content)
	if !ok {
		return Command{}, false
	}

	dest := DestPath(src, dstDir)
	dimFlags := dim.Flags()

	args := make([]string, 0, 1+len(fragment)+len(dimFlags)+4)
	args = append(args, "encode")
	args = append(args, fragment...)
	args = append(args, dimFlags...)
	args = append(args, "-i", src, "-o", dest)

	return Command{Args: args, Src: src, Dest: dest}, true
}
