package pipeline

import (
	"iter"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// sourceExtensions are the texture containers the encoder reads (lowercase,
// with leading dot). The KTX2 chain's own .ktx2 output is not an input.
var sourceExtensions = map[string]bool{
	".png": true,
	".ktx": true,
}

// SourceFile is one regular file found under the source root.
type SourceFile struct {
	Path    string
	ModTime time.Time
}

// Verdict says whether a discovered file is encoder input.
type Verdict int

const (
	Accepted    Verdict = iota
	Hidden              // Dot-files such as .DS_Store; skipped without a log line.
	Unsupported         // Any other extension; skipped with a diagnostic.
)

// Accept classifies path by its base name and extension.
func Accept(path string) Verdict {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return Hidden
	}
	if sourceExtensions[strings.ToLower(filepath.Ext(base))] {
		return Accepted
	}
	return Unsupported
}

// Walk lazily yields every regular file under root, depth first with each
// directory's entries in lexical order. Hidden directories (.git, .cache)
// below root are not entered. Symlinks are followed; a directory
// reached twice (through a link cycle, for instance) is walked once. Entries
// that cannot be read or stat'd are passed to onErr and skipped.
func Walk(root string, onErr func(path string, err error)) iter.Seq[SourceFile] {
	return func(yield func(SourceFile) bool) {
		w := &walker{onErr: onErr, seen: make(map[string]bool)}
		w.walk(root, yield)
	}
}

type walker struct {
	onErr func(string, error)
	seen  map[string]bool
}

func (w *walker) report(path string, err error) {
	if w.onErr != nil {
		w.onErr(path, err)
	}
}

// walk returns false once the consumer stops iterating.
func (w *walker) walk(dir string, yield func(SourceFile) bool) bool {
	if real, err := filepath.EvalSymlinks(dir); err == nil {
		if w.seen[real] {
			return true
		}
		w.seen[real] = true
	}

	// ReadDir returns the entries it managed to read alongside the error.
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.report(dir, err)
	}

	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		info, err := os.Stat(path)
		if err != nil {
			w.report(path, err)
			continue
		}
		switch {
		case info.IsDir():
			if strings.HasPrefix(e.Name(), ".") {
				continue
			}
			if !w.walk(path, yield) {
				return false
			}
		case info.Mode().IsRegular():
			if !yield(SourceFile{Path: path, ModTime: info.ModTime()}) {
				return false
			}
		}
	}
	return true
}
