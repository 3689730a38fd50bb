package pipeline

import (
	"os"
	"time"
)

// StatFunc matches os.Stat; tests substitute their own.
type StatFunc func(name string) (os.FileInfo, error)

// IsStale reports whether dest must be rebuilt from a source last modified
// at srcMod, using os.Stat.
func IsStale(srcMod time.Time, dest string, skipUnchanged bool) bool {
	return isStale(os.Stat, srcMod, dest, skipUnchanged)
}

// isStale is true unless skipping is enabled and dest exists with a
// modification time strictly after srcMod. Any stat error counts as a
// missing destination, so the file is rebuilt.
func isStale(stat StatFunc, srcMod time.Time, dest string, skipUnchanged bool) bool {
	if !skipUnchanged {
		return true
	}
	info, err := stat(dest)
	if err != nil {
		return true
	}
	return !info.ModTime().After(srcMod)
}
