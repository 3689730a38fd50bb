// Package display formats values for human-facing output.
package display

import (
	"github.com/dustin/go-humanize"
)

// FormatBytes returns a binary-unit size such as "512 B", "1.5 KiB" or
// "21 MiB". Negative sizes are reported as zero.
func FormatBytes(n int64) string {
	return humanize.IBytes(uint64(max(n, 0)))
}
