// Package naming tracks destination names claimed during a run. Outputs are
// named by source base name alone, so sources that differ only in directory
// or extension map to the same file; the detector reports those collisions
// without changing which file wins.
package naming
