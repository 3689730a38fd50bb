// Package script writes the deferred-mode command script: one encoder
// command per line, without the encoder path, consumed by "kram script".
package script

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrClosed is returned by Append after Close.
var ErrClosed = errors.New("script: closed")

// Script is an append-only command file. It has a single owner and is not
// safe for concurrent use.
type Script struct {
	path string
	f    *os.File
	w    *bufio.Writer
	n    int
}

// Create truncates (or creates) the script at path, making parent
// directories as needed.
func Create(path string) (*Script, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create script dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create script: %w", err)
	}
	return &Script{path: path, f: f, w: bufio.NewWriter(f)}, nil
}

// Path is the file the script is written to.
func (s *Script) Path() string { return s.path }

// Len is the number of lines appended so far.
func (s *Script) Len() int { return s.n }

// Append writes cmd as one newline-terminated line.
func (s *Script) Append(cmd fmt.Stringer) error {
	if s.f == nil {
		return ErrClosed
	}
	if _, err := s.w.WriteString(cmd.String() + "\n"); err != nil {
		return fmt.Errorf("append script: %w", err)
	}
	s.n++
	return nil
}

// Close flushes buffered lines and closes the file. Calling it again is a
// no-op.
func (s *Script) Close() error {
	if s.f == nil {
		return nil
	}
	flushErr := s.w.Flush()
	closeErr := s.f.Close()
	s.f = nil
	if flushErr != nil {
		return fmt.Errorf("flush script: %w", flushErr)
	}
	return closeErr
}
