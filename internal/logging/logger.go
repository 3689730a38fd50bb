// Package logging provides the leveled, optionally colored logger shared by
// every worker in a run. Writes are serialized so lines from concurrent
// encodes never interleave.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/backmassage/texbuild/internal/config"
)

// ANSI colors (empty when disabled).
var (
	Red     = ""
	Green   = ""
	Yellow  = ""
	Orange  = ""
	Blue    = ""
	Cyan    = ""
	Magenta = ""
	NC      = ""
)

// Logger provides leveled, optionally colored logging with optional file sink.
type Logger struct {
	mu      sync.Mutex
	verbose bool
	out     io.Writer
	errOut  io.Writer
	file    *os.File
}

// NewLogger initializes colors from cfg and optionally opens cfg.LogFile for
// appending. Call Close when done.
func NewLogger(cfg *config.Config) (*Logger, error) {
	setColors(colorEnabled(cfg.ColorMode))

	l := &Logger{verbose: cfg.Verbose, out: os.Stdout, errOut: os.Stderr}
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
	}
	return l, nil
}

// New returns an uncolored logger writing INFO-class lines to out and ERROR
// lines to errOut. Used by tests and by embedders that capture output.
func New(out, errOut io.Writer, verbose bool) *Logger {
	return &Logger{verbose: verbose, out: out, errOut: errOut}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, io.Discard, false)
}

func colorEnabled(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return isatty.IsTerminal(os.Stdout.Fd()) && os.Getenv("NO_COLOR") == "" && strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

func setColors(enable bool) {
	if enable {
		Red = "\033[1;91m"
		Green = "\033[1;92m"
		Yellow = "\033[1;93m"
		Orange = "\033[1;38;5;208m"
		Blue = "\033[1;94m"
		Cyan = "\033[1;96m"
		Magenta = "\033[1;95m"
		NC = "\033[0m"
		return
	}
	Red, Green, Yellow, Orange, Blue, Cyan, Magenta, NC = "", "", "", "", "", "", "", ""
}

// Verbose reports whether DEBUG lines are emitted.
func (l *Logger) Verbose() bool { return l.verbose }

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// level describes one log level: its tag, a pointer to its color (resolved
// at write time so setColors takes effect) and whether it goes to errOut.
type level struct {
	tag   string
	color *string
	err   bool
}

var (
	levelInfo    = level{tag: "INFO", color: &Blue}
	levelSuccess = level{tag: "SUCCESS", color: &Green}
	levelWarn    = level{tag: "WARN", color: &Yellow}
	levelError   = level{tag: "ERROR", color: &Red, err: true}
	levelPerf    = level{tag: "PERF", color: &Orange}
	levelDebug   = level{tag: "DEBUG", color: &Cyan}
)

func (l *Logger) emit(lv level, format string, args []any) {
	text := fmt.Sprintf(format, args...)
	ts := time.Now().Format("2006-01-02 15:04:05")
	tag := "[" + lv.tag + "]"

	var b strings.Builder
	b.WriteString(ts)
	b.WriteByte(' ')
	if c := *lv.color; c != "" {
		b.WriteString(c + tag + NC)
	} else {
		b.WriteString(tag)
	}
	b.WriteString(" " + text + "\n")

	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.out
	if lv.err {
		out = l.errOut
	}
	_, _ = io.WriteString(out, b.String())
	if l.file != nil {
		_, _ = io.WriteString(l.file, ts+" "+tag+" "+text+"\n")
	}
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...any) { l.emit(levelInfo, format, args) }

// Success logs at SUCCESS level (green).
func (l *Logger) Success(format string, args ...any) { l.emit(levelSuccess, format, args) }

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...any) { l.emit(levelWarn, format, args) }

// Error logs at ERROR level (red) to the error stream.
func (l *Logger) Error(format string, args ...any) { l.emit(levelError, format, args) }

// Perf logs a slow-encode report at PERF level (orange).
func (l *Logger) Perf(format string, args ...any) { l.emit(levelPerf, format, args) }

// Debug logs at DEBUG level (cyan) only when the logger is verbose.
func (l *Logger) Debug(format string, args ...any) {
	if l.verbose {
		l.emit(levelDebug, format, args)
	}
}
