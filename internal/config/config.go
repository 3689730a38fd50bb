// Package config holds runtime configuration: defaults, CLI flag binding,
// environment/config-file layering, and validation.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

// --- Enum types for validated string fields ---

// Platform selects the preset table used for every texture in a run.
type Platform string

const (
	PlatformIOS     Platform = "ios"     // ASTC albedo, ETC2 for the rest.
	PlatformAndroid Platform = "android" // ETC2 everywhere.
	PlatformMac     Platform = "mac"     // BC7/BC5/BC4.
	PlatformWin     Platform = "win"     // Same presets as mac.
	PlatformAny     Platform = "any"     // Explicit rgba8, transcoded later via KTX2 + UASTC.
)

// Platforms lists every recognized platform in help-text order.
var Platforms = []Platform{PlatformIOS, PlatformAndroid, PlatformMac, PlatformWin, PlatformAny}

// ParsePlatform returns the Platform for s (case-insensitive) or an error
// naming the accepted values.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Platforms {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w %q (use %s)", ErrUnknownPlatform, s, platformList())
}

func platformList() string {
	names := make([]string, len(Platforms))
	for i, p := range Platforms {
		names[i] = "'" + string(p) + "'"
	}
	return strings.Join(names, ", ")
}

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// ErrUnknownPlatform is returned for any platform outside [Platforms].
var ErrUnknownPlatform = errors.New("unknown platform")

// ScriptFileName is the deferred-mode script written into the platform
// output directory when no explicit path is given.
const ScriptFileName = "kramscript.txt"

// Config holds all runtime settings. It is populated by [DefaultConfig],
// overlaid by [Load], normalized and validated, and then passed (by pointer)
// to the pipeline. Nothing mutates it once dispatch begins.
type Config struct {
	// Paths (set from positional args).
	SrcDir string
	DstDir string // Output root; textures land in DstDir/<platform>/.

	// Target.
	Platform Platform

	// Encode options folded into every preset fragment.
	Quality     int  // Default: 49. Range 0..100.
	MipMax      int  // Default: 1024.
	SkipUnknown bool // Exclude files with no content suffix instead of encoding them as albedo.
	PresetsFile string

	// External tools. Empty post-stage paths disable that stage.
	EncoderPath       string // Default: "kram".
	RepackagePath     string // Default: "ktx2ktx2", used only with KTX2.
	SupercompressPath string // Default: "ktxsc", used only with KTX2.
	VerifyPath        string // Default: "ktx2check", used only with CheckKTX2.

	// Behavior flags.
	Jobs          int  // Default: 64. Clamped to available CPUs at dispatch.
	SkipUnchanged bool // Default: true. Cleared by --force.
	Script        bool // Deferred mode: write a kram script and run it in batch.
	ScriptPath    string
	KTX2          bool // Append the ktx -> ktx2 repackage and supercompress stages.
	CheckKTX2     bool // Verify ktx2 output after repackage and supercompress.
	Uastc         bool // Supercompress with Basis UASTC instead of zstd.
	SlowThreshold time.Duration

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional log file path.
	CheckOnly bool      // Run --check diagnostics and exit.
	List      bool      // Print what a run would build and exit.
}

// DefaultConfig returns a Config with the stock kram build defaults.
func DefaultConfig() Config {
	return Config{
		Quality:           49,
		MipMax:            1024,
		EncoderPath:       "kram",
		RepackagePath:     "ktx2ktx2",
		SupercompressPath: "ktxsc",
		VerifyPath:        "ktx2check",
		Jobs:              64,
		SkipUnchanged:     true,
		SlowThreshold:     time.Second,
		ColorMode:         ColorAuto,
	}
}

// PlatformDir is the directory textures for cfg.Platform are written to.
func (c *Config) PlatformDir() string {
	return filepath.Join(c.DstDir, string(c.Platform))
}

// Normalize applies implied settings: platform "any" always produces KTX2
// with UASTC, and the KTX2 chain cannot run inside kram's batch runner, so it
// turns script mode off. It returns a note for each setting it changed.
func (c *Config) Normalize() []string {
	var notes []string
	if c.Platform == PlatformAny {
		if !c.KTX2 {
			notes = append(notes, "platform 'any' implies --ktx2")
		}
		c.KTX2 = true
		c.Uastc = true
	}
	if c.KTX2 && c.Script {
		notes = append(notes, "--ktx2 disables --script (post stages only run in direct mode)")
		c.Script = false
	}
	if c.Script && c.ScriptPath == "" && c.DstDir != "" && c.Platform != "" {
		c.ScriptPath = filepath.Join(c.PlatformDir(), ScriptFileName)
	}
	return notes
}

// Validate reports every configuration problem at once. When not in
// CheckOnly mode it also requires the source and destination paths.
func (c *Config) Validate() error {
	var result *multierror.Error

	if _, err := ParsePlatform(string(c.Platform)); err != nil && !c.CheckOnly {
		result = multierror.Append(result, err)
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		result = multierror.Append(result, fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", c.ColorMode))
	}

	if c.Quality < 0 || c.Quality > 100 {
		result = multierror.Append(result, fmt.Errorf("quality must be within 0..100 (got %d)", c.Quality))
	}
	if c.MipMax <= 0 {
		result = multierror.Append(result, fmt.Errorf("mipmax must be positive (got %d)", c.MipMax))
	}
	if c.Jobs < 1 {
		result = multierror.Append(result, fmt.Errorf("jobs must be at least 1 (got %d)", c.Jobs))
	}
	if c.EncoderPath == "" {
		result = multierror.Append(result, errors.New("encoder path must not be empty"))
	}
	if c.KTX2 && c.RepackagePath == "" {
		result = multierror.Append(result, errors.New("--ktx2 requires a ktx2ktx2 path"))
	}
	if c.CheckKTX2 && !c.KTX2 {
		result = multierror.Append(result, errors.New("--check-ktx2 requires --ktx2"))
	}

	if !c.CheckOnly {
		if c.SrcDir == "" || c.DstDir == "" {
			result = multierror.Append(result, errors.New("need exactly src_dir and dst_dir"))
		}
		if c.Script && c.ScriptPath == "" {
			result = multierror.Append(result, errors.New("script mode needs a script file path"))
		}
	}

	if result == nil {
		return nil
	}
	result.ErrorFormat = listFormat
	return result.ErrorOrNil()
}

// listFormat renders aggregated validation errors on one line each.
func listFormat(errs []error) string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = "  - " + err.Error()
	}
	return fmt.Sprintf("%d configuration errors:\n%s", len(errs), strings.Join(lines, "\n"))
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// ValidatePaths ensures the resolved output directory is not inside (or
// equal to) the resolved source directory, so a run never discovers its own
// .ktx output as fresh input. Both arguments must be absolute, symlink-resolved.
func (c *Config) ValidatePaths(srcAbs, dstAbs string) error {
	sep := string(filepath.Separator)
	if dstAbs == srcAbs || strings.HasPrefix(dstAbs+sep, srcAbs+sep) {
		return errors.New("output directory must not be inside source directory")
	}
	return nil
}
