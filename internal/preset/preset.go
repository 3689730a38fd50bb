// Package preset builds the per-run table mapping each content kind to the
// encoder argument fragment for the selected platform. A kind with no
// fragment is excluded from the run entirely.
package preset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/backmassage/texbuild/internal/classify"
	"github.com/backmassage/texbuild/internal/config"
)

// Table is an immutable ContentKind -> fragment lookup. The zero Table skips
// every kind.
type Table struct {
	fragments map[classify.ContentKind][]string
}

// NewTable builds a Table from fragment text. Kinds missing from m, or
// mapped to blank text, are skipped.
func NewTable(m map[classify.ContentKind]string) Table {
	t := Table{fragments: make(map[classify.ContentKind][]string, len(m))}
	for kind, text := range m {
		if f := strings.Fields(text); len(f) > 0 {
			t.fragments[kind] = f
		}
	}
	return t
}

// Fragment returns a copy of the encoder arguments for kind, or false when
// files of that kind must be skipped.
func (t Table) Fragment(kind classify.ContentKind) ([]string, bool) {
	f, ok := t.fragments[kind]
	if !ok {
		return nil, false
	}
	return append([]string(nil), f...), true
}

// String renders the table one kind per line, for verbose run headers.
func (t Table) String() string {
	var b strings.Builder
	for _, kind := range classify.ContentKinds {
		f, ok := t.fragments[kind]
		text := "(skip)"
		if ok {
			text = strings.Join(f, " ")
		}
		fmt.Fprintf(&b, "%-15s %s\n", kind, text)
	}
	return b.String()
}

// Options are the encode settings folded into every non-empty fragment.
type Options struct {
	Quality     int
	MipMax      int
	Verbose     bool
	SkipUnknown bool // Otherwise unknown content is encoded with the albedo preset.

	// Overrides replace the platform's built-in fragment per kind; an empty
	// string excludes the kind.
	Overrides map[classify.ContentKind]string
}

// OptionsFromConfig derives Options from the run configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Quality:     cfg.Quality,
		MipMax:      cfg.MipMax,
		Verbose:     cfg.Verbose,
		SkipUnknown: cfg.SkipUnknown,
	}
}

// base holds the built-in fragments. Note sdf and signed data look odd in
// image previewers; they are not set up for signed data.
var base = map[config.Platform]map[classify.ContentKind]string{
	// astc for albedo since it has more quality settings; etc2 elsewhere is
	// smaller and has more bits per channel.
	config.PlatformIOS: {
		classify.ContentAlbedo:         "-f astc4x4 -srgb -premul",
		classify.ContentNormal:         "-f etc2rg -signed -normal",
		classify.ContentMetalRoughness: "-f etc2rg",
		classify.ContentMask:           "-f etc2r",
		classify.ContentSDF:            "-f etc2r -signed -sdf",
	},
	config.PlatformAndroid: {
		classify.ContentAlbedo:         "-f etc2rgba -srgb -premul -optopaque",
		classify.ContentNormal:         "-f etc2rg -signed -normal",
		classify.ContentMetalRoughness: "-f etc2rg",
		classify.ContentMask:           "-f etc2r",
		classify.ContentSDF:            "-f etc2r -signed -sdf",
	},
	config.PlatformMac: {
		classify.ContentAlbedo:         "-f bc7 -srgb -premul",
		classify.ContentNormal:         "-f bc5 -signed -normal",
		classify.ContentMetalRoughness: "-f bc5",
		classify.ContentMask:           "-f bc4",
		classify.ContentSDF:            "-f bc4 -signed -sdf",
	},
	config.PlatformWin: {
		classify.ContentAlbedo:         "-f bc7 -srgb -premul",
		classify.ContentNormal:         "-f bc5 -signed -normal",
		classify.ContentMetalRoughness: "-f bc5",
		classify.ContentMask:           "-f bc4",
		classify.ContentSDF:            "-f bc4 -signed -sdf",
	},
	// Explicit rgba8 output, later supercompressed to UASTC by ktxsc. No
	// signed formats here.
	config.PlatformAny: {
		classify.ContentAlbedo:         "-f rgba8 -srgb -premul",
		classify.ContentNormal:         "-f rgba8 -swizzle rg01 -normal",
		classify.ContentMetalRoughness: "-f rgba8 -swizzle r0001",
		classify.ContentMask:           "-f rgba8 -swizzle r001",
		classify.ContentSDF:            "-f rgba8 -swizzle r000 -sdf",
	},
}

// Build returns the Table for platform. An unrecognized platform is a
// configuration error wrapping [config.ErrUnknownPlatform].
func Build(platform config.Platform, opts Options) (Table, error) {
	presets, ok := base[platform]
	if !ok {
		return Table{}, fmt.Errorf("%w %q", config.ErrUnknownPlatform, platform)
	}

	texts := make(map[classify.ContentKind]string, len(classify.ContentKinds))
	for kind, text := range presets {
		texts[kind] = text
	}
	if !opts.SkipUnknown {
		texts[classify.ContentUnknown] = presets[classify.ContentAlbedo]
	}
	for kind, text := range opts.Overrides {
		texts[kind] = text
	}

	extra := []string{"-quality", strconv.Itoa(opts.Quality), "-mipmax", strconv.Itoa(opts.MipMax)}
	if opts.Verbose {
		extra = append(extra, "-v")
	}

	t := Table{fragments: make(map[classify.ContentKind][]string, len(texts))}
	for kind, text := range texts {
		f := strings.Fields(text)
		if len(f) == 0 {
			continue
		}
		t.fragments[kind] = append(f, extra...)
	}
	return t, nil
}
