package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDirArg(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no trailing slash", "/tex/src", "/tex/src"},
		{"single trailing slash", "/tex/src/", "/tex/src"},
		{"multiple trailing slashes", "/tex/src///", "/tex/src"},
		{"root path", "/", "/"},
		{"relative path", "out", "out"},
		{"relative with slash", "out/", "out"},
		{"empty string", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDirArg(tt.in))
		})
	}
}

func TestParsePlatform(t *testing.T) {
	for _, p := range Platforms {
		got, err := ParsePlatform(string(p))
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	got, err := ParsePlatform("  MAC ")
	require.NoError(t, err)
	assert.Equal(t, PlatformMac, got)

	_, err = ParsePlatform("ps5")
	assert.ErrorIs(t, err, ErrUnknownPlatform)
}

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.Platform = PlatformMac
	cfg.SrcDir = "/tex/src"
	cfg.DstDir = "/tex/out"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults with paths", func(*Config) {}, false},
		{"unknown platform", func(c *Config) { c.Platform = "ps5" }, true},
		{"empty platform", func(c *Config) { c.Platform = "" }, true},
		{"quality too high", func(c *Config) { c.Quality = 101 }, true},
		{"quality negative", func(c *Config) { c.Quality = -1 }, true},
		{"quality bounds ok", func(c *Config) { c.Quality = 100 }, false},
		{"zero jobs", func(c *Config) { c.Jobs = 0 }, true},
		{"zero mipmax", func(c *Config) { c.MipMax = 0 }, true},
		{"missing src", func(c *Config) { c.SrcDir = "" }, true},
		{"missing encoder", func(c *Config) { c.EncoderPath = "" }, true},
		{"bad color", func(c *Config) { c.ColorMode = "sometimes" }, true},
		{"check without ktx2", func(c *Config) { c.CheckKTX2 = true }, true},
		{"ktx2 without repackager", func(c *Config) { c.KTX2 = true; c.RepackagePath = "" }, true},
		{"script without path", func(c *Config) { c.Script = true }, true},
		{"script with path", func(c *Config) { c.Script = true; c.ScriptPath = "/tmp/s.txt" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Platform = "ps5"
	cfg.Quality = 500
	cfg.Jobs = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 configuration errors")
	assert.ErrorIs(t, err, ErrUnknownPlatform)
}

func TestValidate_CheckOnlySkipsPathsAndPlatform(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CheckOnly = true
	assert.NoError(t, cfg.Validate())
}

func TestValidatePaths(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		dst     string
		wantErr bool
	}{
		{"separate directories", "/tex/src", "/tex/out", false},
		{"output equals source", "/tex", "/tex", true},
		{"output inside source", "/tex/src", "/tex/src/out", true},
		{"output is parent of source", "/tex/src/sub", "/tex/src", false},
		{"similar prefix not nested", "/tex/src", "/tex/src2", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			err := cfg.ValidatePaths(tt.src, tt.dst)
			assert.Equal(t, tt.wantErr, err != nil, "ValidatePaths(%q, %q) = %v", tt.src, tt.dst, err)
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Run("any implies ktx2 and uastc", func(t *testing.T) {
		cfg := validConfig()
		cfg.Platform = PlatformAny
		notes := cfg.Normalize()
		assert.True(t, cfg.KTX2)
		assert.True(t, cfg.Uastc)
		assert.NotEmpty(t, notes)
	})

	t.Run("ktx2 disables script", func(t *testing.T) {
		cfg := validConfig()
		cfg.KTX2 = true
		cfg.Script = true
		cfg.Normalize()
		assert.False(t, cfg.Script)
	})

	t.Run("script path defaults into platform dir", func(t *testing.T) {
		cfg := validConfig()
		cfg.Script = true
		assert.Empty(t, cfg.Normalize())
		assert.Equal(t, filepath.Join("/tex/out", "mac", ScriptFileName), cfg.ScriptPath)
	})

	t.Run("explicit script path kept", func(t *testing.T) {
		cfg := validConfig()
		cfg.Script = true
		cfg.ScriptPath = "/tmp/custom.txt"
		cfg.Normalize()
		assert.Equal(t, "/tmp/custom.txt", cfg.ScriptPath)
	})
}

func TestDefaultConfig_SaneDefaults(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 49, cfg.Quality)
	assert.Equal(t, 1024, cfg.MipMax)
	assert.Equal(t, 64, cfg.Jobs)
	assert.Equal(t, "kram", cfg.EncoderPath)
	assert.True(t, cfg.SkipUnchanged, "skip-unchanged should default on")
	assert.False(t, cfg.Script)
	assert.False(t, cfg.KTX2)
	assert.Equal(t, time.Second, cfg.SlowThreshold)
	assert.Equal(t, ColorAuto, cfg.ColorMode)
}

// --- Load tests ---

func load(t *testing.T, argv ...string) (Config, error) {
	t.Helper()
	fs := pflag.NewFlagSet("texbuild", pflag.ContinueOnError)
	BindFlags(fs)
	require.NoError(t, fs.Parse(argv))
	v, err := NewViper(fs)
	require.NoError(t, err)
	return Load(v, fs.Args())
}

func TestLoad_Flags(t *testing.T) {
	cfg, err := load(t, "-p", "ios", "-j", "4", "-q", "80", "--force", "--script", "-v", "--no-color", "src/", "out")
	require.NoError(t, err)

	assert.Equal(t, PlatformIOS, cfg.Platform)
	assert.Equal(t, 4, cfg.Jobs)
	assert.Equal(t, 80, cfg.Quality)
	assert.False(t, cfg.SkipUnchanged)
	assert.True(t, cfg.Script)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, ColorNever, cfg.ColorMode)
	assert.Equal(t, "src", cfg.SrcDir)
	assert.Equal(t, "out", cfg.DstDir)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t, "-p", "mac", "in", "out")
	require.NoError(t, err)

	d := DefaultConfig()
	assert.Equal(t, d.Jobs, cfg.Jobs)
	assert.Equal(t, d.Quality, cfg.Quality)
	assert.Equal(t, d.EncoderPath, cfg.EncoderPath)
	assert.Equal(t, d.SlowThreshold, cfg.SlowThreshold)
	assert.True(t, cfg.SkipUnchanged)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("TEXBUILD_PLATFORM", "android")
	t.Setenv("TEXBUILD_KRAM", "/opt/kram/bin/kram")
	t.Setenv("TEXBUILD_JOBS", "3")

	cfg, err := load(t, "in", "out")
	require.NoError(t, err)
	assert.Equal(t, PlatformAndroid, cfg.Platform)
	assert.Equal(t, "/opt/kram/bin/kram", cfg.EncoderPath)
	assert.Equal(t, 3, cfg.Jobs)

	// Explicit flags beat the environment.
	cfg, err = load(t, "-j", "9", "in", "out")
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Jobs)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "texbuild.yaml")
	require.NoError(t, os.WriteFile(path, []byte("platform: win\nquality: 70\nktx2: true\n"), 0o644))

	cfg, err := load(t, "--config", path, "in", "out")
	require.NoError(t, err)
	assert.Equal(t, PlatformWin, cfg.Platform)
	assert.Equal(t, 70, cfg.Quality)
	assert.True(t, cfg.KTX2)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := load(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "in", "out")
	assert.Error(t, err)
}

func TestLoad_PositionalArgs(t *testing.T) {
	_, err := load(t, "-p", "mac", "only-one")
	assert.Error(t, err)

	cfg, err := load(t, "--check")
	require.NoError(t, err)
	assert.True(t, cfg.CheckOnly)

	cfg, err = load(t, "--list", "-p", "win", "in", "out")
	require.NoError(t, err)
	assert.True(t, cfg.List)
}
