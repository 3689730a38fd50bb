package config

// This file implements flag registration and layered loading. Flags are
// declared on a pflag.FlagSet (owned by the cobra command) and bound to a
// viper instance, so every setting can also come from TEXBUILD_* environment
// variables or a config file. Precedence: flag > env > config file > default.

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the environment variable prefix; "--script-file" becomes
// TEXBUILD_SCRIPT_FILE.
const EnvPrefix = "TEXBUILD"

// Flag names, shared by BindFlags and Load.
const (
	flagPlatform    = "platform"
	flagQuality     = "quality"
	flagMipMax      = "mipmax"
	flagSkipUnknown = "skip-unknown"
	flagPresets     = "presets"
	flagKram        = "kram"
	flagKtx2ktx2    = "ktx2ktx2"
	flagKtxsc       = "ktxsc"
	flagKtx2check   = "ktx2check"
	flagJobs        = "jobs"
	flagForce       = "force"
	flagScript      = "script"
	flagScriptFile  = "script-file"
	flagKTX2        = "ktx2"
	flagCheckKTX2   = "check-ktx2"
	flagUastc       = "uastc"
	flagSlow        = "slow"
	flagVerbose     = "verbose"
	flagColor       = "color"
	flagNoColor     = "no-color"
	flagLog         = "log"
	flagCheck       = "check"
	flagList        = "list"
	flagConfig      = "config"
)

// BindFlags registers every texbuild flag on fs with defaults taken from
// [DefaultConfig].
func BindFlags(fs *pflag.FlagSet) {
	d := DefaultConfig()

	defineTargetFlags(fs, &d)
	defineToolFlags(fs, &d)
	defineBehaviorFlags(fs, &d)
	defineDisplayFlags(fs)
}

// defineTargetFlags registers -p/--platform, -q/--quality, --mipmax, --skip-unknown, --presets.
func defineTargetFlags(fs *pflag.FlagSet, d *Config) {
	fs.StringP(flagPlatform, "p", "", "Build platform: "+strings.Trim(platformList(), "'"))
	fs.IntP(flagQuality, "q", d.Quality, "Encode quality 0..100 (affects encode speed)")
	fs.Int(flagMipMax, d.MipMax, "Downsample mips to this maximum dimension")
	fs.Bool(flagSkipUnknown, false, "Skip files without a content suffix instead of encoding as albedo")
	fs.String(flagPresets, "", "YAML file overriding per-platform format presets")
}

// defineToolFlags registers the external executable paths.
func defineToolFlags(fs *pflag.FlagSet, d *Config) {
	fs.String(flagKram, d.EncoderPath, "Path to the kram encoder")
	fs.String(flagKtx2ktx2, d.RepackagePath, "Path to ktx2ktx2 (ktx -> ktx2 repackage)")
	fs.String(flagKtxsc, d.SupercompressPath, "Path to ktxsc (ktx2 supercompression)")
	fs.String(flagKtx2check, d.VerifyPath, "Path to ktx2check (ktx2 verification)")
}

// defineBehaviorFlags registers jobs, force, script, ktx2 chain, and perf reporting.
func defineBehaviorFlags(fs *pflag.FlagSet, d *Config) {
	fs.IntP(flagJobs, "j", d.Jobs, "Max concurrent encodes (clamped to available CPUs)")
	fs.BoolP(flagForce, "f", false, "Force rebuild ignoring modstamps")
	fs.Bool(flagScript, false, "Write a kram script and execute it with kram's batch runner")
	fs.String(flagScriptFile, "", "Script path (default: <dst_dir>/<platform>/"+ScriptFileName+")")
	fs.Bool(flagKTX2, false, "Convert ktx output to ktx2 and supercompress it")
	fs.Bool(flagCheckKTX2, false, "Verify ktx2 files as they are generated")
	fs.Bool(flagUastc, false, "Supercompress with Basis UASTC instead of zstd")
	fs.Duration(flagSlow, d.SlowThreshold, "Report encodes slower than this")
}

// defineDisplayFlags registers verbosity, color, the log file, the check and
// list modes, and the config file.
func defineDisplayFlags(fs *pflag.FlagSet) {
	fs.BoolP(flagVerbose, "v", false, "Verbose output (also passed to kram)")
	fs.Bool(flagColor, false, "Force colored logs")
	fs.Bool(flagNoColor, false, "Disable colored logs")
	fs.StringP(flagLog, "l", "", "Append logs to file")
	fs.BoolP(flagCheck, "c", false, "Check external tools and exit")
	fs.Bool(flagList, false, "List each texture's classification and pending action, then exit")
	fs.String(flagConfig, "", "Config file (yaml, toml or json) with flag-named keys")
}

// NewViper returns a viper instance bound to fs and to TEXBUILD_* env vars.
func NewViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	return v, nil
}

// Load resolves a Config from v (see [NewViper]) and the positional args.
// A config file named by --config (or TEXBUILD_CONFIG) is read first; a
// missing or malformed file is an error.
func Load(v *viper.Viper, args []string) (Config, error) {
	if path := v.GetString(flagConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := DefaultConfig()
	cfg.Platform = Platform(strings.ToLower(v.GetString(flagPlatform)))
	cfg.Quality = v.GetInt(flagQuality)
	cfg.MipMax = v.GetInt(flagMipMax)
	cfg.SkipUnknown = v.GetBool(flagSkipUnknown)
	cfg.PresetsFile = v.GetString(flagPresets)

	cfg.EncoderPath = v.GetString(flagKram)
	cfg.RepackagePath = v.GetString(flagKtx2ktx2)
	cfg.SupercompressPath = v.GetString(flagKtxsc)
	cfg.VerifyPath = v.GetString(flagKtx2check)

	cfg.Jobs = v.GetInt(flagJobs)
	cfg.SkipUnchanged = !v.GetBool(flagForce)
	cfg.Script = v.GetBool(flagScript)
	cfg.ScriptPath = v.GetString(flagScriptFile)
	cfg.KTX2 = v.GetBool(flagKTX2)
	cfg.CheckKTX2 = v.GetBool(flagCheckKTX2)
	cfg.Uastc = v.GetBool(flagUastc)
	cfg.SlowThreshold = v.GetDuration(flagSlow)

	cfg.Verbose = v.GetBool(flagVerbose)
	cfg.LogFile = v.GetString(flagLog)
	cfg.CheckOnly = v.GetBool(flagCheck)
	cfg.List = v.GetBool(flagList)
	if v.GetBool(flagNoColor) {
		cfg.ColorMode = ColorNever
	} else if v.GetBool(flagColor) {
		cfg.ColorMode = ColorAlways
	}

	if err := parsePositionalArgs(&cfg, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// parsePositionalArgs sets SrcDir and DstDir from the two positional args when not in CheckOnly mode.
func parsePositionalArgs(cfg *Config, args []string) error {
	if cfg.CheckOnly {
		return nil
	}
	if len(args) != 2 {
		return fmt.Errorf("need exactly src_dir and dst_dir (got %d args)", len(args))
	}
	cfg.SrcDir = NormalizeDirArg(args[0])
	cfg.DstDir = NormalizeDirArg(args[1])
	return nil
}
