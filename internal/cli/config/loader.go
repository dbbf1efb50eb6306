package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// configKey is used to store config in context.
type configKey struct{}

// EnvPrefix is the prefix of environment variables read by LoadConfig.
const EnvPrefix = "REGCALC_"

// configFileNames are looked up in the working directory when no explicit
// config file is given.
var configFileNames = []string{"regcalc.yaml", "regcalc.yml"}

// flagKeys maps flag names whose config key is not simply the snake_case
// flag name.
var flagKeys = map[string]string{
	"prompt":       "repl.prompt",
	"history-file": "repl.history_file",
}

var configFileUsed string

// findConfigFile finds the config file to use.
// Priority: explicit path > regcalc.yaml > regcalc.yml in dir
func findConfigFile(explicit, dir string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return LoadConfigFrom(cwd, cfgFile, flags)
}

// LoadConfigFrom is LoadConfig with an explicit directory to search for
// config files.
func LoadConfigFrom(dir, cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"on_cycle":          DefaultOnCycle,
		"lowercase":         true,
		"verbose":           false,
		"log_format":        DefaultLogFormat,
		"output":            DefaultOutput,
		"repl.prompt":       DefaultPrompt,
		"repl.history_file": "",
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	configFileUsed = findConfigFile(cfgFile, dir)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Load environment variables (REGCALC_ prefix)
	// Transform: REGCALC_ON_CYCLE -> on_cycle, REGCALC_REPL__PROMPT -> repl.prompt
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			if key, ok := flagKeys[f.Name]; ok {
				return key, posflag.FlagVal(flags, f)
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.OnCycle = strings.ToLower(cfg.OnCycle)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.OutputFormat = strings.ToLower(cfg.OutputFormat)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// NewLogger builds the CLI logger described by cfg, writing to w.
func NewLogger(cfg *Config, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// ConfigKey returns the context key used for storing the loaded config.
func ConfigKey() interface{} {
	return configKey{}
}

// GetConfig retrieves the config from the command context, falling back to
// defaults when none was stored.
func GetConfig(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return Default()
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		OnCycle:      DefaultOnCycle,
		Lowercase:    true,
		LogFormat:    DefaultLogFormat,
		OutputFormat: DefaultOutput,
	}
}
