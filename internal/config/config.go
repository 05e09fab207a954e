// Package config resolves run settings from command-line flags and
// PDFSPLIT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jackzampolin/pdfsplit/internal/outdir"
	"github.com/jackzampolin/pdfsplit/internal/report"
	"github.com/jackzampolin/pdfsplit/internal/toc"
)

// EnvPrefix is prepended to every environment variable, e.g. PDFSPLIT_OUTPUT.
const EnvPrefix = "PDFSPLIT"

// Flag names, shared by the CLI and the viper keys.
const (
	KeyOutput        = "output"
	KeyDepth         = "depth"
	KeyExclude       = "exclude"
	KeyYes           = "yes"
	KeyNoFrontMatter = "no-front-matter"
	KeyDryRun        = "dry-run"
	KeyFormat        = "format"
	KeyVerbose       = "verbose"
)

// ErrInvalidConfig is returned when a setting has an unusable value.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the settings for one run.
type Config struct {
	Output        string `mapstructure:"output"`          // Output directory
	Depth         int    `mapstructure:"depth"`           // Deepest outline level that starts a file
	Exclude       string `mapstructure:"exclude"`         // Comma-separated ids; skips the prompt
	Yes           bool   `mapstructure:"yes"`             // Skip the prompt and keep everything
	NoFrontMatter bool   `mapstructure:"no-front-matter"` // Drop pages before the first entry
	DryRun        bool   `mapstructure:"dry-run"`
	Format        string `mapstructure:"format"` // text, yaml or json
	Verbose       bool   `mapstructure:"verbose"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Output: outdir.DefaultDirName,
		Depth:  toc.DefaultMaxDepth,
		Format: string(report.FormatText),
	}
}

// Manager resolves configuration from defaults, environment and flags, in
// increasing order of precedence.
type Manager struct {
	v      *viper.Viper
	config *Config
}

// NewManager binds flags and environment variables and loads the config.
// flags may be nil, in which case only defaults and the environment apply.
func NewManager(flags *pflag.FlagSet) (*Manager, error) {
	cm := &Manager{v: viper.New()}

	if err := cm.initViper(flags); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults, environment and flags.
func (cm *Manager) initViper(flags *pflag.FlagSet) error {
	defaults := DefaultConfig()
	cm.v.SetDefault(KeyOutput, defaults.Output)
	cm.v.SetDefault(KeyDepth, defaults.Depth)
	cm.v.SetDefault(KeyExclude, defaults.Exclude)
	cm.v.SetDefault(KeyYes, defaults.Yes)
	cm.v.SetDefault(KeyNoFrontMatter, defaults.NoFrontMatter)
	cm.v.SetDefault(KeyDryRun, defaults.DryRun)
	cm.v.SetDefault(KeyFormat, defaults.Format)
	cm.v.SetDefault(KeyVerbose, defaults.Verbose)

	// Environment variables with PDFSPLIT_ prefix; dashes become underscores
	cm.v.SetEnvPrefix(EnvPrefix)
	cm.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	cm.v.AutomaticEnv()

	if flags != nil {
		if err := cm.v.BindPFlags(flags); err != nil {
			return fmt.Errorf("failed to bind flags: %w", err)
		}
	}
	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Get returns the resolved configuration.
func (cm *Manager) Get() *Config {
	return cm.config
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Output) == "" {
		return fmt.Errorf("%w: output directory cannot be empty", ErrInvalidConfig)
	}
	if c.Depth < 1 {
		return fmt.Errorf("%w: depth must be at least 1, got %d", ErrInvalidConfig, c.Depth)
	}
	if _, err := report.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// OutputFormat returns the parsed summary format.
func (c *Config) OutputFormat() report.Format {
	f, err := report.ParseFormat(c.Format)
	if err != nil {
		return report.FormatText
	}
	return f
}

// Interactive reports whether the user should be asked for exclusions.
func (c *Config) Interactive() bool {
	return !c.Yes && strings.TrimSpace(c.Exclude) == ""
}
