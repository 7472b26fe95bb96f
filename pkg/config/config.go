// Package config loads skillet's typed configuration from viper. Values come
// from flags, SKILLET_* environment variables, and config files
// (~/.skillet/config.yaml, then ./skillet.yaml), in ascending precedence the
// way viper resolves them.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the top-level configuration tree.
type Config struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// SkillRoots are scanned in order for skill packages; the first root
	// wins on name collisions.
	SkillRoots []string `mapstructure:"skill_roots"`
	// CorpusDir is the documentation tree the linter walks.
	CorpusDir string `mapstructure:"corpus_dir"`
	// OutputsDir receives files downloaded from the Files API.
	OutputsDir string `mapstructure:"outputs_dir"`
	// Guidelines points at a brand guidelines YAML file. Empty means the
	// embedded defaults.
	Guidelines string `mapstructure:"guidelines"`

	Guard   GuardConfig   `mapstructure:"guard"`
	Lint    LintConfig    `mapstructure:"lint"`
	Naming  NamingConfig  `mapstructure:"naming"`
	API     APIConfig     `mapstructure:"api"`
	Ledger  LedgerConfig  `mapstructure:"ledger"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// GuardConfig extends the built-in advisory rules. Entries are additive; the
// built-in floor cannot be configured away.
type GuardConfig struct {
	ProtectedDirs  []string `mapstructure:"protected_dirs"`
	ProtectedFiles []string `mapstructure:"protected_files"`
	Installers     []string `mapstructure:"installers"`
	IgnorePatterns []string `mapstructure:"ignore_patterns"`
	OutputsDir     string   `mapstructure:"outputs_dir"`
	OutputsExts    []string `mapstructure:"outputs_exts"`
}

// LintConfig controls the corpus walk and token bans.
type LintConfig struct {
	Include      []string `mapstructure:"include"`
	Exclude      []string `mapstructure:"exclude"`
	BannedTokens []string `mapstructure:"banned_tokens"`
}

// NamingConfig extends the versioned-document status vocabulary.
type NamingConfig struct {
	Statuses []string `mapstructure:"statuses"`
}

// APIConfig configures message runs and uploads against the Anthropic API.
// The credential itself always comes from ANTHROPIC_API_KEY.
type APIConfig struct {
	Model     string      `mapstructure:"model"`
	MaxTokens int         `mapstructure:"max_tokens"`
	Retry     RetryConfig `mapstructure:"retry"`
}

// RetryConfig shapes retry behavior for API calls. Delays are milliseconds.
type RetryConfig struct {
	Attempts     int    `mapstructure:"attempts"`
	InitialDelay int    `mapstructure:"initial_delay"`
	MaxDelay     int    `mapstructure:"max_delay"`
	BackoffType  string `mapstructure:"backoff_type"`
}

// LedgerConfig locates the local history database.
type LedgerConfig struct {
	Path string `mapstructure:"path"`
}

// TracingConfig controls the optional OTel exporter.
type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	SamplerType  string  `mapstructure:"sampler"`
	SamplerRatio float64 `mapstructure:"ratio"`
}

// DefaultRetry is applied when no retry settings are configured.
var DefaultRetry = RetryConfig{
	Attempts:     3,
	InitialDelay: 1000,
	MaxDelay:     10000,
	BackoffType:  "exponential",
}

// SetDefaults registers defaults on the global viper instance. Called once
// from the root command before any config is read.
func SetDefaults() {
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("skill_roots", []string{"./skills"})
	viper.SetDefault("corpus_dir", ".")
	viper.SetDefault("outputs_dir", "./outputs")
	viper.SetDefault("lint.include", []string{"**/*.md"})
	viper.SetDefault("lint.exclude", []string{"node_modules/**", ".git/**", "outputs/**"})
	viper.SetDefault("api.model", "claude-sonnet-4-5")
	viper.SetDefault("api.max_tokens", 4096)
	viper.SetDefault("tracing.sampler", "ratio")
	viper.SetDefault("tracing.ratio", 0.1)
}

// FromViper unmarshals the resolved viper state into a Config and fills the
// remaining defaults that depend on the environment (home directory paths).
func FromViper() (Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, errors.Wrap(err, "unmarshaling configuration")
	}

	if cfg.API.Retry.Attempts == 0 {
		cfg.API.Retry = DefaultRetry
	}

	if cfg.Ledger.Path == "" {
		dir, err := HomeDir()
		if err != nil {
			return cfg, err
		}
		cfg.Ledger.Path = filepath.Join(dir, "skillet.db")
	}

	if len(cfg.SkillRoots) == 0 {
		cfg.SkillRoots = []string{"./skills"}
	}
	if home, err := HomeDir(); err == nil {
		userRoot := filepath.Join(home, "skills")
		if !containsString(cfg.SkillRoots, userRoot) {
			cfg.SkillRoots = append(cfg.SkillRoots, userRoot)
		}
	}

	return cfg, nil
}

// HomeDir returns ~/.skillet, creating it if needed.
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolving home directory")
	}
	dir := filepath.Join(home, ".skillet")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "creating %s", dir)
	}
	return dir, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
