// Package config loads shellgate's startup configuration.
//
// Precedence is defaults < user config file < environment (SHELLGATE_*).
// Configuration is read exactly once at process start; in particular the
// rule catalog extension happens before the first evaluation and never
// again.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"shellgate/internal/catalog"
)

// Config is the resolved startup configuration.
type Config struct {
	// Output is the default output format (text, json, yaml).
	Output string `mapstructure:"output"`
	// LogLevel is the charm log level (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`
	// History configures the audit log.
	History HistoryConfig `mapstructure:"history"`
	// RulesFile points at a TOML file of extra catalog rules.
	RulesFile string `mapstructure:"rules_file"`
}

// HistoryConfig configures the SQLite audit log.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// DefaultDir returns the user config directory (~/.shellgate).
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".shellgate"
	}
	return filepath.Join(home, ".shellgate")
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Output:   "text",
		LogLevel: "warn",
		History: HistoryConfig{
			Enabled: true,
			Path:    filepath.Join(DefaultDir(), "history.db"),
		},
	}
}

// Load reads configuration from the given path (or the default location
// when empty), layering environment variables on top.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")

	defaults := DefaultConfig()
	v.SetDefault("output", defaults.Output)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("history.enabled", defaults.History.Enabled)
	v.SetDefault("history.path", defaults.History.Path)
	v.SetDefault("rules_file", "")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(DefaultDir())
	}

	v.SetEnvPrefix("SHELLGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missingDefault := path == "" && (errors.As(err, &notFound) || os.IsNotExist(err))
		if !missingDefault {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Missing default config is fine; defaults apply.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate aggregates all configuration violations into one error.
func Validate(cfg *Config) error {
	var problems []string

	switch cfg.Output {
	case "text", "json", "yaml":
	default:
		problems = append(problems, fmt.Sprintf("output: unknown format %q", cfg.Output))
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("log_level: unknown level %q", cfg.LogLevel))
	}
	if cfg.History.Enabled && cfg.History.Path == "" {
		problems = append(problems, "history.path: required when history is enabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

// rulesFile is the TOML shape of a custom rules file.
type rulesFile struct {
	Rule []catalog.RuleSpec `toml:"rule"`
}

// LoadRules parses a custom rules file. Invalid entries surface as startup
// errors; the catalog is never silently short a rule the user wrote.
func LoadRules(path string) ([]catalog.RuleSpec, error) {
	var rf rulesFile
	if _, err := toml.DecodeFile(path, &rf); err != nil {
		return nil, fmt.Errorf("parsing rules file %s: %w", path, err)
	}
	for i, r := range rf.Rule {
		if r.ID == "" {
			return nil, fmt.Errorf("rules file %s: rule %d has no id", path, i)
		}
		if r.Pattern == "" {
			return nil, fmt.Errorf("rules file %s: rule %q has no pattern", path, r.ID)
		}
	}
	return rf.Rule, nil
}
