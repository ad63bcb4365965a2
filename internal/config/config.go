// Package config provides configuration management for the trading journal.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	apperrors "zentrade/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Journal JournalConfig `mapstructure:"journal"`
	Storage StorageConfig `mapstructure:"storage"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// JournalConfig holds journaling and gamification configuration.
type JournalConfig struct {
	// Rules is the user's custom trading-rule list scored by the daily
	// check-in. Rule text is the identity of a rule, so editing a rule
	// effectively replaces it.
	Rules           []string `mapstructure:"rules"`
	DefaultStrategy string   `mapstructure:"default_strategy"`
}

// StorageConfig holds persistence configuration.
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    bool   `mapstructure:"file"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/zentrade"
	}
	return filepath.Join(home, ".config", "zentrade")
}

// DefaultRules is the starter rule list written into a fresh config.
var DefaultRules = []string{
	"Waited for my setup",
	"Respected my stop loss",
	"Position sized within plan",
	"No revenge trading",
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("journal.rules", DefaultRules)
	v.SetDefault("journal.default_strategy", "")
	v.SetDefault("storage.db_path", filepath.Join(configDir, "zentrade.db"))
	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", "2006-01-02")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", false)
	v.SetDefault("logging.file", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config.toml: %w", err)
		}
		// First run: write a template so the user has something to edit.
		if err := writeTemplate(configDir); err != nil {
			return nil, fmt.Errorf("writing config template: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ZENTRADE_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("ZENTRADE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "invalid log level: %s", c.Logging.Level)
	}

	if c.Storage.DBPath == "" {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "storage.db_path must not be empty")
	}

	seen := map[string]bool{}
	for _, r := range c.Journal.Rules {
		rule := strings.TrimSpace(r)
		if rule == "" {
			return apperrors.Wrap(apperrors.ErrConfigInvalid, "journal.rules must not contain empty rules")
		}
		if seen[rule] {
			return apperrors.Wrapf(apperrors.ErrConfigInvalid, "duplicate rule: %q", rule)
		}
		seen[rule] = true
	}

	return nil
}

func writeTemplate(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	var b strings.Builder
	b.WriteString("# zentrade configuration\n\n")
	b.WriteString("[journal]\n")
	b.WriteString("# Your trading rules, scored by the daily check-in.\n")
	b.WriteString("rules = [\n")
	for _, r := range DefaultRules {
		fmt.Fprintf(&b, "    %q,\n", r)
	}
	b.WriteString("]\n")
	b.WriteString("default_strategy = \"\"\n\n")
	b.WriteString("[storage]\n")
	fmt.Fprintf(&b, "db_path = %q\n\n", filepath.Join(configDir, "zentrade.db"))
	b.WriteString("[ui]\n")
	b.WriteString("color_enabled = true\n")
	b.WriteString("date_format = \"2006-01-02\"\n\n")
	b.WriteString("[logging]\n")
	b.WriteString("level = \"info\"\n")
	b.WriteString("console = false\n")
	b.WriteString("file = true\n")

	return os.WriteFile(path, []byte(b.String()), 0644)
}
