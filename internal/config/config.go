// Package config loads docquery settings from an optional YAML file and
// DOCQUERY_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix is the prefix of environment overrides (DOCQUERY_LOG_LEVEL → log.level).
const EnvPrefix = "DOCQUERY"

// Config is the complete runtime configuration.
type Config struct {
	// Specs is the directory of CUE entity definitions.
	Specs string `mapstructure:"specs"`

	// Alias is the document alias used in compiled statements.
	Alias string `mapstructure:"alias"`

	Store StoreConfig `mapstructure:"store"`
	Log   LogConfig   `mapstructure:"log"`
}

// StoreConfig locates the SQLite document store.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig selects the logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from path (skipped when empty) and the
// environment, applying defaults for anything unset.
func Load(path string) (*Config, error) {
	v := newViperWithDefaults()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	return decode(v)
}

// NewConfig parses configuration from a string in the given format
// ("yaml" when empty). Environment overrides still apply.
func NewConfig(content, format string) (*Config, error) {
	if format == "" {
		format = "yaml"
	}

	v := newViperWithDefaults()
	v.SetConfigType(format)
	if err := v.ReadConfig(strings.NewReader(content)); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format: must be json or console, got %q", c.Log.Format)
	}
	if c.Alias == "" {
		return fmt.Errorf("alias: must not be empty")
	}
	return nil
}

func newViperWithDefaults() *viper.Viper {
	vi := viper.New()

	vi.SetDefault("specs", "specs")
	vi.SetDefault("alias", "r")
	vi.SetDefault("store.path", "docquery.db")
	vi.SetDefault("log.level", "info")
	vi.SetDefault("log.format", "console")

	vi.SetEnvPrefix(EnvPrefix)
	vi.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vi.AutomaticEnv()

	return vi
}
