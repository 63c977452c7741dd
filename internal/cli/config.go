// Package cli holds the configuration, logging and terminal output shared by
// the openc2 command.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. OPENC2_LOG_LEVEL.
const EnvPrefix = "OPENC2"

// Config is the resolved command configuration.
type Config struct {
	Log         LogConfig `mapstructure:"log"`
	AllowCustom bool      `mapstructure:"allow_custom"`
	Pretty      bool      `mapstructure:"pretty"`
	Definitions []string  `mapstructure:"definitions"`

	path string
}

// LogConfig selects the slog level and handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Path returns the config file that was consulted.
func (c *Config) Path() string {
	return c.path
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Log:    LogConfig{Level: "info", Format: "text"},
		Pretty: true,
	}
}

// DefaultPath returns $HOME/.openc2/config.yaml, honouring OPENC2_CONFIG_DIR.
func DefaultPath() (string, error) {
	dir := os.Getenv(EnvPrefix + "_CONFIG_DIR")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".openc2")
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads configuration from path (or the default location when empty)
// with OPENC2_* environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("allow_custom", defaults.AllowCustom)
	v.SetDefault("pretty", defaults.Pretty)
	v.SetDefault("definitions", []string{})

	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !(errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := DefaultConfig()
	cfg.path = path
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}
