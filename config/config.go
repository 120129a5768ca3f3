// Package config loads solmap configuration from a TOML file, the
// environment, and defaults, in that order of precedence (highest
// last).
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/teranos/solmap/errors"
)

// Config is the solmap configuration.
type Config struct {
	Solc  SolcConfig  `mapstructure:"solc"`
	Cache CacheConfig `mapstructure:"cache"`
}

// SolcConfig configures the Solidity compiler invocation.
type SolcConfig struct {
	Binary            string `mapstructure:"binary"`             // solc executable path or name
	Args              string `mapstructure:"args"`               // extra args, shell-quoted
	VersionConstraint string `mapstructure:"version_constraint"` // semver constraint, e.g. ">= 0.8.0"
}

// CacheConfig configures the content-addressed artifact cache.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("solc.binary", "solc")
	v.SetDefault("solc.args", "")
	v.SetDefault("solc.version_constraint", "") // empty = package default
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.path", defaultCachePath())
}

// defaultCachePath places the artifact cache under the user cache dir,
// falling back to the working directory when none exists.
func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "solmap-artifacts.db"
	}
	return filepath.Join(dir, "solmap", "artifacts.db")
}

// Load reads configuration from solmap.toml in the working directory
// (if present), SOLMAP_* environment variables, and defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("SOLMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	v.SetConfigName("solmap")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; a malformed one is not
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config file")
		}
	}

	return unmarshal(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read config file %s", configPath)
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return &config, nil
}
