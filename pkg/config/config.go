// Package config loads and persists the k2sh tool configuration.
package config

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Config is the k2sh tool configuration.
type Config struct {
	StoreDir string  `yaml:"store_dir"`
	Batch    Batch   `yaml:"batch"`
	Viewer   Viewer  `yaml:"viewer"`
	Logging  Logging `yaml:"logging"`
}

// Batch tunes the batch pipeline.
type Batch struct {
	Workers int `yaml:"workers"`
}

// Viewer configures the view command's HTTP server.
type Viewer struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

// Logging configures log output.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		StoreDir: "./k2sh-store",
		Batch:    Batch{Workers: 4},
		Viewer:   Viewer{Bind: "127.0.0.1", Port: 8420},
		Logging:  Logging{Level: "info", Format: "console"},
	}
}

// LoadConfig loads configuration from the specified path. Fields absent from
// the file keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.Newf("config file does not exist: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config file")
	}
	return cfg, nil
}

// SaveConfig writes the configuration to the specified path.
func SaveConfig(cfg *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0750); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return errors.Wrap(err, "writing config file")
	}
	return nil
}

// DefaultConfigPath returns the per-user configuration location.
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./k2sh.yaml"
	}
	return filepath.Join(homeDir, ".config", "k2sh", "config.yaml")
}
