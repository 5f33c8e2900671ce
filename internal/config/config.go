// Package config loads the schoolbooks.yaml application configuration.
// Environment variables prefixed SCHOOLBOOKS_ override file values so
// deployments can tweak a setting without editing the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where commands look for the config file when no --config
// flag is given.
const DefaultPath = "schoolbooks.yaml"

// Config represents the top-level schoolbooks.yaml configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Backfill BackfillConfig `yaml:"backfill"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig controls the HTTP API listener.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// StorageConfig locates the bolt database file.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// BackfillConfig tunes the historical posting sweep.
type BackfillConfig struct {
	BatchCap  int    `yaml:"batch_cap"`
	DemoClass string `yaml:"demo_class"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Load reads a schoolbooks.yaml file from disk and applies environment
// overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyEnv()
	return &cfg, nil
}

// LoadOrDefault loads the config at path, falling back to defaults (plus
// environment overrides) when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		// Load wraps the read error, so unwrap with errors.Is rather than
		// os.IsNotExist.
		if errors.Is(err, fs.ErrNotExist) {
			cfg = Default()
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new deployment.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr: ":8080",
		},
		Storage: StorageConfig{
			Path: "schoolbooks.db",
		},
		Backfill: BackfillConfig{
			BatchCap:  450,
			DemoClass: "Demo Class",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SCHOOLBOOKS_LISTEN_ADDR"); v != "" {
		c.Server.ListenAddr = v
	}
	if v := os.Getenv("SCHOOLBOOKS_DB_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("SCHOOLBOOKS_BACKFILL_BATCH_CAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Backfill.BatchCap = n
		}
	}
	if v := os.Getenv("SCHOOLBOOKS_DEMO_CLASS"); v != "" {
		c.Backfill.DemoClass = v
	}
	if v := os.Getenv("SCHOOLBOOKS_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}
