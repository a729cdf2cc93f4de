// Package cliconfig stores hirectl settings in a YAML file.
package cliconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const EnvPath = "HIRECTL_CONFIG"

type Config struct {
	Server    string `yaml:"server"`
	Token     string `yaml:"token,omitempty"`
	PicksFile string `yaml:"picks_file,omitempty"`
}

func (c *Config) applyDefaults(path string) {
	if c.Server == "" {
		c.Server = "http://localhost:3000"
	}
	if c.PicksFile == "" {
		c.PicksFile = filepath.Join(filepath.Dir(path), "picks.json")
	}
}

// DefaultPath is $HIRECTL_CONFIG, or ~/.config/hirectl/config.yaml.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}
	return filepath.Join(dir, "hirectl", "config.yaml"), nil
}

// Load reads the config at path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}
	cfg.applyDefaults(path)
	return cfg, nil
}

// Save writes cfg to path with owner-only permissions since it holds a token.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
