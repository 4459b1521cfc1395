// Package config provides layered configuration loading for etradectl.
// Precedence: flags > environment > config file > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the resolved configuration.
type Config struct {
	// Mode selects sandbox or live.
	Mode string `yaml:"mode,omitempty"`

	// DataDir is where the file-backed secret store lives when the system
	// keychain is unavailable.
	DataDir string `yaml:"data_dir,omitempty"`

	// Format is the default output format: "text" or "json".
	Format string `yaml:"format,omitempty"`

	// Sources tracks where each value came from, for the doctor command.
	Sources map[string]string `yaml:"-"`
}

// Source indicates where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceFile    Source = "file"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
)

// FlagOverrides holds command-line flag values.
type FlagOverrides struct {
	Mode    string
	DataDir string
	Format  string
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Mode:    "sandbox",
		DataDir: defaultDataDir(),
		Format:  "text",
		Sources: make(map[string]string),
	}
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "etradectl")
}

// Path returns the config file location: $ETRADE_CONFIG when set, otherwise
// config.yaml under the user config directory.
func Path() string {
	if p := os.Getenv("ETRADE_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(defaultDataDir(), "config.yaml")
}

// Load resolves configuration from all sources with proper precedence.
func Load(overrides FlagOverrides) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(cfg, Path()); err != nil {
		return nil, err
	}
	loadFromEnv(cfg)
	applyOverrides(cfg, overrides)

	if cfg.Format != "text" && cfg.Format != "json" {
		return nil, fmt.Errorf("invalid format %q (want text or json)", cfg.Format)
	}
	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		// Missing config file is the common case.
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("malformed config at %s: %w", path, err)
	}

	if fileCfg.Mode != "" {
		cfg.Mode = fileCfg.Mode
		cfg.Sources["mode"] = string(SourceFile)
	}
	if fileCfg.DataDir != "" {
		cfg.DataDir = fileCfg.DataDir
		cfg.Sources["data_dir"] = string(SourceFile)
	}
	if fileCfg.Format != "" {
		cfg.Format = fileCfg.Format
		cfg.Sources["format"] = string(SourceFile)
	}
	return nil
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("ETRADE_MODE"); v != "" {
		cfg.Mode = v
		cfg.Sources["mode"] = string(SourceEnv)
	}
	if v := os.Getenv("ETRADE_DATA_DIR"); v != "" {
		cfg.DataDir = v
		cfg.Sources["data_dir"] = string(SourceEnv)
	}
	if v := os.Getenv("ETRADE_FORMAT"); v != "" {
		cfg.Format = v
		cfg.Sources["format"] = string(SourceEnv)
	}
}

func applyOverrides(cfg *Config, overrides FlagOverrides) {
	if overrides.Mode != "" {
		cfg.Mode = overrides.Mode
		cfg.Sources["mode"] = string(SourceFlag)
	}
	if overrides.DataDir != "" {
		cfg.DataDir = overrides.DataDir
		cfg.Sources["data_dir"] = string(SourceFlag)
	}
	if overrides.Format != "" {
		cfg.Format = overrides.Format
		cfg.Sources["format"] = string(SourceFlag)
	}
}

// Save writes the persistable fields back to the config file.
func Save(cfg *Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Set updates a single key in the config file. Only the file layer is read
// and written back, so values that came from the environment or flags are
// never persisted.
func Set(key, value string) error {
	var fileCfg Config
	path := Path()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return fmt.Errorf("malformed config at %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return err
	}

	switch key {
	case "mode":
		fileCfg.Mode = value
	case "data_dir":
		fileCfg.DataDir = value
	case "format":
		if value != "text" && value != "json" {
			return fmt.Errorf("invalid format %q (want text or json)", value)
		}
		fileCfg.Format = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return Save(&fileCfg)
}
