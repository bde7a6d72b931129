package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFile is the per-directory configuration file name.
	DefaultConfigFile = ".pixelscale.yaml"

	// XDGConfigFile is the configuration file path relative to the XDG
	// config directories.
	XDGConfigFile = AppName + "/config.yaml"

	// EnvLogLevel overrides the log level from the config file.
	EnvLogLevel = "PIXELSCALE_LOG_LEVEL"
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile reads a YAML file on top of cfg. Keys missing from the file
// keep the value they already have in cfg.
func LoadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return ErrConfigNotFound
		}
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// FindConfigFile searches for the configuration file.
//
// An explicit configPath is returned if it exists. Otherwise .pixelscale.yaml
// in the current directory is tried, then pixelscale/config.yaml in the XDG
// config directories. Returns an empty string if nothing is found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	if path, err := xdg.SearchConfigFile(XDGConfigFile); err == nil {
		return path
	}

	return ""
}

// Load resolves the configuration: defaults, then the config file found by
// FindConfigFile, then the environment. It returns the file that was used,
// which is empty when none was found.
//
// A missing explicit configPath is an error; a missing implicit file is not.
// The result is not validated, so that command-line flags can still replace
// file values; call Validate once every override is applied.
func Load(configPath string) (*Config, string, error) {
	cfg := NewConfig()

	path := FindConfigFile(configPath)
	if configPath != "" && path == "" {
		return nil, "", fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
	}

	if path != "" {
		if err := LoadConfigFile(path, cfg); err != nil {
			return nil, path, err
		}
	}

	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.LogLevel = level
	}
	return cfg, path, nil
}
