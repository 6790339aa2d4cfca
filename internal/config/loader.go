// Package config provides configuration management for pget.
//
// This file contains config loading functionality including:
// - XDG config path detection
// - TOML file parsing
// - Environment variable overrides
// - Validation
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	pgeterrors "github.com/Byteram/pget/internal/errors"
)

// DetectConfigPath searches for a config file using XDG standard paths.
// Returns the first config file found, or empty string if none exists.
//
// Search order:
// 1. ~/.config/pget/config.toml
//
// Returns empty string if no config file is found (caller should use defaults).
func DetectConfigPath() string {
	path := DefaultConfigPath()
	if path == "" {
		return ""
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// DefaultConfigPath returns the canonical config file location, whether or
// not a file exists there. Used by `pget init` to decide where to write.
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config", "pget", "config.toml")
}

// Load loads a config from the specified path.
// If the file doesn't exist, returns an error.
// After loading, applies environment variable overrides and validates.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &pgeterrors.ConfigError{Path: path, Err: fmt.Errorf("file not found")}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &pgeterrors.ConfigError{Path: path, Err: err}
	}

	// Start with defaults so absent keys keep their default values.
	cfg := DefaultConfig()

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, &pgeterrors.ConfigError{Path: path, Err: err}
	}

	applyEnvOverrides(cfg)
	expandPath(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, &pgeterrors.ConfigError{Path: path, Err: err}
	}

	return cfg, nil
}

// LoadWithDefaults attempts to load a config from XDG standard paths.
// If no config file is found, returns a config with all default values
// (environment overrides still apply). If a config file is found but fails
// to load or validate, returns an error.
func LoadWithDefaults() (*Config, error) {
	configPath := DetectConfigPath()
	if configPath == "" {
		cfg := DefaultConfig()
		applyEnvOverrides(cfg)
		expandPath(cfg)

		if err := cfg.Validate(); err != nil {
			return nil, &pgeterrors.ConfigError{Err: err}
		}
		return cfg, nil
	}

	return Load(configPath)
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables follow the pattern: PGET_<SECTION>_<FIELD>
//
// Examples:
// - PGET_ROOT overrides root
// - PGET_SOURCE_URL overrides [source].url
// - PGET_SOURCE_BRANCH overrides [source].branch
//
// List fields take comma-separated values.
func applyEnvOverrides(c *Config) {
	// Helper to lookup and apply string override
	applyString := func(key string, target *string) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			*target = val
		}
	}

	// Helper to lookup and apply int override
	applyInt := func(key string, target *int) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			var i int
			if _, err := fmt.Sscanf(val, "%d", &i); err == nil {
				*target = i
			}
		}
	}

	// Helper to lookup and apply comma-separated list override
	applyStrings := func(key string, target *[]string) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			parts := strings.Split(val, ",")
			out := make([]string, 0, len(parts))
			for _, p := range parts {
				if trimmed := strings.TrimSpace(p); trimmed != "" {
					out = append(out, trimmed)
				}
			}
			if len(out) > 0 {
				*target = out
			}
		}
	}

	applyString("PGET_ROOT", &c.Root)

	// Source section
	applyString("PGET_SOURCE_URL", &c.Source.URL)
	applyString("PGET_SOURCE_BRANCH", &c.Source.Branch)
	applyStrings("PGET_SOURCE_FORMATS", &c.Source.Formats)
	applyInt("PGET_SOURCE_TIMEOUT_SECONDS", &c.Source.TimeoutSeconds)

	// Archive section
	applyString("PGET_ARCHIVE_ROOT_DIR", &c.Archive.RootDir)
	applyString("PGET_ARCHIVE_APP_DIR", &c.Archive.AppDir)
	applyString("PGET_ARCHIVE_ENTRYPOINT", &c.Archive.Entrypoint)

	// Install section
	applyString("PGET_INSTALL_INTERPRETER", &c.Install.Interpreter)

	// Build section
	applyString("PGET_BUILD_COMMAND", &c.Build.Command)
	applyStrings("PGET_BUILD_ARGS", &c.Build.Args)
	applyString("PGET_BUILD_OUTPUT_DIR", &c.Build.OutputDir)
}

// expandPath expands ~ to the home directory in the installation root.
func expandPath(c *Config) {
	if strings.HasPrefix(c.Root, "~/") || c.Root == "~" {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			c.Root = filepath.Join(homeDir, strings.TrimPrefix(c.Root, "~/"))
		}
	}
}
