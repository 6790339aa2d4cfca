// Package config provides configuration management for pget.
//
// The configuration is stored in TOML format and supports validation
// and default values for all fields.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Byteram/pget/internal/placeholders"
)

// Config is the top-level configuration struct for pget.
// It contains the installation root and all configuration sections.
type Config struct {
	// Root is the installation root directory. Installed commands live in
	// <root>/bin and support directories in <root>/share.
	Root string `toml:"root"`

	Source  SourceConfig  `toml:"source"`
	Archive ArchiveConfig `toml:"archive"`
	Install InstallConfig `toml:"install"`
	Build   BuildConfig   `toml:"build"`
}

// SourceConfig contains remote source settings.
type SourceConfig struct {
	// URL is the archive URL template. Supported placeholders:
	// {name}, {branch}, {format}.
	URL string `toml:"url"`

	// Branch is the remote branch whose snapshot is fetched (default: "main").
	Branch string `toml:"branch"`

	// Formats are the archive formats requested from the source, tried in
	// order. Valid values: "zip", "tar.gz", "tar.zst".
	Formats []string `toml:"formats"`

	// TimeoutSeconds is the HTTP client timeout for a single fetch.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// ArchiveConfig contains the archive layout conventions of the remote source.
type ArchiveConfig struct {
	// RootDir is the expected top-level directory name inside an archive.
	// Supported placeholders: {name}, {branch}.
	RootDir string `toml:"root_dir"`

	// AppDir is the application subdirectory that marks a multi-file app.
	AppDir string `toml:"app_dir"`

	// Entrypoint is the entry-point file name inside the app directory.
	Entrypoint string `toml:"entrypoint"`
}

// InstallConfig contains deployment settings.
type InstallConfig struct {
	// Interpreter runs installed scripts: it is used for the shebang line of
	// single-file apps and the exec line of generated launchers.
	Interpreter string `toml:"interpreter"`
}

// BuildConfig contains compile-from-source settings for `install --build`.
type BuildConfig struct {
	// Command is the build tool executable.
	Command string `toml:"command"`

	// Args are the arguments passed to the build tool.
	Args []string `toml:"args"`

	// OutputDir is the directory, relative to the snapshot root, searched
	// for the built executable.
	OutputDir string `toml:"output_dir"`
}

// DefaultConfig returns a Config with all default values set.
func DefaultConfig() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	return &Config{
		Root: filepath.Join(homeDir, ".pget"),
		Source: SourceConfig{
			URL:            "https://github.com/Byteram/{name}/archive/refs/heads/{branch}.{format}",
			Branch:         "main",
			Formats:        []string{"zip", "tar.gz"},
			TimeoutSeconds: 30,
		},
		Archive: ArchiveConfig{
			RootDir:    "{name}-{branch}",
			AppDir:     "app",
			Entrypoint: "main.py",
		},
		Install: InstallConfig{
			Interpreter: "python3",
		},
		Build: BuildConfig{
			Command:   "bazel",
			Args:      []string{"build", "//app:app"},
			OutputDir: filepath.Join("bazel-bin", "app"),
		},
	}
}

// validFormats enumerates the archive formats the inspector can decode.
var validFormats = map[string]bool{
	"zip":     true,
	"tar.gz":  true,
	"tar.zst": true,
}

// Validate checks the configuration for valid values.
// Returns a nil error if the config is valid, or an error describing the problem.
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("root cannot be empty")
	}

	// Validate Source section
	if c.Source.URL == "" {
		return fmt.Errorf("source.url cannot be empty")
	}
	if !placeholders.Has(c.Source.URL, "name") {
		return fmt.Errorf("source.url must reference {name}; got %q", c.Source.URL)
	}
	if c.Source.Branch == "" {
		return fmt.Errorf("source.branch cannot be empty")
	}
	if strings.ContainsAny(c.Source.Branch, `/\`) {
		return fmt.Errorf("source.branch cannot contain path separators; got %q", c.Source.Branch)
	}
	if len(c.Source.Formats) == 0 {
		return fmt.Errorf("source.formats cannot be empty")
	}
	for _, f := range c.Source.Formats {
		if !validFormats[f] {
			return fmt.Errorf("source.formats must be drawn from: zip, tar.gz, tar.zst; got %q", f)
		}
	}
	if c.Source.TimeoutSeconds <= 0 {
		return fmt.Errorf("source.timeout_seconds must be > 0; got %d", c.Source.TimeoutSeconds)
	}

	// Validate Archive section
	if c.Archive.RootDir == "" {
		return fmt.Errorf("archive.root_dir cannot be empty")
	}
	if err := validComponent(c.Archive.AppDir); err != nil {
		return fmt.Errorf("archive.app_dir %v", err)
	}
	if err := validComponent(c.Archive.Entrypoint); err != nil {
		return fmt.Errorf("archive.entrypoint %v", err)
	}

	// Validate Install section
	if c.Install.Interpreter == "" {
		return fmt.Errorf("install.interpreter cannot be empty")
	}

	// Validate Build section
	if c.Build.Command == "" {
		return fmt.Errorf("build.command cannot be empty")
	}
	if c.Build.OutputDir == "" {
		return fmt.Errorf("build.output_dir cannot be empty")
	}
	if filepath.IsAbs(c.Build.OutputDir) {
		return fmt.Errorf("build.output_dir must be relative to the snapshot root; got %q", c.Build.OutputDir)
	}
	if strings.Contains(c.Build.OutputDir, "..") {
		return fmt.Errorf("build.output_dir cannot contain '..'; got %q", c.Build.OutputDir)
	}

	return nil
}

// validComponent checks that a value is a single, non-hidden path component.
func validComponent(v string) error {
	if v == "" {
		return fmt.Errorf("cannot be empty")
	}
	if strings.ContainsAny(v, `/\`) {
		return fmt.Errorf("cannot contain path separators; got %q", v)
	}
	if v == "." || v == ".." || strings.HasPrefix(v, ".") {
		return fmt.Errorf("cannot be a hidden or relative component; got %q", v)
	}
	return nil
}
