// Package cli provides Cobra command definitions for pget.
package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Byteram/pget/internal/archive"
	"github.com/Byteram/pget/internal/build"
	"github.com/Byteram/pget/internal/config"
	"github.com/Byteram/pget/internal/engine"
	pgeterrors "github.com/Byteram/pget/internal/errors"
	"github.com/Byteram/pget/internal/source"
)

var (
	// configPath is the config file path override, set by the global
	// --config flag.
	configPath string

	// rootOverride is the installation root override, set by the global
	// --root flag. It wins over both the config file and PGET_ROOT.
	rootOverride string

	// noInput disables interactive prompts, set by the global --no-input
	// flag.
	noInput bool
)

// AddGlobalFlags adds the persistent global flags to the root command.
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	cmd.PersistentFlags().StringVar(&rootOverride, "root", "", "installation root (overrides config)")
	cmd.PersistentFlags().BoolVar(&noInput, "no-input", false,
		"disable interactive prompts; proceed with defaults")
}

// IsNoInput returns true if interactive prompts are disabled.
func IsNoInput() bool {
	return noInput
}

// Styles for terminal output.
var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	// degradedStyle must be unmistakable: it announces that an upgrade
	// failure left the application uninstalled.
	degradedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("124")).
			Bold(true).
			Padding(0, 1)
)

// colorEnabled reports whether styled output should be rendered. Styling is
// suppressed when NO_COLOR is set or stdout is not a terminal.
func colorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// styled renders s with the given style when color is enabled.
func styled(style lipgloss.Style, s string) string {
	if !colorEnabled() {
		return s
	}
	return style.Render(s)
}

// PrintError prints a command error to stderr. A degraded upgrade renders
// with its own prominent style: the application is gone, and that must not
// read like an ordinary failure.
func PrintError(err error) {
	if pgeterrors.IsDegraded(err) {
		fmt.Fprintf(os.Stderr, "%s %v\n", styled(degradedStyle, "DEGRADED"), err)
		fmt.Fprintln(os.Stderr, styled(warnStyle,
			"The application is no longer installed; 'pget install' will reinstall it."))
		return
	}
	fmt.Fprintf(os.Stderr, "%s %v\n", styled(errorStyle, "error:"), err)
}

// confirm asks a yes/no question. With --no-input the prompt is skipped and
// the answer is yes.
func confirm(title string) (bool, error) {
	if IsNoInput() {
		return true, nil
	}

	var ok bool
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Value(&ok),
		),
	).Run(); err != nil {
		return false, fmt.Errorf("prompt error: %w", err)
	}
	return ok, nil
}

// pickInstalled prompts for one of the installed applications.
func pickInstalled(eng *engine.Engine, title string) (string, error) {
	names, err := eng.Installed()
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no applications installed")
	}

	opts := make([]huh.Option[string], len(names))
	for i, n := range names {
		opts[i] = huh.NewOption(n, n)
	}

	var name string
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(opts...).
				Value(&name),
		),
	).Run(); err != nil {
		return "", fmt.Errorf("prompt error: %w", err)
	}
	return name, nil
}

// loadConfig loads the effective configuration for one command invocation.
func loadConfig(path, root string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadWithDefaults()
	}
	if err != nil {
		return nil, err
	}

	if root != "" {
		cfg.Root = root
	}
	return cfg, nil
}

// buildEngine assembles the engine and its collaborators from config.
func buildEngine(cfg *config.Config) (*engine.Engine, *source.Client, error) {
	client, err := source.NewClient(cfg.Source, Version)
	if err != nil {
		return nil, nil, err
	}

	eng, err := engine.New(engine.Options{
		Root:    cfg.Root,
		Fetcher: client,
		Conventions: archive.Conventions{
			RootDir:    cfg.Archive.RootDir,
			AppDir:     cfg.Archive.AppDir,
			Entrypoint: cfg.Archive.Entrypoint,
		},
		Branch:      cfg.Source.Branch,
		Interpreter: cfg.Install.Interpreter,
		Builder:     build.NewRunner(cfg.Build),
	})
	if err != nil {
		return nil, nil, err
	}
	return eng, client, nil
}

