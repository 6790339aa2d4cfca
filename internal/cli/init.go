package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/Byteram/pget/internal/config"
)

// InitOptions contains options for the init command.
type InitOptions struct {
	ConfigPath string
	Root       string
	Force      bool
	Yes        bool
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	opts := InitOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file",
		Long: `Write a pget configuration file. Without --yes the command walks through
the settings interactively; with --yes (or --no-input) it writes the
defaults straight away.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ConfigPath = configPath
			opts.Root = rootOverride
			return runInit(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing config file")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "accept defaults without prompting")

	return cmd
}

func runInit(w io.Writer, opts InitOptions) error {
	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !opts.Force {
		return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
	}

	cfg := config.DefaultConfig()
	if opts.Root != "" {
		cfg.Root = opts.Root
	}

	if !opts.Yes && !IsNoInput() {
		if err := promptConfig(cfg); err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := config.Write(path, cfg); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s Configuration written to %s\n", styled(successStyle, "✓"), path)
	fmt.Fprintf(w, "  root: %s\n", cfg.Root)
	fmt.Fprintf(w, "  source: %s\n", cfg.Source.URL)
	fmt.Fprintf(w, "Try 'pget install <name>' to install your first application.\n")
	return nil
}

// promptConfig walks the user through the main settings.
func promptConfig(cfg *config.Config) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Installation root").
				Description("Commands land in <root>/bin; add it to your PATH").
				Value(&cfg.Root),
			huh.NewInput().
				Title("Source URL template").
				Description("Placeholders: {name}, {branch}, {format}").
				Value(&cfg.Source.URL),
			huh.NewInput().
				Title("Branch").
				Value(&cfg.Source.Branch),
			huh.NewInput().
				Title("Interpreter").
				Description("Runs installed scripts (shebang and launcher exec line)").
				Value(&cfg.Install.Interpreter),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("prompt error: %w", err)
	}
	return nil
}
