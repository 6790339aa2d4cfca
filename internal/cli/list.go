package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Byteram/pget/internal/app"
)

// OutputFormat represents the output format for the list command.
type OutputFormat string

const (
	// FormatTable outputs a human-readable table.
	FormatTable OutputFormat = "table"
	// FormatPlain outputs bare names, one per line.
	FormatPlain OutputFormat = "plain"
	// FormatJSON outputs JSON.
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs YAML.
	FormatYAML OutputFormat = "yaml"
)

// ListOptions contains options for the list command.
type ListOptions struct {
	ConfigPath string
	Root       string
	Format     string
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	opts := ListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ConfigPath = configPath
			opts.Root = rootOverride
			return runList(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "output format (table|plain|json|yaml)")

	return cmd
}

func runList(w io.Writer, opts ListOptions) error {
	cfg, err := loadConfig(opts.ConfigPath, opts.Root)
	if err != nil {
		return err
	}

	out, err := app.List(cfg.Root)
	if err != nil {
		return err
	}

	switch OutputFormat(opts.Format) {
	case FormatTable:
		app.PrintList(w, out)
	case FormatPlain:
		app.PrintListPlain(w, out)
	case FormatJSON:
		return app.PrintJSON(w, out)
	case FormatYAML:
		return app.PrintYAML(w, out)
	default:
		return fmt.Errorf("invalid format: %s (must be table, plain, json, or yaml)", opts.Format)
	}
	return nil
}
