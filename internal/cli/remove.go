package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// RemoveOptions contains options for the remove command.
type RemoveOptions struct {
	ConfigPath string
	Root       string
	Yes        bool
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand() *cobra.Command {
	opts := RemoveOptions{}

	cmd := &cobra.Command{
		Use:   "remove [name]",
		Short: "Remove an installed application",
		Long: `Remove an installed application's command and, for multi-file apps, its
support directory. Without a name, prompts with a picker over the installed
applications.

Examples:
  pget remove timer
  pget remove yday --yes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ConfigPath = configPath
			opts.Root = rootOverride
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runRemove(cmd.Context(), cmd.OutOrStdout(), opts, name)
		},
	}

	cmd.Flags().BoolVar(&opts.Yes, "yes", false, "skip the confirmation prompt")

	return cmd
}

func runRemove(ctx context.Context, w io.Writer, opts RemoveOptions, name string) error {
	cfg, err := loadConfig(opts.ConfigPath, opts.Root)
	if err != nil {
		return err
	}

	eng, _, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	if name == "" {
		if IsNoInput() {
			return fmt.Errorf("application name required")
		}
		name, err = pickInstalled(eng, "Remove which application?")
		if err != nil {
			return err
		}
	}

	if !opts.Yes {
		ok, err := confirm(fmt.Sprintf("Remove %s?", name))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(w, "Remove cancelled.")
			return nil
		}
	}

	rep, err := eng.Remove(ctx, name)
	if err != nil {
		return err
	}

	if rep.Inconsistent {
		fmt.Fprintln(w, styled(warnStyle,
			"note: the installation was inconsistent; removed what was present"))
	}
	if rep.CommandPath != "" {
		fmt.Fprintf(w, "removed %s\n", rep.CommandPath)
	}
	if rep.SupportDir != "" {
		fmt.Fprintf(w, "removed %s\n", rep.SupportDir)
	}
	fmt.Fprintf(w, "%s removed %s\n", styled(successStyle, "✓"), rep.Name)
	return nil
}
