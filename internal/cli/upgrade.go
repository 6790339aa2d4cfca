package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Byteram/pget/internal/engine"
)

// UpgradeOptions contains options for the upgrade command.
type UpgradeOptions struct {
	ConfigPath string
	Root       string
	Build      bool
	Yes        bool
}

// NewUpgradeCommand creates the upgrade command.
func NewUpgradeCommand() *cobra.Command {
	opts := UpgradeOptions{}

	cmd := &cobra.Command{
		Use:   "upgrade [name]",
		Short: "Replace an installed application with a fresh snapshot",
		Long: `Fetch the current snapshot of an installed application and replace the
installed artifacts with it. If anything fails before the new version is in
place, the old version is kept. Without a name, prompts with a picker over
the installed applications.

Examples:
  pget upgrade timer
  pget upgrade yday --yes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ConfigPath = configPath
			opts.Root = rootOverride
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runUpgrade(cmd.Context(), cmd.OutOrStdout(), opts, name)
		},
	}

	cmd.Flags().BoolVar(&opts.Build, "build", false, "compile from source instead of deploying as a script")
	cmd.Flags().BoolVar(&opts.Yes, "yes", false, "skip the confirmation prompt")

	return cmd
}

func runUpgrade(ctx context.Context, w io.Writer, opts UpgradeOptions, name string) error {
	cfg, err := loadConfig(opts.ConfigPath, opts.Root)
	if err != nil {
		return err
	}

	eng, client, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	if name == "" {
		if IsNoInput() {
			return fmt.Errorf("application name required")
		}
		name, err = pickInstalled(eng, "Upgrade which application?")
		if err != nil {
			return err
		}
	}

	if !opts.Yes {
		ok, err := confirm(fmt.Sprintf("Upgrade %s?", name))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(w, "Upgrade cancelled.")
			return nil
		}
	}

	var fetched int64
	client.SetProgressHook(func(downloaded, total int64) {
		fetched = downloaded
	})

	rep, err := eng.Upgrade(ctx, name, engine.InstallOptions{Build: opts.Build})
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "fetched %s\n", humanize.Bytes(uint64(fetched)))
	if rep.Built {
		fmt.Fprintf(w, "built from source via %s\n", cfg.Build.Command)
	}
	fmt.Fprintf(w, "%s upgraded %s (%s) -> %s\n",
		styled(successStyle, "✓"), rep.Name, rep.Kind, rep.CommandPath)
	return nil
}
