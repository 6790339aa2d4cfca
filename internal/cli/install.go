package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Byteram/pget/internal/engine"
)

// InstallOptions contains options for the install command.
type InstallOptions struct {
	ConfigPath string
	Root       string
	Build      bool
}

// NewInstallCommand creates the install command.
func NewInstallCommand() *cobra.Command {
	opts := InstallOptions{}

	cmd := &cobra.Command{
		Use:   "install <name>",
		Short: "Fetch an application and install it as a command",
		Long: `Fetch an application's archive from the remote source and install it
as a command under the installation root.

Examples:
  pget install timer
  pget install yday --build`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ConfigPath = configPath
			opts.Root = rootOverride
			return runInstall(cmd.Context(), cmd.OutOrStdout(), opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Build, "build", false, "compile from source instead of deploying as a script")

	return cmd
}

func runInstall(ctx context.Context, w io.Writer, opts InstallOptions, name string) error {
	cfg, err := loadConfig(opts.ConfigPath, opts.Root)
	if err != nil {
		return err
	}

	eng, client, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	var fetched int64
	client.SetProgressHook(func(downloaded, total int64) {
		fetched = downloaded
	})

	rep, err := eng.Install(ctx, name, engine.InstallOptions{Build: opts.Build})
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "fetched %s\n", humanize.Bytes(uint64(fetched)))
	if rep.Built {
		fmt.Fprintf(w, "built from source via %s\n", cfg.Build.Command)
	}
	fmt.Fprintf(w, "%s installed %s (%s) -> %s\n",
		styled(successStyle, "✓"), rep.Name, rep.Kind, rep.CommandPath)
	return nil
}
