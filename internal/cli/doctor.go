package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Byteram/pget/internal/app"
)

// DoctorOptions contains options for the doctor command.
type DoctorOptions struct {
	ConfigPath string
	Root       string
	Format     string
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := DoctorOptions{}

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check installed applications for corruption",
		Long: `Scan the installation root for broken installations: commands that lost
their executable bit, launchers whose support directory is missing, and
support directories with no command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ConfigPath = configPath
			opts.Root = rootOverride
			return runDoctor(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "output format (table|plain|json|yaml)")

	return cmd
}

func runDoctor(w io.Writer, opts DoctorOptions) error {
	cfg, err := loadConfig(opts.ConfigPath, opts.Root)
	if err != nil {
		return err
	}

	eng, _, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	out, err := app.Doctor(eng)
	if err != nil {
		return err
	}

	switch OutputFormat(opts.Format) {
	case FormatTable:
		app.PrintDoctor(w, out)
		if !out.Healthy {
			fmt.Fprintln(w, styled(warnStyle, "Problems found; reinstalling the affected applications fixes them."))
		}
	case FormatPlain:
		app.PrintDoctorPlain(w, out)
	case FormatJSON:
		return app.PrintJSON(w, out)
	case FormatYAML:
		return app.PrintYAML(w, out)
	default:
		return fmt.Errorf("invalid format: %s (must be table, plain, json, or yaml)", opts.Format)
	}
	return nil
}
