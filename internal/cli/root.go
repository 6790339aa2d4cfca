package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand creates the pget root command with all subcommands attached.
func NewRootCommand(version, commit, date string) *cobra.Command {
	Version = version
	Commit = commit
	Date = date

	rootCmd := &cobra.Command{
		Use:   "pget",
		Short: "Userland package manager for single-command apps",
		Long: `pget installs applications from a remote archive source as commands
under a user-owned root. No manifests, no daemon, no elevated privileges:
each app becomes one executable in <root>/bin, with supporting files in
<root>/share when it needs them.`,
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	AddGlobalFlags(rootCmd)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(NewInstallCommand())
	rootCmd.AddCommand(NewUpgradeCommand())
	rootCmd.AddCommand(NewRemoveCommand())
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewDoctorCommand())
	rootCmd.AddCommand(NewInitCommand())
	rootCmd.AddCommand(NewSelfUpgradeCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}
