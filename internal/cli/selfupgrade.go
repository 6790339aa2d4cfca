package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Byteram/pget/internal/selfupdate"
)

// Repository the pget binary is released from.
const (
	releaseOwner = "Byteram"
	releaseRepo  = "pget"
)

// SelfUpgradeOptions contains options for the self-upgrade command.
type SelfUpgradeOptions struct {
	Check bool
	Yes   bool
}

// NewSelfUpgradeCommand creates the self-upgrade command.
func NewSelfUpgradeCommand() *cobra.Command {
	opts := SelfUpgradeOptions{}

	cmd := &cobra.Command{
		Use:   "self-upgrade",
		Short: "Upgrade pget itself to the latest release",
		Long: `Check the pget release channel for a newer build and replace the running
binary with it. The old binary is restored if the replacement fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelfUpgrade(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Check, "check", false, "only report whether a newer release exists")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func runSelfUpgrade(ctx context.Context, w io.Writer, opts SelfUpgradeOptions) error {
	updater := selfupdate.New(Version, releaseOwner, releaseRepo)
	return selfUpgrade(ctx, w, updater, opts)
}

func selfUpgrade(ctx context.Context, w io.Writer, updater *selfupdate.Updater, opts SelfUpgradeOptions) error {
	rel, newer, err := updater.Check(ctx)
	if err != nil {
		return err
	}
	if !newer {
		fmt.Fprintf(w, "pget is up to date (%s)\n", Version)
		return nil
	}
	if opts.Check {
		fmt.Fprintf(w, "pget %s is available (current: %s)\n", rel.TagName, Version)
		return nil
	}

	if !opts.Yes {
		ok, err := confirm(fmt.Sprintf("Upgrade pget to %s?", rel.TagName))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(w, "Upgrade cancelled.")
			return nil
		}
	}

	var fetched int64
	updater.SetProgressHook(func(downloaded, total int64) {
		fetched = downloaded
	})

	payload, err := updater.Fetch(ctx, rel)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "fetched %s\n", humanize.Bytes(uint64(fetched)))

	target, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locating running binary: %w", err)
	}
	if err := updater.Apply(payload, target); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s pget upgraded to %s\n", styled(successStyle, "✓"), rel.TagName)
	return nil
}
