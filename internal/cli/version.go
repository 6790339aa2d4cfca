package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

// Build metadata, set from main via NewRootCommand. Release builds inject
// real values through ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// VersionInfo holds the version information for structured output.
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
}

// VersionOptions contains options for the version command.
type VersionOptions struct {
	Short  bool
	Format string
}

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	opts := VersionOptions{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Short, "short", false, "print only the version number")
	cmd.Flags().StringVar(&opts.Format, "format", "text", "output format (text|json)")

	return cmd
}

func runVersion(w io.Writer, opts VersionOptions) error {
	if opts.Short {
		fmt.Fprintln(w, Version)
		return nil
	}

	info := VersionInfo{
		Version: Version,
		Commit:  Commit,
		Date:    Date,
		Go:      runtime.Version(),
	}

	switch opts.Format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	case "text":
		fmt.Fprintf(w, "pget version %s\n", info.Version)
		fmt.Fprintf(w, "  commit:   %s\n", info.Commit)
		fmt.Fprintf(w, "  built at: %s\n", info.Date)
		fmt.Fprintf(w, "  go:       %s\n", info.Go)
		return nil
	default:
		return fmt.Errorf("invalid format: %s (must be text or json)", opts.Format)
	}
}
