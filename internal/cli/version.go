package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X github.com/roach88/loco/internal/cli.Version=...".
var Version = "dev"

// VersionInfo is the version command's payload.
type VersionInfo struct {
	Version string `json:"version"`
}

// RenderText prints the version line.
func (v VersionInfo) RenderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "version: %s\n", v.Version)
	return err
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print the loco version",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return f.Success(VersionInfo{Version: Version})
		},
	}
}
