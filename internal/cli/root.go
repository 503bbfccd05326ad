// File: internal/cli/root.go
// Author: momentics <momentics@gmail.com>

package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the cnd command tree.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cnd",
		Short: "cnd - readiness event loop daemon",
		Long: `cnd runs a single-threaded readiness event loop over a fixed-capacity
watch table and exposes a line-based control socket for inspection.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewCtlCommand())

	return cmd
}
