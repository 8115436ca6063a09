package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the carbon command tree.
func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "carbon",
		Short:         "Carbon footprint accounting service",
		Long:          "carbon records scope 1, 2 and 3 greenhouse gas emissions and reports them against a reduction target.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newReportCmd(),
	)
	return cmd
}
