package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rowkit/pkg/rowkit"
)

const modulePath = "github.com/mesh-intelligence/rowkit"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the rowkit version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "rowkit v%s\nmodule: %s\n", rowkit.Version, modulePath)
			return nil
		},
	}
}
