package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raysh454/promptlab/internal/webclient"
)

func newBackendsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List the available web client backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			webclient.RegisterDefaultBackends()
			for _, name := range webclient.ListBackends() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
