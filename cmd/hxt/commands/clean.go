package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/hxt/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the terraform plan and built lambda archives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			generated, _ := cmd.Flags().GetBool("generated")
			store, _ := cmd.Flags().GetBool("store")
			return c.app.Clean(cmd.Context(), app.CleanOptions{
				Generated: generated,
				Store:     store,
			})
		},
	}
	cmd.Flags().Bool("generated", false, "Also remove the files listed in the generator manifests")
	cmd.Flags().Bool("store", false, "Also remove the recorded build info")
	return cmd
}
