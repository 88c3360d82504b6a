package commands

import "github.com/spf13/cobra"

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [tasks...]",
		Short: "Run tasks again whenever project files change",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Help()
				return nil
			}
			opts, err := runOptions(cmd)
			if err != nil {
				return err
			}
			return c.app.Watch(cmd.Context(), args, opts)
		},
	}
	addRunFlags(cmd)
	return cmd
}
