package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/hxt/internal/app"
	"go.trai.ch/hxt/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [tasks...]",
		Short: "Run tasks and the stale tasks they depend on",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			opts, err := runOptions(cmd)
			if err != nil {
				return err
			}
			return c.app.Run(cmd.Context(), args, opts)
		},
	}
	addRunFlags(cmd)
	cmd.Flags().Bool("dry-run", false, "Print the actions that would run without running them")
	cmd.Flags().Bool("auto-approve", false, "Apply the plan without asking for confirmation")
	return cmd
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("force", "f", false, "Run every reached task, even when up to date")
	cmd.Flags().StringArray("arg", nil, "Pass key=value to tasks that accept arguments")
}

func runOptions(cmd *cobra.Command) (app.RunOptions, error) {
	force, _ := cmd.Flags().GetBool("force")
	pairs, _ := cmd.Flags().GetStringArray("arg")
	args, err := parseArgs(pairs)
	if err != nil {
		return app.RunOptions{}, err
	}

	opts := app.RunOptions{Force: force, Args: args}
	if cmd.Flags().Lookup("dry-run") != nil {
		opts.DryRun, _ = cmd.Flags().GetBool("dry-run")
	}
	if cmd.Flags().Lookup("auto-approve") != nil {
		opts.AutoApprove, _ = cmd.Flags().GetBool("auto-approve")
	}
	return opts, nil
}

// parseArgs turns repeated --arg key=value flags into a map. Later keys win.
func parseArgs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	args := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, zerr.With(zerr.Wrap(domain.ErrConfiguration, "--arg expects key=value"), "arg", pair)
		}
		args[key] = value
	}
	return args, nil
}
