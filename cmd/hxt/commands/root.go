// Package commands implements the CLI commands for hxt.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/hxt/internal/app"
	"go.trai.ch/hxt/internal/build"
)

// Application is the part of app.App the commands drive.
type Application interface {
	Run(ctx context.Context, targetNames []string, opts app.RunOptions) error
	List(ctx context.Context) error
	Clean(ctx context.Context, opts app.CleanOptions) error
	Watch(ctx context.Context, targetNames []string, opts app.RunOptions) error
	Provision(ctx context.Context, db, secretArn string) error
}

// LogFormatter switches the log output to JSON.
type LogFormatter interface {
	SetJSON(enable bool)
}

// CLI represents the command line interface for hxt.
type CLI struct {
	app     Application
	logs    LogFormatter
	rootCmd *cobra.Command
}

// Option configures a CLI.
type Option func(*CLI)

// WithLogFormatter lets --json-logs reconfigure the logger.
func WithLogFormatter(f LogFormatter) Option {
	return func(c *CLI) {
		c.logs = f
	}
}

// New creates a new CLI instance with the given app.
func New(a Application, opts ...Option) *CLI {
	rootCmd := &cobra.Command{
		Use:           "hxt",
		Short:         "Incremental build and deploy driver for terraform infrastructure",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}
	rootCmd.SetVersionTemplate("hxt version {{.Version}}\n")

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}
	for _, opt := range opts {
		opt(c)
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if jsonLogs && c.logs != nil {
			c.logs.SetJSON(true)
		}
	}

	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newListCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newProvisionCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error writers. Used for testing.
func (c *CLI) SetOutput(out, errOut io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(errOut)
}
