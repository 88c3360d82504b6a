// Package main is the entry point for hxt.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/hxt/cmd/hxt/commands"
	"go.trai.ch/hxt/internal/app"
	_ "go.trai.ch/hxt/internal/wiring"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string, opts ...func(*app.App)) int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, _, err := graft.ExecuteFor[*app.Components](ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}

	for _, opt := range opts {
		opt(components.App)
	}

	var cliOpts []commands.Option
	if f, ok := components.Logger.(commands.LogFormatter); ok {
		cliOpts = append(cliOpts, commands.WithLogFormatter(f))
	}
	cli := commands.New(components.App, cliOpts...)
	cli.SetArgs(args)

	if err := cli.Execute(ctx); err != nil {
		components.Logger.Error(err)
		return 1
	}
	return 0
}
