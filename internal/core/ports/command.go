package ports

import (
	"context"
	"io"
)

// Command is an external process invocation.
type Command struct {
	Argv []string
	Dir  string
	// Env is overlaid on the full process environment; entries here win.
	Env map[string]string
	// Console attaches the process to the operator's terminal instead of the task log.
	Console bool
	Stdin   io.Reader
	Stdout  io.Writer
}

// Result is the outcome of a finished command.
type Result struct {
	Output   []byte
	ExitCode int
}

// CommandRunner runs external commands.
//
//go:generate go run go.uber.org/mock/mockgen -source=command.go -destination=mocks/mock_command.go -package=mocks
type CommandRunner interface {
	// Run starts cmd and waits for it. A non-zero exit returns domain.ErrExternalToolFailure
	// carrying the exit code; Result is still populated.
	Run(ctx context.Context, cmd Command) (Result, error)
}
