package shell

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/hxt/internal/core/ports"
)

var _ ports.CommandRunner = (*Recorder)(nil)

// Recorder is a CommandRunner that never starts a process. It keeps every
// command it is given and, when out is set, prints each one as a shell line.
// It backs `hxt run --dry-run`.
type Recorder struct {
	mu       sync.Mutex
	out      io.Writer
	commands []ports.Command
	respond  func(ports.Command) (ports.Result, error)
}

// NewRecorder creates a Recorder writing to out, which may be nil.
func NewRecorder(out io.Writer) *Recorder {
	return &Recorder{out: out}
}

// RespondWith sets the outcome returned for each recorded command.
func (r *Recorder) RespondWith(fn func(ports.Command) (ports.Result, error)) *Recorder {
	r.respond = fn
	return r
}

// Run records cmd.
func (r *Recorder) Run(_ context.Context, cmd ports.Command) (ports.Result, error) {
	r.mu.Lock()
	r.commands = append(r.commands, cmd)
	r.mu.Unlock()

	if r.out != nil {
		line := strings.Join(cmd.Argv, " ")
		if cmd.Dir != "" {
			line = "(cd " + cmd.Dir + " && " + line + ")"
		}
		_, _ = fmt.Fprintln(r.out, "$ "+line)
	}
	if r.respond != nil {
		return r.respond(cmd)
	}
	return ports.Result{}, nil
}

// Commands returns the commands recorded so far.
func (r *Recorder) Commands() []ports.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.commands)
}
