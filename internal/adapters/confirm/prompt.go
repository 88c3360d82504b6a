// Package confirm asks the operator to approve irreversible steps.
package confirm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.trai.ch/hxt/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/term"
)

var _ ports.Confirmer = (*Prompt)(nil)

// Prompt implements ports.Confirmer on a line-oriented terminal.
type Prompt struct {
	in          io.Reader
	out         io.Writer
	interactive bool
	autoApprove bool
}

// Option configures a Prompt.
type Option func(*Prompt)

// WithAutoApprove accepts every prompt without reading input.
func WithAutoApprove(approve bool) Option {
	return func(p *Prompt) { p.autoApprove = approve }
}

// WithIO replaces the terminal with in and out. The prompt is treated as interactive.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(p *Prompt) {
		p.in = in
		p.out = out
		p.interactive = true
	}
}

// New creates a Prompt reading the process's stdin.
func New(opts ...Option) *Prompt {
	p := &Prompt{
		in:          os.Stdin,
		out:         os.Stderr,
		interactive: term.IsTerminal(int(os.Stdin.Fd())),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Confirm prints prompt and reports whether the operator answered y or yes.
// Without a terminal and without auto-approval the answer is no.
func (p *Prompt) Confirm(ctx context.Context, prompt string) (bool, error) {
	if p.autoApprove {
		_, _ = fmt.Fprintln(p.out, prompt+" [auto-approved]")
		return true, nil
	}
	if !p.interactive {
		_, _ = fmt.Fprintln(p.out, prompt+" [no terminal, declined]")
		return false, nil
	}

	_, _ = fmt.Fprint(p.out, prompt+" [y/N] ")

	answer := make(chan string, 1)
	errs := make(chan error, 1)
	go func() {
		line, err := bufio.NewReader(p.in).ReadString('\n')
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				answer <- ""
				return
			}
			errs <- err
			return
		}
		answer <- line
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errs:
		return false, zerr.Wrap(err, "failed to read confirmation")
	case line := <-answer:
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}
