// Package shell runs external commands for task actions.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/creack/pty"
	"go.trai.ch/hxt/internal/core/domain"
	"go.trai.ch/hxt/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.CommandRunner = (*Runner)(nil)

// Runner implements ports.CommandRunner using os/exec. Output of non-console
// commands is streamed line by line to the logger and captured in the Result.
type Runner struct {
	logger  ports.Logger
	environ func() []string
}

// NewRunner creates a Runner.
func NewRunner(logger ports.Logger) *Runner {
	return &Runner{logger: logger, environ: os.Environ}
}

// Run starts cmd and waits for it.
func (r *Runner) Run(ctx context.Context, cmd ports.Command) (ports.Result, error) {
	if len(cmd.Argv) == 0 {
		return ports.Result{}, nil
	}

	var (
		capture bytes.Buffer
		err     error
	)
	switch {
	case cmd.Console:
		err = r.console(ctx, cmd)
	case cmd.Stdin != nil || cmd.Stdout != nil:
		err = r.piped(ctx, cmd, &capture)
	default:
		err = r.pseudoTerminal(ctx, cmd, &capture)
	}

	res := ports.Result{Output: capture.Bytes()}
	if err != nil {
		res.ExitCode = exitCode(err)
		return res, zerr.With(zerr.With(zerr.Wrap(domain.ErrExternalToolFailure, cmd.Argv[0]+": "+err.Error()),
			"command", cmd.Argv[0]), "exit_code", res.ExitCode)
	}
	return res, nil
}

func (r *Runner) command(ctx context.Context, c ports.Command) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...) //nolint:gosec // argv comes from the task graph
	cmd.Dir = c.Dir
	cmd.Env = resolveEnvironment(r.environ(), c.Env)
	return cmd
}

// console attaches the process to the operator's terminal.
func (r *Runner) console(ctx context.Context, c ports.Command) error {
	cmd := r.command(ctx, c)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (r *Runner) piped(ctx context.Context, c ports.Command, capture *bytes.Buffer) error {
	stdoutLog := &logWriter{logger: r.logger, level: "info"}
	stderrLog := &logWriter{logger: r.logger, level: "error"}
	defer func() {
		_ = stdoutLog.Close()
		_ = stderrLog.Close()
	}()

	cmd := r.command(ctx, c)
	cmd.Stdin = c.Stdin
	out := []io.Writer{capture}
	if c.Stdout != nil {
		out = append(out, c.Stdout)
	} else {
		out = append(out, stdoutLog)
	}
	cmd.Stdout = io.MultiWriter(out...)
	cmd.Stderr = stderrLog
	return cmd.Run()
}

// pseudoTerminal runs the command under a pty so tools keep their terminal
// formatting. Hosts without pty support fall back to pipes.
func (r *Runner) pseudoTerminal(ctx context.Context, c ports.Command, capture *bytes.Buffer) error {
	cmd := r.command(ctx, c)
	ptmx, err := pty.Start(cmd)
	if err != nil {
		if cmd.Process != nil {
			return err
		}
		return r.piped(ctx, c, capture)
	}

	log := &logWriter{logger: r.logger, level: "info"}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() { _ = ptmx.Close() }()
		// Reads end with EIO once the child side closes.
		_, _ = io.Copy(io.MultiWriter(capture, log), ptmx)
	}()

	err = cmd.Wait()
	wg.Wait()
	_ = log.Close()
	return err
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// resolveEnvironment overlays the command's variables on the host environment.
func resolveEnvironment(sysEnv []string, env map[string]string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(env))
	order := make([]string, 0, len(sysEnv)+len(env))
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, seen := envMap[k]; !seen {
			order = append(order, k)
		}
		envMap[k] = v
	}
	for k, v := range env {
		if _, seen := envMap[k]; !seen {
			order = append(order, k)
		}
		envMap[k] = v
	}

	result := make([]string, 0, len(order))
	for _, k := range order {
		result = append(result, k+"="+envMap[k])
	}
	return result
}

type logWriter struct {
	logger ports.Logger
	level  string
	buf    []byte
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	// PTYs may introduce \r.
	msg := strings.TrimSuffix(string(line), "\r")
	if w.level == "info" {
		w.logger.Info(msg)
	} else {
		w.logger.Error(zerr.New(msg))
	}
}
