// Package executor interprets task actions against the project's external tools.
package executor

import (
	"context"
	"fmt"
	"os"

	"go.trai.ch/hxt/internal/core/domain"
	"go.trai.ch/hxt/internal/core/ports"
	"go.trai.ch/hxt/internal/engine/planguard"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor by dispatching on the concrete action type.
type Executor struct {
	runner     ports.CommandRunner
	archiver   ports.Archiver
	downloader ports.Downloader
	hcl        ports.HCLChecker
	walker     ports.Walker
	guard      *planguard.Guard
	logger     ports.Logger
	host       Host
}

// Host is the process identity and environment seen by container commands.
type Host struct {
	UID, GID int
	LookupEnv func(string) (string, bool)
}

// CurrentHost describes the running process.
func CurrentHost() Host {
	return Host{UID: os.Getuid(), GID: os.Getgid(), LookupEnv: os.LookupEnv}
}

// Deps groups the collaborators of an Executor.
type Deps struct {
	Runner     ports.CommandRunner
	Archiver   ports.Archiver
	Downloader ports.Downloader
	HCL        ports.HCLChecker
	Walker     ports.Walker
	Guard      *planguard.Guard
	Logger     ports.Logger
	Host       Host
}

// New creates an Executor.
func New(d Deps) *Executor {
	if d.Host.LookupEnv == nil {
		d.Host = CurrentHost()
	}
	return &Executor{
		runner:     d.Runner,
		archiver:   d.Archiver,
		downloader: d.Downloader,
		hcl:        d.HCL,
		walker:     d.Walker,
		guard:      d.Guard,
		logger:     d.Logger,
		host:       d.Host,
	}
}

// Execute runs task.Action.
func (e *Executor) Execute(ctx context.Context, task *domain.Task, args map[string]string) error {
	switch a := task.Action.(type) {
	case domain.Alias:
		return nil
	case domain.Exec:
		return e.exec(ctx, a)
	case domain.Archive:
		return e.archiver.Create(a.Dest, a.Sources)
	case domain.Apply:
		return e.guard.Apply(ctx, a.Plan, a.Prompt, func(ctx context.Context) error {
			return e.exec(ctx, a.Exec)
		})
	case domain.CheckHCL:
		return e.hcl.Check(a.Dir)
	case domain.Bootstrap:
		return e.bootstrap(ctx, a)
	case domain.UpdateBindings:
		return e.updateBindings(ctx, a, args)
	default:
		return zerr.With(zerr.Wrap(domain.ErrUnknownAction, "cannot execute task"),
			"action", fmt.Sprintf("%T", task.Action))
	}
}

func (e *Executor) exec(ctx context.Context, a domain.Exec) error {
	cmd := ports.Command{
		Argv:    a.Argv,
		Dir:     a.Dir,
		Env:     a.Env,
		Console: a.Console,
	}
	if a.Container != nil {
		cmd.Argv = containerArgv(a.Container, a, e.host)
		cmd.Dir = a.Container.Root
		// docker reads forwarded variables from its own environment.
		cmd.Env = make(map[string]string, len(a.Container.PassEnv))
		for _, name := range a.Container.PassEnv {
			if v, ok := e.host.LookupEnv(name); ok {
				cmd.Env[name] = v
			}
		}
	}
	_, err := e.runner.Run(ctx, cmd)
	return err
}
