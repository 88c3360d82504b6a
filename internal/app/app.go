// Package app implements the application layer for hxt.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"go.trai.ch/hxt/internal/adapters/confirm"
	"go.trai.ch/hxt/internal/adapters/shell"
	"go.trai.ch/hxt/internal/builders/infra"
	"go.trai.ch/hxt/internal/core/domain"
	"go.trai.ch/hxt/internal/core/ports"
	"go.trai.ch/hxt/internal/engine/executor"
	"go.trai.ch/hxt/internal/engine/planguard"
	"go.trai.ch/hxt/internal/engine/scheduler"
	"go.trai.ch/hxt/internal/provision"
	"go.trai.ch/zerr"
)

// Deps groups the collaborators of an App.
type Deps struct {
	Loader     ports.ConfigLoader
	Scheduler  *scheduler.Scheduler
	Logger     ports.Logger
	FS         ports.FileSystem
	Walker     ports.Walker
	Store      ports.BuildInfoStore
	Runner     ports.CommandRunner
	Archiver   ports.Archiver
	Downloader ports.Downloader
	HCL        ports.HCLChecker
	Manifests  ports.ManifestReader
	Confirmer  ports.Confirmer
	Watcher    ports.Watcher
	Tracer     ports.Tracer
}

// App represents the main application logic.
type App struct {
	Deps

	clock  clockwork.Clock
	host   executor.Host
	stdout io.Writer
	cwd    string

	debounceWindow time.Duration
}

// New creates a new App instance.
func New(d Deps) *App {
	return &App{
		Deps:   d,
		clock:  clockwork.NewRealClock(),
		host:   executor.CurrentHost(),
		stdout: os.Stdout,
		cwd:    ".",
	}
}

// WithClock replaces the clock used for plan expiry.
func (a *App) WithClock(c clockwork.Clock) *App {
	a.clock = c
	return a
}

// WithHost replaces the identity used for container commands.
func (a *App) WithHost(h executor.Host) *App {
	a.host = h
	return a
}

// WithStdout redirects listings and dry-run output.
func (a *App) WithStdout(w io.Writer) *App {
	a.stdout = w
	return a
}

// WithDebounce sets how long `Watch` waits for changes to settle.
func (a *App) WithDebounce(window time.Duration) *App {
	a.debounceWindow = window
	return a
}

// WithWorkingDir sets the directory the project root is discovered from.
func (a *App) WithWorkingDir(dir string) *App {
	a.cwd = dir
	return a
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	// Force runs every reached task regardless of staleness.
	Force bool
	// Args are named values handed to actions, e.g. version for updateCamus2.
	Args map[string]string
	// DryRun prints the commands stale tasks would run instead of running them.
	DryRun bool
	// AutoApprove answers yes to the apply confirmation.
	AutoApprove bool
}

// session is the per-invocation state derived from the project configuration.
type session struct {
	project *domain.Project
	build   *infra.Result
}

func (a *App) load() (*session, error) {
	project, err := a.Loader.Load(a.cwd)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	build, err := infra.Build(infra.Inputs{Project: project, Walker: a.Walker})
	if err != nil {
		return nil, zerr.Wrap(err, "failed to build task graph")
	}
	return &session{project: project, build: build}, nil
}

// Run executes the stale tasks among targetNames and their dependencies.
// A declined apply confirmation is reported as a warning, not an error.
func (a *App) Run(ctx context.Context, targetNames []string, opts RunOptions) error {
	if len(targetNames) == 0 {
		return domain.ErrNoTargetsSpecified
	}
	s, err := a.load()
	if err != nil {
		return err
	}
	return a.run(ctx, s, targetNames, opts)
}

func (a *App) run(ctx context.Context, s *session, targetNames []string, opts RunOptions) error {
	sched := a.Scheduler
	exec := a.executor(s.project, opts, a.Runner)
	if opts.DryRun {
		recorder := shell.NewRecorder(a.stdout)
		exec = &dryRun{exec: a.executor(s.project, opts, recorder), out: a.stdout}
		sched = scheduler.NewScheduler(a.FS, discardStore{a.Store}, a.Tracer)
	}

	err := sched.Run(ctx, s.build.Graph, exec, targetNames, scheduler.Options{
		Root:  s.project.Root,
		Force: opts.Force,
		Args:  opts.Args,
	})
	if errors.Is(err, domain.ErrUserAborted) {
		a.Logger.Warn("apply aborted, the plan was kept")
		return nil
	}
	return err
}

func (a *App) executor(p *domain.Project, opts RunOptions, runner ports.CommandRunner) ports.Executor {
	confirmer := a.Confirmer
	if opts.AutoApprove {
		confirmer = confirm.New(confirm.WithAutoApprove(true))
	}
	return executor.New(executor.Deps{
		Runner:     runner,
		Archiver:   a.Archiver,
		Downloader: a.Downloader,
		HCL:        a.HCL,
		Walker:     a.Walker,
		Guard:      planguard.New(a.FS, confirmer, a.clock),
		Logger:     a.Logger,
		Host:       a.host,
	})
}

// Provision runs `provision generate-rds-password --to-secret`.
func (a *App) Provision(ctx context.Context, db, secretArn string) error {
	return provision.NewProvisioner(a.Runner, a.Logger).RDSPasswordToSecret(ctx, db, secretArn)
}

// dryRun prints what stale tasks would do. Commands go through the real
// executor backed by a recording runner so container wrapping is shown as run.
type dryRun struct {
	exec ports.Executor
	out  io.Writer
}

func (d *dryRun) Execute(ctx context.Context, task *domain.Task, args map[string]string) error {
	switch a := task.Action.(type) {
	case domain.Alias:
		return nil
	case domain.Exec:
		return d.exec.Execute(ctx, task, args)
	case domain.Apply:
		return d.exec.Execute(ctx, &domain.Task{Name: task.Name, Action: a.Exec}, args)
	default:
		_, err := fmt.Fprintf(d.out, "# %s: %s\n", task.Name, task.Action.Summary())
		return err
	}
}

// discardStore reads recorded builds but never records a dry run.
type discardStore struct {
	ports.BuildInfoStore
}

func (discardStore) Put(string, domain.BuildInfo) error { return nil }
