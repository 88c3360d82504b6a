// Package scheduler runs the tasks reached from a set of requested targets.
package scheduler

import (
	"context"
	"sync"

	"go.trai.ch/hxt/internal/core/domain"
	"go.trai.ch/hxt/internal/core/ports"
	"go.trai.ch/hxt/internal/engine/staleness"
)

// TaskStatus represents the status of a task.
type TaskStatus string

const (
	// StatusPending indicates the task is waiting to be executed.
	StatusPending TaskStatus = "Pending"
	// StatusRunning indicates the task is currently executing.
	StatusRunning TaskStatus = "Running"
	// StatusCompleted indicates the task's action ran successfully.
	StatusCompleted TaskStatus = "Completed"
	// StatusFailed indicates the task's action failed.
	StatusFailed TaskStatus = "Failed"
	// StatusUpToDate indicates the task was skipped because nothing changed.
	StatusUpToDate TaskStatus = "UpToDate"
)

// Options tune one run.
type Options struct {
	// Root is the project root the build records belong to.
	Root string
	// Force treats every reached task as stale.
	Force bool
	// Args are the --arg key=value pairs handed to actions.
	Args map[string]string
}

// Scheduler executes tasks one at a time in topological order.
type Scheduler struct {
	fs     ports.FileSystem
	store  ports.BuildInfoStore
	tracer ports.Tracer

	mu         sync.RWMutex
	taskStatus map[domain.InternedString]TaskStatus
}

// NewScheduler creates a Scheduler.
func NewScheduler(fs ports.FileSystem, store ports.BuildInfoStore, tracer ports.Tracer) *Scheduler {
	return &Scheduler{
		fs:         fs,
		store:      store,
		tracer:     tracer,
		taskStatus: make(map[domain.InternedString]TaskStatus),
	}
}

// Status returns the status a task reached in the latest run.
func (s *Scheduler) Status(name string) TaskStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.taskStatus[domain.NewInternedString(name)]
}

func (s *Scheduler) updateStatus(name domain.InternedString, status TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskStatus[name] = status
}

// Run resolves targets in graph and executes the stale tasks among them and their
// transitive dependencies. It stops at the first failure.
func (s *Scheduler) Run(
	ctx context.Context,
	graph *domain.Graph,
	executor ports.Executor,
	targets []string,
	opts Options,
) error {
	tasks, err := graph.Closure(targets)
	if err != nil {
		return err
	}

	names := make([]string, len(tasks))
	s.mu.Lock()
	clear(s.taskStatus)
	for i, t := range tasks {
		names[i] = t.Name.String()
		s.taskStatus[t.Name] = StatusPending
	}
	s.mu.Unlock()
	s.tracer.EmitPlan(ctx, names)

	evaluator := staleness.NewEvaluator(s.fs, s.store, opts.Root, graph)
	executed := make(map[domain.InternedString]bool, len(tasks))

	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return err
		}
		ran, err := s.runTask(ctx, evaluator, executor, task, executed, opts)
		if err != nil {
			return err
		}
		if ran {
			executed[task.Name] = true
		}
	}
	return nil
}

func (s *Scheduler) runTask(
	ctx context.Context,
	evaluator *staleness.Evaluator,
	executor ports.Executor,
	task *domain.Task,
	executed map[domain.InternedString]bool,
	opts Options,
) (bool, error) {
	decision := staleness.Decision{Stale: true, Reason: "forced"}
	if !opts.Force {
		var err error
		decision, err = evaluator.Evaluate(task, executed)
		if err != nil {
			s.updateStatus(task.Name, StatusFailed)
			return false, taskError(task, err)
		}
	}

	if !decision.Stale {
		_, span := s.tracer.Start(ctx, task.Name.String(), ports.WithSkipped())
		span.SetAttribute("reason", decision.Reason)
		span.End()
		s.updateStatus(task.Name, StatusUpToDate)
		return false, nil
	}

	spanCtx, span := s.tracer.Start(ctx, task.Name.String())
	defer span.End()
	span.SetAttribute("action", task.Action.Summary())
	span.SetAttribute("reason", decision.Reason)
	s.updateStatus(task.Name, StatusRunning)

	if err := executor.Execute(spanCtx, task, opts.Args); err != nil {
		span.RecordError(err)
		s.updateStatus(task.Name, StatusFailed)
		return false, taskError(task, err)
	}
	if err := evaluator.Record(task); err != nil {
		span.RecordError(err)
		s.updateStatus(task.Name, StatusFailed)
		return false, taskError(task, err)
	}
	s.updateStatus(task.Name, StatusCompleted)
	return true, nil
}

func taskError(task *domain.Task, err error) error {
	return &domain.TaskError{Task: task.Name.String(), Err: err}
}
