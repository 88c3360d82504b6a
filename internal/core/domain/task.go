package domain

import "go.trai.ch/zerr"

// Policy decides whether a reached task runs when it is not stale.
type Policy uint8

const (
	// PolicyDefault runs the action only when the task is stale.
	PolicyDefault Policy = iota
	// PolicyAlwaysRun runs the action every time the task is reached.
	PolicyAlwaysRun
)

// String returns the policy name shown by `hxt list`.
func (p Policy) String() string {
	if p == PolicyAlwaysRun {
		return "always"
	}
	return "default"
}

// Dependency is either a reference to another task by name or a tracked file.
type Dependency struct {
	Task InternedString
	File TrackedFile
}

// OnTask declares a dependency on the task called name.
func OnTask(name string) Dependency {
	return Dependency{Task: NewInternedString(name)}
}

// OnFile declares a dependency on the file at path.
func OnFile(path string) Dependency {
	return Dependency{File: Track(path)}
}

// OnFiles declares a dependency on each path.
func OnFiles(paths ...string) []Dependency {
	deps := make([]Dependency, 0, len(paths))
	for _, p := range paths {
		deps = append(deps, OnFile(p))
	}
	return deps
}

// OnTasks declares a dependency on each named task.
func OnTasks(tasks ...*Task) []Dependency {
	deps := make([]Dependency, 0, len(tasks))
	for _, t := range tasks {
		deps = append(deps, Dependency{Task: t.Name})
	}
	return deps
}

// IsTask reports whether d references a task.
func (d Dependency) IsTask() bool {
	return !d.Task.IsZero()
}

// String returns the task name or file path.
func (d Dependency) String() string {
	if d.IsTask() {
		return d.Task.String()
	}
	return d.File.String()
}

// Task is a node of the build graph.
type Task struct {
	Name         InternedString
	Description  string
	Action       Action
	Dependencies []Dependency
	Targets      []TrackedFile
	Policy       Policy
}

// TaskOption configures a task at construction.
type TaskOption func(*Task)

// WithDescription sets the help text shown by `hxt list`.
func WithDescription(desc string) TaskOption {
	return func(t *Task) { t.Description = desc }
}

// WithDeps appends dependencies.
func WithDeps(deps ...Dependency) TaskOption {
	return func(t *Task) { t.Dependencies = append(t.Dependencies, deps...) }
}

// WithTargets appends target files.
func WithTargets(paths ...string) TaskOption {
	return func(t *Task) { t.Targets = append(t.Targets, TrackAll(paths...)...) }
}

// WithTrackedTargets appends already tracked target files.
func WithTrackedTargets(files ...TrackedFile) TaskOption {
	return func(t *Task) { t.Targets = append(t.Targets, files...) }
}

// AlwaysRun marks the task as run on every pass.
func AlwaysRun() TaskOption {
	return func(t *Task) { t.Policy = PolicyAlwaysRun }
}

// NewTask builds a task after validating its name.
// A nil action is treated as an alias.
func NewTask(name string, action Action, opts ...TaskOption) (*Task, error) {
	if err := ValidateTaskName(name); err != nil {
		return nil, err
	}
	if action == nil {
		action = Alias{}
	}
	t := &Task{
		Name:   NewInternedString(name),
		Action: action,
	}
	for _, opt := range opts {
		opt(t)
	}
	seen := make(map[InternedString]struct{}, len(t.Targets))
	for _, target := range t.Targets {
		if _, dup := seen[target.Path]; dup {
			return nil, zerr.With(zerr.Wrap(ErrDuplicateTarget, "task lists target twice"), "target", target.String())
		}
		seen[target.Path] = struct{}{}
	}
	return t, nil
}

// TaskDeps returns the names of the tasks t depends on, in declaration order.
func (t *Task) TaskDeps() []InternedString {
	var names []InternedString
	for _, d := range t.Dependencies {
		if d.IsTask() {
			names = append(names, d.Task)
		}
	}
	return names
}

// FileDeps returns the tracked files t depends on, in declaration order.
func (t *Task) FileDeps() []TrackedFile {
	var files []TrackedFile
	for _, d := range t.Dependencies {
		if !d.IsTask() {
			files = append(files, d.File)
		}
	}
	return files
}
