// Package domain contains the core domain models and business logic for the task dependency graph.
package domain

import (
	"iter"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Graph is the registry of every task across all groups.
// Names are unique and each target file has exactly one producer.
type Graph struct {
	tasks          map[InternedString]*Task
	groups         map[InternedString]string
	producers      map[InternedString]InternedString // target path -> task
	dependents     map[InternedString][]InternedString
	executionOrder []InternedString
}

func newGraph() *Graph {
	return &Graph{
		tasks:      make(map[InternedString]*Task),
		groups:     make(map[InternedString]string),
		producers:  make(map[InternedString]InternedString),
		dependents: make(map[InternedString][]InternedString),
	}
}

// Flatten merges groups, in the order given, into one validated registry.
// It fails on the first task name or target shared between groups and returns no graph.
// It performs no filesystem access.
func Flatten(groups ...*Group) (*Graph, error) {
	g := newGraph()
	for _, group := range groups {
		for _, t := range group.Tasks() {
			if err := g.insert(t, group.Name()); err != nil {
				return nil, err
			}
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Graph) insert(t *Task, group string) error {
	if _, exists := g.tasks[t.Name]; exists {
		return zerr.With(zerr.With(zerr.With(zerr.Wrap(ErrDuplicateTaskName, "task registered twice"),
			"task_name", t.Name.String()), "group", group), "first_group", g.groups[t.Name])
	}
	for _, target := range t.Targets {
		if owner, taken := g.producers[target.Path]; taken {
			return zerr.With(zerr.With(zerr.Wrap(ErrDuplicateTarget, "target registered twice"),
				"target", target.String()), "task_name", owner.String())
		}
	}
	for _, target := range t.Targets {
		g.producers[target.Path] = t.Name
	}
	g.tasks[t.Name] = t
	g.groups[t.Name] = group
	return nil
}

// Validate checks task references and cycles with a depth-first topological sort,
// visiting names in lexical order so the execution order is deterministic.
func (g *Graph) Validate() error {
	g.executionOrder = make([]InternedString, 0, len(g.tasks))
	g.dependents = make(map[InternedString][]InternedString, len(g.tasks))
	visited := make(map[InternedString]int) // 0: unvisited, 1: visiting, 2: visited
	var path []InternedString

	var visit func(u InternedString) error
	visit = func(u InternedString) error {
		visited[u] = 1
		path = append(path, u)

		for _, dep := range g.edges(g.tasks[u]) {
			if _, exists := g.tasks[dep]; !exists {
				return zerr.With(zerr.With(zerr.Wrap(ErrMissingDependency, "unknown task referenced"),
					"task_name", u.String()), "dependency", dep.String())
			}
			if visited[dep] == 1 {
				return g.buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		g.executionOrder = append(g.executionOrder, u)
		return nil
	}

	for _, name := range g.sortedNames() {
		if visited[name] == 0 {
			if err := visit(name); err != nil {
				return err
			}
		}
	}

	for _, name := range g.executionOrder {
		for _, dep := range g.edges(g.tasks[name]) {
			g.dependents[dep] = append(g.dependents[dep], name)
		}
	}
	return nil
}

// edges returns the tasks t must wait for: its task dependencies followed by the
// producers of its file dependencies.
func (g *Graph) edges(t *Task) []InternedString {
	out := t.TaskDeps()
	for _, f := range t.FileDeps() {
		owner, ok := g.producers[f.Path]
		if ok && owner != t.Name && !slices.Contains(out, owner) {
			out = append(out, owner)
		}
	}
	return out
}

// buildCycleError constructs an error with cycle path metadata.
func (g *Graph) buildCycleError(path []InternedString, dep InternedString) error {
	startIdx := slices.Index(path, dep)
	parts := make([]string, 0, len(path)-startIdx+1)
	for _, node := range path[startIdx:] {
		parts = append(parts, node.String())
	}
	parts = append(parts, dep.String())
	return zerr.With(zerr.Wrap(ErrCycleDetected, "tasks depend on each other"), "cycle", strings.Join(parts, " -> "))
}

func (g *Graph) sortedNames() []InternedString {
	names := make([]InternedString, 0, len(g.tasks))
	for name := range g.tasks {
		names = append(names, name)
	}
	slices.SortFunc(names, InternedString.Compare)
	return names
}

// Walk yields every task in execution order.
func (g *Graph) Walk() iter.Seq[*Task] {
	return func(yield func(*Task) bool) {
		for _, name := range g.executionOrder {
			if !yield(g.tasks[name]) {
				return
			}
		}
	}
}

// GetTask returns the task called name.
func (g *Graph) GetTask(name InternedString) (*Task, bool) {
	t, ok := g.tasks[name]
	return t, ok
}

// Group returns the label of the group that contributed the task.
func (g *Graph) Group(name InternedString) string {
	return g.groups[name]
}

// Producer returns the task that declares path as a target.
func (g *Graph) Producer(path InternedString) (*Task, bool) {
	name, ok := g.producers[path]
	if !ok {
		return nil, false
	}
	return g.tasks[name], true
}

// Dependents returns the tasks that directly depend on name, in execution order.
func (g *Graph) Dependents(name InternedString) []InternedString {
	return g.dependents[name]
}

// Len returns the number of registered tasks.
func (g *Graph) Len() int {
	return len(g.tasks)
}

// Closure returns the requested tasks and everything they transitively depend on, in execution order.
func (g *Graph) Closure(names []string) ([]*Task, error) {
	if len(names) == 0 {
		return nil, ErrNoTargetsSpecified
	}
	needed := make(map[InternedString]bool)
	var mark func(InternedString)
	mark = func(n InternedString) {
		if needed[n] {
			return
		}
		needed[n] = true
		for _, dep := range g.edges(g.tasks[n]) {
			mark(dep)
		}
	}
	for _, raw := range names {
		name := NewInternedString(raw)
		if _, ok := g.tasks[name]; !ok {
			return nil, zerr.With(zerr.Wrap(ErrTaskNotFound, "unknown task requested"), "task_name", raw)
		}
		mark(name)
	}

	out := make([]*Task, 0, len(needed))
	for _, name := range g.executionOrder {
		if needed[name] {
			out = append(out, g.tasks[name])
		}
	}
	return out, nil
}
