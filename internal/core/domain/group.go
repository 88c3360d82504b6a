package domain

import "go.trai.ch/zerr"

// Group is an ordered, name-unique set of tasks produced by one graph builder.
type Group struct {
	name    string
	tasks   []*Task
	byName  map[InternedString]*Task
	targets map[InternedString]InternedString // target path -> producing task
}

// NewGroup returns an empty group labelled name.
func NewGroup(name string) *Group {
	return &Group{
		name:    name,
		byName:  make(map[InternedString]*Task),
		targets: make(map[InternedString]InternedString),
	}
}

// Name returns the group label.
func (g *Group) Name() string {
	return g.name
}

// Add appends t. Names must be unique within the group and targets disjoint.
func (g *Group) Add(t *Task) error {
	if _, exists := g.byName[t.Name]; exists {
		return zerr.With(zerr.With(zerr.Wrap(ErrDuplicateTaskName, "task already in group"),
			"task_name", t.Name.String()), "group", g.name)
	}
	for _, target := range t.Targets {
		if owner, taken := g.targets[target.Path]; taken {
			return zerr.With(zerr.With(zerr.Wrap(ErrDuplicateTarget, "target already produced in group"),
				"target", target.String()), "task_name", owner.String())
		}
	}
	for _, target := range t.Targets {
		g.targets[target.Path] = t.Name
	}
	g.byName[t.Name] = t
	g.tasks = append(g.tasks, t)
	return nil
}

// AddNew constructs a task with NewTask and adds it.
func (g *Group) AddNew(name string, action Action, opts ...TaskOption) (*Task, error) {
	t, err := NewTask(name, action, opts...)
	if err != nil {
		return nil, err
	}
	if err := g.Add(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Tasks returns the tasks in insertion order.
func (g *Group) Tasks() []*Task {
	return g.tasks
}

// Get returns the task called name.
func (g *Group) Get(name string) (*Task, bool) {
	t, ok := g.byName[NewInternedString(name)]
	return t, ok
}

// Len returns the number of tasks.
func (g *Group) Len() int {
	return len(g.tasks)
}
