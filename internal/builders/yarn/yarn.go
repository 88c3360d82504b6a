// Package yarn builds the tasks that install node packages.
package yarn

import (
	"path/filepath"

	"go.trai.ch/hxt/internal/core/domain"
)

// GroupName labels the yarn task group.
const GroupName = "yarn"

// Result holds the install tasks in configuration order.
type Result struct {
	Group *domain.Group
	Tasks []*domain.Task
}

// Build creates one install task per managed directory. Each depends on the
// directory's package.json and yarn.lock and declares no targets.
func Build(p *domain.Project) (*Result, error) {
	res := &Result{Group: domain.NewGroup(GroupName)}
	for _, d := range p.Yarn.Dirs {
		t, err := res.Group.AddNew(d.Task, domain.Exec{Argv: []string{"yarn"}, Dir: d.Dir},
			domain.WithDescription("Run yarn for node modules in "+relative(p.Root, d.Dir)),
			domain.WithDeps(domain.OnFiles(
				filepath.Join(d.Dir, "package.json"),
				filepath.Join(d.Dir, "yarn.lock"),
			)...),
		)
		if err != nil {
			return nil, err
		}
		res.Tasks = append(res.Tasks, t)
	}
	return res, nil
}

func relative(root, dir string) string {
	if rel, err := filepath.Rel(root, dir); err == nil {
		return rel
	}
	return dir
}
