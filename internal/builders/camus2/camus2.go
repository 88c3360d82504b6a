// Package camus2 builds the task that imports a camus2 release's ADL sources.
package camus2

import (
	"go.trai.ch/hxt/internal/builders/adl"
	"go.trai.ch/hxt/internal/core/domain"
)

// GroupName labels the camus2 task group.
const GroupName = "camus2"

// Result exposes the camus2 group.
type Result struct {
	Group  *domain.Group
	Update *domain.Task
}

// Build creates updateCamus2. It always runs when requested and needs the
// release as --arg version=<release>.
func Build(p *domain.Project, toolchain *adl.Result) (*Result, error) {
	res := &Result{Group: domain.NewGroup(GroupName)}
	var err error
	res.Update, err = res.Group.AddNew("updateCamus2",
		domain.UpdateBindings{
			Dir:           p.Camus2.Dir,
			SourceURL:     p.Camus2.SourceURL,
			ReleaseURL:    p.Camus2.ReleaseURL,
			ArchivePrefix: "camus2-%s",
			Toolchain:     toolchain.Layout.VersionDir,
		},
		domain.WithDescription("Update the referenced version of camus2, importing adl and regenerating the typescript"),
		domain.WithDeps(domain.OnTasks(toolchain.Task)...),
		domain.AlwaysRun(),
	)
	if err != nil {
		return nil, err
	}
	return res, nil
}
