// Package lambda builds one packaging task per lambda source file.
package lambda

import (
	"path/filepath"
	"strings"

	"go.trai.ch/hxt/internal/core/domain"
	"go.trai.ch/hxt/internal/core/ports"
)

// GroupName labels the lambda task group.
const GroupName = "lambda"

// Inputs are the collaborators Build needs.
type Inputs struct {
	Project *domain.Project
	Walker  ports.Walker
}

// Result holds the packaging tasks and the sources they were discovered from.
type Result struct {
	Group   *domain.Group
	Sources []domain.TrackedFile
	Tasks   []*domain.Task
}

// Build zips every file under the configured lambda directories into
// <out_dir>/<base>.zip. Two sources sharing a base name are rejected.
func Build(in Inputs) (*Result, error) {
	res := &Result{Group: domain.NewGroup(GroupName)}
	for _, dir := range in.Project.Lambdas.Dirs {
		for path := range in.Walker.WalkFiles(dir, nil) {
			res.Sources = append(res.Sources, domain.Track(path))
		}
	}

	for _, src := range res.Sources {
		path := src.String()
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		name, err := domain.TaskName("zipLambda", base)
		if err != nil {
			return nil, err
		}
		dest := filepath.Join(in.Project.Lambdas.OutDir, base+".zip")
		t, err := res.Group.AddNew(name, domain.Archive{Dest: dest, Sources: []string{path}},
			domain.WithDescription("zip for lambda function from "+base),
			domain.WithDeps(domain.OnFile(path)),
			domain.WithTargets(dest),
		)
		if err != nil {
			return nil, err
		}
		res.Tasks = append(res.Tasks, t)
	}
	return res, nil
}
