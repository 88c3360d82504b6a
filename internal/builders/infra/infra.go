// Package infra assembles the complete hxt task graph from the project settings.
package infra

import (
	"go.trai.ch/hxt/internal/builders/adl"
	"go.trai.ch/hxt/internal/builders/camus2"
	"go.trai.ch/hxt/internal/builders/hxterraform"
	"go.trai.ch/hxt/internal/builders/lambda"
	"go.trai.ch/hxt/internal/builders/terraform"
	"go.trai.ch/hxt/internal/builders/yarn"
	"go.trai.ch/hxt/internal/core/domain"
	"go.trai.ch/hxt/internal/core/ports"
)

// Inputs are the collaborators Build needs.
type Inputs struct {
	Project *domain.Project
	Walker  ports.Walker
}

// Result is the flattened graph plus the artifacts `hxt clean` removes.
type Result struct {
	Graph *domain.Graph

	// Groups are the builder outputs in composition order.
	Groups []*domain.Group

	Manifests hxterraform.Manifests
	Plan      domain.TrackedFile

	// LambdaZips are the archives written by the lambda group.
	LambdaZips []domain.TrackedFile
}

// Build runs every group builder in dependency order and flattens the groups
// into one validated graph.
func Build(in Inputs) (*Result, error) {
	y, err := yarn.Build(in.Project)
	if err != nil {
		return nil, err
	}
	hx, err := hxterraform.Build(hxterraform.Inputs{Project: in.Project, Walker: in.Walker, Yarn: y})
	if err != nil {
		return nil, err
	}
	lam, err := lambda.Build(lambda.Inputs{Project: in.Project, Walker: in.Walker})
	if err != nil {
		return nil, err
	}
	toolchain, err := adl.Build(in.Project)
	if err != nil {
		return nil, err
	}
	c2, err := camus2.Build(in.Project, toolchain)
	if err != nil {
		return nil, err
	}
	tf, err := terraform.Build(terraform.Inputs{
		Project:     in.Project,
		Walker:      in.Walker,
		HxTerraform: hx,
		Lambda:      lam,
	})
	if err != nil {
		return nil, err
	}

	groups := []*domain.Group{y.Group, hx.Group, lam.Group, toolchain.Group, c2.Group, tf.Group}
	graph, err := domain.Flatten(groups...)
	if err != nil {
		return nil, err
	}

	res := &Result{Graph: graph, Groups: groups, Manifests: hx.Manifests, Plan: tf.Plan}
	for _, t := range lam.Tasks {
		res.LambdaZips = append(res.LambdaZips, t.Targets...)
	}
	return res, nil
}
