// Package terraform builds the terraform lifecycle tasks.
package terraform

import (
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/hxt/internal/builders/hxterraform"
	"go.trai.ch/hxt/internal/builders/lambda"
	"go.trai.ch/hxt/internal/core/domain"
	"go.trai.ch/hxt/internal/core/ports"
)

// GroupName labels the terraform task group.
const GroupName = "terraform"

// PlanFile is the plan artifact written by plan and consumed by apply.
const PlanFile = "tfplan"

// ApplyPrompt is shown before a plan is applied.
const ApplyPrompt = "You are about to apply changes to live infrastructure\n" +
	"Please confirm you have checked the plan and wish to proceed"

// Inputs are the collaborators Build needs.
type Inputs struct {
	Project     *domain.Project
	Walker      ports.Walker
	HxTerraform *hxterraform.Result
	Lambda      *lambda.Result
}

// Result exposes the group and the plan artifact.
type Result struct {
	Group *domain.Group
	Plan  domain.TrackedFile
}

type builder struct {
	settings domain.TerraformSettings
	root     string
}

// Build creates validate, init, plan, apply, refresh and output.
func Build(in Inputs) (*Result, error) {
	b := builder{settings: in.Project.Terraform, root: in.Project.Root}
	dir := b.settings.Dir
	sources := Sources(in.Walker, dir)

	res := &Result{
		Group: domain.NewGroup(GroupName),
		Plan:  domain.Track(filepath.Join(dir, PlanFile)),
	}
	manifests := in.HxTerraform.Manifests

	validate, err := res.Group.AddNew("validate", domain.CheckHCL{Dir: dir},
		domain.WithDescription("Parse the terraform sources and check their syntax"),
		domain.WithDeps(append(domain.OnFiles(sources...), domain.OnFile(manifests.Resources.String()))...),
	)
	if err != nil {
		return nil, err
	}

	initTask, err := res.Group.AddNew("init", b.exec("init", "--force-copy"),
		domain.WithDescription("(Re)Initialize terraform on initial setup and/or changes to backend/provider"),
		domain.WithDeps(
			domain.OnFile(manifests.Backend.String()),
			domain.OnFile(manifests.Providers.String()),
		),
	)
	if err != nil {
		return nil, err
	}

	planDeps := slices.Concat(
		domain.OnTasks(initTask, validate),
		domain.OnTasks(in.Lambda.Tasks...),
	)
	for _, m := range manifests.All() {
		planDeps = append(planDeps, domain.OnFile(m.String()))
	}
	planDeps = append(planDeps, domain.OnFiles(sources...)...)
	if _, err := res.Group.AddNew("plan",
		b.exec("plan", "-parallelism="+strconv.Itoa(b.settings.Parallelism), "-out="+PlanFile),
		domain.WithDescription("Execute terraform plan to show pending infrastructure changes and save the plan"),
		domain.WithDeps(planDeps...),
		domain.WithTrackedTargets(res.Plan),
		domain.AlwaysRun(),
	); err != nil {
		return nil, err
	}

	tasks := []struct {
		name   string
		desc   string
		action domain.Action
	}{
		{
			name:   "apply",
			desc:   "Execute terraform apply to make any pending infrastructure changes according to the plan",
			action: domain.Apply{Plan: res.Plan, Exec: b.exec("apply", PlanFile), Prompt: ApplyPrompt},
		},
		{
			name:   "refresh",
			desc:   "Run terraform refresh to update state from current deployed resources",
			action: b.exec("refresh"),
		},
		{
			name:   "output",
			desc:   "Run terraform to show terraform outputs",
			action: b.exec("output"),
		},
	}
	for _, t := range tasks {
		if _, err := res.Group.AddNew(t.name, t.action, domain.WithDescription(t.desc), domain.AlwaysRun()); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// exec runs terraform in the terraform directory, inside the configured image
// when dockerized.
func (b builder) exec(args ...string) domain.Exec {
	if !b.settings.Dockerized {
		return domain.Exec{Argv: append([]string{"terraform"}, args...), Dir: b.settings.Dir}
	}
	return domain.Exec{
		Argv: args,
		Dir:  b.settings.Dir,
		Container: &domain.Container{
			Image:   b.settings.Image,
			Root:    b.root,
			PassEnv: b.settings.PassEnv,
		},
	}
}

// Sources lists the terraform sources under dir, skipping the .terraform working directory.
func Sources(walker ports.Walker, dir string) []string {
	var out []string
	for path := range walker.WalkFiles(dir, []string{".terraform"}) {
		if strings.HasSuffix(path, ".tf") || strings.HasSuffix(path, ".tf.json") {
			out = append(out, path)
		}
	}
	return out
}
