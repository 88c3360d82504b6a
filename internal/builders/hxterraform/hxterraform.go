// Package hxterraform builds the code generation tasks: typescript providers
// and the terraform files emitted from the typescript EDSL.
package hxterraform

import (
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/hxt/internal/builders/yarn"
	"go.trai.ch/hxt/internal/core/domain"
	"go.trai.ch/hxt/internal/core/ports"
)

// GroupName labels the generation task group.
const GroupName = "hxterraform"

// Manifests list the files each generation stage writes. Changes to the
// backend or providers manifests require terraform init to run again.
type Manifests struct {
	Adhoc     domain.TrackedFile
	Backend   domain.TrackedFile
	Providers domain.TrackedFile
	Resources domain.TrackedFile
}

// All returns the manifests in a fixed order.
func (m Manifests) All() []domain.TrackedFile {
	return []domain.TrackedFile{m.Adhoc, m.Backend, m.Providers, m.Resources}
}

// ManifestsIn returns the manifests written into the terraform directory dir.
func ManifestsIn(dir string) Manifests {
	return Manifests{
		Adhoc:     domain.Track(filepath.Join(dir, ".manifest.adhoc")),
		Backend:   domain.Track(filepath.Join(dir, ".manifest.backend")),
		Providers: domain.Track(filepath.Join(dir, ".manifest.providers")),
		Resources: domain.Track(filepath.Join(dir, ".manifest.resources")),
	}
}

// Inputs are the collaborators Build needs.
type Inputs struct {
	Project *domain.Project
	Walker  ports.Walker
	Yarn    *yarn.Result
}

// Result exposes the group and the artifacts later builders depend on.
type Result struct {
	Group                 *domain.Group
	Manifests             Manifests
	GeneratedProviderSrcs []domain.TrackedFile
	GenerateTerraform     *domain.Task
}

var providers = []string{"aws", "random"}

// Build creates generateProviders, generateTerraform and the generate alias.
func Build(in Inputs) (*Result, error) {
	typescript := filepath.Join(in.Project.Root, "typescript")
	hxTerraform := filepath.Join(typescript, "hx-terraform")
	providerDir := filepath.Join(hxTerraform, "providers")

	res := &Result{
		Group:     domain.NewGroup(GroupName),
		Manifests: ManifestsIn(in.Project.Terraform.Dir),
	}
	for _, name := range providers {
		res.GeneratedProviderSrcs = append(res.GeneratedProviderSrcs,
			domain.Track(filepath.Join(providerDir, name, "resources.ts")))
	}
	yarnDeps := domain.OnTasks(in.Yarn.Tasks...)

	providerDeps := slices.Concat(yarnDeps, domain.OnFiles(
		filepath.Join(hxTerraform, "tools", "gen-helpers.ts"),
		filepath.Join(hxTerraform, "tools", "gen-providers.ts"),
	))
	for path := range in.Walker.WalkFiles(providerDir, []string{"resources.ts"}) {
		providerDeps = append(providerDeps, domain.OnFile(path))
	}
	generateProviders, err := res.Group.AddNew("generateProviders",
		domain.Exec{Argv: []string{"npx", "ts-node", "hx-terraform/tools/gen-providers.ts"}, Dir: typescript},
		domain.WithDescription("Generate typescript for providers"),
		domain.WithDeps(providerDeps...),
		domain.WithTrackedTargets(res.GeneratedProviderSrcs...),
	)
	if err != nil {
		return nil, err
	}

	terraformDeps := slices.Concat(yarnDeps, domain.OnTasks(generateProviders))
	for _, src := range res.GeneratedProviderSrcs {
		terraformDeps = append(terraformDeps, domain.OnFile(src.String()))
	}
	generated := make(map[string]bool, len(res.GeneratedProviderSrcs))
	for _, src := range res.GeneratedProviderSrcs {
		generated[src.String()] = true
	}
	build := filepath.Join(typescript, "build") + string(filepath.Separator)
	for path := range in.Walker.WalkFiles(typescript, []string{"node_modules"}) {
		if generated[path] || strings.HasPrefix(path, build) {
			continue
		}
		terraformDeps = append(terraformDeps, domain.OnFile(path))
	}
	res.GenerateTerraform, err = res.Group.AddNew("generateTerraform",
		domain.Exec{Argv: []string{"npx", "ts-node", "main.ts"}, Dir: typescript},
		domain.WithDescription("Generate terraform files from the terraform EDSL"),
		domain.WithDeps(terraformDeps...),
		domain.WithTrackedTargets(res.Manifests.All()...),
	)
	if err != nil {
		return nil, err
	}

	if _, err := res.Group.AddNew("generate", nil,
		domain.WithDescription("Alias of generateTerraform"),
		domain.WithDeps(domain.OnTasks(res.GenerateTerraform)...),
	); err != nil {
		return nil, err
	}
	return res, nil
}
