package terraform_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hxt/internal/adapters/fs"
	"go.trai.ch/hxt/internal/builders/hxterraform"
	"go.trai.ch/hxt/internal/builders/lambda"
	"go.trai.ch/hxt/internal/builders/terraform"
	"go.trai.ch/hxt/internal/core/domain"
)

type fixture struct {
	root   string
	tfDir  string
	result *terraform.Result
}

func newFixture(t *testing.T, dockerized bool) *fixture {
	t.Helper()
	root := t.TempDir()
	tfDir := filepath.Join(root, "terraform")
	for _, rel := range []string{"main.tf", "gen.tf.json", ".terraform/modules/m/x.tf", "README.md"} {
		path := filepath.Join(tfDir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
		require.NoError(t, os.WriteFile(path, nil, domain.FilePerm))
	}

	p := &domain.Project{
		Root: root,
		Terraform: domain.TerraformSettings{
			Dir:         tfDir,
			Image:       "hashicorp/terraform:0.15.3",
			Dockerized:  dockerized,
			Parallelism: 20,
			PassEnv:     []string{"AWS_PROFILE"},
		},
	}
	zip, err := domain.NewTask("zipLambdaH", domain.Archive{Dest: "/p/h.zip"})
	require.NoError(t, err)

	res, err := terraform.Build(terraform.Inputs{
		Project:     p,
		Walker:      fs.NewWalker(),
		HxTerraform: &hxterraform.Result{Manifests: hxterraform.ManifestsIn(tfDir)},
		Lambda:      &lambda.Result{Tasks: []*domain.Task{zip}},
	})
	require.NoError(t, err)
	return &fixture{root: root, tfDir: tfDir, result: res}
}

func (f *fixture) task(t *testing.T, name string) *domain.Task {
	t.Helper()
	task, ok := f.result.Group.Get(name)
	require.True(t, ok, name)
	return task
}

func names(ns []domain.InternedString) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.String())
	}
	return out
}

func TestBuild_Tasks(t *testing.T) {
	f := newFixture(t, true)
	var got []string
	for _, task := range f.result.Group.Tasks() {
		got = append(got, task.Name.String())
	}
	assert.Equal(t, []string{"validate", "init", "plan", "apply", "refresh", "output"}, got)
}

func TestBuild_Validate(t *testing.T) {
	f := newFixture(t, true)
	validate := f.task(t, "validate")
	assert.Equal(t, domain.CheckHCL{Dir: f.tfDir}, validate.Action)
	assert.Equal(t, domain.OnFiles(
		filepath.Join(f.tfDir, "gen.tf.json"),
		filepath.Join(f.tfDir, "main.tf"),
		filepath.Join(f.tfDir, ".manifest.resources"),
	), validate.Dependencies)
	assert.Empty(t, validate.Targets)
}

func TestBuild_Init(t *testing.T) {
	f := newFixture(t, true)
	init := f.task(t, "init")
	assert.Equal(t, domain.OnFiles(
		filepath.Join(f.tfDir, ".manifest.backend"),
		filepath.Join(f.tfDir, ".manifest.providers"),
	), init.Dependencies)
	assert.Equal(t, domain.PolicyDefault, init.Policy)
}

func TestBuild_Plan(t *testing.T) {
	f := newFixture(t, true)
	plan := f.task(t, "plan")

	assert.Equal(t, domain.PolicyAlwaysRun, plan.Policy)
	assert.Equal(t, []string{"init", "validate", "zipLambdaH"}, names(plan.TaskDeps()))
	assert.Len(t, plan.FileDeps(), 6)
	assert.Equal(t, domain.TrackAll(filepath.Join(f.tfDir, "tfplan")), plan.Targets)
	assert.Equal(t, f.result.Plan, plan.Targets[0])
	assert.Equal(t, domain.Exec{
		Argv: []string{"plan", "-parallelism=20", "-out=tfplan"},
		Dir:  f.tfDir,
		Container: &domain.Container{
			Image:   "hashicorp/terraform:0.15.3",
			Root:    f.root,
			PassEnv: []string{"AWS_PROFILE"},
		},
	}, plan.Action)
}

func TestBuild_Apply(t *testing.T) {
	f := newFixture(t, false)
	apply := f.task(t, "apply")

	assert.Equal(t, domain.PolicyAlwaysRun, apply.Policy)
	assert.Empty(t, apply.Dependencies)
	assert.Empty(t, apply.Targets)
	assert.Equal(t, domain.Apply{
		Plan:   f.result.Plan,
		Exec:   domain.Exec{Argv: []string{"terraform", "apply", "tfplan"}, Dir: f.tfDir},
		Prompt: terraform.ApplyPrompt,
	}, apply.Action)
}

func TestBuild_RefreshAndOutput(t *testing.T) {
	f := newFixture(t, false)
	for name, argv := range map[string][]string{
		"refresh": {"terraform", "refresh"},
		"output":  {"terraform", "output"},
	} {
		task := f.task(t, name)
		assert.Equal(t, domain.PolicyAlwaysRun, task.Policy, name)
		assert.Equal(t, domain.Exec{Argv: argv, Dir: f.tfDir}, task.Action, name)
	}
}
