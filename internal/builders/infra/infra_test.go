package infra_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hxt/internal/adapters/fs"
	"go.trai.ch/hxt/internal/builders/infra"
	"go.trai.ch/hxt/internal/core/domain"
)

func project(t *testing.T) *domain.Project {
	t.Helper()
	root := t.TempDir()
	for _, rel := range []string{"lambdas/handler.py", "terraform/main.tf"} {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
		require.NoError(t, os.WriteFile(path, nil, domain.FilePerm))
	}
	return &domain.Project{
		Root: root,
		Home: "/home/op",
		GOOS: "linux",
		Terraform: domain.TerraformSettings{
			Dir:         filepath.Join(root, "terraform"),
			Image:       "hashicorp/terraform:0.15.3",
			Dockerized:  true,
			Parallelism: 20,
		},
		Yarn: domain.YarnSettings{Dirs: []domain.YarnDir{
			{Task: "yarnLocal", Dir: filepath.Join(root, "typescript")},
		}},
		Lambdas: domain.LambdaSettings{
			Dirs:   []string{filepath.Join(root, "lambdas")},
			OutDir: filepath.Join(root, "build", "lambdas"),
		},
		ADL: domain.ADLSettings{Version: "0.37", ReleaseURL: "https://example.invalid/releases"},
		Camus2: domain.Camus2Settings{
			Dir:        filepath.Join(root, "camus2"),
			SourceURL:  "https://example.invalid/%s.zip",
			ReleaseURL: "https://example.invalid/%s/camus2.gz",
		},
	}
}

func TestBuild_AssemblesEveryGroup(t *testing.T) {
	p := project(t)
	res, err := infra.Build(infra.Inputs{Project: p, Walker: fs.NewWalker()})
	require.NoError(t, err)

	want := map[string]string{
		"yarnLocal":         "yarn",
		"generateProviders": "hxterraform",
		"generateTerraform": "hxterraform",
		"generate":          "hxterraform",
		"zipLambdaHandler":  "lambda",
		"adlToolchain":      "adl",
		"updateCamus2":      "camus2",
		"validate":          "terraform",
		"init":              "terraform",
		"plan":              "terraform",
		"apply":             "terraform",
		"refresh":           "terraform",
		"output":            "terraform",
	}
	assert.Equal(t, len(want), res.Graph.Len())
	for name, group := range want {
		_, ok := res.Graph.GetTask(domain.NewInternedString(name))
		require.True(t, ok, name)
		assert.Equal(t, group, res.Graph.Group(domain.NewInternedString(name)), name)
	}

	assert.Equal(t, filepath.Join(p.Terraform.Dir, "tfplan"), res.Plan.String())
	assert.Equal(t, filepath.Join(p.Terraform.Dir, ".manifest.resources"), res.Manifests.Resources.String())
	assert.Equal(t, domain.TrackAll(filepath.Join(p.Lambdas.OutDir, "handler.zip")), res.LambdaZips)

	producer, ok := res.Graph.Producer(res.Plan.Path)
	require.True(t, ok)
	assert.Equal(t, "plan", producer.Name.String())
}

func TestBuild_PlanClosure(t *testing.T) {
	res, err := infra.Build(infra.Inputs{Project: project(t), Walker: fs.NewWalker()})
	require.NoError(t, err)

	tasks, err := res.Graph.Closure([]string{"plan"})
	require.NoError(t, err)
	var names []string
	for _, task := range tasks {
		names = append(names, task.Name.String())
	}
	assert.ElementsMatch(t, []string{
		"yarnLocal", "generateProviders", "generateTerraform",
		"zipLambdaHandler", "validate", "init", "plan",
	}, names)
	assert.Equal(t, "plan", names[len(names)-1])
}

func TestBuild_ValidateAfterGeneration(t *testing.T) {
	res, err := infra.Build(infra.Inputs{Project: project(t), Walker: fs.NewWalker()})
	require.NoError(t, err)

	tasks, err := res.Graph.Closure([]string{"validate"})
	require.NoError(t, err)
	var names []string
	for _, task := range tasks {
		names = append(names, task.Name.String())
	}
	assert.Contains(t, names, "generateTerraform")
	assert.Equal(t, "validate", names[len(names)-1])
}

func TestBuild_Errors(t *testing.T) {
	t.Run("duplicate name across groups", func(t *testing.T) {
		p := project(t)
		p.Yarn.Dirs = append(p.Yarn.Dirs, domain.YarnDir{Task: "plan", Dir: filepath.Join(p.Root, "web")})
		_, err := infra.Build(infra.Inputs{Project: p, Walker: fs.NewWalker()})
		require.ErrorIs(t, err, domain.ErrDuplicateTaskName)
	})
}

func TestBuild_WithoutToolchainCache(t *testing.T) {
	tests := []struct {
		name string
		home string
		goos string
	}{
		{name: "missing home", home: "", goos: "linux"},
		{name: "unsupported platform", home: "/home/op", goos: "windows"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := project(t)
			p.Home = tt.home
			p.GOOS = tt.goos

			res, err := infra.Build(infra.Inputs{Project: p, Walker: fs.NewWalker()})
			require.NoError(t, err)

			toolchain, ok := res.Graph.GetTask(domain.NewInternedString("adlToolchain"))
			require.True(t, ok)
			bootstrap, ok := toolchain.Action.(domain.Bootstrap)
			require.True(t, ok)
			require.ErrorIs(t, bootstrap.Err, domain.ErrConfiguration)

			_, err = res.Graph.Closure([]string{"plan"})
			require.NoError(t, err)
		})
	}
}
