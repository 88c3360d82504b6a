// Package config resolves hxt.yaml into the settings the graph builders consume.
package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"go.trai.ch/hxt/internal/core/domain"
	"go.trai.ch/hxt/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Defaults reproduce the conventional project layout.
const (
	DefaultTerraformDir   = "terraform"
	DefaultTerraformImage = "hashicorp/terraform:0.15.3"
	DefaultParallelism    = 20
	DefaultLambdaOutDir   = "build/lambdas"
	DefaultADLVersion     = "0.37"
	DefaultADLReleaseURL  = "https://github.com/helix-collective/helix-adl-tools/releases/download"
	DefaultCamus2Dir      = "typescript/hx-terraform/library/camus2"
	DefaultCamus2Source   = "https://github.com/helix-collective/camus2/archive/%s.zip"
	DefaultCamus2Release  = "https://github.com/helix-collective/camus2/releases/download/%s/camus2.x86_64-linux.gz"
)

// DefaultPassEnv are the variables forwarded into the terraform container.
var DefaultPassEnv = []string{
	"AWS_ACCESS_KEY_ID",
	"AWS_SECRET_ACCESS_KEY",
	"AWS_SHARED_CREDENTIALS_FILE",
	"AWS_PROFILE",
	"AWS_SESSION_TOKEN",
	"TF_LOG",
	"HOME",
}

// DefaultYarnDirs are the package directories installed by yarn.
var DefaultYarnDirs = []domain.YarnDir{
	{Task: "yarnLocal", Dir: "typescript"},
	{Task: "yarnHxTerraform", Dir: "typescript/hx-terraform"},
}

// DefaultLambdaDirs are scanned for lambda sources.
var DefaultLambdaDirs = []string{"lambdas", "typescript/hx-terraform/aws/lambdas"}

// Loader implements ports.ConfigLoader.
type Loader struct {
	Logger ports.Logger
	// Getenv and GOOS describe the host; they are read once per Load.
	Getenv func(string) string
	GOOS   string
}

// NewLoader creates a Loader for the current host.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, Getenv: os.Getenv, GOOS: runtime.GOOS}
}

// Load discovers the project root from cwd and resolves its settings.
func (l *Loader) Load(cwd string) (*domain.Project, error) {
	cwd, err := filepath.Abs(cwd)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to resolve working directory"), "cwd", cwd)
	}
	root, found := DiscoverRoot(cwd)

	var file Hxtfile
	if found {
		if err := readHxtfile(filepath.Join(root, domain.ConfigFileName), &file); err != nil {
			return nil, err
		}
	}
	return l.resolve(root, &file)
}

// DiscoverRoot walks up from cwd to the first directory containing hxt.yaml.
// Without one, cwd is the root.
func DiscoverRoot(cwd string) (string, bool) {
	dir := cwd
	for {
		if info, err := os.Stat(filepath.Join(dir, domain.ConfigFileName)); err == nil && !info.IsDir() {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd, false
		}
		dir = parent
	}
}

func readHxtfile(path string, target *Hxtfile) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is the discovered config file
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", path)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, err.Error()), "path", path)
	}
	return nil
}

func (l *Loader) resolve(root string, file *Hxtfile) (*domain.Project, error) {
	p := &domain.Project{
		Root: root,
		Home: l.Getenv("HOME"),
		GOOS: l.GOOS,
	}

	tf := file.Terraform
	p.Terraform = domain.TerraformSettings{
		Dir:         anchor(root, or(tf.Dir, DefaultTerraformDir)),
		Image:       or(tf.Image, DefaultTerraformImage),
		Dockerized:  deref(tf.Dockerized, true),
		Parallelism: deref(tf.Parallelism, DefaultParallelism),
		PassEnv:     orSlice(tf.PassEnv, DefaultPassEnv),
	}
	if p.Terraform.Parallelism < 1 {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfiguration, "terraform.parallelism must be positive"),
			"parallelism", p.Terraform.Parallelism)
	}
	if !p.Terraform.Dockerized && tf.Image != "" {
		l.Logger.Warn("terraform.image is ignored because terraform.dockerized is false")
	}

	yarnDirs := DefaultYarnDirs
	if len(file.Yarn.Dirs) > 0 {
		yarnDirs = make([]domain.YarnDir, 0, len(file.Yarn.Dirs))
		for _, d := range file.Yarn.Dirs {
			if d.Task == "" || d.Dir == "" {
				return nil, zerr.With(zerr.Wrap(domain.ErrConfiguration, "yarn.dirs entries need task and dir"),
					"dir", d.Dir)
			}
			yarnDirs = append(yarnDirs, domain.YarnDir{Task: d.Task, Dir: d.Dir})
		}
	}
	for _, d := range yarnDirs {
		p.Yarn.Dirs = append(p.Yarn.Dirs, domain.YarnDir{Task: d.Task, Dir: anchor(root, d.Dir)})
	}

	for _, d := range orSlice(file.Lambdas.Dirs, DefaultLambdaDirs) {
		p.Lambdas.Dirs = append(p.Lambdas.Dirs, anchor(root, d))
	}
	p.Lambdas.OutDir = anchor(root, or(file.Lambdas.OutDir, DefaultLambdaOutDir))

	p.ADL = domain.ADLSettings{
		Version:    or(file.ADL.Version, DefaultADLVersion),
		ReleaseURL: or(file.ADL.ReleaseURL, DefaultADLReleaseURL),
	}
	p.Camus2 = domain.Camus2Settings{
		Dir:        anchor(root, or(file.Camus2.Dir, DefaultCamus2Dir)),
		SourceURL:  or(file.Camus2.SourceURL, DefaultCamus2Source),
		ReleaseURL: or(file.Camus2.ReleaseURL, DefaultCamus2Release),
	}
	p.Watch.Ignore = file.Watch.Ignore
	return p, nil
}

// anchor resolves relative configuration paths at the project root.
func anchor(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orSlice[T any](v, def []T) []T {
	if len(v) == 0 {
		return append([]T(nil), def...)
	}
	return v
}

func deref[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}
