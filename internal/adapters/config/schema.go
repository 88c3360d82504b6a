package config

// Hxtfile is the structure of hxt.yaml. Every field is optional.
type Hxtfile struct {
	Terraform TerraformDTO `yaml:"terraform"`
	Yarn      YarnDTO      `yaml:"yarn"`
	Lambdas   LambdasDTO   `yaml:"lambdas"`
	ADL       ADLDTO       `yaml:"adl"`
	Camus2    Camus2DTO    `yaml:"camus2"`
	Watch     WatchDTO     `yaml:"watch"`
}

// TerraformDTO configures the terraform tasks.
type TerraformDTO struct {
	Dir         string   `yaml:"dir"`
	Image       string   `yaml:"image"`
	Dockerized  *bool    `yaml:"dockerized"`
	Parallelism *int     `yaml:"parallelism"`
	PassEnv     []string `yaml:"pass_env"`
}

// YarnDTO lists the package directories installed by yarn.
type YarnDTO struct {
	Dirs []YarnDirDTO `yaml:"dirs"`
}

// YarnDirDTO is one yarn-managed directory.
type YarnDirDTO struct {
	Task string `yaml:"task"`
	Dir  string `yaml:"dir"`
}

// LambdasDTO configures lambda packaging.
type LambdasDTO struct {
	Dirs   []string `yaml:"dirs"`
	OutDir string   `yaml:"out_dir"`
}

// ADLDTO selects the ADL compiler release.
type ADLDTO struct {
	Version    string `yaml:"version"`
	ReleaseURL string `yaml:"release_url"`
}

// Camus2DTO locates the camus2 bindings.
type Camus2DTO struct {
	Dir        string `yaml:"dir"`
	SourceURL  string `yaml:"source_url"`
	ReleaseURL string `yaml:"release_url"`
}

// WatchDTO configures `hxt watch`.
type WatchDTO struct {
	Ignore []string `yaml:"ignore"`
}
