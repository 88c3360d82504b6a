package domain

// Project is the resolved configuration every graph builder receives.
// Root is absolute; builders never consult the process working directory.
type Project struct {
	Root string
	// Home and GOOS are captured once when configuration is loaded.
	Home string
	GOOS string

	Terraform TerraformSettings
	Yarn      YarnSettings
	Lambdas   LambdaSettings
	ADL       ADLSettings
	Camus2    Camus2Settings
	Watch     WatchSettings
}

// TerraformSettings configure the terraform task group.
type TerraformSettings struct {
	Dir         string
	Image       string
	Dockerized  bool
	Parallelism int
	PassEnv     []string
}

// YarnSettings list the directories whose node packages are installed.
type YarnSettings struct {
	Dirs []YarnDir
}

// YarnDir is one managed package directory and the task that installs it.
type YarnDir struct {
	Task string
	Dir  string
}

// LambdaSettings list directories scanned for lambda sources.
type LambdaSettings struct {
	Dirs   []string
	OutDir string
}

// ADLSettings select the ADL compiler release.
type ADLSettings struct {
	Version string
	// ReleaseURL is the base under which v<version>/<bindist> is published.
	ReleaseURL string
}

// WatchSettings configure `hxt watch`.
type WatchSettings struct {
	// Ignore names directories skipped in addition to the built-in list.
	Ignore []string
}

// Camus2Settings locate the camus2 bindings and their upstream archives.
type Camus2Settings struct {
	Dir        string
	SourceURL  string
	ReleaseURL string
}
