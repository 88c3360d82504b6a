package domain

import (
	"fmt"
	"strings"
)

// Action is the work a task performs, expressed as data.
// The engine's executor interprets each concrete type; tests can inspect them directly.
type Action interface {
	// Summary is a one-line rendering used in listings and logs.
	Summary() string
}

// Container runs an Exec inside a docker image with the project root mounted.
type Container struct {
	Image string
	// Root is the host directory mounted at MountPoint.
	Root       string
	MountPoint string
	// Workdir is the working directory inside the container.
	Workdir string
	// PassEnv names host variables forwarded when set.
	PassEnv []string
}

// Exec runs an external command.
type Exec struct {
	Argv []string
	Dir  string
	Env  map[string]string
	// Console attaches the command to the operator's terminal.
	Console   bool
	Container *Container
}

// Summary implements Action.
func (e Exec) Summary() string {
	s := strings.Join(e.Argv, " ")
	if e.Container != nil {
		s = fmt.Sprintf("%s (in %s)", s, e.Container.Image)
	}
	return s
}

// Archive packages Sources into a reproducible zip at Dest.
type Archive struct {
	Dest    string
	Sources []string
}

// Summary implements Action.
func (a Archive) Summary() string {
	return "zip " + a.Dest
}

// Apply applies a previously written plan after guarding its age and asking for confirmation.
type Apply struct {
	Plan TrackedFile
	Exec Exec
	// Prompt is shown to the operator before applying.
	Prompt string
}

// Summary implements Action.
func (a Apply) Summary() string {
	return "apply " + a.Plan.String()
}

// CheckHCL parses every terraform source in Dir.
type CheckHCL struct {
	Dir string
}

// Summary implements Action.
func (c CheckHCL) Summary() string {
	return "check " + c.Dir
}

// Bootstrap downloads and unpacks a versioned toolchain into Dir unless it is already there.
type Bootstrap struct {
	Tool        string
	Version     string
	URL         string
	Dir         string
	DownloadDir string

	// Err is set when the install location could not be resolved on this host.
	// Executing the action reports it.
	Err error
}

// Summary implements Action.
func (b Bootstrap) Summary() string {
	return fmt.Sprintf("bootstrap %s %s", b.Tool, b.Version)
}

// UpdateBindings imports a released component's ADL sources and regenerates its typescript bindings.
// The version comes from the run arguments.
type UpdateBindings struct {
	// Dir receives adl/, adl-gen/ and the release URL module.
	Dir string
	// SourceURL and ReleaseURL are format strings taking the version.
	SourceURL  string
	ReleaseURL string
	// ArchivePrefix is the top-level directory name in the source archive, formatted with the version.
	ArchivePrefix string
	// Toolchain is the bootstrapped compiler directory containing bin/adlc and lib/adl.
	Toolchain string
}

// Summary implements Action.
func (u UpdateBindings) Summary() string {
	return "update bindings in " + u.Dir
}

// Alias does nothing; it groups dependencies under one name.
type Alias struct{}

// Summary implements Action.
func (Alias) Summary() string {
	return "alias"
}
