package domain

import "path/filepath"

const (
	// DirPerm is the default permission for directories created by hxt.
	DirPerm = 0o750
	// FilePerm is the default permission for files written by hxt.
	FilePerm = 0o644

	// StateDirName is the per-project directory holding hxt state.
	StateDirName = ".hxt"
	// ConfigFileName is the optional project configuration file.
	ConfigFileName = "hxt.yaml"
)

// StorePath returns the build info store directory under root.
func StorePath(root string) string {
	return filepath.Join(root, StateDirName, "store")
}
