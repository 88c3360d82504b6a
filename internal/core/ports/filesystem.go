package ports

import (
	"iter"

	"go.trai.ch/hxt/internal/core/domain"
)

// FileSystem is the narrow view of the disk the engine needs.
//
//go:generate go run go.uber.org/mock/mockgen -source=filesystem.go -destination=mocks/mock_filesystem.go -package=mocks
type FileSystem interface {
	// Fingerprint reports the current state of path. A missing file is not an error.
	Fingerprint(path string) (domain.Fingerprint, error)
	// HashFile returns the content hash of path.
	HashFile(path string) (string, error)
	// Remove deletes path. Removing a missing file is not an error.
	Remove(path string) error
}

// Walker lists files beneath a directory.
type Walker interface {
	// WalkFiles yields every regular file under root, skipping names matching ignores.
	WalkFiles(root string, ignores []string) iter.Seq[string]
}
