package fs

import (
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/hxt/internal/core/domain"
	"go.trai.ch/hxt/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.FileSystem = (*FileSystem)(nil)

// FileSystem implements ports.FileSystem on the local disk.
type FileSystem struct{}

// NewFileSystem creates a new FileSystem.
func NewFileSystem() *FileSystem {
	return &FileSystem{}
}

// Fingerprint stats path. A missing file yields domain.Absent.
func (f *FileSystem) Fingerprint(path string) (domain.Fingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return domain.Absent, nil
		}
		return domain.Fingerprint{}, zerr.With(zerr.Wrap(err, "failed to stat file"), "path", path)
	}
	return domain.Fingerprint{
		ModTime: info.ModTime(),
		Size:    info.Size(),
		Exists:  true,
	}, nil
}

// HashFile computes the XXHash of a file's content as 16 hex digits.
func (f *FileSystem) HashFile(path string) (string, error) {
	file, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer file.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}
	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}

// Remove deletes path, ignoring a file that is already gone.
func (f *FileSystem) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, "failed to remove file"), "path", path)
	}
	return nil
}
