// Package cas persists build info for tasks whose freshness cannot be read from targets.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/hxt/internal/core/domain"
	"go.trai.ch/hxt/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.BuildInfoStore = (*Store)(nil)

// Store implements ports.BuildInfoStore with one JSON file per task under
// the project's state directory.
type Store struct{}

// NewStore creates a Store.
func NewStore() *Store {
	return &Store{}
}

// Get retrieves the build info for a given task name.
func (s *Store) Get(root, taskName string) (*domain.BuildInfo, error) {
	filename := s.filename(root, taskName)
	//nolint:gosec // Path is constructed from the project root and a hashed filename
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrStoreReadFailed, err.Error()), "path", filename)
	}

	var info domain.BuildInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrStoreUnmarshalFailed, err.Error()), "path", filename)
	}
	return &info, nil
}

// Put stores the build info.
func (s *Store) Put(root string, info domain.BuildInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return zerr.Wrap(domain.ErrStoreMarshalFailed, err.Error())
	}

	filename := s.filename(root, info.TaskName)
	if err := os.MkdirAll(filepath.Dir(filename), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrStoreCreateFailed, err.Error()), "path", filename)
	}
	//nolint:gosec // Path is constructed from the project root and a hashed filename
	if err := os.WriteFile(filename, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrStoreWriteFailed, err.Error()), "path", filename)
	}
	return nil
}

// Reset forgets every recorded task under root.
func (s *Store) Reset(root string) error {
	if err := os.RemoveAll(domain.StorePath(root)); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrStoreWriteFailed, err.Error()), "path", domain.StorePath(root))
	}
	return nil
}

func (s *Store) filename(root, taskName string) string {
	name := strconv.FormatUint(xxhash.Sum64String(taskName), 16)
	return filepath.Join(domain.StorePath(root), name+".json")
}
