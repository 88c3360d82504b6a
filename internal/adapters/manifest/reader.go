// Package manifest reads the file lists the terraform generators leave next to their output.
package manifest

import (
	"errors"
	"io/fs"
	"os"

	"github.com/tidwall/gjson"
	"go.trai.ch/hxt/internal/core/domain"
	"go.trai.ch/hxt/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ManifestReader = (*Reader)(nil)

// Reader implements ports.ManifestReader.
type Reader struct{}

// NewReader creates a Reader.
func NewReader() *Reader {
	return &Reader{}
}

// Read returns the entries of the manifest at path. File names are relative
// to the manifest's directory. A missing manifest has no entries.
func (r *Reader) Read(path string) ([]domain.ManifestEntry, error) {
	//nolint:gosec // manifests live at fixed locations under the project root
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrManifestInvalid, err.Error()), "path", path)
	}
	if !gjson.ValidBytes(data) {
		return nil, zerr.With(zerr.Wrap(domain.ErrManifestInvalid, "not valid JSON"), "path", path)
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsArray() {
		return nil, zerr.With(zerr.Wrap(domain.ErrManifestInvalid, "expected a JSON array"), "path", path)
	}

	var entries []domain.ManifestEntry
	var bad error
	doc.ForEach(func(_, item gjson.Result) bool {
		file := item.Get("file")
		if file.Type != gjson.String || file.Str == "" {
			bad = zerr.With(zerr.With(zerr.Wrap(domain.ErrManifestInvalid, "entry without a file name"),
				"path", path), "index", len(entries))
			return false
		}
		entries = append(entries, domain.ManifestEntry{File: file.Str, Hash: item.Get("hash").String()})
		return true
	})
	if bad != nil {
		return nil, bad
	}
	return entries, nil
}
