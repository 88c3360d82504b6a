// Package archive reads and writes zip archives.
package archive

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"go.trai.ch/hxt/internal/core/domain"
	"go.trai.ch/hxt/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Archiver = (*Zip)(nil)

// EntryTime is the modification time written for every entry so that
// archives of identical sources are byte-identical.
var EntryTime = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Zip implements ports.Archiver.
type Zip struct{}

// NewZip creates a Zip archiver.
func NewZip() *Zip {
	return &Zip{}
}

// Create writes dest containing each source under its base name. Entries are
// stored with mode 0644 and a Unix creator so Lambda accepts them.
func (z *Zip) Create(dest string, sources []string) (err error) {
	if err := os.MkdirAll(filepath.Dir(dest), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrArchiveFailed, err.Error()), "dest", dest)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".zip-*")
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrArchiveFailed, err.Error()), "dest", dest)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := zip.NewWriter(tmp)
	seen := make(map[string]string, len(sources))
	for _, src := range sources {
		name := filepath.Base(src)
		if prev, ok := seen[name]; ok {
			return zerr.With(zerr.With(zerr.Wrap(domain.ErrArchiveFailed, "two sources share an entry name"),
				"entry", name), "sources", prev+", "+src)
		}
		seen[name] = src
		if err := addFile(w, name, src); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrArchiveFailed, err.Error()), "dest", dest)
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrArchiveFailed, err.Error()), "dest", dest)
	}
	if err := os.Chmod(tmp.Name(), domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrArchiveFailed, err.Error()), "dest", dest)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrArchiveFailed, err.Error()), "dest", dest)
	}
	return nil
}

func addFile(w *zip.Writer, name, src string) error {
	//nolint:gosec // sources come from the task graph
	f, err := os.Open(src)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrArchiveFailed, err.Error()), "source", src)
	}
	defer func() { _ = f.Close() }()

	hdr := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: EntryTime,
	}
	hdr.SetMode(domain.FilePerm)
	entry, err := w.CreateHeader(hdr)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrArchiveFailed, err.Error()), "source", src)
	}
	if _, err := io.Copy(entry, f); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrArchiveFailed, err.Error()), "source", src)
	}
	return nil
}

// Extract unpacks src into dest, keeping the executable bits of entries.
func (z *Zip) Extract(src, dest string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrArchiveFailed, err.Error()), "archive", src)
	}
	defer func() { _ = r.Close() }()

	root := filepath.Clean(dest)
	for _, f := range r.File {
		target := filepath.Join(root, filepath.FromSlash(f.Name))
		if target != root && !strings.HasPrefix(target, root+string(filepath.Separator)) {
			return zerr.With(zerr.Wrap(domain.ErrArchiveFailed, "entry escapes destination"),
				"entry", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, domain.DirPerm); err != nil {
				return zerr.With(zerr.Wrap(domain.ErrArchiveFailed, err.Error()), "entry", f.Name)
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrArchiveFailed, err.Error()), "entry", f.Name)
	}
	perm := f.Mode().Perm()
	if perm == 0 {
		perm = domain.FilePerm
	}

	rc, err := f.Open()
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrArchiveFailed, err.Error()), "entry", f.Name)
	}
	defer func() { _ = rc.Close() }()

	//nolint:gosec // target is confined to the destination directory
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrArchiveFailed, err.Error()), "entry", f.Name)
	}
	//nolint:gosec // archives are trusted toolchain releases
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return zerr.With(zerr.Wrap(domain.ErrArchiveFailed, err.Error()), "entry", f.Name)
	}
	if err := out.Close(); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrArchiveFailed, err.Error()), "entry", f.Name)
	}
	return nil
}
