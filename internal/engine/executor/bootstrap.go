package executor

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"go.trai.ch/hxt/internal/core/domain"
	"go.trai.ch/zerr"
)

// bootstrap installs a toolchain release into a.Dir. An existing directory means
// the version is already installed.
func (e *Executor) bootstrap(ctx context.Context, a domain.Bootstrap) error {
	if a.Err != nil {
		return a.Err
	}
	if info, err := os.Stat(a.Dir); err == nil && info.IsDir() {
		e.logger.Info(a.Tool + " " + a.Version + " already installed")
		return nil
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, "failed to inspect toolchain directory"), "dir", a.Dir)
	}

	e.logger.Info("fetching " + a.Tool + " version " + a.Version)
	if err := os.MkdirAll(a.DownloadDir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create download directory"), "dir", a.DownloadDir)
	}
	archive := filepath.Join(a.DownloadDir, path.Base(a.URL))
	if err := e.downloader.Download(ctx, a.URL, archive); err != nil {
		return err
	}

	if err := os.MkdirAll(a.Dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create toolchain directory"), "dir", a.Dir)
	}
	if err := e.archiver.Extract(archive, a.Dir); err != nil {
		// A half-populated directory would be mistaken for an installed version.
		_ = os.RemoveAll(a.Dir)
		return err
	}
	return nil
}
