// Package httpfetch downloads release artifacts over HTTP.
package httpfetch

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/hxt/internal/core/domain"
	"go.trai.ch/hxt/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Downloader = (*Downloader)(nil)

// DefaultTimeout bounds a single download, including the body transfer.
const DefaultTimeout = 10 * time.Minute

// Downloader implements ports.Downloader with net/http.
type Downloader struct {
	client *http.Client
}

// NewDownloader creates a Downloader. A nil client gets DefaultTimeout.
func NewDownloader(client *http.Client) *Downloader {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Downloader{client: client}
}

// Download fetches url into dest. dest is only replaced once the whole body arrived.
func (d *Downloader) Download(ctx context.Context, url, dest string) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrDownloadFailed, err.Error()), "url", url)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrDownloadFailed, err.Error()), "url", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return zerr.With(zerr.With(zerr.Wrap(domain.ErrDownloadFailed, "unexpected response"),
			"url", url), "status", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(dest), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrDownloadFailed, err.Error()), "dest", dest)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrDownloadFailed, err.Error()), "dest", dest)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrDownloadFailed, err.Error()), "url", url)
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrDownloadFailed, err.Error()), "dest", dest)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrDownloadFailed, err.Error()), "dest", dest)
	}
	return nil
}
