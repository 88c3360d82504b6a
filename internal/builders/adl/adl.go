// Package adl builds the task that installs the ADL compiler toolchain.
package adl

import (
	"path/filepath"

	"go.trai.ch/hxt/internal/core/domain"
	"go.trai.ch/zerr"
)

// GroupName labels the toolchain task group.
const GroupName = "adl"

// ToolchainTask is the name of the bootstrap task.
const ToolchainTask = "adlToolchain"

// Layout locates one toolchain version in the per-user cache.
type Layout struct {
	Version  string
	Platform string
	// CacheDir is the per-user cache root.
	CacheDir string
	// VersionDir receives the unpacked release.
	VersionDir  string
	DownloadDir string
	Bundle      string
	URL         string
}

// NewLayout derives the cache layout for version on goos.
func NewLayout(goos, home, version, releaseURL string) (Layout, error) {
	if home == "" {
		return Layout{}, zerr.Wrap(domain.ErrConfiguration, "HOME is not set")
	}

	l := Layout{Version: version}
	switch goos {
	case "darwin":
		l.Platform = "osx"
		l.CacheDir = filepath.Join(home, "Library", "Caches")
	case "linux":
		l.Platform = "linux"
		l.CacheDir = filepath.Join(home, ".cache")
	default:
		return Layout{}, zerr.With(zerr.Wrap(domain.ErrConfiguration, "unsupported platform for the ADL toolchain"),
			"goos", goos)
	}

	l.VersionDir = filepath.Join(l.CacheDir, "hxadl", version)
	l.DownloadDir = filepath.Join(l.CacheDir, "hxadl", "downloads")
	l.Bundle = "hxadl-bindist-" + version + "-" + l.Platform + ".zip"
	l.URL = releaseURL + "/v" + version + "/" + l.Bundle
	return l, nil
}

// Result exposes the bootstrap task and where it installs to.
type Result struct {
	Group  *domain.Group
	Layout Layout
	Task   *domain.Task
}

// Build creates the bootstrap task. Its target is the version directory, so the
// download happens once per version. When the host has no usable cache location
// the task is still declared and fails with ErrConfiguration only when it runs.
func Build(p *domain.Project) (*Result, error) {
	res := &Result{Group: domain.NewGroup(GroupName)}
	layout, err := NewLayout(p.GOOS, p.Home, p.ADL.Version, p.ADL.ReleaseURL)
	if err != nil {
		res.Task, err = res.Group.AddNew(ToolchainTask,
			domain.Bootstrap{Tool: "hxadl", Version: p.ADL.Version, Err: err},
			domain.WithDescription("Fetch ADL compiler "+p.ADL.Version+" into the user cache"),
		)
		if err != nil {
			return nil, err
		}
		return res, nil
	}

	res.Layout = layout
	res.Task, err = res.Group.AddNew(ToolchainTask,
		domain.Bootstrap{
			Tool:        "hxadl",
			Version:     layout.Version,
			URL:         layout.URL,
			Dir:         layout.VersionDir,
			DownloadDir: layout.DownloadDir,
		},
		domain.WithDescription("Fetch ADL compiler "+layout.Version+" into the user cache"),
		domain.WithTargets(layout.VersionDir),
	)
	if err != nil {
		return nil, err
	}
	return res, nil
}
