package domain

import (
	"path/filepath"
	"slices"
	"time"
)

// TrackedFile is a handle to a file whose modification time participates in staleness decisions.
// Creating one performs no I/O; the file may not exist yet.
type TrackedFile struct {
	Path InternedString
}

// Track returns the handle for path. The path is cleaned, so equivalent spellings share a handle.
func Track(path string) TrackedFile {
	return TrackedFile{Path: NewInternedString(filepath.Clean(path))}
}

// TrackAll is Track applied to every path, in order.
func TrackAll(paths ...string) []TrackedFile {
	files := make([]TrackedFile, 0, len(paths))
	for _, p := range paths {
		files = append(files, Track(p))
	}
	return files
}

// String returns the tracked path.
func (f TrackedFile) String() string {
	return f.Path.String()
}

// Fingerprint is the observed state of a tracked file at query time.
type Fingerprint struct {
	ModTime time.Time
	Size    int64
	Exists  bool
}

// Absent is the fingerprint of a file that does not exist.
var Absent = Fingerprint{}

// SortTracked orders files by path and drops duplicates.
func SortTracked(files []TrackedFile) []TrackedFile {
	out := slices.Clone(files)
	slices.SortFunc(out, func(a, b TrackedFile) int { return a.Path.Compare(b.Path) })
	return slices.CompactFunc(out, func(a, b TrackedFile) bool { return a.Path == b.Path })
}
