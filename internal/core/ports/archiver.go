package ports

import "context"

// Archiver creates and unpacks zip archives.
//
//go:generate go run go.uber.org/mock/mockgen -source=archiver.go -destination=mocks/mock_archiver.go -package=mocks
type Archiver interface {
	// Create writes sources into a reproducible archive at dest.
	Create(dest string, sources []string) error
	// Extract unpacks src beneath dest.
	Extract(src, dest string) error
}

// Downloader fetches a remote artifact to a local file.
type Downloader interface {
	Download(ctx context.Context, url, dest string) error
}
