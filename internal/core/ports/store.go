package ports

import "go.trai.ch/hxt/internal/core/domain"

// BuildInfoStore persists what each task saw on its last successful run.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type BuildInfoStore interface {
	// Get retrieves the build info for a task under the project root.
	// Returns nil, nil if not found.
	Get(root, taskName string) (*domain.BuildInfo, error)

	// Put stores the build info.
	Put(root string, info domain.BuildInfo) error

	// Reset drops every record kept for root.
	Reset(root string) error
}
