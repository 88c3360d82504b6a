// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/hxt/internal/core/domain"
)

// Executor performs a task's action.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute interprets task.Action. args carries named run arguments such as "version".
	Execute(ctx context.Context, task *domain.Task, args map[string]string) error
}
