package ports

import "context"

// Confirmer asks the operator a yes/no question.
//
//go:generate go run go.uber.org/mock/mockgen -source=confirmer.go -destination=mocks/mock_confirmer.go -package=mocks
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}
