package ports

import "go.trai.ch/hxt/internal/core/domain"

// ConfigLoader resolves the project configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load discovers the project root from cwd and returns its resolved settings.
	Load(cwd string) (*domain.Project, error)
}
