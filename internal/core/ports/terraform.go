package ports

import "go.trai.ch/hxt/internal/core/domain"

// HCLChecker validates terraform sources without invoking terraform.
//
//go:generate go run go.uber.org/mock/mockgen -source=terraform.go -destination=mocks/mock_terraform.go -package=mocks
type HCLChecker interface {
	// Check parses every *.tf file in dir.
	Check(dir string) error
}

// ManifestReader reads the file lists written by the generators.
type ManifestReader interface {
	Read(path string) ([]domain.ManifestEntry, error)
}
