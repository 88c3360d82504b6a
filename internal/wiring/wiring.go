// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/hxt/internal/adapters/archive"
	_ "go.trai.ch/hxt/internal/adapters/cas"
	_ "go.trai.ch/hxt/internal/adapters/config"
	_ "go.trai.ch/hxt/internal/adapters/confirm"
	_ "go.trai.ch/hxt/internal/adapters/fs"
	_ "go.trai.ch/hxt/internal/adapters/hclcheck"
	_ "go.trai.ch/hxt/internal/adapters/httpfetch"
	_ "go.trai.ch/hxt/internal/adapters/linear"
	_ "go.trai.ch/hxt/internal/adapters/logger"
	_ "go.trai.ch/hxt/internal/adapters/manifest"
	_ "go.trai.ch/hxt/internal/adapters/shell"
	_ "go.trai.ch/hxt/internal/adapters/telemetry"
	_ "go.trai.ch/hxt/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/hxt/internal/app"
	_ "go.trai.ch/hxt/internal/engine/scheduler"
)
