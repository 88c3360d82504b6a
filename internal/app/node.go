package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/hxt/internal/adapters/archive"   //nolint:depguard // Wired in app layer
	"go.trai.ch/hxt/internal/adapters/cas"       //nolint:depguard // Wired in app layer
	"go.trai.ch/hxt/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/hxt/internal/adapters/confirm"   //nolint:depguard // Wired in app layer
	"go.trai.ch/hxt/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/hxt/internal/adapters/hclcheck"  //nolint:depguard // Wired in app layer
	"go.trai.ch/hxt/internal/adapters/httpfetch" //nolint:depguard // Wired in app layer
	"go.trai.ch/hxt/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/hxt/internal/adapters/manifest"  //nolint:depguard // Wired in app layer
	"go.trai.ch/hxt/internal/adapters/shell"     //nolint:depguard // Wired in app layer
	"go.trai.ch/hxt/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/hxt/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/hxt/internal/core/ports"
	"go.trai.ch/hxt/internal/engine/scheduler"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			scheduler.NodeID,
			logger.NodeID,
			fs.FileSystemNodeID,
			fs.WalkerNodeID,
			cas.NodeID,
			shell.NodeID,
			archive.NodeID,
			httpfetch.NodeID,
			hclcheck.NodeID,
			manifest.NodeID,
			confirm.NodeID,
			watcher.NodeID,
			telemetry.TracerNodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: app, Logger: log}, nil
		},
	})
}

//nolint:cyclop // one lookup per collaborator
func runAppNode(ctx context.Context) (*App, error) {
	var (
		d   Deps
		err error
	)
	if d.Loader, err = graft.Dep[ports.ConfigLoader](ctx); err != nil {
		return nil, err
	}
	if d.Scheduler, err = graft.Dep[*scheduler.Scheduler](ctx); err != nil {
		return nil, err
	}
	if d.Logger, err = graft.Dep[ports.Logger](ctx); err != nil {
		return nil, err
	}
	if d.FS, err = graft.Dep[ports.FileSystem](ctx); err != nil {
		return nil, err
	}
	if d.Walker, err = graft.Dep[ports.Walker](ctx); err != nil {
		return nil, err
	}
	if d.Store, err = graft.Dep[ports.BuildInfoStore](ctx); err != nil {
		return nil, err
	}
	if d.Runner, err = graft.Dep[ports.CommandRunner](ctx); err != nil {
		return nil, err
	}
	if d.Archiver, err = graft.Dep[ports.Archiver](ctx); err != nil {
		return nil, err
	}
	if d.Downloader, err = graft.Dep[ports.Downloader](ctx); err != nil {
		return nil, err
	}
	if d.HCL, err = graft.Dep[ports.HCLChecker](ctx); err != nil {
		return nil, err
	}
	if d.Manifests, err = graft.Dep[ports.ManifestReader](ctx); err != nil {
		return nil, err
	}
	if d.Confirmer, err = graft.Dep[ports.Confirmer](ctx); err != nil {
		return nil, err
	}
	if d.Watcher, err = graft.Dep[ports.Watcher](ctx); err != nil {
		return nil, err
	}
	if d.Tracer, err = graft.Dep[ports.Tracer](ctx); err != nil {
		return nil, err
	}
	return New(d), nil
}
