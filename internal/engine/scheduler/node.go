package scheduler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/hxt/internal/adapters/cas"       //nolint:depguard // Wired in engine wiring
	"go.trai.ch/hxt/internal/adapters/fs"        //nolint:depguard // Wired in engine wiring
	"go.trai.ch/hxt/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/hxt/internal/core/ports"
)

// NodeID is the unique identifier for the scheduler Graft node.
const NodeID graft.ID = "engine.scheduler"

func init() {
	graft.Register(graft.Node[*Scheduler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			fs.FileSystemNodeID,
			cas.NodeID,
			telemetry.TracerNodeID,
		},
		Run: func(ctx context.Context) (*Scheduler, error) {
			fileSystem, err := graft.Dep[ports.FileSystem](ctx)
			if err != nil {
				return nil, err
			}

			store, err := graft.Dep[ports.BuildInfoStore](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			return NewScheduler(fileSystem, store, tracer), nil
		},
	})
}
