package hclcheck

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/hxt/internal/core/ports"
)

// NodeID is the unique identifier for the HCL checker Graft node.
const NodeID graft.ID = "adapter.hclcheck"

func init() {
	graft.Register(graft.Node[ports.HCLChecker]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.HCLChecker, error) {
			return NewChecker(), nil
		},
	})
}
