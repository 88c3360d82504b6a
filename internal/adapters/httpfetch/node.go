package httpfetch

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/hxt/internal/core/ports"
)

// NodeID is the unique identifier for the downloader Graft node.
const NodeID graft.ID = "adapter.httpfetch"

func init() {
	graft.Register(graft.Node[ports.Downloader]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Downloader, error) {
			return NewDownloader(nil), nil
		},
	})
}
