package plugin

import (
	"context"

	"firestige.xyz/strix/internal/core"
)

// Reporter renders output packets to an external destination.
type Reporter interface {
	Plugin
	Report(ctx context.Context, pkt *core.OutputPacket) error
	Flush(ctx context.Context) error
}
