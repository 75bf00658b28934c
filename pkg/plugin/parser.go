package plugin

import "firestige.xyz/strix/internal/core"

// Parser classifies application-layer payloads.
type Parser interface {
	Plugin

	// DisplayName returns the human-readable protocol name used purely for
	// reporting; the parsing algorithm never consumes it.
	DisplayName() string

	// CanHandle decides whether the packet should be processed by this
	// parser. It must be cheap: port checks and payload prefix sniffing.
	CanHandle(pkt *core.DecodedPacket) bool

	// Handle parses the payload and returns a typed payload plus labels
	// for the packet summary.
	Handle(pkt *core.DecodedPacket) (payload any, labels core.Labels, err error)
}
