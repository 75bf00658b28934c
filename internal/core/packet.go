// Package core defines core data structures with zero external dependencies.
package core

import (
	"net/netip"
	"time"
)

// RawPacket is one frame read from a capture source.
type RawPacket struct {
	Data       []byte // raw frame bytes, zero-copy slice into the reader buffer
	Timestamp  time.Time
	CaptureLen uint32
	OrigLen    uint32
}

// DecodedPacket is the result of L2-L4 decoding: transport endpoints plus the
// application payload the parsers operate on.
type DecodedPacket struct {
	Timestamp time.Time
	SrcIP     netip.Addr
	DstIP     netip.Addr
	SrcPort   uint16
	DstPort   uint16
	Protocol  uint8  // TCP=6, UDP=17
	Payload   []byte // application payload, zero-copy slice
}

// OutputPacket is the final output handed to reporters.
type OutputPacket struct {
	// Envelope
	Input     string // source file the packet came from
	Index     int    // packet ordinal within the input, starting at 1
	Timestamp time.Time

	// Network context (zero values for raw payload inputs)
	SrcIP    netip.Addr
	DstIP    netip.Addr
	SrcPort  uint16
	DstPort  uint16
	Protocol uint8

	// Parser annotations
	Labels Labels

	// Typed payload; concrete type determined by PayloadType, reporters
	// do the type assertion. For "sdp" it is []core.Record.
	PayloadType string
	Payload     any
	RawPayload  []byte
}
