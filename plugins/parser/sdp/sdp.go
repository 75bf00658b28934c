// Package sdp implements a session-description (SDP, RFC 2327) line
// classifier.
//
// SDP is purely a format for session description; it is carried inside other
// transports (SAP, SIP, RTSP, mail, HTTP), so the parser receives an already
// extracted, fully reassembled payload and treats the outer protocol as
// opaque. Each line is framed, its one-character field code resolved to a
// display label, and the value kept verbatim; no field value is interpreted.
// A single "current section" scalar, set by the v=, t= and m= marker lines,
// disambiguates the two overloaded codes (i and a). Malformed lines are
// reported and skipped; a line shorter than the minimal "v=" framing stops
// line scanning and whatever is left of the buffer is reported as trailing
// data, so every input byte lands in exactly one record.
package sdp

import (
	"bytes"
	"context"
	"strconv"

	"github.com/mitchellh/mapstructure"

	"firestige.xyz/strix/internal/core"
	"firestige.xyz/strix/pkg/plugin"
)

const (
	// Name is the plugin identifier used in task configuration.
	Name = "sdp"

	// displayName is registration metadata for reporting only.
	displayName = "Session Description Protocol"

	// sapPort is the well-known SAP port (RFC 2974); SAP announcements
	// carry SDP payloads.
	sapPort = 9875
)

// SDPParser classifies session-description payloads.
type SDPParser struct {
	name  string
	ports map[uint16]struct{}
}

// Config represents the parser configuration.
type Config struct {
	// Ports lists additional UDP/TCP ports whose payloads are assumed to
	// be session descriptions. The SAP port is always included.
	Ports []uint16 `mapstructure:"ports"`
}

// NewSDPParser creates a new SDP parser.
func NewSDPParser() plugin.Parser {
	return &SDPParser{
		name:  Name,
		ports: map[uint16]struct{}{sapPort: {}},
	}
}

// Name returns the plugin name.
func (p *SDPParser) Name() string { return p.name }

// DisplayName returns the protocol name used in reports.
func (p *SDPParser) DisplayName() string { return displayName }

// Init initializes the parser with configuration.
func (p *SDPParser) Init(config map[string]any) error {
	if config == nil {
		return nil
	}
	var cfg Config
	if err := mapstructure.Decode(config, &cfg); err != nil {
		return err
	}
	for _, port := range cfg.Ports {
		p.ports[port] = struct{}{}
	}
	return nil
}

// Start is a no-op, the parser holds no background resources.
func (p *SDPParser) Start(_ context.Context) error { return nil }

// Stop is a no-op for the same reason.
func (p *SDPParser) Stop(_ context.Context) error { return nil }

// CanHandle decides whether the payload looks like a session description.
// Configured ports win; otherwise a cheap prefix check: descriptions start
// with a version line ("v=...").
func (p *SDPParser) CanHandle(pkt *core.DecodedPacket) bool {
	if _, ok := p.ports[pkt.SrcPort]; ok {
		return true
	}
	if _, ok := p.ports[pkt.DstPort]; ok {
		return true
	}
	return bytes.HasPrefix(pkt.Payload, []byte("v="))
}

// Handle runs the classifier over the payload. The typed payload is the
// ordered record sequence; labels summarize it for the per-packet report
// line.
func (p *SDPParser) Handle(pkt *core.DecodedPacket) (any, core.Labels, error) {
	records := Records(pkt.Payload)

	var fields, malformed, trailing int
	for _, rec := range records {
		switch rec := rec.(type) {
		case core.FieldRecord:
			fields++
		case core.MalformedLineRecord:
			malformed++
		case core.TrailingDataRecord:
			trailing = rec.Bytes
		}
	}

	labels := core.Labels{
		core.LabelSDPSummary:       "with session description",
		core.LabelSDPFields:        strconv.Itoa(fields),
		core.LabelSDPMalformed:     strconv.Itoa(malformed),
		core.LabelSDPTrailingBytes: strconv.Itoa(trailing),
	}

	return records, labels, nil
}

// FieldCodes returns every known field code with the labels it can resolve
// to, in code order. Reporting helper; the classifier does not use it.
func FieldCodes() []FieldCode {
	codes := []byte{'v', 'o', 's', 'i', 'u', 'e', 'p', 'c', 'b', 't', 'r', 'm', 'k', 'a', 'z'}
	out := make([]FieldCode, 0, len(codes))
	for _, c := range codes {
		fc := FieldCode{Code: c}
		switch c {
		case 'i', 'a':
			fc.SessionLabel = labelFor(c, core.SectionSession)
			fc.MediaLabel = labelFor(c, core.SectionMedia)
			fc.Overloaded = true
		default:
			fc.SessionLabel = labelFor(c, core.SectionSession)
		}
		out = append(out, fc)
	}
	return out
}

// FieldCode describes one entry of the code→label table.
type FieldCode struct {
	Code         byte
	SessionLabel string
	MediaLabel   string // set only for overloaded codes
	Overloaded   bool
}
