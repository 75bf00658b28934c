package sdp

import (
	"bytes"

	"firestige.xyz/strix/internal/core"
)

// Sink receives records strictly in buffer order. The parser never reads
// them back; how they are stored or rendered is the sink's business.
type Sink interface {
	Emit(rec core.Record)
}

// Parse classifies payload line by line and emits exactly one record per
// consumed line plus, if any bytes remain unconsumed, one trailing-data
// record. It never fails: malformed input is surfaced as records, and the
// pass is bounded by the payload length. Each call owns its own cursor and
// section state, so concurrent calls on independent payloads are safe.
func Parse(payload []byte, sink Sink) {
	section := core.SectionNone
	cursor := 0

	for {
		line, next, ok := nextLine(payload, cursor)
		if !ok {
			break
		}

		// "v=" is the minimal framing. A shorter line ends scanning
		// altogether; its bytes fall through to the trailing count.
		if len(line) < 2 {
			break
		}

		sink.Emit(classify(line, &section))
		cursor = next
	}

	if remaining := len(payload) - cursor; remaining > 0 {
		sink.Emit(core.TrailingDataRecord{Bytes: remaining})
	}
}

// Records runs Parse with a collecting sink and returns the record sequence.
func Records(payload []byte) []core.Record {
	var recs collector
	Parse(payload, &recs)
	return recs
}

type collector []core.Record

func (c *collector) Emit(rec core.Record) { *c = append(*c, rec) }

// nextLine returns the next terminator-delimited line at cursor and the
// cursor position just past the terminator. CRLF and bare LF both terminate
// a line; a bare CR is ordinary content. The returned slice excludes the
// terminator and aliases payload, no copy is made. An unterminated tail is
// not a line: it is left to the trailing-data accounting.
func nextLine(buf []byte, cursor int) (line []byte, next int, ok bool) {
	if cursor >= len(buf) {
		return nil, cursor, false
	}
	idx := bytes.IndexByte(buf[cursor:], '\n')
	if idx == -1 {
		return nil, cursor, false
	}
	end := cursor + idx
	next = end + 1
	if end > cursor && buf[end-1] == '\r' {
		end--
	}
	return buf[cursor:end], next, true
}

// classify validates the framing of one line, updates the section state and
// resolves the display label. Callers have already filtered out sub-2-byte
// lines, so a missing separator is the only malformed case left.
func classify(line []byte, section *core.Section) core.Record {
	if line[1] != '=' {
		return core.MalformedLineRecord{Raw: line}
	}

	code := line[0]

	// Marker codes move the section before the label is resolved, so a
	// marker line is labeled against the section it opens.
	switch code {
	case 'v':
		*section = core.SectionSession
	case 't':
		*section = core.SectionTime
	case 'm':
		*section = core.SectionMedia
	}

	return core.FieldRecord{
		Code:    code,
		Value:   line[2:],
		Label:   labelFor(code, *section),
		Section: *section,
	}
}

// labelFor maps a field code to its display label. Only i and a depend on
// the section; outside the session and media sections they resolve to
// "Misplaced", which covers the time section and the unset state alike.
func labelFor(code byte, section core.Section) string {
	switch code {
	case 'v':
		return "Session Description, version"
	case 'o':
		return "Owner/Creator, Session Id"
	case 's':
		return "Session Name"
	case 'i':
		switch section {
		case core.SectionSession:
			return "Session Information"
		case core.SectionMedia:
			return "Media Title"
		default:
			return "Misplaced"
		}
	case 'u':
		return "URI of Description"
	case 'e':
		return "E-mail Address"
	case 'p':
		return "Phone Number"
	case 'c':
		return "Connection Information"
	case 'b':
		return "Bandwidth Information"
	case 't':
		return "Time Description, active time"
	case 'r':
		return "Repeat Time"
	case 'm':
		return "Media Description, name and address"
	case 'k':
		return "Encryption Key"
	case 'a':
		switch section {
		case core.SectionSession:
			return "Session Attribute"
		case core.SectionMedia:
			return "Media Attribute"
		default:
			return "Misplaced"
		}
	case 'z':
		return "Time Zone Adjustment"
	default:
		return "Unknown"
	}
}
