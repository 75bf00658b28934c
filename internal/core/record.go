// Package core defines core data structures with zero external dependencies.
package core

// Section is the coarse parsing context of a session description. It is
// established by the most recently seen v=, t= or m= marker line and is used
// to disambiguate the two overloaded field codes (i and a). Only the most
// recent marker matters; no history is kept.
type Section uint8

const (
	SectionNone Section = iota
	SectionSession
	SectionTime
	SectionMedia
)

func (s Section) String() string {
	switch s {
	case SectionSession:
		return "session"
	case SectionTime:
		return "time"
	case SectionMedia:
		return "media"
	default:
		return "none"
	}
}

// Record is one entry of a session-description report. Exactly one record is
// produced per consumed line, plus at most one TrailingDataRecord per payload;
// together they account for every byte of the input.
type Record interface {
	isRecord()
}

// FieldRecord is a successfully framed "c=value" line.
type FieldRecord struct {
	Code    byte    // single-character field code, line[0]
	Value   []byte  // verbatim value bytes (line[2:]), never decoded further
	Label   string  // human-readable field name resolved from (Code, Section)
	Section Section // section in effect when the line was classified
}

// MalformedLineRecord is a line that carries a field code but no "="
// separator in the second position. Malformed lines are data, not errors:
// scanning continues after them.
type MalformedLineRecord struct {
	Raw []byte // the full line, verbatim
}

// TrailingDataRecord counts the bytes left after line scanning stopped,
// covering both an unterminated final line and anything never reached.
// Only the count is reported, never the content.
type TrailingDataRecord struct {
	Bytes int
}

func (FieldRecord) isRecord()         {}
func (MalformedLineRecord) isRecord() {}
func (TrailingDataRecord) isRecord()  {}
