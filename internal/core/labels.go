// Package core defines core types.
package core

// Labels represents key-value metadata attached by parsers.
type Labels map[string]string

// Label naming constants following {protocol}.{field} convention.
const (
	LabelSDPSummary       = "sdp.summary"        // fixed info-column annotation
	LabelSDPFields        = "sdp.fields"         // number of classified field lines
	LabelSDPMalformed     = "sdp.malformed"      // number of malformed lines
	LabelSDPTrailingBytes = "sdp.trailing_bytes" // unconsumed byte count, "0" when fully consumed
)
