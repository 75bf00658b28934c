package sdp

import "firestige.xyz/strix/internal/core"

// FormatText renders raw value or line bytes for display: printable ASCII is
// kept verbatim, everything else becomes a backslash escape. Records keep
// the original bytes; this transform is applied at render time only.
func FormatText(b []byte) string {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		switch {
		case c == '\\':
			out = append(out, '\\', '\\')
		case c == '\t':
			out = append(out, '\\', 't')
		case c == '\r':
			out = append(out, '\\', 'r')
		case c == '\n':
			out = append(out, '\\', 'n')
		case c >= 0x20 && c < 0x7f:
			out = append(out, c)
		default:
			out = append(out, '\\', 'x', hexDigits[c>>4], hexDigits[c&0xf])
		}
	}
	return string(out)
}

const hexDigits = "0123456789abcdef"

// EncodeRecords renders a record sequence into JSON-friendly maps, in
// order. Value and line bytes go through FormatText so the output is always
// valid text regardless of the input.
func EncodeRecords(records []core.Record) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		switch rec := rec.(type) {
		case core.FieldRecord:
			out = append(out, map[string]any{
				"type":    "field",
				"code":    string(rune(rec.Code)),
				"label":   rec.Label,
				"value":   FormatText(rec.Value),
				"section": rec.Section.String(),
			})
		case core.MalformedLineRecord:
			out = append(out, map[string]any{
				"type": "malformed",
				"line": FormatText(rec.Raw),
			})
		case core.TrailingDataRecord:
			out = append(out, map[string]any{
				"type":  "trailing",
				"bytes": rec.Bytes,
			})
		}
	}
	return out
}
