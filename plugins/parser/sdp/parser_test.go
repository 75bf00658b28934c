package sdp

import (
	"reflect"
	"testing"

	"firestige.xyz/strix/internal/core"
)

func field(code byte, value, label string, section core.Section) core.Record {
	return core.FieldRecord{Code: code, Value: []byte(value), Label: label, Section: section}
}

func malformed(raw string) core.Record {
	return core.MalformedLineRecord{Raw: []byte(raw)}
}

func trailing(n int) core.Record {
	return core.TrailingDataRecord{Bytes: n}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []core.Record
	}{
		{
			name:    "empty payload",
			payload: "",
			want:    nil,
		},
		{
			name:    "single version line CRLF",
			payload: "v=0\r\n",
			want: []core.Record{
				field('v', "0", "Session Description, version", core.SectionSession),
			},
		},
		{
			name:    "single version line bare LF",
			payload: "v=0\n",
			want: []core.Record{
				field('v', "0", "Session Description, version", core.SectionSession),
			},
		},
		{
			name:    "bare CR is content not terminator",
			payload: "v=0\rs=x\n",
			want: []core.Record{
				field('v', "0\rs=x", "Session Description, version", core.SectionSession),
			},
		},
		{
			name:    "info line after version marker",
			payload: "v=0\r\ni=hello\r\n",
			want: []core.Record{
				field('v', "0", "Session Description, version", core.SectionSession),
				field('i', "hello", "Session Information", core.SectionSession),
			},
		},
		{
			name:    "info line after media marker",
			payload: "m=audio 0 RTP\r\ni=hello\r\n",
			want: []core.Record{
				field('m', "audio 0 RTP", "Media Description, name and address", core.SectionMedia),
				field('i', "hello", "Media Title", core.SectionMedia),
			},
		},
		{
			name:    "info line with no prior marker",
			payload: "i=hello\r\n",
			want: []core.Record{
				field('i', "hello", "Misplaced", core.SectionNone),
			},
		},
		{
			name:    "info line after time marker",
			payload: "t=0 0\r\ni=hello\r\n",
			want: []core.Record{
				field('t', "0 0", "Time Description, active time", core.SectionTime),
				field('i', "hello", "Misplaced", core.SectionTime),
			},
		},
		{
			name:    "attribute in session then media section",
			payload: "v=0\r\na=recvonly\r\nm=video 51372 RTP/AVP 31\r\na=rtpmap:31 H261/90000\r\n",
			want: []core.Record{
				field('v', "0", "Session Description, version", core.SectionSession),
				field('a', "recvonly", "Session Attribute", core.SectionSession),
				field('m', "video 51372 RTP/AVP 31", "Media Description, name and address", core.SectionMedia),
				field('a', "rtpmap:31 H261/90000", "Media Attribute", core.SectionMedia),
			},
		},
		{
			name:    "attribute with no prior marker",
			payload: "a=recvonly\r\n",
			want: []core.Record{
				field('a', "recvonly", "Misplaced", core.SectionNone),
			},
		},
		{
			name:    "malformed line does not stop scanning",
			payload: "v=0\r\nxyz\r\ns=Title\r\n",
			want: []core.Record{
				field('v', "0", "Session Description, version", core.SectionSession),
				malformed("xyz"),
				field('s', "Title", "Session Name", core.SectionSession),
			},
		},
		{
			name:    "short line stops scanning unconsumed",
			payload: "v=0\r\na\r\ns=Title\r\n",
			want: []core.Record{
				field('v', "0", "Session Description, version", core.SectionSession),
				trailing(len("a\r\ns=Title\r\n")),
			},
		},
		{
			name:    "empty line stops scanning unconsumed",
			payload: "v=0\r\n\r\ns=Title\r\n",
			want: []core.Record{
				field('v', "0", "Session Description, version", core.SectionSession),
				trailing(len("\r\ns=Title\r\n")),
			},
		},
		{
			name:    "unterminated tail is trailing data",
			payload: "v=0\r\ns=Title",
			want: []core.Record{
				field('v', "0", "Session Description, version", core.SectionSession),
				trailing(len("s=Title")),
			},
		},
		{
			name:    "no terminator at all",
			payload: "v=0",
			want:    []core.Record{trailing(3)},
		},
		{
			name:    "unknown field code",
			payload: "x=foo\n",
			want: []core.Record{
				field('x', "foo", "Unknown", core.SectionNone),
			},
		},
		{
			name:    "empty value is valid framing",
			payload: "s=\r\n",
			want: []core.Record{
				field('s', "", "Session Name", core.SectionNone),
			},
		},
		{
			name: "full description",
			payload: "v=0\r\n" +
				"o=mhandley 2890844526 2890842807 IN IP4 126.16.64.4\r\n" +
				"s=SDP Seminar\r\n" +
				"i=A Seminar on the session description protocol\r\n" +
				"u=http://www.cs.ucl.ac.uk/staff/M.Handley/sdp.03.ps\r\n" +
				"e=mjh@isi.edu (Mark Handley)\r\n" +
				"c=IN IP4 224.2.17.12/127\r\n" +
				"t=2873397496 2873404696\r\n" +
				"m=audio 49170 RTP/AVP 0\r\n" +
				"i=audio stream\r\n",
			want: []core.Record{
				field('v', "0", "Session Description, version", core.SectionSession),
				field('o', "mhandley 2890844526 2890842807 IN IP4 126.16.64.4", "Owner/Creator, Session Id", core.SectionSession),
				field('s', "SDP Seminar", "Session Name", core.SectionSession),
				field('i', "A Seminar on the session description protocol", "Session Information", core.SectionSession),
				field('u', "http://www.cs.ucl.ac.uk/staff/M.Handley/sdp.03.ps", "URI of Description", core.SectionSession),
				field('e', "mjh@isi.edu (Mark Handley)", "E-mail Address", core.SectionSession),
				field('c', "IN IP4 224.2.17.12/127", "Connection Information", core.SectionSession),
				field('t', "2873397496 2873404696", "Time Description, active time", core.SectionTime),
				field('m', "audio 49170 RTP/AVP 0", "Media Description, name and address", core.SectionMedia),
				field('i', "audio stream", "Media Title", core.SectionMedia),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Records([]byte(tt.payload))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Records() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

// Bare-LF and CRLF terminated lines must classify identically.
func TestParse_TerminatorEquivalence(t *testing.T) {
	lf := Records([]byte("v=0\n"))
	crlf := Records([]byte("v=0\r\n"))
	if !reflect.DeepEqual(lf, crlf) {
		t.Errorf("LF records %#v differ from CRLF records %#v", lf, crlf)
	}
}

// Parsing carries no state across calls: the same payload yields the same
// ordered record sequence every time.
func TestParse_Idempotent(t *testing.T) {
	payload := []byte("v=0\r\nbogus\r\nm=audio 0 RTP\r\na=rtpmap:0 PCMU/8000\r\ntail")
	first := Records(payload)
	second := Records(payload)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("second parse %#v differs from first %#v", second, first)
	}
}

// Every byte of the input is accounted for: the consumed line spans with
// their terminators plus the trailing count must sum to the payload length,
// and every consumed line yields exactly one record.
func TestParse_ByteAccounting(t *testing.T) {
	payloads := []string{
		"",
		"v=0\r\n",
		"v=0\ns=x\n",
		"v=0\r\nxyz\r\ns=Title\r\n",
		"v=0\r\na\r\ns=Title\r\n",
		"v=0\r\ns=Title",
		"no terminator here",
		"\r\n",
		"v=0\r\n\x00\x01=weird\r\nk=secret\r\n",
	}

	for _, payload := range payloads {
		buf := []byte(payload)
		records := Records(buf)

		lineRecords := 0
		trailingBytes := 0
		trailingRecords := 0
		for _, rec := range records {
			switch rec := rec.(type) {
			case core.TrailingDataRecord:
				trailingBytes = rec.Bytes
				trailingRecords++
			default:
				lineRecords++
			}
		}

		if trailingRecords > 1 {
			t.Errorf("payload %q: %d trailing records, want at most 1", payload, trailingRecords)
		}

		// Re-derive the consumed spans the way the driver does.
		consumed := 0
		lines := 0
		cursor := 0
		for {
			line, next, ok := nextLine(buf, cursor)
			if !ok || len(line) < 2 {
				break
			}
			consumed += next - cursor
			cursor = next
			lines++
		}

		if lineRecords != lines {
			t.Errorf("payload %q: %d line records, want %d", payload, lineRecords, lines)
		}
		if consumed+trailingBytes != len(buf) {
			t.Errorf("payload %q: consumed %d + trailing %d != len %d",
				payload, consumed, trailingBytes, len(buf))
		}
	}
}

func TestNextLine(t *testing.T) {
	tests := []struct {
		name     string
		buf      string
		cursor   int
		wantLine string
		wantNext int
		wantOK   bool
	}{
		{"empty buffer", "", 0, "", 0, false},
		{"cursor at end", "v=0\n", 4, "", 4, false},
		{"bare LF", "v=0\nrest", 0, "v=0", 4, true},
		{"CRLF", "v=0\r\nrest", 0, "v=0", 5, true},
		{"lone CRLF line", "\r\n", 0, "", 2, true},
		{"lone LF line", "\n", 0, "", 1, true},
		{"bare CR not a terminator", "a\rb\nc", 0, "a\rb", 4, true},
		{"no terminator", "v=0", 0, "", 0, false},
		{"mid-buffer", "a=1\nb=2\n", 4, "b=2", 8, true},
		{"CR belonging to previous content", "ab\r\r\n", 0, "ab\r", 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, next, ok := nextLine([]byte(tt.buf), tt.cursor)
			if ok != tt.wantOK {
				t.Fatalf("nextLine() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if string(line) != tt.wantLine {
				t.Errorf("nextLine() line = %q, want %q", line, tt.wantLine)
			}
			if next != tt.wantNext {
				t.Errorf("nextLine() next = %d, want %d", next, tt.wantNext)
			}
		})
	}
}

func TestFormatText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain ascii", "audio 49170 RTP/AVP 0", "audio 49170 RTP/AVP 0"},
		{"tab and CR", "a\tb\r", `a\tb\r`},
		{"backslash", `C:\path`, `C:\\path`},
		{"control and high bytes", "\x00\x1b\xff", `\x00\x1b\xff`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatText([]byte(tt.in)); got != tt.want {
				t.Errorf("FormatText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
