package pipeline

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/strix/internal/core"
	"firestige.xyz/strix/pkg/plugin"
)

type stubSource struct {
	name    string
	packets []*core.DecodedPacket
	pos     int
	opened  bool
	closed  bool
}

func (s *stubSource) Name() string { return s.name }
func (s *stubSource) Open() error  { s.opened = true; return nil }
func (s *stubSource) Close() error { s.closed = true; return nil }
func (s *stubSource) Next() (*core.DecodedPacket, error) {
	if s.pos >= len(s.packets) {
		return nil, io.EOF
	}
	pkt := s.packets[s.pos]
	s.pos++
	return pkt, nil
}

type stubParser struct {
	handled int
	fail    bool
}

func (p *stubParser) Name() string                  { return "stub" }
func (p *stubParser) DisplayName() string           { return "Stub Protocol" }
func (p *stubParser) Init(_ map[string]any) error   { return nil }
func (p *stubParser) Start(_ context.Context) error { return nil }
func (p *stubParser) Stop(_ context.Context) error  { return nil }
func (p *stubParser) CanHandle(pkt *core.DecodedPacket) bool {
	return len(pkt.Payload) > 0 && pkt.Payload[0] == 'v'
}
func (p *stubParser) Handle(pkt *core.DecodedPacket) (any, core.Labels, error) {
	p.handled++
	if p.fail {
		return nil, nil, errors.New("boom")
	}
	return []core.Record{core.TrailingDataRecord{Bytes: len(pkt.Payload)}},
		core.Labels{"stub.ok": "1"}, nil
}

type captureReporter struct {
	packets []*core.OutputPacket
	flushed bool
	fail    bool
}

func (r *captureReporter) Name() string                  { return "capture" }
func (r *captureReporter) Init(_ map[string]any) error   { return nil }
func (r *captureReporter) Start(_ context.Context) error { return nil }
func (r *captureReporter) Stop(_ context.Context) error  { return nil }
func (r *captureReporter) Flush(_ context.Context) error { r.flushed = true; return nil }
func (r *captureReporter) Report(_ context.Context, pkt *core.OutputPacket) error {
	if r.fail {
		return errors.New("report failed")
	}
	r.packets = append(r.packets, pkt)
	return nil
}

func pkt(payload string) *core.DecodedPacket {
	return &core.DecodedPacket{Payload: []byte(payload)}
}

func TestPipeline_Run(t *testing.T) {
	parser := &stubParser{}
	reporter := &captureReporter{}
	src := &stubSource{
		name:    "test.pcap",
		packets: []*core.DecodedPacket{pkt("v=0\r\n"), pkt("nope"), pkt("v=1\r\n")},
	}

	p := New(Options{
		Parsers:   []plugin.Parser{parser},
		Reporters: []plugin.Reporter{reporter},
	})
	require.NoError(t, p.Run(context.Background(), src))

	assert.True(t, src.opened)
	assert.True(t, src.closed)
	assert.Equal(t, 2, parser.handled, "only matching packets reach the parser")
	require.Len(t, reporter.packets, 2)

	// Envelope and ordering
	assert.Equal(t, "test.pcap", reporter.packets[0].Input)
	assert.Equal(t, 1, reporter.packets[0].Index)
	assert.Equal(t, 3, reporter.packets[1].Index)
	assert.Equal(t, "stub", reporter.packets[0].PayloadType)
	assert.Equal(t, "1", reporter.packets[0].Labels["stub.ok"])
}

func TestPipeline_ForcedParserBypassesCanHandle(t *testing.T) {
	parser := &stubParser{}
	reporter := &captureReporter{}
	src := &stubSource{name: "dump.txt", packets: []*core.DecodedPacket{pkt("i=hello\r\n")}}

	p := New(Options{
		Parsers:   []plugin.Parser{parser},
		Reporters: []plugin.Reporter{reporter},
		Forced:    parser,
	})
	require.NoError(t, p.Run(context.Background(), src))

	assert.Equal(t, 1, parser.handled)
	require.Len(t, reporter.packets, 1)
}

func TestPipeline_ParserErrorIsNotFatal(t *testing.T) {
	parser := &stubParser{fail: true}
	reporter := &captureReporter{}
	src := &stubSource{name: "x", packets: []*core.DecodedPacket{pkt("v=0\r\n"), pkt("v=1\r\n")}}

	p := New(Options{Parsers: []plugin.Parser{parser}, Reporters: []plugin.Reporter{reporter}})
	require.NoError(t, p.Run(context.Background(), src))

	assert.Equal(t, 2, parser.handled)
	assert.Empty(t, reporter.packets)
}

func TestPipeline_ReporterErrorIsNotFatal(t *testing.T) {
	parser := &stubParser{}
	reporter := &captureReporter{fail: true}
	src := &stubSource{name: "x", packets: []*core.DecodedPacket{pkt("v=0\r\n")}}

	p := New(Options{Parsers: []plugin.Parser{parser}, Reporters: []plugin.Reporter{reporter}})
	require.NoError(t, p.Run(context.Background(), src))
	assert.Equal(t, 1, parser.handled)
}

func TestPipeline_Flush(t *testing.T) {
	reporter := &captureReporter{}
	p := New(Options{Reporters: []plugin.Reporter{reporter}})
	require.NoError(t, p.Flush(context.Background()))
	assert.True(t, reporter.flushed)
}

func TestPipeline_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &stubSource{name: "x", packets: []*core.DecodedPacket{pkt("v=0\r\n")}}
	p := New(Options{})
	err := p.Run(ctx, src)
	assert.ErrorIs(t, err, context.Canceled)
}
