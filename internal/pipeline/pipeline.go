// Package pipeline drives packets from a source through the parser plugins
// and fans the results out to reporters.
package pipeline

import (
	"context"
	"errors"
	"io"

	"firestige.xyz/strix/internal/core"
	"firestige.xyz/strix/internal/log"
	"firestige.xyz/strix/internal/metrics"
	"firestige.xyz/strix/pkg/plugin"
)

// Source supplies decoded packets from one input. Next returns io.EOF when
// the input is exhausted.
type Source interface {
	Name() string
	Open() error
	Next() (*core.DecodedPacket, error)
	Close() error
}

// Options configure a Pipeline.
type Options struct {
	Parsers   []plugin.Parser
	Reporters []plugin.Reporter

	// Forced bypasses CanHandle and sends every payload to this parser.
	// Used for raw payload inputs where there is no transport context.
	Forced plugin.Parser
}

// Pipeline is a single-pass, single-goroutine driver: reporters see packets
// in exactly the order the source produced them.
type Pipeline struct {
	opts Options
	log  log.Logger
}

func New(opts Options) *Pipeline {
	return &Pipeline{
		opts: opts,
		log:  log.GetLogger().WithField("component", "pipeline"),
	}
}

// Run replays one source to completion. Per-packet parser and reporter
// failures are logged and counted, never fatal; only source errors abort.
func (p *Pipeline) Run(ctx context.Context, src Source) error {
	if err := src.Open(); err != nil {
		return err
	}
	defer src.Close()

	p.log.Infof("inspecting %s", src.Name())

	index := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		pkt, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		index++

		parser := p.match(pkt)
		if parser == nil {
			p.log.Debugf("packet %d of %s matched no parser", index, src.Name())
			continue
		}

		payload, labels, err := parser.Handle(pkt)
		if err != nil {
			p.log.WithError(err).Warnf("parser %s failed on packet %d of %s",
				parser.Name(), index, src.Name())
			continue
		}
		metrics.PayloadsParsedTotal.WithLabelValues(parser.Name()).Inc()
		countRecords(payload)

		out := &core.OutputPacket{
			Input:       src.Name(),
			Index:       index,
			Timestamp:   pkt.Timestamp,
			SrcIP:       pkt.SrcIP,
			DstIP:       pkt.DstIP,
			SrcPort:     pkt.SrcPort,
			DstPort:     pkt.DstPort,
			Protocol:    pkt.Protocol,
			Labels:      labels,
			PayloadType: parser.Name(),
			Payload:     payload,
			RawPayload:  pkt.Payload,
		}

		for _, reporter := range p.opts.Reporters {
			if err := reporter.Report(ctx, out); err != nil {
				metrics.ReportFailuresTotal.WithLabelValues(reporter.Name()).Inc()
				p.log.WithError(err).Warnf("reporter %s failed", reporter.Name())
			}
		}
	}

	return nil
}

// Flush flushes every reporter; call once after the last Run.
func (p *Pipeline) Flush(ctx context.Context) error {
	var firstErr error
	for _, reporter := range p.opts.Reporters {
		if err := reporter.Flush(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (p *Pipeline) match(pkt *core.DecodedPacket) plugin.Parser {
	if p.opts.Forced != nil {
		return p.opts.Forced
	}
	for _, parser := range p.opts.Parsers {
		if parser.CanHandle(pkt) {
			return parser
		}
	}
	return nil
}

func countRecords(payload any) {
	records, ok := payload.([]core.Record)
	if !ok {
		return
	}
	for _, rec := range records {
		switch rec := rec.(type) {
		case core.FieldRecord:
			metrics.RecordsTotal.WithLabelValues("field").Inc()
		case core.MalformedLineRecord:
			metrics.RecordsTotal.WithLabelValues("malformed").Inc()
		case core.TrailingDataRecord:
			metrics.RecordsTotal.WithLabelValues("trailing").Inc()
			metrics.TrailingBytesTotal.Add(float64(rec.Bytes))
		}
	}
}
