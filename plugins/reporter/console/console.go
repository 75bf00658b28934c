// Package console implements the console reporter. It renders each packet's
// record sequence to stdout, either as an indented tree in the style of a
// protocol analyzer detail pane, or as one JSON object per packet.
package console

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"firestige.xyz/strix/internal/core"
	"firestige.xyz/strix/pkg/plugin"
	"firestige.xyz/strix/plugins/parser/sdp"
)

// Name is the plugin identifier used in configuration.
const Name = "console"

// ConsoleReporter outputs packets to the console.
type ConsoleReporter struct {
	name          string
	format        string // "text" or "json"
	out           io.Writer
	reportedCount atomic.Uint64
}

// NewConsoleReporter creates a new console reporter.
func NewConsoleReporter() plugin.Reporter {
	return &ConsoleReporter{
		name:   Name,
		format: "text",
		out:    os.Stdout,
	}
}

// Name returns the plugin name.
func (r *ConsoleReporter) Name() string { return r.name }

// Init initializes the reporter with configuration.
func (r *ConsoleReporter) Init(config map[string]any) error {
	if config == nil {
		return nil
	}
	if format, ok := config["format"].(string); ok {
		if format != "json" && format != "text" {
			return fmt.Errorf("invalid format %q, must be json or text", format)
		}
		r.format = format
	}
	return nil
}

// Start is a no-op.
func (r *ConsoleReporter) Start(_ context.Context) error { return nil }

// Stop is a no-op; stdout needs no teardown.
func (r *ConsoleReporter) Stop(_ context.Context) error { return nil }

// Report renders one packet.
func (r *ConsoleReporter) Report(_ context.Context, pkt *core.OutputPacket) error {
	if pkt == nil {
		return fmt.Errorf("nil packet")
	}
	r.reportedCount.Add(1)

	if r.format == "json" {
		return r.reportJSON(pkt)
	}
	return r.reportText(pkt)
}

// Flush is a no-op for the console reporter.
func (r *ConsoleReporter) Flush(_ context.Context) error { return nil }

func (r *ConsoleReporter) reportText(pkt *core.OutputPacket) error {
	header := fmt.Sprintf("[#%d %s]", pkt.Index, pkt.Input)
	if pkt.SrcIP.IsValid() {
		header += fmt.Sprintf(" %s:%d -> %s:%d", pkt.SrcIP, pkt.SrcPort, pkt.DstIP, pkt.DstPort)
	}
	if summary, ok := pkt.Labels[core.LabelSDPSummary]; ok {
		header += ", " + summary
	}
	if _, err := fmt.Fprintln(r.out, header); err != nil {
		return err
	}

	records, ok := pkt.Payload.([]core.Record)
	if !ok {
		return nil
	}
	for _, rec := range records {
		var line string
		switch rec := rec.(type) {
		case core.FieldRecord:
			line = fmt.Sprintf("    %s (%c): %s", rec.Label, rec.Code, sdp.FormatText(rec.Value))
		case core.MalformedLineRecord:
			line = fmt.Sprintf("    Invalid line: %s", sdp.FormatText(rec.Raw))
		case core.TrailingDataRecord:
			line = fmt.Sprintf("    Data (%d bytes)", rec.Bytes)
		}
		if _, err := fmt.Fprintln(r.out, line); err != nil {
			return err
		}
	}
	return nil
}

func (r *ConsoleReporter) reportJSON(pkt *core.OutputPacket) error {
	output := map[string]any{
		"input":        pkt.Input,
		"index":        pkt.Index,
		"timestamp":    pkt.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
		"payload_type": pkt.PayloadType,
		"labels":       pkt.Labels,
	}
	if pkt.SrcIP.IsValid() {
		output["src_ip"] = pkt.SrcIP.String()
		output["dst_ip"] = pkt.DstIP.String()
		output["src_port"] = pkt.SrcPort
		output["dst_port"] = pkt.DstPort
		output["protocol"] = pkt.Protocol
	}
	if records, ok := pkt.Payload.([]core.Record); ok {
		output["records"] = sdp.EncodeRecords(records)
	}

	data, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("json marshal failed: %w", err)
	}
	_, err = fmt.Fprintln(r.out, string(data))
	return err
}
