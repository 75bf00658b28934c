// Package jsonfile implements a file reporter: one JSON document per packet,
// appended to a size-rotated file.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"

	"firestige.xyz/strix/internal/core"
	"firestige.xyz/strix/pkg/plugin"
	"firestige.xyz/strix/plugins/parser/sdp"
)

// Name is the plugin identifier used in configuration.
const Name = "jsonfile"

// FileReporter appends JSON lines to a rotated file.
type FileReporter struct {
	name          string
	cfg           Config
	out           io.WriteCloser
	reportedCount atomic.Uint64
}

// Config represents the file reporter configuration.
type Config struct {
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// NewFileReporter creates a new file reporter.
func NewFileReporter() plugin.Reporter {
	return &FileReporter{name: Name}
}

// Name returns the plugin name.
func (r *FileReporter) Name() string { return r.name }

// Init initializes the reporter with configuration; path is required.
func (r *FileReporter) Init(config map[string]any) error {
	if path, ok := config["path"].(string); ok {
		r.cfg.Path = path
	}
	if size, ok := config["max_size_mb"].(int); ok {
		r.cfg.MaxSizeMB = size
	}
	if backups, ok := config["max_backups"].(int); ok {
		r.cfg.MaxBackups = backups
	}
	if compress, ok := config["compress"].(bool); ok {
		r.cfg.Compress = compress
	}
	if r.cfg.Path == "" {
		return fmt.Errorf("%w: jsonfile reporter requires 'path'", core.ErrConfigInvalid)
	}
	return nil
}

// Start opens the rotated output file.
func (r *FileReporter) Start(_ context.Context) error {
	r.out = &lumberjack.Logger{
		Filename:   r.cfg.Path,
		MaxSize:    r.cfg.MaxSizeMB,
		MaxBackups: r.cfg.MaxBackups,
		Compress:   r.cfg.Compress,
	}
	return nil
}

// Stop closes the output file.
func (r *FileReporter) Stop(_ context.Context) error {
	if r.out == nil {
		return nil
	}
	return r.out.Close()
}

// Report appends one JSON document for the packet.
func (r *FileReporter) Report(_ context.Context, pkt *core.OutputPacket) error {
	if pkt == nil {
		return fmt.Errorf("nil packet")
	}
	if r.out == nil {
		return fmt.Errorf("jsonfile reporter not started")
	}

	doc := map[string]any{
		"input":        pkt.Input,
		"index":        pkt.Index,
		"timestamp":    pkt.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
		"payload_type": pkt.PayloadType,
		"labels":       pkt.Labels,
	}
	if pkt.SrcIP.IsValid() {
		doc["src_ip"] = pkt.SrcIP.String()
		doc["dst_ip"] = pkt.DstIP.String()
		doc["src_port"] = pkt.SrcPort
		doc["dst_port"] = pkt.DstPort
		doc["protocol"] = pkt.Protocol
	}
	if records, ok := pkt.Payload.([]core.Record); ok {
		doc["records"] = sdp.EncodeRecords(records)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("json marshal failed: %w", err)
	}
	data = append(data, '\n')
	if _, err := r.out.Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	r.reportedCount.Add(1)
	return nil
}

// Flush is a no-op; lumberjack writes through.
func (r *FileReporter) Flush(_ context.Context) error { return nil }
