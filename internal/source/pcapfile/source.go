// Package pcapfile replays packets from a pcap capture file.
package pcapfile

import (
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket/pcapgo"
	"golang.org/x/net/bpf"

	"firestige.xyz/strix/internal/core"
	"firestige.xyz/strix/internal/decoder"
	"firestige.xyz/strix/internal/metrics"
	"firestige.xyz/strix/internal/utils"
)

// Source reads a pcap file, applies an optional port filter and decodes
// each frame down to its application payload.
type Source struct {
	path    string
	ports   []uint16
	file    *os.File
	reader  *pcapgo.Reader
	filter  *bpf.VM
	decoder *decoder.Decoder
}

// New creates a pcap file source. ports restricts replay to frames touching
// one of the given TCP/UDP ports; empty means every frame.
func New(path string, ports []uint16) *Source {
	return &Source{path: path, ports: ports}
}

// Name returns the input path.
func (s *Source) Name() string { return s.path }

// Open opens the capture file and prepares a decoder and, when ports are
// configured, a port filter for its link type. The filter program depends on
// the link-layer framing, so it cannot be built before the header is read.
func (s *Source) Open() error {
	file, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("failed to open capture file %s: %w", s.path, err)
	}

	reader, err := pcapgo.NewReader(file)
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to read pcap header of %s: %w", s.path, err)
	}

	dec, err := decoder.New(reader.LinkType())
	if err != nil {
		file.Close()
		return err
	}

	if len(s.ports) > 0 {
		vm, err := utils.PortFilter(reader.LinkType(), s.ports)
		if err != nil {
			file.Close()
			return fmt.Errorf("cannot filter %s by port: %w", s.path, err)
		}
		s.filter = vm
	}

	s.file = file
	s.reader = reader
	s.decoder = dec
	return nil
}

// Next returns the next decoded packet that passes the filter, or io.EOF
// when the file is exhausted. Frames the decoder cannot handle are counted
// and skipped.
func (s *Source) Next() (*core.DecodedPacket, error) {
	if s.reader == nil {
		return nil, fmt.Errorf("source %s not opened", s.path)
	}

	for {
		data, ci, err := s.reader.ReadPacketData()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("failed to read packet from %s: %w", s.path, err)
		}

		metrics.PacketsTotal.WithLabelValues(s.path).Inc()

		if s.filter != nil {
			if keep, err := s.filter.Run(data); err != nil || keep == 0 {
				continue
			}
		}

		pkt, err := s.decoder.Decode(&core.RawPacket{
			Data:       data,
			Timestamp:  ci.Timestamp,
			CaptureLen: uint32(ci.CaptureLength),
			OrigLen:    uint32(ci.Length),
		})
		if err != nil {
			metrics.DecodeFailuresTotal.WithLabelValues(s.path).Inc()
			continue
		}
		if len(pkt.Payload) == 0 {
			continue
		}
		return pkt, nil
	}
}

// Close releases the underlying file.
func (s *Source) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}
