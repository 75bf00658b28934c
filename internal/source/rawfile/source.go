// Package rawfile feeds a whole file as one already-reassembled payload,
// for session descriptions saved outside a capture (SIP bodies, test data).
package rawfile

import (
	"fmt"
	"io"
	"os"
	"time"

	"firestige.xyz/strix/internal/core"
	"firestige.xyz/strix/internal/metrics"
)

// Source yields exactly one packet carrying the file content as payload.
type Source struct {
	path string
	data []byte
	done bool
}

func New(path string) *Source {
	return &Source{path: path}
}

// Name returns the input path.
func (s *Source) Name() string { return s.path }

// Open reads the file into memory; the payload contract requires a complete
// buffer, so there is no streaming.
func (s *Source) Open() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read payload file %s: %w", s.path, err)
	}
	s.data = data
	return nil
}

func (s *Source) Next() (*core.DecodedPacket, error) {
	if s.done {
		return nil, io.EOF
	}
	s.done = true
	metrics.PacketsTotal.WithLabelValues(s.path).Inc()
	return &core.DecodedPacket{
		Timestamp: time.Now(),
		Payload:   s.data,
	}, nil
}

func (s *Source) Close() error { return nil }
