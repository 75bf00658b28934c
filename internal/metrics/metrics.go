// Package metrics implements Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PacketsTotal counts packets pulled from a source, by input file.
	PacketsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strix_packets_total",
			Help: "Total number of packets read from inputs",
		},
		[]string{"input"},
	)

	// DecodeFailuresTotal counts frames the L2-L4 decoder rejected.
	DecodeFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strix_decode_failures_total",
			Help: "Total number of frames that failed L2-L4 decoding",
		},
		[]string{"input"},
	)

	// PayloadsParsedTotal counts payloads handled, by parser plugin.
	PayloadsParsedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strix_payloads_parsed_total",
			Help: "Total number of payloads handled by a parser",
		},
		[]string{"parser"},
	)

	// RecordsTotal counts emitted classification records by type
	// (field, malformed, trailing).
	RecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strix_records_total",
			Help: "Total number of classification records emitted",
		},
		[]string{"type"},
	)

	// TrailingBytesTotal sums the bytes reported as trailing data.
	TrailingBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "strix_trailing_bytes_total",
			Help: "Total bytes left unconsumed after line scanning",
		},
	)

	// ReportFailuresTotal counts reporter errors, by reporter plugin.
	ReportFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strix_report_failures_total",
			Help: "Total number of reporter errors",
		},
		[]string{"reporter"},
	)
)
