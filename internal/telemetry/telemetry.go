// Package telemetry counts conversion work in Prometheus metrics. The CLI
// is a batch tool, so metrics are written to a node_exporter textfile at
// exit rather than served.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	sgf "github.com/reoring/sgfdata"
	"github.com/reoring/sgfdata/metadata"
)

// Metrics holds the collectors on a private registry.
type Metrics struct {
	reg       *prometheus.Registry
	sections  prometheus.Counter
	rows      prometheus.Counter
	fallbacks *prometheus.CounterVec
	files     *prometheus.CounterVec
	issues    *prometheus.CounterVec
	duration  prometheus.Histogram
}

// New registers the collectors.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		sections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sgfdata_sections_decoded_total",
			Help: "Soundings decoded.",
		}),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sgfdata_data_rows_decoded_total",
			Help: "Data block rows decoded.",
		}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sgfdata_coercion_fallbacks_total",
			Help: "Values kept as text because they did not match their declared type.",
		}, []string{"block", "code"}),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sgfdata_files_total",
			Help: "Files processed by outcome.",
		}, []string{"result"}),
		issues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sgfdata_issues_total",
			Help: "Findings reported by validation and decoding.",
		}, []string{"code"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sgfdata_file_duration_seconds",
			Help:    "Wall time per converted file.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
	m.reg.MustRegister(m.sections, m.rows, m.fallbacks, m.files, m.issues, m.duration)
	return m
}

var _ sgf.Observer = (*Metrics)(nil)

// SectionDecoded implements sgfdata.Observer.
func (m *Metrics) SectionDecoded(_ int, s *sgf.Section) {
	m.sections.Inc()
	m.rows.Add(float64(s.Data.Len()))
}

// CoercionFallback implements sgfdata.Observer.
func (m *Metrics) CoercionFallback(kind metadata.BlockKind, code, _ string, _ error) {
	m.fallbacks.WithLabelValues(kind.String(), code).Inc()
}

// File records one processed file. err nil counts as success.
func (m *Metrics) File(elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.files.WithLabelValues(result).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// Issues counts findings by code.
func (m *Metrics) Issues(iss sgf.Issues) {
	for _, it := range iss {
		m.issues.WithLabelValues(it.Code).Inc()
	}
}

// Registry exposes the registry for tests and custom exporters.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// WriteTextfile writes the metrics in text exposition format to path,
// atomically replacing it.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}
