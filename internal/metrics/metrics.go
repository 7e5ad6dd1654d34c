// Package metrics records batch summarization metrics with Prometheus.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"nanoprep/internal/strand"
)

// Metrics contains the Prometheus collectors of a summarization run.
type Metrics struct {
	registry *prometheus.Registry

	readsTotal        *prometheus.CounterVec
	eventsTotal       *prometheus.CounterVec
	candidatesTotal   prometheus.Counter
	writeBackErrors   *prometheus.CounterVec
	summarizeDuration prometheus.Histogram
}

// New creates and registers the collectors on registry.
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		registry: registry,
		readsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nanoprep_reads_total",
			Help: "Reads summarized, by outcome (accepted or rejection reason).",
		}, []string{"outcome"}),
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nanoprep_calibrated_events_total",
			Help: "Calibrated events kept after filtering, by strand.",
		}, []string{"strand"}),
		candidatesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nanoprep_calibration_candidates_total",
			Help: "Calibration candidates emitted.",
		}),
		writeBackErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nanoprep_write_back_errors_total",
			Help: "Annotation write-back failures, by payload kind.",
		}, []string{"kind"}),
		summarizeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nanoprep_summarize_seconds",
			Help:    "Time spent summarizing one read.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
	}
	for _, c := range []prometheus.Collector{
		m.readsTotal, m.eventsTotal, m.candidatesTotal, m.writeBackErrors, m.summarizeDuration,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordRead counts one summarized read.
func (m *Metrics) RecordRead(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.readsTotal.WithLabelValues(outcome).Inc()
	m.summarizeDuration.Observe(elapsed.Seconds())
}

// RecordEvents counts calibrated events kept for st.
func (m *Metrics) RecordEvents(st strand.ID, n int) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(st.String()).Add(float64(n))
}

// RecordCandidates counts emitted calibration candidates.
func (m *Metrics) RecordCandidates(n int) {
	if m == nil {
		return
	}
	m.candidatesTotal.Add(float64(n))
}

// RecordWriteBackError counts a failed annotation write.
func (m *Metrics) RecordWriteBackError(kind string) {
	if m == nil {
		return
	}
	m.writeBackErrors.WithLabelValues(kind).Inc()
}

// WriteTextfile writes the registry in text exposition format to path.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
