// Package metrics exposes verdict counters over Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"triage/internal/evidence"
)

// Recorder receives one call per built record and per finished run.
type Recorder interface {
	ObserveRecord(rec evidence.EvidenceRecord, elapsed time.Duration)
	ObserveRun(sum evidence.RunSummary)
}

// Nop discards everything.
type Nop struct{}

func (Nop) ObserveRecord(evidence.EvidenceRecord, time.Duration) {}
func (Nop) ObserveRun(evidence.RunSummary)                       {}

// Metrics is the Prometheus Recorder. Each instance owns its registry.
type Metrics struct {
	registry *prometheus.Registry

	records     *prometheus.CounterVec
	corrections *prometheus.CounterVec
	timeline    *prometheus.CounterVec
	confidence  prometheus.Histogram
	duration    prometheus.Histogram
	runs        *prometheus.CounterVec
}

// New builds and registers the triage metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triage_records_total",
			Help: "Evidence records built, by final category and classification path.",
		}, []string{"category", "path"}),
		corrections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triage_validator_rules_total",
			Help: "Validator rules fired, by rule and kind.",
		}, []string{"rule", "kind"}),
		timeline: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triage_timeline_outcomes_total",
			Help: "Timeline comparator outcomes by status.",
		}, []string{"status"}),
		confidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "triage_final_confidence",
			Help:    "Final confidence of built records.",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "triage_record_duration_seconds",
			Help:    "Time to build one evidence record, including history lookups.",
			Buckets: prometheus.DefBuckets,
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triage_runs_total",
			Help: "Runs summarised, by overall category.",
		}, []string{"category"}),
	}
	registry.MustRegister(m.records, m.corrections, m.timeline, m.confidence, m.duration, m.runs)
	return m
}

func (m *Metrics) ObserveRecord(rec evidence.EvidenceRecord, elapsed time.Duration) {
	m.records.WithLabelValues(string(rec.FinalCategory), string(rec.Classification.Path)).Inc()
	for _, c := range rec.Corrections {
		m.corrections.WithLabelValues(c.Rule, string(c.Kind)).Inc()
	}
	for _, c := range rec.Flags {
		m.corrections.WithLabelValues(c.Rule, string(c.Kind)).Inc()
	}
	m.timeline.WithLabelValues(string(rec.TimelineStatus)).Inc()
	m.confidence.Observe(rec.FinalConfidence)
	m.duration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveRun(sum evidence.RunSummary) {
	m.runs.WithLabelValues(string(sum.OverallCategory)).Inc()
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
