// Package prom implements a Prometheus scrape backend for the metrics
// package. Collectors live in a private registry exposed by Handler.
package prom

import (
	"fmt"
	"net/http"

	"go-quality-pipeline/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Backend is a Prometheus metrics backend.
type Backend struct {
	reg *prometheus.Registry

	phaseCounter  *prometheus.CounterVec
	phaseDuration *prometheus.SummaryVec
	runCounter    *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	recordCounter *prometheus.CounterVec
	qualityScore  *prometheus.HistogramVec
}

// NewBackend constructs and registers every collector.
func NewBackend() (*Backend, error) {
	reg := prometheus.NewRegistry()

	b := &Backend{
		reg: reg,
		phaseCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metrics.PhaseTotal,
				Help: "Run phase executions, partitioned by pipeline, phase and status.",
			},
			[]string{"pipeline", "phase", "status"},
		),
		phaseDuration: prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Name:       metrics.PhaseDuration,
				Help:       "Duration of run phases in seconds.",
				Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			},
			[]string{"phase", "status"},
		),
		runCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metrics.RunTotal,
				Help: "Finished pipeline runs by terminal status.",
			},
			[]string{"pipeline", "status"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metrics.RunDuration,
				Help:    "Wall time of pipeline runs in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		recordCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metrics.RecordsTotal,
				Help: "Record-level counts per kind (ingested, transformed, failed).",
			},
			[]string{"pipeline", "kind"},
		),
		qualityScore: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metrics.QualityScore,
				Help:    "Overall quality score of finished runs.",
				Buckets: []float64{50, 70, 80, 90, 95, 99, 100},
			},
			[]string{"pipeline"},
		),
	}

	collectors := map[string]prometheus.Collector{
		"phase counter":  b.phaseCounter,
		"phase summary":  b.phaseDuration,
		"run counter":    b.runCounter,
		"run histogram":  b.runDuration,
		"record counter": b.recordCounter,
		"quality score":  b.qualityScore,
	}
	for name, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prom: register %s: %w", name, err)
		}
	}
	return b, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.PhaseTotal:
		b.phaseCounter.WithLabelValues(labels["pipeline"], labels["phase"], labels["status"]).Add(delta)
	case metrics.RunTotal:
		b.runCounter.WithLabelValues(labels["pipeline"], labels["status"]).Add(delta)
	case metrics.RecordsTotal:
		b.recordCounter.WithLabelValues(labels["pipeline"], labels["kind"]).Add(delta)
	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	switch name {
	case metrics.PhaseDuration:
		b.phaseDuration.WithLabelValues(labels["phase"], labels["status"]).Observe(value)
	case metrics.RunDuration:
		b.runDuration.WithLabelValues(labels["status"]).Observe(value)
	case metrics.QualityScore:
		b.qualityScore.WithLabelValues(labels["pipeline"]).Observe(value)
	}
}

// Flush is a no-op; Prometheus scrapes the registry.
func (b *Backend) Flush() error { return nil }

// Registry exposes the backing registry for gathering in tests.
func (b *Backend) Registry() *prometheus.Registry { return b.reg }

// Handler serves the registry in the Prometheus text format.
func (b *Backend) Handler() http.Handler {
	return promhttp.HandlerFor(b.reg, promhttp.HandlerOpts{})
}
