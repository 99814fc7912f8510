// Package metrics records operational metrics for pipeline runs behind a
// small backend interface. The default backend discards everything, so
// instrumentation is always safe to call.
package metrics

import "time"

// Metric names emitted by Recorder
const (
	PhaseTotal    = "pipeline_phase_total"
	PhaseDuration = "pipeline_phase_duration_seconds"
	RunTotal      = "pipeline_runs_total"
	RunDuration   = "pipeline_run_duration_seconds"
	RecordsTotal  = "pipeline_records_total"
	QualityScore  = "pipeline_quality_score"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a distribution style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes buffered metrics, if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

// Nop returns a backend that drops every observation.
func Nop() Backend { return nopBackend{} }

// Recorder maps pipeline events onto a Backend.
type Recorder struct {
	backend Backend
}

// NewRecorder wraps b. A nil backend records nothing.
func NewRecorder(b Backend) *Recorder {
	if b == nil {
		b = nopBackend{}
	}
	return &Recorder{backend: b}
}

// Flush delegates to the backend.
func (r *Recorder) Flush() error {
	if r == nil {
		return nil
	}
	return r.backend.Flush()
}

func status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// RecordPhase counts one execution of a run phase and observes its latency.
func (r *Recorder) RecordPhase(pipeline, phase string, err error, d time.Duration) {
	if r == nil {
		return
	}
	lbls := Labels{
		"pipeline": pipeline,
		"phase":    phase,
		"status":   status(err),
	}
	r.backend.IncCounter(PhaseTotal, 1, lbls)
	r.backend.ObserveHistogram(PhaseDuration, d.Seconds(), lbls)
}

// RecordRun counts a finished run by terminal status.
func (r *Recorder) RecordRun(pipeline, runStatus string, d time.Duration) {
	if r == nil {
		return
	}
	lbls := Labels{"pipeline": pipeline, "status": runStatus}
	r.backend.IncCounter(RunTotal, 1, lbls)
	r.backend.ObserveHistogram(RunDuration, d.Seconds(), lbls)
}

// RecordRecords increments a record-level counter. Typical kinds are
// ingested, transformed and failed.
func (r *Recorder) RecordRecords(pipeline, kind string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.backend.IncCounter(RecordsTotal, float64(n), Labels{
		"pipeline": pipeline,
		"kind":     kind,
	})
}

// ObserveQuality records a run's overall quality score.
func (r *Recorder) ObserveQuality(pipeline string, score float64) {
	if r == nil {
		return
	}
	r.backend.ObserveHistogram(QualityScore, score, Labels{"pipeline": pipeline})
}
