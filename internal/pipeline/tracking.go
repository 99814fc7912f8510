package pipeline

import (
	"fmt"
	"time"

	"go-quality-pipeline/internal/metrics"
	"go-quality-pipeline/internal/model"

	"go.uber.org/zap"
)

// Run phases
const (
	PhaseIngest    = "ingest"
	PhaseTransform = "transform"
	PhaseValidate  = "validate"
	PhasePersist   = "persist"
)

// RunTracker owns a run record while it is in flight. It is handed from phase
// to phase by the orchestrator and is not safe for concurrent use.
type RunTracker struct {
	Run *model.PipelineRun

	logger  *zap.Logger
	metrics *metrics.Recorder
	now     func() time.Time

	phase      string
	phaseStart time.Time
}

func newRunTracker(run *model.PipelineRun, logger *zap.Logger, rec *metrics.Recorder, now func() time.Time) *RunTracker {
	return &RunTracker{
		Run:     run,
		logger:  logger.With(zap.String("run_id", run.ID), zap.String("pipeline", run.PipelineName)),
		metrics: rec,
		now:     now,
	}
}

// Log appends an entry to the run's trail and mirrors it to the logger
func (t *RunTracker) Log(level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	t.Run.Logs = append(t.Run.Logs, model.LogEntry{
		Timestamp: t.now().UTC(),
		Level:     level,
		Message:   msg,
	})

	switch level {
	case model.LevelError:
		t.logger.Error(msg)
	case model.LevelWarning:
		t.logger.Warn(msg)
	default:
		t.logger.Info(msg, zap.String("level", level))
	}
}

// StartPhase marks the start of a run phase
func (t *RunTracker) StartPhase(phase string) {
	t.phase = phase
	t.phaseStart = t.now()
	t.logger.Debug("phase started", zap.String("phase", phase))
}

// EndPhase records the latency and outcome of the current phase
func (t *RunTracker) EndPhase(err error) {
	if t.phase == "" {
		return
	}
	d := t.now().Sub(t.phaseStart)
	t.metrics.RecordPhase(t.Run.PipelineName, t.phase, err, d)
	t.logger.Debug("phase finished",
		zap.String("phase", t.phase),
		zap.Duration("duration", d),
		zap.Error(err),
	)
	t.phase = ""
}

// Complete moves the run to success
func (t *RunTracker) Complete(processed, failed int, qm model.QualityMetrics) {
	end := t.now().UTC()
	t.Run.Status = model.RunSuccess
	t.Run.EndTime = &end
	t.Run.RecordsProcessed = processed
	t.Run.RecordsFailed = failed
	t.Run.Metrics = &qm
	t.Log(model.LevelSuccess, "Pipeline completed successfully")
}

// Fail moves the run to failed, closing any open phase
func (t *RunTracker) Fail(err error) {
	t.EndPhase(err)
	end := t.now().UTC()
	msg := err.Error()
	t.Run.Status = model.RunFailed
	t.Run.EndTime = &end
	t.Run.ErrorMessage = &msg
	t.Log(model.LevelError, "Pipeline failed: %s", msg)
}

// Finish reports the terminal run to metrics
func (t *RunTracker) Finish() {
	t.metrics.RecordRun(t.Run.PipelineName, t.Run.Status, t.Run.Duration())
	if t.Run.Metrics != nil {
		t.metrics.ObserveQuality(t.Run.PipelineName, t.Run.Metrics.OverallQualityScore)
	}
}
