package model

import (
	"time"
)

// Run statuses. running is the only non-terminal state.
const (
	RunRunning = "running"
	RunSuccess = "success"
	RunFailed  = "failed"
)

// Log levels used in a run's log trail
const (
	LevelInfo    = "INFO"
	LevelWarning = "WARNING"
	LevelSuccess = "SUCCESS"
	LevelError   = "ERROR"
)

// LogEntry is one line of a run's log trail
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
}

// PipelineRun is one end-to-end execution record. EndTime is set iff Status
// is not running; Logs only ever grow while the run is in flight.
type PipelineRun struct {
	ID               string          `json:"id"`
	PipelineID       string          `json:"pipeline_id"`
	PipelineName     string          `json:"pipeline_name"`
	Status           string          `json:"status"`
	StartTime        time.Time       `json:"start_time"`
	EndTime          *time.Time      `json:"end_time"`
	RecordsProcessed int             `json:"records_processed"`
	// RecordsFailed is derived at completion: the number of distinct
	// records that failed at least one quality rule.
	RecordsFailed    int             `json:"records_failed"`
	Logs             []LogEntry      `json:"logs"`
	Metrics          *QualityMetrics `json:"metrics,omitempty"`
	ErrorMessage     *string         `json:"error_message"`
}

// Terminal reports whether the run reached success or failed
func (r *PipelineRun) Terminal() bool {
	return r.Status == RunSuccess || r.Status == RunFailed
}

// Duration is the wall time of a terminal run, or zero while running
func (r *PipelineRun) Duration() time.Duration {
	if r.EndTime == nil {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}

// RunStats counts recent runs by status
type RunStats struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
	Running int `json:"running"`
}

// DashboardStats is the overview served by GET /api/dashboard/stats
type DashboardStats struct {
	TotalPipelines  int             `json:"total_pipelines"`
	ActivePipelines int             `json:"active_pipelines"`
	TotalSources    int             `json:"total_sources"`
	RecentRuns      []PipelineRun   `json:"recent_runs"`
	RunStats        RunStats        `json:"run_stats"`
	AvgQualityScore float64         `json:"avg_quality_score"`
	QualityTrend    []QualityResult `json:"quality_trend"`
}
