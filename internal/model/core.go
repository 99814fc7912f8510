package model

import (
	"time"

	"go-quality-pipeline/internal/record"
)

// Pipeline statuses
const (
	PipelineDraft  = "draft"
	PipelineActive = "active"
	PipelinePaused = "paused"
)

// DataSource describes where a pipeline's raw records come from
type DataSource struct {
	ID        string                 `json:"id" yaml:"id" toml:"id"`
	Name      string                 `json:"name" yaml:"name" toml:"name"`
	Type      string                 `json:"type" yaml:"type" toml:"type"` // manufacturing_plant, quality_sensor, inventory_system, file
	Location  string                 `json:"location" yaml:"location" toml:"location"`
	Status    string                 `json:"status" yaml:"status" toml:"status"` // active, inactive
	Config    map[string]interface{} `json:"config" yaml:"config" toml:"config"`
	CreatedAt time.Time              `json:"created_at" yaml:"-" toml:"-"`
}

// DataSourceCreate is the body of POST /api/data-sources
type DataSourceCreate struct {
	Name     string                 `json:"name"`
	Type     string                 `json:"type"`
	Location string                 `json:"location"`
	Config   map[string]interface{} `json:"config"`
}

// Pipeline is a named, ordered list of transformation steps bound to a source.
// Transformations keep their wire form; the engine decodes them per run.
type Pipeline struct {
	ID              string                   `json:"id" yaml:"id" toml:"id"`
	Name            string                   `json:"name" yaml:"name" toml:"name"`
	Description     string                   `json:"description" yaml:"description" toml:"description"`
	SourceID        string                   `json:"source_id" yaml:"source_id" toml:"source_id"`
	Transformations []map[string]interface{} `json:"transformations" yaml:"transformations" toml:"transformations"`
	Schedule        *string                  `json:"schedule" yaml:"schedule" toml:"schedule"`
	Status          string                   `json:"status" yaml:"status" toml:"status"`
	CreatedAt       time.Time                `json:"created_at" yaml:"-" toml:"-"`
	UpdatedAt       time.Time                `json:"updated_at" yaml:"-" toml:"-"`
}

// PipelineCreate is the body of POST /api/pipelines
type PipelineCreate struct {
	Name            string                   `json:"name"`
	Description     string                   `json:"description"`
	SourceID        string                   `json:"source_id"`
	Transformations []map[string]interface{} `json:"transformations"`
	Schedule        *string                  `json:"schedule"`
}

// Rule types
const (
	RuleCompleteness = "completeness"
	RuleAccuracy     = "accuracy"
	RuleConsistency  = "consistency"
)

// Severities
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// QualityRule is a declarative data-quality check. Only active rules take part in a run.
type QualityRule struct {
	ID          string                 `json:"id" yaml:"id" toml:"id"`
	Name        string                 `json:"name" yaml:"name" toml:"name"`
	Description string                 `json:"description" yaml:"description" toml:"description"`
	RuleType    string                 `json:"rule_type" yaml:"rule_type" toml:"rule_type"`
	Field       string                 `json:"field" yaml:"field" toml:"field"`
	Condition   map[string]interface{} `json:"condition" yaml:"condition" toml:"condition"`
	Severity    string                 `json:"severity" yaml:"severity" toml:"severity"`
	Active      bool                   `json:"active" yaml:"active" toml:"active"`
	CreatedAt   time.Time              `json:"created_at" yaml:"-" toml:"-"`
}

// QualityRuleCreate is the body of POST /api/quality-rules
type QualityRuleCreate struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	RuleType    string                 `json:"rule_type"`
	Field       string                 `json:"field"`
	Condition   map[string]interface{} `json:"condition"`
	Severity    string                 `json:"severity"`
}

// QualityResult is the outcome of one rule against one record set
type QualityResult struct {
	ID             string    `json:"id"`
	PipelineRunID  string    `json:"pipeline_run_id"`
	RuleID         string    `json:"rule_id"`
	RuleName       string    `json:"rule_name"`
	Severity       string    `json:"severity,omitempty"`
	Passed         bool      `json:"passed"`
	RecordsChecked int       `json:"records_checked"`
	RecordsFailed  int       `json:"records_failed"`
	QualityScore   float64   `json:"quality_score"`
	Timestamp      time.Time `json:"timestamp"`
}

// QualityMetrics is the aggregate of a validation pass
type QualityMetrics struct {
	OverallQualityScore float64 `json:"overall_quality_score"`
	Scoring             string  `json:"scoring,omitempty"`
}

// ProcessedData is the sample of transformed records kept per run
type ProcessedData struct {
	ID            string                `json:"id"`
	PipelineRunID string                `json:"pipeline_run_id"`
	Data          record.Set            `json:"data"`
	Metadata      ProcessedDataMetadata `json:"metadata"`
	Timestamp     time.Time             `json:"timestamp"`
}

// ProcessedDataMetadata describes the full output a sample was taken from
type ProcessedDataMetadata struct {
	TotalRecords   int            `json:"total_records"`
	QualityMetrics QualityMetrics `json:"quality_metrics"`
}
