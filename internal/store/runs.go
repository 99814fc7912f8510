package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go-quality-pipeline/internal/model"
	"go-quality-pipeline/internal/record"
)

const runColumns = `id, pipeline_id, pipeline_name, status, start_time, end_time, records_processed, records_failed, logs, metrics, error_message`

// SaveRun inserts a finished run record
func (s *Store) SaveRun(ctx context.Context, run model.PipelineRun) error {
	logs := run.Logs
	if logs == nil {
		logs = []model.LogEntry{}
	}
	logsJSON, err := encodeJSON(logs)
	if err != nil {
		return fmt.Errorf("run logs: %w", err)
	}
	var metrics sql.NullString
	if run.Metrics != nil {
		m, err := encodeJSON(run.Metrics)
		if err != nil {
			return fmt.Errorf("run metrics: %w", err)
		}
		metrics = sql.NullString{String: m, Valid: true}
	}
	_, err = s.exec(ctx, `INSERT INTO pipeline_runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.PipelineID, run.PipelineName, run.Status, formatTime(run.StartTime), nullTime(run.EndTime),
		run.RecordsProcessed, run.RecordsFailed, logsJSON, metrics, nullString(run.ErrorMessage))
	if err != nil {
		return fmt.Errorf("insert pipeline run: %w", err)
	}
	return nil
}

func scanRun(row rowScanner) (*model.PipelineRun, error) {
	var run model.PipelineRun
	var start, logs string
	var end, metrics, errMsg sql.NullString
	if err := row.Scan(&run.ID, &run.PipelineID, &run.PipelineName, &run.Status, &start, &end,
		&run.RecordsProcessed, &run.RecordsFailed, &logs, &metrics, &errMsg); err != nil {
		return nil, err
	}
	var err error
	if run.StartTime, err = parseTime(start); err != nil {
		return nil, err
	}
	if run.EndTime, err = parseNullTime(end); err != nil {
		return nil, err
	}
	if err := decodeJSON(logs, &run.Logs); err != nil {
		return nil, fmt.Errorf("run %s logs: %w", run.ID, err)
	}
	if metrics.Valid {
		run.Metrics = &model.QualityMetrics{}
		if err := decodeJSON(metrics.String, run.Metrics); err != nil {
			return nil, fmt.Errorf("run %s metrics: %w", run.ID, err)
		}
	}
	run.ErrorMessage = stringPtr(errMsg)
	return &run, nil
}

// ListRuns returns up to limit runs, most recent first
func (s *Store) ListRuns(ctx context.Context, limit int) ([]model.PipelineRun, error) {
	rows, err := s.query(ctx, `SELECT `+runColumns+` FROM pipeline_runs ORDER BY start_time DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pipeline runs: %w", err)
	}
	defer rows.Close()

	out := make([]model.PipelineRun, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *run)
	}
	return out, rows.Err()
}

// GetRun fetches one run by id
func (s *Store) GetRun(ctx context.Context, id string) (*model.PipelineRun, error) {
	run, err := scanRun(s.queryRow(ctx, `SELECT `+runColumns+` FROM pipeline_runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("pipeline run", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get pipeline run: %w", err)
	}
	return run, nil
}

// ------------------- Quality Results -------------------

const resultColumns = `id, pipeline_run_id, rule_id, rule_name, severity, passed, records_checked, records_failed, quality_score, recorded_at`

// SaveQualityResult inserts one rule outcome
func (s *Store) SaveQualityResult(ctx context.Context, res model.QualityResult) error {
	_, err := s.exec(ctx, `INSERT INTO quality_results (`+resultColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID, res.PipelineRunID, res.RuleID, res.RuleName, res.Severity, boolInt(res.Passed),
		res.RecordsChecked, res.RecordsFailed, res.QualityScore, formatTime(res.Timestamp))
	if err != nil {
		return fmt.Errorf("insert quality result: %w", err)
	}
	return nil
}

// ListQualityResults returns up to limit results, most recent first
func (s *Store) ListQualityResults(ctx context.Context, limit int) ([]model.QualityResult, error) {
	return s.listQualityResults(ctx, `ORDER BY recorded_at DESC, id LIMIT ?`, limit)
}

// RunQualityResults returns the results recorded for one run, in rule order
func (s *Store) RunQualityResults(ctx context.Context, runID string) ([]model.QualityResult, error) {
	return s.listQualityResults(ctx, `WHERE pipeline_run_id = ? ORDER BY recorded_at, id`, runID)
}

func (s *Store) listQualityResults(ctx context.Context, tail string, args ...interface{}) ([]model.QualityResult, error) {
	rows, err := s.query(ctx, `SELECT `+resultColumns+` FROM quality_results `+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("list quality results: %w", err)
	}
	defer rows.Close()

	out := make([]model.QualityResult, 0)
	for rows.Next() {
		var res model.QualityResult
		var passed int
		var recorded string
		if err := rows.Scan(&res.ID, &res.PipelineRunID, &res.RuleID, &res.RuleName, &res.Severity, &passed,
			&res.RecordsChecked, &res.RecordsFailed, &res.QualityScore, &recorded); err != nil {
			return nil, err
		}
		res.Passed = passed != 0
		if res.Timestamp, err = parseTime(recorded); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// ------------------- Processed Data -------------------

// SaveProcessedData inserts a run's sample and metadata
func (s *Store) SaveProcessedData(ctx context.Context, pd model.ProcessedData) error {
	data := pd.Data
	if data == nil {
		data = record.Set{}
	}
	dataJSON, err := encodeJSON(data)
	if err != nil {
		return fmt.Errorf("processed data: %w", err)
	}
	meta, err := encodeJSON(pd.Metadata)
	if err != nil {
		return fmt.Errorf("processed data metadata: %w", err)
	}
	_, err = s.exec(ctx, `INSERT INTO processed_data (id, pipeline_run_id, data, metadata, recorded_at) VALUES (?, ?, ?, ?, ?)`,
		pd.ID, pd.PipelineRunID, dataJSON, meta, formatTime(pd.Timestamp))
	if err != nil {
		return fmt.Errorf("insert processed data: %w", err)
	}
	return nil
}

// RecentProcessedData returns up to limit samples, most recent first
func (s *Store) RecentProcessedData(ctx context.Context, limit int) ([]model.ProcessedData, error) {
	rows, err := s.query(ctx, `SELECT id, pipeline_run_id, data, metadata, recorded_at FROM processed_data
		ORDER BY recorded_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list processed data: %w", err)
	}
	defer rows.Close()

	out := make([]model.ProcessedData, 0)
	for rows.Next() {
		var pd model.ProcessedData
		var data, meta, recorded string
		if err := rows.Scan(&pd.ID, &pd.PipelineRunID, &data, &meta, &recorded); err != nil {
			return nil, err
		}
		if pd.Data, err = record.DecodeSet([]byte(data)); err != nil {
			return nil, fmt.Errorf("processed data %s: %w", pd.ID, err)
		}
		if err := decodeJSON(meta, &pd.Metadata); err != nil {
			return nil, fmt.Errorf("processed data %s metadata: %w", pd.ID, err)
		}
		if pd.Timestamp, err = parseTime(recorded); err != nil {
			return nil, err
		}
		out = append(out, pd)
	}
	return out, rows.Err()
}

// RecentSamples concatenates the records of the limit most recent samples
func (s *Store) RecentSamples(ctx context.Context, limit int) (record.Set, error) {
	items, err := s.RecentProcessedData(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make(record.Set, 0)
	for _, pd := range items {
		out = append(out, pd.Data...)
	}
	return out, nil
}
