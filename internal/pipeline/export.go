package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go-quality-pipeline/internal/model"
	"go-quality-pipeline/internal/record"
	"go-quality-pipeline/pkg/utils"
)

// ExportResult represents the result of an export operation
type ExportResult struct {
	Type        string    `json:"type"` // "csv", "json", "jsonl"
	Path        string    `json:"path"`
	RecordCount int       `json:"record_count"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	ExportedAt  time.Time `json:"exported_at"`
}

// ExportRun writes a run's processed sample to path. The format follows the
// file extension: .json, .jsonl or .ndjson, and CSV for anything else.
func ExportRun(path string, run *model.PipelineRun, pd model.ProcessedData) ExportResult {
	result := ExportResult{Path: path, ExportedAt: time.Now().UTC()}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		result.Error = fmt.Sprintf("failed to create directory: %v", err)
		return result
	}

	var err error
	switch utils.FileType(path) {
	case "json":
		result.Type = "json"
		result.RecordCount, err = exportJSON(path, run, pd)
	case "jsonl":
		result.Type = "jsonl"
		result.RecordCount, err = exportJSONLines(path, pd.Data)
	default:
		result.Type = "csv"
		result.RecordCount, err = exportCSV(path, pd.Data)
	}
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Success = true
	return result
}

// Columns returns the union of field names across set, sorted
func Columns(set record.Set) []string {
	seen := make(map[string]bool)
	for _, rec := range set {
		for key := range rec {
			seen[key] = true
		}
	}
	cols := make([]string, 0, len(seen))
	for key := range seen {
		cols = append(cols, key)
	}
	sort.Strings(cols)
	return cols
}

func exportCSV(path string, data record.Set) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := Columns(data)
	if err := writer.Write(header); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	count := 0
	for _, rec := range data {
		row := make([]string, len(header))
		for i, key := range header {
			row[i] = record.Stringify(rec[key])
		}
		if err := writer.Write(row); err != nil {
			return count, fmt.Errorf("failed to write row: %w", err)
		}
		count++
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return count, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return count, nil
}

func exportJSON(path string, run *model.PipelineRun, pd model.ProcessedData) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	doc := map[string]interface{}{
		"export_info": map[string]interface{}{
			"run_id":        run.ID,
			"pipeline_name": run.PipelineName,
			"status":        run.Status,
			"exported_at":   time.Now().UTC(),
			"record_count":  len(pd.Data),
			"total_records": pd.Metadata.TotalRecords,
		},
		"quality_metrics": pd.Metadata.QualityMetrics,
		"data":            pd.Data,
	}
	if err := encoder.Encode(doc); err != nil {
		return 0, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return len(pd.Data), nil
}

func exportJSONLines(path string, data record.Set) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	for i, rec := range data {
		if err := encoder.Encode(rec); err != nil {
			return i, fmt.Errorf("failed to encode record %d: %w", i, err)
		}
	}
	return len(data), nil
}
