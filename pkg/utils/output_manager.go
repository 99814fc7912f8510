package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputManager lays out the files a run produces under one directory per run
type OutputManager struct {
	BaseOutputDir string
}

// NewOutputManager creates a new output manager
func NewOutputManager(baseOutputDir string) *OutputManager {
	return &OutputManager{
		BaseOutputDir: baseOutputDir,
	}
}

// RunDir creates and returns the directory for a run's outputs
func (om *OutputManager) RunDir(runID string) (string, error) {
	if runID == "" || runID != filepath.Base(runID) || runID == "." || runID == ".." {
		return "", fmt.Errorf("invalid run id %q", runID)
	}
	runDir := filepath.Join(om.BaseOutputDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create run output directory: %w", err)
	}
	return runDir, nil
}

// FilePath returns the path of fileName inside the run's directory,
// creating the directory if needed. Any directory part of fileName is dropped.
func (om *OutputManager) FilePath(runID, fileName string) (string, error) {
	runDir, err := om.RunDir(runID)
	if err != nil {
		return "", err
	}
	return filepath.Join(runDir, filepath.Base(fileName)), nil
}

// EnsureOutputDirExists ensures the base output directory exists
func (om *OutputManager) EnsureOutputDirExists() error {
	return os.MkdirAll(om.BaseOutputDir, 0755)
}

// FileType determines the export format from a file name's extension
func FileType(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return "csv"
	case ".json":
		return "json"
	case ".jsonl", ".ndjson":
		return "jsonl"
	default:
		return "unknown"
	}
}
