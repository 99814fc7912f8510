package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go-quality-pipeline/internal/seed"

	"go.uber.org/zap"
)

func testOptions(t *testing.T) options {
	return options{
		outDir:   filepath.Join(t.TempDir(), "outputs"),
		format:   "json",
		parallel: 2,
		records:  60,
		seed:     11,
		scoring:  "severity",
		dbDSN:    ":memory:",
	}
}

func TestRunSamples(t *testing.T) {
	opts := testOptions(t)
	var out bytes.Buffer
	failed, err := run(context.Background(), opts, zap.NewNop(), &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if failed != 0 {
		t.Fatalf("failed runs = %d\n%s", failed, out.String())
	}
	for _, name := range []string{"Production Data ETL", "Quality Metrics Aggregation"} {
		if !strings.Contains(out.String(), name) {
			t.Errorf("summary missing %q:\n%s", name, out.String())
		}
	}
	matches, _ := filepath.Glob(filepath.Join(opts.outDir, "*", "sample.json"))
	if len(matches) != 2 {
		t.Errorf("exported samples = %v", matches)
	}
}

func TestRunFromInputFile(t *testing.T) {
	opts := testOptions(t)
	opts.format = "csv"
	opts.only = "production data etl"
	opts.input = filepath.Join(t.TempDir(), "in.csv")
	csv := "plant_id,quality_score,temperature,batch_id\nPlant_ATL,91,4,BATCH_1\nPlant_ATL,,5,BATCH_2\nPlant_CHI,70,30,LOT_3\n"
	if err := os.WriteFile(opts.input, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	failed, err := run(context.Background(), opts, zap.NewNop(), &out)
	if err != nil || failed != 0 {
		t.Fatalf("run: %v, failed %d\n%s", err, failed, out.String())
	}
	matches, _ := filepath.Glob(filepath.Join(opts.outDir, "*", "sample.csv"))
	if len(matches) != 1 {
		t.Fatalf("exported samples = %v", matches)
	}
	body, _ := os.ReadFile(matches[0])
	// remove_nulls drops the blank score and the filter keeps scores above 80
	if want := "batch_id,plant_id,quality_score,temperature\nBATCH_1,Plant_ATL,91,4\n"; string(body) != want {
		t.Errorf("csv = %q, want %q", body, want)
	}
}

func TestRunMissingInputFails(t *testing.T) {
	opts := testOptions(t)
	opts.input = filepath.Join(t.TempDir(), "missing.csv")
	var out bytes.Buffer
	failed, err := run(context.Background(), opts, zap.NewNop(), &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if failed != 2 || !strings.Contains(out.String(), "error:") {
		t.Errorf("failed = %d\n%s", failed, out.String())
	}
}

func TestRunRejectsBadOptions(t *testing.T) {
	opts := testOptions(t)
	opts.format = "xlsx"
	if _, err := run(context.Background(), opts, zap.NewNop(), &bytes.Buffer{}); err == nil {
		t.Error("expected format error")
	}

	opts = testOptions(t)
	opts.only = "nope"
	if _, err := run(context.Background(), opts, zap.NewNop(), &bytes.Buffer{}); err == nil {
		t.Error("expected no-pipelines error")
	}
}

func TestBuildJobsResolvesSources(t *testing.T) {
	defs := seed.Defaults()
	jobs := buildJobs(defs, options{})
	if len(jobs) != 2 {
		t.Fatalf("jobs = %d", len(jobs))
	}
	if jobs[0].Source.ID != defs.Sources[0].ID || jobs[0].Source.Name == "" {
		t.Errorf("source = %+v", jobs[0].Source)
	}
	if defs.Sources[0].Config["path"] != nil {
		t.Error("definitions mutated")
	}
}
