package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go-quality-pipeline/internal/model"
	"go-quality-pipeline/internal/record"
)

// memSink records everything the orchestrator persists.
type memSink struct {
	mu        sync.Mutex
	runs      []model.PipelineRun
	results   []model.QualityResult
	processed []model.ProcessedData
	runErr    error
}

func (m *memSink) SaveQualityResult(_ context.Context, res model.QualityResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, res)
	return nil
}

func (m *memSink) SaveProcessedData(_ context.Context, pd model.ProcessedData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processed = append(m.processed, pd)
	return nil
}

func (m *memSink) SaveRun(ctx context.Context, run model.PipelineRun) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.runErr != nil {
		return m.runErr
	}
	m.runs = append(m.runs, run)
	return nil
}

type staticRules struct {
	rules []model.QualityRule
	err   error
}

func (s staticRules) ActiveQualityRules(context.Context) ([]model.QualityRule, error) {
	return s.rules, s.err
}

func fixedIngest(set record.Set) Ingestor {
	return IngestorFunc(func(context.Context, model.DataSource) (record.Set, error) {
		return set.Clone(), nil
	})
}

// tickingClock advances one second per call.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

var testPipeline = model.Pipeline{
	ID:   "p1",
	Name: "Production Data ETL",
	Transformations: []map[string]interface{}{
		{"type": "filter", "condition": map[string]interface{}{"field": "v", "operator": ">", "value": 80}},
		{"type": "deduplicate", "key_fields": []interface{}{"id"}},
	},
}

func TestRunSuccess(t *testing.T) {
	sink := &memSink{}
	rules := staticRules{rules: []model.QualityRule{
		{ID: "r1", Name: "Batch ID Format", RuleType: model.RuleConsistency, Field: "batch", Condition: map[string]interface{}{"pattern": "BATCH_"}},
	}}
	in := record.Set{
		{"id": 1, "v": 90, "batch": "BATCH_1"},
		{"id": 2, "v": 85, "batch": "X"},
		{"id": 1, "v": 95, "batch": "BATCH_3"},
		{"id": 3, "v": 70, "batch": "BATCH_4"},
	}
	o := NewOrchestrator(fixedIngest(in), rules, sink, Options{Now: tickingClock()})

	run, err := o.Run(context.Background(), testPipeline, model.DataSource{ID: "s1"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if run.Status != model.RunSuccess || run.EndTime == nil || run.ErrorMessage != nil {
		t.Fatalf("unexpected run %#v", run)
	}
	if run.RecordsProcessed != 2 || run.RecordsFailed != 1 {
		t.Fatalf("processed=%d failed=%d, want 2 and 1", run.RecordsProcessed, run.RecordsFailed)
	}
	if run.Metrics == nil || run.Metrics.OverallQualityScore != 50 {
		t.Fatalf("metrics = %#v", run.Metrics)
	}

	wantLogs := []string{
		"Starting data ingestion...",
		"Ingested 4 records",
		"Applying transformations...",
		"Transformed to 2 records",
		"Running data quality checks...",
		"Quality score: 50%",
		"Pipeline completed successfully",
	}
	if len(run.Logs) != len(wantLogs) {
		t.Fatalf("got %d log entries: %#v", len(run.Logs), run.Logs)
	}
	for i, want := range wantLogs {
		if run.Logs[i].Message != want {
			t.Errorf("log[%d] = %q, want %q", i, run.Logs[i].Message, want)
		}
		if i > 0 && run.Logs[i].Timestamp.Before(run.Logs[i-1].Timestamp) {
			t.Errorf("log timestamps not monotonic at %d", i)
		}
	}
	if last := run.Logs[len(run.Logs)-1]; last.Level != model.LevelSuccess {
		t.Errorf("last level = %s", last.Level)
	}

	if len(sink.runs) != 1 || sink.runs[0].ID != run.ID {
		t.Fatalf("expected exactly one persisted run, got %d", len(sink.runs))
	}
	if len(sink.results) != 1 || sink.results[0].PipelineRunID != run.ID || sink.results[0].ID == "" {
		t.Fatalf("quality results = %#v", sink.results)
	}
	if len(sink.processed) != 1 || sink.processed[0].Metadata.TotalRecords != 2 || len(sink.processed[0].Data) != 2 {
		t.Fatalf("processed data = %#v", sink.processed)
	}
}

func TestRunRecordsFailedIsDistinct(t *testing.T) {
	rules := staticRules{rules: []model.QualityRule{
		{ID: "r1", RuleType: model.RuleConsistency, Field: "batch", Condition: map[string]interface{}{"pattern": "BATCH_"}},
		{ID: "r2", RuleType: model.RuleCompleteness, Field: "batch"},
		{ID: "r3", RuleType: model.RuleAccuracy, Field: "v", Condition: map[string]interface{}{"max": 92}},
	}}
	in := record.Set{
		{"id": 1, "v": 90, "batch": nil},
		{"id": 2, "v": 95, "batch": "X_BATCH_2"},
		{"id": 3, "v": 91, "batch": "BATCH_3"},
	}
	o := NewOrchestrator(fixedIngest(in), rules, &memSink{}, Options{Now: tickingClock()})

	run, err := o.Run(context.Background(), testPipeline, model.DataSource{ID: "s1"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if run.RecordsProcessed != 3 || run.RecordsFailed != 2 {
		t.Fatalf("processed=%d failed=%d, want 3 and 2", run.RecordsProcessed, run.RecordsFailed)
	}
}

func TestRunRuleStoreFailure(t *testing.T) {
	sink := &memSink{}
	o := NewOrchestrator(fixedIngest(record.Set{{"id": 1}}), staticRules{err: errors.New("db down")}, sink, Options{})

	run, err := o.Run(context.Background(), testPipeline, model.DataSource{})
	if err != nil {
		t.Fatalf("Run returned %v; a failed run is still a saved run", err)
	}
	if run.Status != model.RunFailed || run.EndTime == nil {
		t.Fatalf("status=%s end=%v", run.Status, run.EndTime)
	}
	if run.ErrorMessage == nil || !strings.Contains(*run.ErrorMessage, "db down") {
		t.Fatalf("error message = %v", run.ErrorMessage)
	}
	last := run.Logs[len(run.Logs)-1]
	if last.Level != model.LevelError || !strings.HasPrefix(last.Message, "Pipeline failed: ") {
		t.Fatalf("last log = %#v", last)
	}
	if len(sink.runs) != 1 || sink.runs[0].Status != model.RunFailed {
		t.Fatalf("persisted runs = %#v", sink.runs)
	}
	if len(sink.processed) != 0 || len(sink.results) != 0 {
		t.Fatalf("failed run persisted artifacts")
	}
}

func TestRunRecoversPanics(t *testing.T) {
	sink := &memSink{}
	boom := IngestorFunc(func(context.Context, model.DataSource) (record.Set, error) {
		panic("reader exploded")
	})
	o := NewOrchestrator(boom, staticRules{}, sink, Options{})

	run, err := o.Run(context.Background(), testPipeline, model.DataSource{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if run.Status != model.RunFailed || !strings.Contains(*run.ErrorMessage, "reader exploded") {
		t.Fatalf("unexpected run %#v", run)
	}
	if len(sink.runs) != 1 {
		t.Fatalf("expected panicking run to be saved")
	}
}

func TestRunCancelledContextStillPersists(t *testing.T) {
	sink := &memSink{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := NewOrchestrator(fixedIngest(record.Set{{"id": 1}}), staticRules{}, sink, Options{})
	run, err := o.Run(ctx, testPipeline, model.DataSource{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if run.Status != model.RunFailed || !strings.Contains(*run.ErrorMessage, context.Canceled.Error()) {
		t.Fatalf("unexpected run %#v", run)
	}
	if len(sink.runs) != 1 {
		t.Fatalf("cancelled run not persisted")
	}
}

func TestRunTimeout(t *testing.T) {
	sink := &memSink{}
	slow := IngestorFunc(func(ctx context.Context, _ model.DataSource) (record.Set, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	o := NewOrchestrator(slow, staticRules{}, sink, Options{Timeout: 10 * time.Millisecond})

	run, err := o.Run(context.Background(), testPipeline, model.DataSource{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if run.Status != model.RunFailed || !strings.Contains(*run.ErrorMessage, context.DeadlineExceeded.Error()) {
		t.Fatalf("unexpected run %#v", run)
	}
}

func TestRunSaveFailureIsReturned(t *testing.T) {
	sink := &memSink{runErr: errors.New("disk full")}
	o := NewOrchestrator(fixedIngest(record.Set{}), staticRules{}, sink, Options{})

	run, err := o.Run(context.Background(), testPipeline, model.DataSource{})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("err = %v", err)
	}
	if run == nil || run.Status != model.RunSuccess {
		t.Fatalf("run should still be returned: %#v", run)
	}
}

func TestRunSampleIsCapped(t *testing.T) {
	sink := &memSink{}
	in := make(record.Set, 120)
	for i := range in {
		in[i] = record.Record{"id": i}
	}
	o := NewOrchestrator(fixedIngest(in), staticRules{}, sink, Options{SampleSize: 50})

	run, _ := o.Run(context.Background(), model.Pipeline{ID: "p", Name: "raw"}, model.DataSource{})
	if run.RecordsProcessed != 120 || run.Metrics.OverallQualityScore != 100 {
		t.Fatalf("unexpected run %#v", run)
	}
	pd := sink.processed[0]
	if len(pd.Data) != 50 || pd.Metadata.TotalRecords != 120 || pd.Data[49]["id"] != 49 {
		t.Fatalf("sample len=%d total=%d", len(pd.Data), pd.Metadata.TotalRecords)
	}
}

func TestRunAll(t *testing.T) {
	sink := &memSink{}
	o := NewOrchestrator(fixedIngest(record.Set{{"id": 1, "v": 99}}), staticRules{}, sink, Options{})

	jobs := []Job{
		{Pipeline: model.Pipeline{ID: "a", Name: "a"}},
		{Pipeline: model.Pipeline{ID: "b", Name: "b"}},
		{Pipeline: model.Pipeline{ID: "c", Name: "c"}},
	}
	runs, err := o.RunAll(context.Background(), jobs, 2)
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	for i, run := range runs {
		if run.PipelineID != jobs[i].Pipeline.ID || run.Status != model.RunSuccess {
			t.Fatalf("runs[%d] = %#v", i, run)
		}
	}
	if len(sink.runs) != 3 {
		t.Fatalf("persisted %d runs, want 3", len(sink.runs))
	}
}
