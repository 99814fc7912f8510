package store

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go-quality-pipeline/internal/model"
	"go-quality-pipeline/internal/record"

	"github.com/smartystreets/goconvey/convey"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), DriverSQLite, ":memory:", nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	clock := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "oracle", "", nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestRebind(t *testing.T) {
	s := &Store{dialect: dialects[DriverPostgres]}
	got := s.rebind(`UPDATE t SET a = ?, b = ? WHERE id = ?`)
	if got != `UPDATE t SET a = $1, b = $2 WHERE id = $3` {
		t.Fatalf("rebind = %q", got)
	}
	s.dialect = dialects[DriverSQLite]
	if got := s.rebind(`a = ?`); got != `a = ?` {
		t.Fatalf("sqlite rebind = %q", got)
	}
}

func TestDataSources(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ds, err := s.CreateDataSource(ctx, model.DataSourceCreate{
		Name: "Atlanta Plant", Type: "manufacturing_plant", Location: "Atlanta, GA",
		Config: map[string]interface{}{"plant_code": "ATL001", "lines": 4},
	})
	if err != nil {
		t.Fatalf("CreateDataSource: %v", err)
	}
	if ds.ID == "" || ds.Status != "active" {
		t.Fatalf("unexpected source %#v", ds)
	}

	got, err := s.GetDataSource(ctx, ds.ID)
	if err != nil {
		t.Fatalf("GetDataSource: %v", err)
	}
	if !reflect.DeepEqual(got, ds) {
		t.Fatalf("round trip: got %#v want %#v", got, ds)
	}

	if _, err := s.GetDataSource(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	list, _ := s.ListDataSources(ctx)
	if len(list) != 1 {
		t.Fatalf("list = %#v", list)
	}
}

func TestPipelineLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	schedule := "0 */6 * * *"

	p, err := s.CreatePipeline(ctx, model.PipelineCreate{
		Name:        "Production Data ETL",
		Description: "plant data",
		SourceID:    "src-1",
		Transformations: []map[string]interface{}{
			{"type": "remove_nulls"},
			{"type": "filter", "condition": map[string]interface{}{"field": "quality_score", "operator": ">", "value": 80}},
		},
		Schedule: &schedule,
	})
	if err != nil {
		t.Fatalf("CreatePipeline: %v", err)
	}
	if p.Status != model.PipelineDraft || !p.CreatedAt.Equal(p.UpdatedAt) {
		t.Fatalf("unexpected pipeline %#v", p)
	}

	got, err := s.GetPipeline(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPipeline: %v", err)
	}
	if !reflect.DeepEqual(got, p) {
		t.Fatalf("round trip: got %#v want %#v", got, p)
	}

	updated, err := s.UpdatePipeline(ctx, p.ID, map[string]interface{}{
		"status":          "active",
		"transformations": []interface{}{map[string]interface{}{"type": "deduplicate", "key_fields": []interface{}{"record_id"}}},
		"schedule":        nil,
		"id":              "hijack",
	})
	if err != nil {
		t.Fatalf("UpdatePipeline: %v", err)
	}
	if updated.ID != p.ID || updated.Status != model.PipelineActive || updated.Schedule != nil || updated.Name != p.Name {
		t.Fatalf("unexpected update %#v", updated)
	}
	if len(updated.Transformations) != 1 || !updated.UpdatedAt.After(p.UpdatedAt) {
		t.Fatalf("unexpected update %#v", updated)
	}

	if _, err := s.UpdatePipeline(ctx, p.ID, map[string]interface{}{"name": 42}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	if _, err := s.UpdatePipeline(ctx, "nope", map[string]interface{}{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	if err := s.DeletePipeline(ctx, p.ID); err != nil {
		t.Fatalf("DeletePipeline: %v", err)
	}
	if err := s.DeletePipeline(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}

func TestQualityRules(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r1, _ := s.CreateQualityRule(ctx, model.QualityRuleCreate{
		Name: "Temperature Range Check", RuleType: model.RuleAccuracy, Field: "temperature",
		Condition: map[string]interface{}{"min": 2, "max": 8}, Severity: model.SeverityHigh,
	})
	r2, _ := s.CreateQualityRule(ctx, model.QualityRuleCreate{
		Name: "Batch ID Format", RuleType: model.RuleConsistency, Field: "batch_id",
		Condition: map[string]interface{}{"pattern": "BATCH_"}, Severity: model.SeverityMedium,
	})
	if !r1.Active {
		t.Fatalf("new rules start active")
	}

	updated, err := s.UpdateQualityRule(ctx, r1.ID, map[string]interface{}{
		"active":    false,
		"condition": map[string]interface{}{"max": 10},
	})
	if err != nil {
		t.Fatalf("UpdateQualityRule: %v", err)
	}
	if updated.Active || !reflect.DeepEqual(updated.Condition, map[string]interface{}{"max": 10.0}) {
		t.Fatalf("condition should be replaced, not merged: %#v", updated.Condition)
	}

	active, err := s.ActiveQualityRules(ctx)
	if err != nil {
		t.Fatalf("ActiveQualityRules: %v", err)
	}
	if len(active) != 1 || active[0].ID != r2.ID {
		t.Fatalf("active = %#v", active)
	}
	all, _ := s.ListQualityRules(ctx)
	if len(all) != 2 || all[0].ID != r1.ID {
		t.Fatalf("rules not in creation order: %#v", all)
	}
	stored, _ := s.GetQualityRule(ctx, r1.ID)
	if stored.Condition["max"] != 10 {
		t.Fatalf("stored condition = %#v", stored.Condition)
	}
}

func TestRunsResultsAndSamples(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 2, 8, 0, 0, 123456789, time.UTC)

	for i, status := range []string{model.RunSuccess, model.RunFailed, model.RunSuccess} {
		start := base.Add(time.Duration(i) * time.Minute)
		end := start.Add(time.Second)
		run := model.PipelineRun{
			ID: string(rune('a' + i)), PipelineID: "p1", PipelineName: "etl", Status: status,
			StartTime: start, EndTime: &end, RecordsProcessed: 10 * i,
			Logs: []model.LogEntry{{Timestamp: start, Level: model.LevelInfo, Message: "Starting data ingestion..."}},
		}
		if status == model.RunFailed {
			msg := "boom"
			run.ErrorMessage = &msg
		} else {
			run.Metrics = &model.QualityMetrics{OverallQualityScore: 90 + float64(i), Scoring: "unweighted"}
		}
		if err := s.SaveRun(ctx, run); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
		if err := s.SaveQualityResult(ctx, model.QualityResult{
			ID: "res-" + run.ID, PipelineRunID: run.ID, RuleID: "r1", RuleName: "rule",
			Passed: i != 1, RecordsChecked: 10, RecordsFailed: i, QualityScore: 100 - float64(10*i), Timestamp: start,
		}); err != nil {
			t.Fatalf("SaveQualityResult: %v", err)
		}
		if err := s.SaveProcessedData(ctx, model.ProcessedData{
			ID: "pd-" + run.ID, PipelineRunID: run.ID,
			Data:      record.Set{{"i": i, "v": 1.5}},
			Metadata:  model.ProcessedDataMetadata{TotalRecords: 1},
			Timestamp: start,
		}); err != nil {
			t.Fatalf("SaveProcessedData: %v", err)
		}
	}

	runs, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
		t.Fatalf("runs not most-recent first: %#v", runs)
	}
	if runs[1].ErrorMessage == nil || *runs[1].ErrorMessage != "boom" || runs[1].Metrics != nil {
		t.Fatalf("failed run = %#v", runs[1])
	}
	if !runs[0].StartTime.Equal(base.Add(2*time.Minute)) || runs[0].Duration() != time.Second {
		t.Fatalf("timestamps lost precision: %v", runs[0].StartTime)
	}

	got, err := s.GetRun(ctx, "a")
	if err != nil || got.Logs[0].Message != "Starting data ingestion..." || got.Metrics.OverallQualityScore != 90 {
		t.Fatalf("GetRun = %#v, %v", got, err)
	}
	if _, err := s.GetRun(ctx, "zzz"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}

	results, _ := s.ListQualityResults(ctx, 100)
	if len(results) != 3 || results[0].ID != "res-c" || results[1].Passed {
		t.Fatalf("results = %#v", results)
	}
	perRun, _ := s.RunQualityResults(ctx, "b")
	if len(perRun) != 1 || perRun[0].RecordsFailed != 1 {
		t.Fatalf("per run = %#v", perRun)
	}

	samples, err := s.RecentSamples(ctx, 2)
	if err != nil {
		t.Fatalf("RecentSamples: %v", err)
	}
	want := record.Set{{"i": 2, "v": 1.5}, {"i": 1, "v": 1.5}}
	if !reflect.DeepEqual(samples, want) {
		t.Fatalf("samples = %#v", samples)
	}
}

func TestDashboardStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	stats, err := s.DashboardStats(ctx)
	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}
	if stats.TotalPipelines != 0 || stats.AvgQualityScore != 0 || len(stats.RecentRuns) != 0 || stats.QualityTrend == nil {
		t.Fatalf("empty stats = %#v", stats)
	}

	p, _ := s.CreatePipeline(ctx, model.PipelineCreate{Name: "a"})
	s.CreatePipeline(ctx, model.PipelineCreate{Name: "b"})
	s.UpdatePipeline(ctx, p.ID, map[string]interface{}{"status": model.PipelineActive})
	s.CreateDataSource(ctx, model.DataSourceCreate{Name: "src"})

	now := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	for i, st := range []string{model.RunSuccess, model.RunSuccess, model.RunFailed} {
		s.SaveRun(ctx, model.PipelineRun{ID: st + string(rune('0'+i)), Status: st, StartTime: now.Add(time.Duration(i) * time.Second)})
	}
	for i := 0; i < 25; i++ {
		score := 90.0
		if i%2 == 0 {
			score = 95.0
		}
		s.SaveQualityResult(ctx, model.QualityResult{ID: string(rune('A' + i)), QualityScore: score, Timestamp: now.Add(time.Duration(i) * time.Second)})
	}

	stats, err = s.DashboardStats(ctx)
	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}
	if stats.TotalPipelines != 2 || stats.ActivePipelines != 1 || stats.TotalSources != 1 {
		t.Fatalf("counts = %#v", stats)
	}
	if stats.RunStats != (model.RunStats{Success: 2, Failed: 1}) {
		t.Fatalf("run stats = %#v", stats.RunStats)
	}
	// 13 x 95 + 12 x 90 over 25
	if stats.AvgQualityScore != 92.6 || len(stats.QualityTrend) != 20 {
		t.Fatalf("avg=%v trend=%d", stats.AvgQualityScore, len(stats.QualityTrend))
	}
}

func TestReplaceDefinitions(t *testing.T) {
	convey.Convey("Given a store holding earlier definitions", t, func() {
		s := newTestStore(t)
		ctx := context.Background()
		s.CreateDataSource(ctx, model.DataSourceCreate{Name: "old"})
		s.CreateQualityRule(ctx, model.QualityRuleCreate{Name: "old", RuleType: model.RuleCompleteness})
		s.SaveRun(ctx, model.PipelineRun{ID: "kept", Status: model.RunSuccess, StartTime: time.Now()})

		convey.Convey("replacing them swaps every definition but keeps runs", func() {
			defs := &Definitions{
				Sources:   []model.DataSource{{Name: "Atlanta Plant", Type: "manufacturing_plant"}},
				Pipelines: []model.Pipeline{{Name: "ETL", Status: model.PipelineActive}},
				Rules:     []model.QualityRule{{Name: "Completeness", RuleType: model.RuleCompleteness, Active: true}},
			}
			convey.So(s.ReplaceDefinitions(ctx, defs), convey.ShouldBeNil)
			convey.So(defs.Sources[0].ID, convey.ShouldNotBeEmpty)

			sources, _ := s.ListDataSources(ctx)
			convey.So(len(sources), convey.ShouldEqual, 1)
			convey.So(sources[0].Name, convey.ShouldEqual, "Atlanta Plant")

			rules, _ := s.ActiveQualityRules(ctx)
			convey.So(len(rules), convey.ShouldEqual, 1)
			convey.So(rules[0].Name, convey.ShouldEqual, "Completeness")

			_, err := s.GetRun(ctx, "kept")
			convey.So(err, convey.ShouldBeNil)
		})

		convey.Convey("a failing insert leaves the old definitions in place", func() {
			defs := &Definitions{Rules: []model.QualityRule{{ID: "dup"}, {ID: "dup"}}}
			convey.So(s.ReplaceDefinitions(ctx, defs), convey.ShouldNotBeNil)

			sources, _ := s.ListDataSources(ctx)
			convey.So(len(sources), convey.ShouldEqual, 1)
			convey.So(sources[0].Name, convey.ShouldEqual, "old")
		})
	})
}
