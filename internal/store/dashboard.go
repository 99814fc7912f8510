package store

import (
	"context"
	"fmt"
	"math"

	"go-quality-pipeline/internal/model"
)

// DashboardStats summarizes definitions, the 10 most recent runs and the 50
// most recent quality scores
func (s *Store) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	var stats model.DashboardStats
	var err error

	if stats.TotalPipelines, err = s.count(ctx, `SELECT COUNT(*) FROM pipelines`); err != nil {
		return nil, fmt.Errorf("count pipelines: %w", err)
	}
	if stats.ActivePipelines, err = s.count(ctx, `SELECT COUNT(*) FROM pipelines WHERE status = ?`, model.PipelineActive); err != nil {
		return nil, fmt.Errorf("count active pipelines: %w", err)
	}
	if stats.TotalSources, err = s.count(ctx, `SELECT COUNT(*) FROM data_sources`); err != nil {
		return nil, fmt.Errorf("count data sources: %w", err)
	}

	if stats.RecentRuns, err = s.ListRuns(ctx, 10); err != nil {
		return nil, err
	}
	for _, run := range stats.RecentRuns {
		switch run.Status {
		case model.RunSuccess:
			stats.RunStats.Success++
		case model.RunFailed:
			stats.RunStats.Failed++
		case model.RunRunning:
			stats.RunStats.Running++
		}
	}

	results, err := s.ListQualityResults(ctx, 50)
	if err != nil {
		return nil, err
	}
	if len(results) > 0 {
		total := 0.0
		for _, r := range results {
			total += r.QualityScore
		}
		stats.AvgQualityScore = math.Round(total/float64(len(results))*100) / 100
	}
	if len(results) > 20 {
		results = results[:20]
	}
	stats.QualityTrend = results
	return &stats, nil
}
