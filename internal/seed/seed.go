// Package seed provides the sample plant sources, pipelines and quality rules
// installed by POST /api/initialize-sample-data.
package seed

import (
	"context"
	"fmt"

	"go-quality-pipeline/internal/model"
	"go-quality-pipeline/internal/store"

	"github.com/google/uuid"
)

// Replacer swaps the stored definitions for a new set
type Replacer interface {
	ReplaceDefinitions(ctx context.Context, defs *store.Definitions) error
}

// Defaults returns three plant sources, two pipelines reading the first two
// of them and three quality rules. Every call returns fresh ids.
func Defaults() *store.Definitions {
	sources := []model.DataSource{
		plantSource("Atlanta Plant", "Atlanta, GA", "ATL001"),
		plantSource("Chicago Plant", "Chicago, IL", "CHI001"),
		plantSource("Los Angeles Plant", "Los Angeles, CA", "LA001"),
	}

	pipelines := []model.Pipeline{
		{
			ID:          uuid.New().String(),
			Name:        "Production Data ETL",
			Description: "Extract, transform, and load production data from manufacturing plants",
			SourceID:    sources[0].ID,
			Transformations: []map[string]interface{}{
				{"type": "remove_nulls"},
				{"type": "filter", "condition": map[string]interface{}{
					"field": "quality_score", "operator": ">", "value": 80,
				}},
			},
			Schedule: schedule("0 */6 * * *"),
			Status:   model.PipelineActive,
		},
		{
			ID:          uuid.New().String(),
			Name:        "Quality Metrics Aggregation",
			Description: "Aggregate quality metrics by plant and product",
			SourceID:    sources[1].ID,
			Transformations: []map[string]interface{}{
				{
					"type":     "aggregate",
					"group_by": []interface{}{"plant_id", "product"},
					"field":    "production_volume",
					"function": "sum",
				},
			},
			Schedule: schedule("0 0 * * *"),
			Status:   model.PipelineActive,
		},
	}

	rules := []model.QualityRule{
		{
			ID:          uuid.New().String(),
			Name:        "Quality Score Completeness",
			Description: "Ensure all records have a quality score",
			RuleType:    model.RuleCompleteness,
			Field:       "quality_score",
			Condition:   map[string]interface{}{},
			Severity:    model.SeverityCritical,
			Active:      true,
		},
		{
			ID:          uuid.New().String(),
			Name:        "Temperature Range Check",
			Description: "Temperature must be between 2°C and 8°C",
			RuleType:    model.RuleAccuracy,
			Field:       "temperature",
			Condition:   map[string]interface{}{"min": 2, "max": 8},
			Severity:    model.SeverityHigh,
			Active:      true,
		},
		{
			ID:          uuid.New().String(),
			Name:        "Batch ID Format",
			Description: "Batch ID must start with BATCH_",
			RuleType:    model.RuleConsistency,
			Field:       "batch_id",
			Condition:   map[string]interface{}{"pattern": "BATCH_"},
			Severity:    model.SeverityMedium,
			Active:      true,
		},
	}

	return &store.Definitions{Sources: sources, Pipelines: pipelines, Rules: rules}
}

func plantSource(name, location, plantCode string) model.DataSource {
	return model.DataSource{
		ID:       uuid.New().String(),
		Name:     name,
		Type:     "manufacturing_plant",
		Location: location,
		Status:   "active",
		Config:   map[string]interface{}{"plant_code": plantCode},
	}
}

func schedule(cron string) *string { return &cron }

// Apply replaces the stored sources, pipelines and rules with defs, or with
// Defaults when defs is nil.
func Apply(ctx context.Context, r Replacer, defs *store.Definitions) (*store.Definitions, error) {
	if defs == nil {
		defs = Defaults()
	}
	if err := r.ReplaceDefinitions(ctx, defs); err != nil {
		return nil, fmt.Errorf("seed definitions: %w", err)
	}
	return defs, nil
}
