package store

import (
	"context"
	"fmt"

	"go-quality-pipeline/internal/model"
)

// Definitions is a full set of sources, pipelines and rules
type Definitions struct {
	Sources   []model.DataSource  `json:"data_sources" yaml:"data_sources" toml:"data_sources"`
	Pipelines []model.Pipeline    `json:"pipelines" yaml:"pipelines" toml:"pipelines"`
	Rules     []model.QualityRule `json:"quality_rules" yaml:"quality_rules" toml:"quality_rules"`
}

// ReplaceDefinitions deletes every source, pipeline and rule and inserts defs
// in one transaction. Runs, results and samples are kept. IDs and timestamps
// missing from defs are assigned and written back.
func (s *Store) ReplaceDefinitions(ctx context.Context, defs *Definitions) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"data_sources", "pipelines", "quality_rules"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	for i := range defs.Sources {
		if err := insertDataSource(ctx, tx, s, &defs.Sources[i]); err != nil {
			return err
		}
	}
	for i := range defs.Pipelines {
		if err := insertPipeline(ctx, tx, s, &defs.Pipelines[i]); err != nil {
			return err
		}
	}
	for i := range defs.Rules {
		if err := insertQualityRule(ctx, tx, s, &defs.Rules[i]); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Info("definitions replaced")
	return nil
}
