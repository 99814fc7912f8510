package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go-quality-pipeline/internal/model"

	"github.com/google/uuid"
)

const pipelineColumns = `id, name, description, source_id, transformations, schedule, status, created_at, updated_at`

// CreatePipeline stores a new draft pipeline
func (s *Store) CreatePipeline(ctx context.Context, in model.PipelineCreate) (*model.Pipeline, error) {
	p := model.Pipeline{
		Name:            in.Name,
		Description:     in.Description,
		SourceID:        in.SourceID,
		Transformations: in.Transformations,
		Schedule:        in.Schedule,
	}
	if err := s.SavePipeline(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SavePipeline inserts p, filling in id, status and timestamps when unset
func (s *Store) SavePipeline(ctx context.Context, p *model.Pipeline) error {
	return insertPipeline(ctx, s.db, s, p)
}

func insertPipeline(ctx context.Context, db execer, s *Store, p *model.Pipeline) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = model.PipelineDraft
	}
	if p.Transformations == nil {
		p.Transformations = []map[string]interface{}{}
	}
	now := s.now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	steps, err := encodeJSON(p.Transformations)
	if err != nil {
		return fmt.Errorf("pipeline transformations: %w", err)
	}
	_, err = db.ExecContext(ctx, s.rebind(`INSERT INTO pipelines (`+pipelineColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.Name, p.Description, p.SourceID, steps, nullString(p.Schedule), p.Status,
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert pipeline: %w", err)
	}
	return nil
}

func scanPipeline(row rowScanner) (*model.Pipeline, error) {
	var p model.Pipeline
	var steps, created, updated string
	var schedule sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.SourceID, &steps, &schedule, &p.Status, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if p.Transformations, err = decodeMapList(steps); err != nil {
		return nil, fmt.Errorf("pipeline %s transformations: %w", p.ID, err)
	}
	p.Schedule = stringPtr(schedule)
	if p.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPipelines returns every pipeline in creation order
func (s *Store) ListPipelines(ctx context.Context) ([]model.Pipeline, error) {
	rows, err := s.query(ctx, `SELECT `+pipelineColumns+` FROM pipelines ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list pipelines: %w", err)
	}
	defer rows.Close()

	out := make([]model.Pipeline, 0)
	for rows.Next() {
		p, err := scanPipeline(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// GetPipeline fetches one pipeline by id
func (s *Store) GetPipeline(ctx context.Context, id string) (*model.Pipeline, error) {
	p, err := scanPipeline(s.queryRow(ctx, `SELECT `+pipelineColumns+` FROM pipelines WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("pipeline", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get pipeline: %w", err)
	}
	return p, nil
}

// pipelineFields are the keys a pipeline update may set
var pipelineFields = []string{"name", "description", "source_id", "transformations", "schedule", "status"}

// UpdatePipeline overlays patch onto the stored pipeline and bumps updated_at.
// Keys outside the editable fields are ignored.
func (s *Store) UpdatePipeline(ctx context.Context, id string, patch map[string]interface{}) (*model.Pipeline, error) {
	p, err := s.GetPipeline(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := overlay(p, patch, pipelineFields); err != nil {
		return nil, err
	}
	if p.Transformations == nil {
		p.Transformations = []map[string]interface{}{}
	}
	p.UpdatedAt = s.now().UTC()

	steps, err := encodeJSON(p.Transformations)
	if err != nil {
		return nil, fmt.Errorf("pipeline transformations: %w", err)
	}
	res, err := s.exec(ctx, `UPDATE pipelines SET name = ?, description = ?, source_id = ?, transformations = ?,
		schedule = ?, status = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Description, p.SourceID, steps, nullString(p.Schedule), p.Status, formatTime(p.UpdatedAt), id)
	if err != nil {
		return nil, fmt.Errorf("update pipeline: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, notFound("pipeline", id)
	}
	return p, nil
}

// DeletePipeline removes a pipeline. Its runs are kept.
func (s *Store) DeletePipeline(ctx context.Context, id string) error {
	res, err := s.exec(ctx, `DELETE FROM pipelines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete pipeline: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete pipeline: %w", err)
	}
	if n == 0 {
		return notFound("pipeline", id)
	}
	return nil
}
