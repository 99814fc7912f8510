package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go-quality-pipeline/internal/model"

	"github.com/google/uuid"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

const sourceColumns = `id, name, type, location, status, config, created_at`

// CreateDataSource stores a new active source
func (s *Store) CreateDataSource(ctx context.Context, in model.DataSourceCreate) (*model.DataSource, error) {
	ds := model.DataSource{
		Name:     in.Name,
		Type:     in.Type,
		Location: in.Location,
		Config:   in.Config,
	}
	if err := s.SaveDataSource(ctx, &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

// SaveDataSource inserts ds, filling in id, status, config and created_at when unset
func (s *Store) SaveDataSource(ctx context.Context, ds *model.DataSource) error {
	return insertDataSource(ctx, s.db, s, ds)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertDataSource(ctx context.Context, db execer, s *Store, ds *model.DataSource) error {
	if ds.ID == "" {
		ds.ID = uuid.New().String()
	}
	if ds.Status == "" {
		ds.Status = "active"
	}
	if ds.Config == nil {
		ds.Config = map[string]interface{}{}
	}
	if ds.CreatedAt.IsZero() {
		ds.CreatedAt = s.now().UTC()
	}
	cfg, err := encodeJSON(ds.Config)
	if err != nil {
		return fmt.Errorf("data source config: %w", err)
	}
	_, err = db.ExecContext(ctx, s.rebind(`INSERT INTO data_sources (`+sourceColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		ds.ID, ds.Name, ds.Type, ds.Location, ds.Status, cfg, formatTime(ds.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert data source: %w", err)
	}
	return nil
}

func scanDataSource(row rowScanner) (*model.DataSource, error) {
	var ds model.DataSource
	var cfg, created string
	if err := row.Scan(&ds.ID, &ds.Name, &ds.Type, &ds.Location, &ds.Status, &cfg, &created); err != nil {
		return nil, err
	}
	var err error
	if ds.Config, err = decodeMap(cfg); err != nil {
		return nil, fmt.Errorf("data source %s config: %w", ds.ID, err)
	}
	if ds.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &ds, nil
}

// ListDataSources returns every source in creation order
func (s *Store) ListDataSources(ctx context.Context) ([]model.DataSource, error) {
	rows, err := s.query(ctx, `SELECT `+sourceColumns+` FROM data_sources ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list data sources: %w", err)
	}
	defer rows.Close()

	out := make([]model.DataSource, 0)
	for rows.Next() {
		ds, err := scanDataSource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ds)
	}
	return out, rows.Err()
}

// GetDataSource fetches one source by id
func (s *Store) GetDataSource(ctx context.Context, id string) (*model.DataSource, error) {
	ds, err := scanDataSource(s.queryRow(ctx, `SELECT `+sourceColumns+` FROM data_sources WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("data source", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get data source: %w", err)
	}
	return ds, nil
}
