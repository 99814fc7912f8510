// Package store persists sources, pipelines, rules, runs, quality results and
// processed samples in a SQL database. SQLite and PostgreSQL are supported
// through database/sql.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-quality-pipeline/internal/record"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a lookup by id matches nothing
var ErrNotFound = errors.New("not found")

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// timeLayout is fixed width so TEXT columns sort chronologically
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type dialect struct {
	name       string
	driverName string
	floatType  string
	// numbered placeholders ($1, $2, ...) instead of ?
	numbered bool
}

var dialects = map[string]dialect{
	DriverSQLite:   {name: DriverSQLite, driverName: "sqlite3", floatType: "REAL"},
	DriverPostgres: {name: DriverPostgres, driverName: "pgx", floatType: "DOUBLE PRECISION", numbered: true},
}

// Store is the SQL-backed repository. It is safe for concurrent use.
type Store struct {
	db      *sql.DB
	dialect dialect
	logger  *zap.Logger
	now     func() time.Time
}

// Open connects to the database and creates missing tables
func Open(ctx context.Context, driver, dsn string, logger *zap.Logger) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if d.name == DriverSQLite {
		// sqlite allows one writer; :memory: databases are per connection
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	s := &Store{db: db, dialect: d, logger: logger.Named("store"), now: time.Now}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	s.logger.Info("database ready", zap.String("driver", driver))
	return s, nil
}

// Close releases the connection pool
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS data_sources (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			location TEXT NOT NULL,
			status TEXT NOT NULL,
			config TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pipelines (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			source_id TEXT NOT NULL,
			transformations TEXT NOT NULL,
			schedule TEXT,
			status TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS quality_rules (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			rule_type TEXT NOT NULL,
			field TEXT NOT NULL,
			rule_condition TEXT NOT NULL,
			severity TEXT NOT NULL,
			active INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pipeline_runs (
			id TEXT PRIMARY KEY,
			pipeline_id TEXT NOT NULL,
			pipeline_name TEXT NOT NULL,
			status TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT,
			records_processed INTEGER NOT NULL,
			records_failed INTEGER NOT NULL,
			logs TEXT NOT NULL,
			metrics TEXT,
			error_message TEXT
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS quality_results (
			id TEXT PRIMARY KEY,
			pipeline_run_id TEXT NOT NULL,
			rule_id TEXT NOT NULL,
			rule_name TEXT NOT NULL,
			severity TEXT NOT NULL,
			passed INTEGER NOT NULL,
			records_checked INTEGER NOT NULL,
			records_failed INTEGER NOT NULL,
			quality_score %s NOT NULL,
			recorded_at TEXT NOT NULL
		)`, s.dialect.floatType),
		`CREATE TABLE IF NOT EXISTS processed_data (
			id TEXT PRIMARY KEY,
			pipeline_run_id TEXT NOT NULL,
			data TEXT NOT NULL,
			metadata TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_start ON pipeline_runs (start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_results_recorded ON quality_results (recorded_at)`,
		`CREATE INDEX IF NOT EXISTS idx_processed_recorded ON processed_data (recorded_at)`,
	}
	for _, ddl := range tables {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders for dialects with numbered parameters
func (s *Store) rebind(query string) string {
	if !s.dialect.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

func (s *Store) count(ctx context.Context, query string, args ...interface{}) (int, error) {
	var n int
	if err := s.queryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ------------------- encoding helpers -------------------

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", v, err)
	}
	return t, nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid {
		return nil, nil
	}
	t, err := parseTime(v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func encodeJSON(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}
	return string(b), nil
}

// decodeJSON keeps numbers inside free-form maps as int or float64
func decodeJSON(data string, v interface{}) error {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func decodeMap(data string) (map[string]interface{}, error) {
	var m map[string]interface{}
	if err := decodeJSON(data, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return map[string]interface{}{}, nil
	}
	return record.Normalize(m).(map[string]interface{}), nil
}

func decodeMapList(data string) ([]map[string]interface{}, error) {
	var list []map[string]interface{}
	if err := decodeJSON(data, &list); err != nil {
		return nil, err
	}
	out := make([]map[string]interface{}, len(list))
	for i, m := range list {
		out[i] = record.Normalize(m).(map[string]interface{})
	}
	return out, nil
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}
