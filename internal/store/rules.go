package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go-quality-pipeline/internal/model"

	"github.com/google/uuid"
)

const ruleColumns = `id, name, description, rule_type, field, rule_condition, severity, active, created_at`

// CreateQualityRule stores a new active rule
func (s *Store) CreateQualityRule(ctx context.Context, in model.QualityRuleCreate) (*model.QualityRule, error) {
	r := model.QualityRule{
		Name:        in.Name,
		Description: in.Description,
		RuleType:    in.RuleType,
		Field:       in.Field,
		Condition:   in.Condition,
		Severity:    in.Severity,
		Active:      true,
	}
	if err := s.SaveQualityRule(ctx, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// SaveQualityRule inserts r as given, filling in id, condition and created_at when unset
func (s *Store) SaveQualityRule(ctx context.Context, r *model.QualityRule) error {
	return insertQualityRule(ctx, s.db, s, r)
}

func insertQualityRule(ctx context.Context, db execer, s *Store, r *model.QualityRule) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Condition == nil {
		r.Condition = map[string]interface{}{}
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now().UTC()
	}
	cond, err := encodeJSON(r.Condition)
	if err != nil {
		return fmt.Errorf("quality rule condition: %w", err)
	}
	_, err = db.ExecContext(ctx, s.rebind(`INSERT INTO quality_rules (`+ruleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		r.ID, r.Name, r.Description, r.RuleType, r.Field, cond, r.Severity, boolInt(r.Active), formatTime(r.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert quality rule: %w", err)
	}
	return nil
}

func scanQualityRule(row rowScanner) (*model.QualityRule, error) {
	var r model.QualityRule
	var cond, created string
	var active int
	if err := row.Scan(&r.ID, &r.Name, &r.Description, &r.RuleType, &r.Field, &cond, &r.Severity, &active, &created); err != nil {
		return nil, err
	}
	var err error
	if r.Condition, err = decodeMap(cond); err != nil {
		return nil, fmt.Errorf("quality rule %s condition: %w", r.ID, err)
	}
	r.Active = active != 0
	if r.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) listQualityRules(ctx context.Context, where string, args ...interface{}) ([]model.QualityRule, error) {
	rows, err := s.query(ctx, `SELECT `+ruleColumns+` FROM quality_rules `+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list quality rules: %w", err)
	}
	defer rows.Close()

	out := make([]model.QualityRule, 0)
	for rows.Next() {
		r, err := scanQualityRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// ListQualityRules returns every rule in creation order
func (s *Store) ListQualityRules(ctx context.Context) ([]model.QualityRule, error) {
	return s.listQualityRules(ctx, "")
}

// ActiveQualityRules returns the rules that take part in validation, in
// creation order
func (s *Store) ActiveQualityRules(ctx context.Context) ([]model.QualityRule, error) {
	return s.listQualityRules(ctx, "WHERE active = ?", 1)
}

// GetQualityRule fetches one rule by id
func (s *Store) GetQualityRule(ctx context.Context, id string) (*model.QualityRule, error) {
	r, err := scanQualityRule(s.queryRow(ctx, `SELECT `+ruleColumns+` FROM quality_rules WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("quality rule", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get quality rule: %w", err)
	}
	return r, nil
}

var ruleFields = []string{"name", "description", "rule_type", "field", "condition", "severity", "active"}

// UpdateQualityRule overlays patch onto the stored rule
func (s *Store) UpdateQualityRule(ctx context.Context, id string, patch map[string]interface{}) (*model.QualityRule, error) {
	r, err := s.GetQualityRule(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := overlay(r, patch, ruleFields); err != nil {
		return nil, err
	}
	if r.Condition == nil {
		r.Condition = map[string]interface{}{}
	}
	cond, err := encodeJSON(r.Condition)
	if err != nil {
		return nil, fmt.Errorf("quality rule condition: %w", err)
	}
	res, err := s.exec(ctx, `UPDATE quality_rules SET name = ?, description = ?, rule_type = ?, field = ?,
		rule_condition = ?, severity = ?, active = ? WHERE id = ?`,
		r.Name, r.Description, r.RuleType, r.Field, cond, r.Severity, boolInt(r.Active), id)
	if err != nil {
		return nil, fmt.Errorf("update quality rule: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, notFound("quality rule", id)
	}
	return r, nil
}
