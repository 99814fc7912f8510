package pipeline

import (
	"fmt"
	"math"
	"strings"

	"go-quality-pipeline/internal/model"
	"go-quality-pipeline/internal/record"
	"go-quality-pipeline/pkg/utils"
)

// Check is the per-record predicate behind a quality rule. Fails reports
// whether one record violates it.
type Check interface {
	Kind() string
	Fails(r record.Record) bool
}

// CompletenessCheck fails records whose field is null, absent or "".
// Zero and false are present values.
type CompletenessCheck struct {
	Field string
}

func (CompletenessCheck) Kind() string { return model.RuleCompleteness }

func (c CompletenessCheck) Fails(r record.Record) bool {
	v := r[c.Field]
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// AccuracyCheck fails records whose non-null numeric field lies outside
// [Min, Max]. A nil bound is open. Null values pass; non-numeric values fail.
type AccuracyCheck struct {
	Field string
	Min   *float64
	Max   *float64
}

func (AccuracyCheck) Kind() string { return model.RuleAccuracy }

func (c AccuracyCheck) Fails(r record.Record) bool {
	v := r[c.Field]
	if v == nil {
		return false
	}
	n, ok := utils.Numeric(v)
	if !ok || math.IsNaN(n) {
		return true
	}
	if c.Min != nil && n < *c.Min {
		return true
	}
	if c.Max != nil && n > *c.Max {
		return true
	}
	return false
}

// ConsistencyCheck fails records whose rendered field does not start with
// Pattern. Null renders as "". An empty Pattern passes every record.
type ConsistencyCheck struct {
	Field   string
	Pattern string
}

func (ConsistencyCheck) Kind() string { return model.RuleConsistency }

func (c ConsistencyCheck) Fails(r record.Record) bool {
	return !strings.HasPrefix(record.Stringify(r[c.Field]), c.Pattern)
}

// UnrecognizedCheck never fails
type UnrecognizedCheck struct {
	RuleType string
}

func (c UnrecognizedCheck) Kind() string           { return c.RuleType }
func (UnrecognizedCheck) Fails(record.Record) bool { return false }

// ParseCheck builds the predicate for a rule
func ParseCheck(rule model.QualityRule) Check {
	switch rule.RuleType {
	case model.RuleCompleteness:
		return CompletenessCheck{Field: rule.Field}
	case model.RuleAccuracy:
		return AccuracyCheck{
			Field: rule.Field,
			Min:   bound(rule.Condition, "min"),
			Max:   bound(rule.Condition, "max"),
		}
	case model.RuleConsistency:
		pattern, _ := rule.Condition["pattern"].(string)
		return ConsistencyCheck{Field: rule.Field, Pattern: pattern}
	default:
		return UnrecognizedCheck{RuleType: rule.RuleType}
	}
}

func bound(cond map[string]interface{}, key string) *float64 {
	n, ok := utils.Numeric(cond[key])
	if !ok {
		return nil
	}
	return &n
}

// Report is the outcome of a validation pass. Results carry rule fields and
// counts only; IDs, run linkage and timestamps are stamped by the caller.
type Report struct {
	Results []model.QualityResult
	Metrics model.QualityMetrics
	// FailedRecords counts distinct records failing at least one rule
	FailedRecords int
}

// EvaluateRule checks every record of set against one rule. The score is the
// pass percentage rounded to two decimals; an empty set scores 100.
func EvaluateRule(set record.Set, rule model.QualityRule) model.QualityResult {
	return evaluate(set, rule, nil)
}

func evaluate(set record.Set, rule model.QualityRule, failedIdx []bool) model.QualityResult {
	check := ParseCheck(rule)
	failed := 0
	for i, r := range set {
		if check.Fails(r) {
			failed++
			if failedIdx != nil {
				failedIdx[i] = true
			}
		}
	}
	return model.QualityResult{
		RuleID:         rule.ID,
		RuleName:       rule.Name,
		Severity:       rule.Severity,
		Passed:         failed == 0,
		RecordsChecked: len(set),
		RecordsFailed:  failed,
		QualityScore:   passRate(len(set), failed),
	}
}

// Validate evaluates every rule in order and scores the pass with scorer.
// A nil scorer means UnweightedMean.
func Validate(set record.Set, rules []model.QualityRule, scorer Scorer) Report {
	if scorer == nil {
		scorer = UnweightedMean{}
	}
	failedIdx := make([]bool, len(set))
	results := make([]model.QualityResult, 0, len(rules))
	for _, rule := range rules {
		results = append(results, evaluate(set, rule, failedIdx))
	}

	failed := 0
	for _, f := range failedIdx {
		if f {
			failed++
		}
	}
	return Report{
		Results: results,
		Metrics: model.QualityMetrics{
			OverallQualityScore: scorer.Score(results),
			Scoring:             scorer.Name(),
		},
		FailedRecords: failed,
	}
}

func passRate(checked, failed int) float64 {
	if checked == 0 {
		return 100
	}
	return round2(float64(checked-failed) / float64(checked) * 100)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Scorer folds per-rule results into the overall quality score
type Scorer interface {
	Name() string
	Score(results []model.QualityResult) float64
}

// Scoring strategy names
const (
	ScoringUnweighted = "unweighted"
	ScoringSeverity   = "severity"
)

// UnweightedMean averages rule scores. No results scores 100.
type UnweightedMean struct{}

func (UnweightedMean) Name() string { return ScoringUnweighted }

func (UnweightedMean) Score(results []model.QualityResult) float64 {
	if len(results) == 0 {
		return 100
	}
	total := 0.0
	for _, r := range results {
		total += r.QualityScore
	}
	return round2(total / float64(len(results)))
}

// DefaultSeverityWeights ranks critical rules heaviest
var DefaultSeverityWeights = map[string]float64{
	model.SeverityCritical: 4,
	model.SeverityHigh:     3,
	model.SeverityMedium:   2,
	model.SeverityLow:      1,
}

// SeverityWeighted averages rule scores weighted by rule severity. Severities
// missing from Weights count with weight 1.
type SeverityWeighted struct {
	Weights map[string]float64
}

func (SeverityWeighted) Name() string { return ScoringSeverity }

func (s SeverityWeighted) Score(results []model.QualityResult) float64 {
	weights := s.Weights
	if weights == nil {
		weights = DefaultSeverityWeights
	}
	var total, sum float64
	for _, r := range results {
		w, ok := weights[r.Severity]
		if !ok {
			w = 1
		}
		total += w
		sum += w * r.QualityScore
	}
	if total == 0 {
		return 100
	}
	return round2(sum / total)
}

// ScorerByName resolves a configured strategy. "" selects the unweighted mean.
func ScorerByName(name string) (Scorer, error) {
	switch name {
	case "", ScoringUnweighted:
		return UnweightedMean{}, nil
	case ScoringSeverity:
		return SeverityWeighted{}, nil
	}
	return nil, fmt.Errorf("unknown scoring strategy %q", name)
}
