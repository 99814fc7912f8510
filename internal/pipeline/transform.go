package pipeline

import (
	"fmt"

	"go-quality-pipeline/internal/record"
)

// Transformation step tags as they appear in a pipeline definition
const (
	StepFilter      = "filter"
	StepAggregate   = "aggregate"
	StepRemoveNulls = "remove_nulls"
	StepDeduplicate = "deduplicate"
)

// Step is one decoded transformation. The set of variants is closed; a tag the
// engine does not know decodes to UnrecognizedStep, which is a no-op.
type Step interface {
	Kind() string
	Apply(in record.Set) record.Set
	step()
}

// FilterStep keeps records whose Field compares true against Value. Records
// where the field is null or of a different type than Value are dropped.
type FilterStep struct {
	Field    string
	Operator record.Operator
	Value    interface{}
}

func (FilterStep) Kind() string { return StepFilter }
func (FilterStep) step()        {}

func (s FilterStep) Apply(in record.Set) record.Set {
	if s.Field == "" || !s.Operator.Valid() {
		return in.Clone()
	}
	return in.Filter(func(r record.Record) bool {
		ok, _ := record.Compare(r[s.Field], s.Operator, s.Value)
		return ok
	})
}

// AggregateStep replaces the set with one record per GroupBy partition
type AggregateStep struct {
	GroupBy  []string
	Field    string
	Function record.AggFunc
}

func (AggregateStep) Kind() string { return StepAggregate }
func (AggregateStep) step()        {}

func (s AggregateStep) Apply(in record.Set) record.Set {
	return in.GroupAggregate(s.GroupBy, s.Field, s.Function)
}

// RemoveNullsStep drops every record with a null in any field
type RemoveNullsStep struct{}

func (RemoveNullsStep) Kind() string { return StepRemoveNulls }
func (RemoveNullsStep) step()        {}

func (RemoveNullsStep) Apply(in record.Set) record.Set {
	return in.DropRecordsWithAnyNull()
}

// DeduplicateStep keeps the first record per KeyFields tuple
type DeduplicateStep struct {
	KeyFields []string
}

func (DeduplicateStep) Kind() string { return StepDeduplicate }
func (DeduplicateStep) step()        {}

func (s DeduplicateStep) Apply(in record.Set) record.Set {
	return in.Dedupe(s.KeyFields)
}

// UnrecognizedStep carries an unknown tag through unchanged
type UnrecognizedStep struct {
	Type string
}

func (s UnrecognizedStep) Kind() string { return s.Type }
func (UnrecognizedStep) step()          {}

func (UnrecognizedStep) Apply(in record.Set) record.Set {
	return in.Clone()
}

// ParseStep decodes one transformation document. Missing or malformed
// parameters leave the step in a state that applies as a no-op.
func ParseStep(doc map[string]interface{}) Step {
	kind, _ := doc["type"].(string)
	switch kind {
	case StepFilter:
		cond, _ := doc["condition"].(map[string]interface{})
		field, _ := cond["field"].(string)
		op, _ := cond["operator"].(string)
		return FilterStep{Field: field, Operator: record.Operator(op), Value: cond["value"]}
	case StepAggregate:
		fn, _ := doc["function"].(string)
		if fn == "" {
			fn = string(record.AggSum)
		}
		field, _ := doc["field"].(string)
		return AggregateStep{
			GroupBy:  stringList(doc["group_by"]),
			Field:    field,
			Function: record.AggFunc(fn),
		}
	case StepRemoveNulls:
		return RemoveNullsStep{}
	case StepDeduplicate:
		return DeduplicateStep{KeyFields: stringList(doc["key_fields"])}
	default:
		return UnrecognizedStep{Type: kind}
	}
}

// ParseSteps decodes a pipeline's transformation list in order
func ParseSteps(docs []map[string]interface{}) []Step {
	steps := make([]Step, 0, len(docs))
	for _, doc := range docs {
		steps = append(steps, ParseStep(doc))
	}
	return steps
}

// ApplyTransformations folds steps over in, left to right. The input is never
// modified; an empty step list returns a copy.
func ApplyTransformations(in record.Set, steps []Step) record.Set {
	out := in.Clone()
	for _, s := range steps {
		out = s.Apply(out)
	}
	return out
}

// Transform decodes and applies a pipeline's transformation documents
func Transform(in record.Set, docs []map[string]interface{}) record.Set {
	return ApplyTransformations(in, ParseSteps(docs))
}

// stringList accepts a list of names in any of the shapes JSON, YAML and TOML
// decoders produce. A bare string is a one-element list.
func stringList(v interface{}) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []string:
		return append([]string(nil), t...)
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			} else if e != nil {
				out = append(out, fmt.Sprint(e))
			}
		}
		return out
	}
	return nil
}
