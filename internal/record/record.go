// Package record is the in-memory tabular model the pipeline engine operates
// on: schema-agnostic records collected into an ordered set.
package record

import (
	"encoding/json"
	"fmt"
	"strconv"

	"go-quality-pipeline/pkg/utils"
)

// Record is a schema-agnostic map for any data source. Values are strings,
// numbers, booleans, nil or nested maps.
type Record map[string]interface{}

// Set is an ordered sequence of records. Records need not share fields.
type Set []Record

// Value returns the value of field, or nil when the field is absent.
func (r Record) Value(field string) interface{} {
	return r[field]
}

// HasNull reports whether any field of the record holds nil.
func (r Record) HasNull() bool {
	for _, v := range r {
		if v == nil {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the record. Nested maps and slices are copied
// so callers never share mutable state with the source record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, nested := range t {
			m[k] = cloneValue(nested)
		}
		return m
	case Record:
		return t.Clone()
	case []interface{}:
		s := make([]interface{}, len(t))
		for i, nested := range t {
			s[i] = cloneValue(nested)
		}
		return s
	default:
		return v
	}
}

// Clone returns a deep copy of the set.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	for i, r := range s {
		out[i] = r.Clone()
	}
	return out
}

// Stringify renders a value the way quality checks see it: nil is the empty
// string, whole floats print without a fractional part.
func Stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case map[string]interface{}, Record, []interface{}:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
	if f, ok := utils.Numeric(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
