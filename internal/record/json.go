package record

import (
	"bytes"
	"encoding/json"
)

// Normalize converts json.Number values, at any depth, to int when integral
// and float64 otherwise.
func Normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i)
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			out[k] = Normalize(e)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = Normalize(e)
		}
		return out
	}
	return v
}

// FromMap builds a record from a decoded JSON object
func FromMap(m map[string]interface{}) Record {
	rec := make(Record, len(m))
	for k, v := range m {
		rec[k] = Normalize(v)
	}
	return rec
}

// DecodeSet parses a JSON array of objects, keeping integers as int
func DecodeSet(data []byte) (Set, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw []map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	out := make(Set, len(raw))
	for i, m := range raw {
		out[i] = FromMap(m)
	}
	return out, nil
}
