package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// ErrInvalid marks input that cannot be applied to a stored entity
var ErrInvalid = errors.New("invalid input")

// overlay sets the allowed keys of patch onto dst, a pointer to a model
// struct, by round-tripping it through its JSON form. Map and slice fields
// named in patch are replaced, not merged. Other keys are ignored.
func overlay(dst interface{}, patch map[string]interface{}, allowed []string) error {
	raw, err := json.Marshal(dst)
	if err != nil {
		return fmt.Errorf("encode current: %w", err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode current: %w", err)
	}
	for _, key := range allowed {
		if v, ok := patch[key]; ok {
			doc[key] = v
		}
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	target := reflect.ValueOf(dst).Elem()
	fresh := reflect.New(target.Type())
	if err := json.Unmarshal(merged, fresh.Interface()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	target.Set(fresh.Elem())
	return nil
}
