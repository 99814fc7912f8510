package record

import (
	"go-quality-pipeline/pkg/utils"
)

// Operator is a filter comparison operator.
type Operator string

const (
	OpGreater  Operator = ">"
	OpLess     Operator = "<"
	OpEqual    Operator = "=="
	OpNotEqual Operator = "!="
)

// Valid reports whether op is one of the supported operators.
func (op Operator) Valid() bool {
	switch op {
	case OpGreater, OpLess, OpEqual, OpNotEqual:
		return true
	}
	return false
}

// Compare evaluates `left op right`. The second result is false when the
// comparison is not well-typed: a nil operand, mismatched kinds, ordering on
// booleans, or nested values. Callers treat that as "does not match".
func Compare(left interface{}, op Operator, right interface{}) (bool, bool) {
	if left == nil || right == nil {
		return false, false
	}

	if lf, ok := utils.Numeric(left); ok {
		rf, ok := utils.Numeric(right)
		if !ok {
			return false, false
		}
		switch op {
		case OpGreater:
			return lf > rf, true
		case OpLess:
			return lf < rf, true
		case OpEqual:
			return lf == rf, true
		case OpNotEqual:
			return lf != rf, true
		}
		return false, false
	}

	switch l := left.(type) {
	case string:
		r, ok := right.(string)
		if !ok {
			return false, false
		}
		switch op {
		case OpGreater:
			return l > r, true
		case OpLess:
			return l < r, true
		case OpEqual:
			return l == r, true
		case OpNotEqual:
			return l != r, true
		}
	case bool:
		r, ok := right.(bool)
		if !ok {
			return false, false
		}
		switch op {
		case OpEqual:
			return l == r, true
		case OpNotEqual:
			return l != r, true
		}
	}
	return false, false
}
