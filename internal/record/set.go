package record

import (
	"go-quality-pipeline/pkg/utils"
)

// AggFunc names a group aggregation.
type AggFunc string

const (
	AggSum   AggFunc = "sum"
	AggAvg   AggFunc = "avg"
	AggCount AggFunc = "count"
)

// Valid reports whether fn is a supported aggregation.
func (fn AggFunc) Valid() bool {
	switch fn {
	case AggSum, AggAvg, AggCount:
		return true
	}
	return false
}

// Filter returns copies of the records for which pred holds, in input order.
func (s Set) Filter(pred func(Record) bool) Set {
	out := make(Set, 0, len(s))
	for _, r := range s {
		if pred(r) {
			out = append(out, r.Clone())
		}
	}
	return out
}

// DropRecordsWithAnyNull removes every record holding a nil in any field.
func (s Set) DropRecordsWithAnyNull() Set {
	return s.Filter(func(r Record) bool { return !r.HasNull() })
}

// Dedupe keeps the first record seen for each distinct combination of
// keyFields, preserving input order. An empty key list returns a copy.
func (s Set) Dedupe(keyFields []string) Set {
	if len(keyFields) == 0 {
		return s.Clone()
	}
	seen := newKeyIndex(len(s))
	return s.Filter(func(r Record) bool {
		_, fresh := seen.slot(tupleKey(r, keyFields))
		return fresh
	})
}

// ProjectSample returns copies of the first n records.
func (s Set) ProjectSample(n int) Set {
	if n < 0 {
		n = 0
	}
	if n > len(s) {
		n = len(s)
	}
	return s[:n].Clone()
}

// group accumulates one partition of a GroupAggregate.
type group struct {
	keys    Record
	sum     float64
	numeric int
	count   int
}

// GroupAggregate partitions the set by the tuple of byFields values and emits
// one record per partition, in order of first appearance, holding the group
// fields and targetField aggregated with fn. count counts non-null values;
// sum and avg consider numeric values only. The avg of a partition with no
// numeric values is nil. An unknown fn returns a copy of the set.
func (s Set) GroupAggregate(byFields []string, targetField string, fn AggFunc) Set {
	if !fn.Valid() || len(byFields) == 0 || targetField == "" {
		return s.Clone()
	}

	ix := newKeyIndex(len(s))
	groups := make([]*group, 0)
	for _, r := range s {
		slot, fresh := ix.slot(tupleKey(r, byFields))
		if fresh {
			keys := make(Record, len(byFields)+1)
			for _, f := range byFields {
				keys[f] = cloneValue(r[f])
			}
			groups = append(groups, &group{keys: keys})
		}
		g := groups[slot]

		v := r[targetField]
		if v == nil {
			continue
		}
		g.count++
		if n, ok := utils.Numeric(v); ok {
			g.sum += n
			g.numeric++
		}
	}

	out := make(Set, 0, ix.len())
	for _, g := range groups {
		rec := g.keys
		switch fn {
		case AggSum:
			rec[targetField] = g.sum
		case AggAvg:
			if g.numeric == 0 {
				rec[targetField] = nil
			} else {
				rec[targetField] = g.sum / float64(g.numeric)
			}
		case AggCount:
			rec[targetField] = g.count
		}
		out = append(out, rec)
	}
	return out
}
