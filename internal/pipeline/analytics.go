package pipeline

import (
	"errors"
	"fmt"
	"sort"

	"go-quality-pipeline/internal/record"
	"go-quality-pipeline/pkg/utils"
)

// MaxQueryRows caps the rows returned by ExecuteQuery
const MaxQueryRows = 100

// Query types
const (
	QuerySelectAll = "select_all"
	QueryGroupBy   = "group_by"
)

// ErrBadQuery wraps every rejected analytics query
var ErrBadQuery = errors.New("invalid query")

// AnalyticsQuery is the body of POST /api/analytics/query
type AnalyticsQuery struct {
	Type       string `json:"type"`
	GroupField string `json:"group_field,omitempty"`
	AggField   string `json:"agg_field,omitempty"`
	AggFunc    string `json:"agg_func,omitempty"`
}

// QueryResult is a tabular answer over stored samples
type QueryResult struct {
	Columns  []string   `json:"columns"`
	Rows     record.Set `json:"rows"`
	RowCount int        `json:"row_count"`
}

// ExecuteQuery runs q over the combined sample records. group_by aggregates
// AggField per GroupField, ordered by group key, with columns group field
// first; any other type, or a group_by missing either field, returns the
// records as-is with sorted columns.
func ExecuteQuery(samples record.Set, q AnalyticsQuery) (QueryResult, error) {
	rows := samples
	var cols []string
	if q.Type == QueryGroupBy && q.GroupField != "" && q.AggField != "" {
		fn := record.AggFunc(q.AggFunc)
		if q.AggFunc == "" {
			fn = record.AggSum
		}
		if !fn.Valid() {
			return QueryResult{}, fmt.Errorf("%w: unsupported agg_func %q", ErrBadQuery, q.AggFunc)
		}
		rows = samples.GroupAggregate([]string{q.GroupField}, q.AggField, fn)
		sort.SliceStable(rows, func(i, j int) bool {
			return groupKeyLess(rows[i][q.GroupField], rows[j][q.GroupField])
		})
		if len(rows) > 0 {
			cols = []string{q.GroupField}
			if q.AggField != q.GroupField {
				cols = append(cols, q.AggField)
			}
		}
	}

	if len(rows) > MaxQueryRows {
		rows = rows[:MaxQueryRows]
	}
	rows = rows.Clone()
	if rows == nil {
		rows = record.Set{}
	}
	if cols == nil {
		cols = Columns(rows)
	}
	return QueryResult{Columns: cols, Rows: rows, RowCount: len(rows)}, nil
}

// groupKeyLess orders numbers before strings before anything else, with
// nil keys last. Keys of the same kind compare naturally.
func groupKeyLess(a, b interface{}) bool {
	if less, ok := record.Compare(a, record.OpLess, b); ok {
		return less
	}
	ra, rb := keyRank(a), keyRank(b)
	if ra != rb {
		return ra < rb
	}
	return record.Stringify(a) < record.Stringify(b)
}

func keyRank(v interface{}) int {
	if v == nil {
		return 3
	}
	if _, ok := utils.Numeric(v); ok {
		return 0
	}
	if _, ok := v.(string); ok {
		return 1
	}
	return 2
}
