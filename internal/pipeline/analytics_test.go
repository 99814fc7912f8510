package pipeline

import (
	"errors"
	"reflect"
	"testing"

	"go-quality-pipeline/internal/record"
)

func TestExecuteQuery(t *testing.T) {
	samples := record.Set{
		{"plant_id": "Plant_ATL", "production_volume": 100.0},
		{"plant_id": "Plant_NYC", "production_volume": 40.0},
		{"plant_id": "Plant_ATL", "production_volume": 50.0},
	}

	t.Run("group by avg", func(t *testing.T) {
		got, err := ExecuteQuery(samples, AnalyticsQuery{Type: QueryGroupBy, GroupField: "plant_id", AggField: "production_volume", AggFunc: "avg"})
		if err != nil {
			t.Fatalf("ExecuteQuery: %v", err)
		}
		want := record.Set{
			{"plant_id": "Plant_ATL", "production_volume": 75.0},
			{"plant_id": "Plant_NYC", "production_volume": 40.0},
		}
		if !reflect.DeepEqual(got.Rows, want) || got.RowCount != 2 {
			t.Fatalf("rows = %#v", got.Rows)
		}
		if !reflect.DeepEqual(got.Columns, []string{"plant_id", "production_volume"}) {
			t.Fatalf("columns = %v", got.Columns)
		}
	})

	t.Run("group by orders rows by key", func(t *testing.T) {
		mixed := record.Set{
			{"line": "L2", "units": 1.0, "shift": "b"},
			{"line": nil, "units": 2.0},
			{"line": 10, "units": 3.0},
			{"line": "L1", "units": 4.0},
			{"line": 2.5, "units": 5.0},
			{"line": "L2", "units": 6.0},
		}
		got, err := ExecuteQuery(mixed, AnalyticsQuery{Type: QueryGroupBy, GroupField: "line", AggField: "units"})
		if err != nil {
			t.Fatalf("ExecuteQuery: %v", err)
		}
		var keys []interface{}
		for _, r := range got.Rows {
			keys = append(keys, r["line"])
		}
		if !reflect.DeepEqual(keys, []interface{}{2.5, 10, "L1", "L2", nil}) {
			t.Fatalf("group keys = %#v", keys)
		}
		if got.Rows[3]["units"] != 7.0 {
			t.Fatalf("L2 sum = %v", got.Rows[3]["units"])
		}
		if !reflect.DeepEqual(got.Columns, []string{"line", "units"}) {
			t.Fatalf("columns = %v", got.Columns)
		}
	})

	t.Run("group field leads columns", func(t *testing.T) {
		got, err := ExecuteQuery(samples, AnalyticsQuery{Type: QueryGroupBy, GroupField: "production_volume", AggField: "plant_id", AggFunc: "count"})
		if err != nil {
			t.Fatalf("ExecuteQuery: %v", err)
		}
		if !reflect.DeepEqual(got.Columns, []string{"production_volume", "plant_id"}) {
			t.Fatalf("columns = %v", got.Columns)
		}
		if got.Rows[0]["production_volume"] != 40.0 || got.Rows[2]["production_volume"] != 100.0 {
			t.Fatalf("rows = %#v", got.Rows)
		}
	})

	t.Run("group by missing fields falls back to select all", func(t *testing.T) {
		got, err := ExecuteQuery(samples, AnalyticsQuery{Type: QueryGroupBy, GroupField: "plant_id"})
		if err != nil || got.RowCount != 3 {
			t.Fatalf("got %#v, %v", got, err)
		}
	})

	t.Run("unsupported aggregation", func(t *testing.T) {
		_, err := ExecuteQuery(samples, AnalyticsQuery{Type: QueryGroupBy, GroupField: "plant_id", AggField: "production_volume", AggFunc: "median"})
		if !errors.Is(err, ErrBadQuery) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("empty", func(t *testing.T) {
		got, err := ExecuteQuery(nil, AnalyticsQuery{Type: QuerySelectAll})
		if err != nil || got.RowCount != 0 || got.Rows == nil || len(got.Columns) != 0 {
			t.Fatalf("got %#v, %v", got, err)
		}
	})
}

func TestExecuteQueryCapsRows(t *testing.T) {
	samples := make(record.Set, 250)
	for i := range samples {
		samples[i] = record.Record{"i": i}
	}
	got, err := ExecuteQuery(samples, AnalyticsQuery{Type: QuerySelectAll})
	if err != nil {
		t.Fatal(err)
	}
	if got.RowCount != MaxQueryRows || got.Rows[99]["i"] != 99 {
		t.Fatalf("row count %d", got.RowCount)
	}
}
