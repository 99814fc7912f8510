package pipeline

import (
	"reflect"
	"testing"

	"go-quality-pipeline/internal/record"
)

func TestFilterThenDedupe(t *testing.T) {
	in := record.Set{
		{"id": 1, "v": 90},
		{"id": 2, "v": 85},
		{"id": 1, "v": 95},
		{"id": 3, "v": 70},
	}
	docs := []map[string]interface{}{
		{"type": "filter", "condition": map[string]interface{}{"field": "v", "operator": ">", "value": 80.0}},
		{"type": "deduplicate", "key_fields": []interface{}{"id"}},
	}

	got := Transform(in, docs)
	want := record.Set{{"id": 1, "v": 90}, {"id": 2, "v": 85}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestApplyTransformationsIdentity(t *testing.T) {
	in := record.Set{{"a": 1}, {"a": nil}}
	got := ApplyTransformations(in, nil)
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("got %#v want %#v", got, in)
	}
	got[0]["a"] = 2
	if in[0]["a"] != 1 {
		t.Fatalf("identity result aliases input")
	}
}

func TestRemoveNullsIdempotent(t *testing.T) {
	in := record.Set{{"a": 1, "b": nil}, {"a": 2, "b": "x"}, {"a": nil}}
	once := ApplyTransformations(in, []Step{RemoveNullsStep{}})
	twice := ApplyTransformations(in, []Step{RemoveNullsStep{}, RemoveNullsStep{}})
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("once %#v twice %#v", once, twice)
	}
	if len(once) != 1 {
		t.Fatalf("expected 1 record, got %#v", once)
	}
}

func TestFilterDropsNullAndMismatchedTypes(t *testing.T) {
	in := record.Set{
		{"q": 90.5},
		{"q": nil},
		{"q": "95"},
		{},
		{"q": 81},
	}
	got := FilterStep{Field: "q", Operator: record.OpGreater, Value: 80}.Apply(in)
	want := record.Set{{"q": 90.5}, {"q": 81}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestParseStep(t *testing.T) {
	cases := []struct {
		name string
		doc  map[string]interface{}
		want Step
	}{
		{
			name: "filter",
			doc:  map[string]interface{}{"type": "filter", "condition": map[string]interface{}{"field": "quality_score", "operator": ">", "value": 80}},
			want: FilterStep{Field: "quality_score", Operator: record.OpGreater, Value: 80},
		},
		{
			name: "filter without condition",
			doc:  map[string]interface{}{"type": "filter"},
			want: FilterStep{},
		},
		{
			name: "aggregate defaults to sum",
			doc:  map[string]interface{}{"type": "aggregate", "group_by": []interface{}{"plant_id", "product"}, "field": "production_volume"},
			want: AggregateStep{GroupBy: []string{"plant_id", "product"}, Field: "production_volume", Function: record.AggSum},
		},
		{
			name: "aggregate with string group",
			doc:  map[string]interface{}{"type": "aggregate", "group_by": "plant_id", "field": "v", "function": "avg"},
			want: AggregateStep{GroupBy: []string{"plant_id"}, Field: "v", Function: record.AggAvg},
		},
		{
			name: "remove nulls",
			doc:  map[string]interface{}{"type": "remove_nulls"},
			want: RemoveNullsStep{},
		},
		{
			name: "deduplicate string list",
			doc:  map[string]interface{}{"type": "deduplicate", "key_fields": []string{"record_id"}},
			want: DeduplicateStep{KeyFields: []string{"record_id"}},
		},
		{
			name: "unknown",
			doc:  map[string]interface{}{"type": "pivot"},
			want: UnrecognizedStep{Type: "pivot"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseStep(tc.doc)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ParseStep = %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestNoOpSteps(t *testing.T) {
	in := record.Set{{"a": 1, "b": "x"}, {"a": 1, "b": "x"}}
	steps := []Step{
		UnrecognizedStep{Type: "pivot"},
		FilterStep{},
		FilterStep{Field: "a", Operator: record.Operator(">=")},
		DeduplicateStep{},
		AggregateStep{GroupBy: []string{"a"}, Field: "b", Function: record.AggFunc("median")},
		AggregateStep{Field: "b", Function: record.AggSum},
	}
	for _, s := range steps {
		if got := s.Apply(in); !reflect.DeepEqual(got, in) {
			t.Errorf("%T %+v changed the set: %#v", s, s, got)
		}
	}
}

func TestAggregateStep(t *testing.T) {
	in := record.Set{
		{"plant_id": "Plant_ATL", "product": "Product_A", "production_volume": 100.0, "batch_id": "BATCH_1"},
		{"plant_id": "Plant_ATL", "product": "Product_A", "production_volume": 50.5, "batch_id": "BATCH_2"},
		{"plant_id": "Plant_NYC", "product": "Product_A", "production_volume": 10.0, "batch_id": "BATCH_3"},
	}
	got := Transform(in, []map[string]interface{}{
		{"type": "aggregate", "group_by": []interface{}{"plant_id", "product"}, "field": "production_volume", "function": "sum"},
	})
	want := record.Set{
		{"plant_id": "Plant_ATL", "product": "Product_A", "production_volume": 150.5},
		{"plant_id": "Plant_NYC", "product": "Product_A", "production_volume": 10.0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}
