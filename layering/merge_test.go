package layering

import (
	"reflect"
	"testing"
)

func TestMergeLayersCases(t *testing.T) {
	cases := []struct {
		name   string
		layers []map[string]any
		expect map[string]any
	}{
		{
			name: "stronger scalar wins",
			layers: []map[string]any{
				{"optimization": true},
				{"optimization": false, "aot": true},
			},
			expect: map[string]any{"optimization": true, "aot": true},
		},
		{
			name: "nested mappings merge key by key",
			layers: []map[string]any{
				{"budgets": map[string]any{"initial": "2mb"}},
				{"budgets": map[string]any{"initial": "1mb", "anyComponentStyle": "6kb"}},
			},
			expect: map[string]any{"budgets": map[string]any{"initial": "2mb", "anyComponentStyle": "6kb"}},
		},
		{
			name: "nil never erases",
			layers: []map[string]any{
				{"outputPath": nil},
				{"outputPath": "dist/app"},
			},
			expect: map[string]any{"outputPath": "dist/app"},
		},
		{
			name: "lists are replaced",
			layers: []map[string]any{
				{"scripts": []any{"b.js"}},
				{"scripts": []any{"a.js", "c.js"}},
			},
			expect: map[string]any{"scripts": []any{"b.js"}},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := MergeLayers(tc.layers...)
			if !reflect.DeepEqual(tc.expect, got) {
				t.Errorf("merged fragment mismatch:\nwant: %#v\n got: %#v", tc.expect, got)
			}
		})
	}
}

func TestMergeLayersZeroInput(t *testing.T) {
	if got := MergeLayers[map[string]any](); got != nil {
		t.Fatalf("expected MergeLayers() to return nil map, got %+v", got)
	}
}

func TestCloneDetachesNestedValues(t *testing.T) {
	original := map[string]any{
		"assets": []any{map[string]any{"input": "src/assets"}},
	}
	cloned := Clone(original)

	cloned["assets"].([]any)[0].(map[string]any)["input"] = "mutated"
	if got := original["assets"].([]any)[0].(map[string]any)["input"]; got != "src/assets" {
		t.Fatalf("expected original to stay untouched, got %v", got)
	}
}

func TestDeepMergeHandlesNilSides(t *testing.T) {
	if got := DeepMerge(nil, map[string]any{"a": 1}); !reflect.DeepEqual(got, map[string]any{"a": 1}) {
		t.Fatalf("unexpected merge with nil strong: %#v", got)
	}
	if got := DeepMerge("x", nil); got != "x" {
		t.Fatalf("unexpected merge with nil weak: %#v", got)
	}
	got := DeepMerge(map[string]any{"b": 2}, map[string]any{"a": 1})
	if !reflect.DeepEqual(got, map[string]any{"a": 1, "b": 2}) {
		t.Fatalf("unexpected deep merge: %#v", got)
	}
}

type fragment map[string]any

func TestDeepMergeAcrossNamedMapTypes(t *testing.T) {
	got := DeepMerge(
		fragment{"optimization": true, "budgets": fragment{"initial": "2mb"}},
		map[string]any{"outputPath": "dist", "budgets": map[string]any{"anyComponentStyle": "6kb"}},
	)
	want := fragment{
		"optimization": true,
		"outputPath":   "dist",
		"budgets":      fragment{"initial": "2mb", "anyComponentStyle": "6kb"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("weak keys dropped across map types: %#v", got)
	}

	got = DeepMerge(map[string]any{"a": 1}, fragment{"b": 2})
	if !reflect.DeepEqual(got, map[string]any{"a": 1, "b": 2}) {
		t.Fatalf("unexpected merge of fragment into plain map: %#v", got)
	}

	got = DeepMerge(map[string]int{"a": 1}, map[string]string{"b": "x"})
	if !reflect.DeepEqual(got, map[string]int{"a": 1}) {
		t.Fatalf("incompatible weak entries must be skipped: %#v", got)
	}
}
