package buildopts

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"
)

func TestMerge(t *testing.T) {
	cases := []struct {
		name     string
		base     Fragment
		override Fragment
		want     Fragment
	}{
		{
			name:     "override wins",
			base:     Fragment{"outputPath": "dist/base", "aot": true},
			override: Fragment{"outputPath": "dist/override"},
			want:     Fragment{"outputPath": "dist/override", "aot": true},
		},
		{
			name:     "absent override keeps base",
			base:     Fragment{"aot": true},
			override: Fragment{"aot": nil},
			want:     Fragment{"aot": true},
		},
		{
			name:     "falsy override still wins",
			base:     Fragment{"aot": true, "index": "src/index.html", "budget": 3},
			override: Fragment{"aot": false, "index": "", "budget": 0},
			want:     Fragment{"aot": false, "index": "", "budget": 0},
		},
		{
			name:     "nested values are replaced not merged",
			base:     Fragment{"optimization": map[string]any{"scripts": true, "styles": true}},
			override: Fragment{"optimization": map[string]any{"styles": false}},
			want:     Fragment{"optimization": map[string]any{"styles": false}},
		},
		{
			name:     "keys from both sides",
			base:     Fragment{"a": 1},
			override: Fragment{"b": 2},
			want:     Fragment{"a": 1, "b": 2},
		},
		{
			name:     "nil inputs",
			base:     nil,
			override: nil,
			want:     Fragment{},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := Merge(tc.base, tc.override)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("merge mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	base := Fragment{"assets": []any{"a.png"}, "budgets": map[string]any{"initial": "2mb"}}
	override := Fragment{"styles": []any{"x.scss"}}

	merged := Merge(base, override)
	merged["assets"].([]any)[0] = "changed"
	merged["budgets"].(map[string]any)["initial"] = "9mb"
	merged["styles"].([]any)[0] = "changed"

	if base["assets"].([]any)[0] != "a.png" || base["budgets"].(map[string]any)["initial"] != "2mb" {
		t.Fatalf("base mutated through merge result: %#v", base)
	}
	if override["styles"].([]any)[0] != "x.scss" {
		t.Fatalf("override mutated through merge result: %#v", override)
	}
}

func TestMergeWithStrategies(t *testing.T) {
	var seen StrategyInput
	record := StrategyFunc(func(in StrategyInput) (any, error) {
		seen = in
		return "combined", nil
	})

	got, err := MergeWith(
		Fragment{"plugins": []any{"a"}, "other": 1},
		Fragment{"plugins": []any{"b"}, "other": 2},
		MergeConfig{Strategies: Strategies{"plugins": record}, ReplacePlugins: true},
	)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	want := Fragment{"plugins": "combined", "other": 2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
	wantInput := StrategyInput{
		Key:            "plugins",
		Base:           []any{"a"},
		HasBase:        true,
		Override:       []any{"b"},
		ReplacePlugins: true,
	}
	if diff := cmp.Diff(wantInput, seen); diff != "" {
		t.Fatalf("strategy input mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeWithStrategySkipsAbsentOverride(t *testing.T) {
	called := false
	strategy := StrategyFunc(func(in StrategyInput) (any, error) {
		called = true
		return nil, nil
	})

	got, err := MergeWith(
		Fragment{"plugins": []any{"a"}},
		Fragment{"plugins": nil},
		MergeConfig{Strategies: Strategies{"plugins": strategy}},
	)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if called {
		t.Fatalf("strategy must not run for an absent override")
	}
	if diff := cmp.Diff(Fragment{"plugins": []any{"a"}}, got); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeWithStrategyWithoutBase(t *testing.T) {
	var seen StrategyInput
	_, err := MergeWith(Fragment{"styles": nil}, Fragment{"styles": []any{"x"}}, MergeConfig{
		Strategies: Strategies{"styles": StrategyFunc(func(in StrategyInput) (any, error) {
			seen = in
			return in.Override, nil
		})},
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if seen.HasBase || seen.Base != nil {
		t.Fatalf("expected no base for a nil base value, got %+v", seen)
	}
}

func TestMergeWithStrategyError(t *testing.T) {
	boom := errors.New("boom")
	_, err := MergeWith(Fragment{}, Fragment{"a": 1}, MergeConfig{
		Strategies: Strategies{"a": StrategyFunc(func(StrategyInput) (any, error) { return nil, boom })},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected strategy error, got %v", err)
	}
}

func TestDeepMergeStrategy(t *testing.T) {
	got, err := MergeWith(
		Fragment{"optimization": map[string]any{"scripts": true, "styles": map[string]any{"minify": true, "inlineCritical": true}}},
		Fragment{"optimization": map[string]any{"styles": map[string]any{"inlineCritical": false}}},
		MergeConfig{Strategies: Strategies{"optimization": DeepMerge()}},
	)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	want := Fragment{"optimization": map[string]any{
		"scripts": true,
		"styles":  map[string]any{"minify": true, "inlineCritical": false},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}

func fragmentGen() *rapid.Generator[Fragment] {
	scalar := rapid.OneOf(
		rapid.Int().AsAny(),
		rapid.String().AsAny(),
		rapid.Bool().AsAny(),
		rapid.Just[any](nil),
	)
	value := rapid.OneOf(
		scalar,
		rapid.SliceOfN(rapid.String().AsAny(), 0, 3).AsAny(),
		rapid.MapOfN(rapid.StringMatching(`[a-z]{1,3}`), rapid.Int().AsAny(), 0, 3).AsAny(),
	)
	return rapid.Custom(func(t *rapid.T) Fragment {
		return Fragment(rapid.MapOfN(rapid.StringMatching(`[a-e]{1,2}`), value, 0, 8).Draw(t, "fragment"))
	})
}

func TestMergeProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := fragmentGen().Draw(t, "base")
		override := fragmentGen().Draw(t, "override")
		baseBefore := base.Clone()
		overrideBefore := override.Clone()

		merged := Merge(base, override)

		for key, value := range base {
			if override[key] != nil {
				continue
			}
			if !reflect.DeepEqual(merged[key], value) {
				t.Fatalf("key %q: base value %#v lost, got %#v", key, value, merged[key])
			}
		}
		for key, value := range override {
			if value == nil {
				continue
			}
			if !reflect.DeepEqual(merged[key], value) {
				t.Fatalf("key %q: override value %#v not applied, got %#v", key, value, merged[key])
			}
		}
		for key := range merged {
			_, inBase := base[key]
			_, inOverride := override[key]
			if !inBase && !inOverride {
				t.Fatalf("key %q appeared from nowhere", key)
			}
		}
		if !reflect.DeepEqual(base, baseBefore) || !reflect.DeepEqual(override, overrideBefore) {
			t.Fatalf("merge mutated its inputs")
		}
	})
}

func TestMergeWithEmptyOverrideIsIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := fragmentGen().Draw(t, "base")
		if got := Merge(base, Fragment{}); !reflect.DeepEqual(got, base.Clone()) {
			t.Fatalf("merge(base, {}) = %#v, want %#v", got, base)
		}
	})
}

func TestMergeStrategyResultProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := fragmentGen().Draw(t, "base")
		override := fragmentGen().Draw(t, "override")
		key := rapid.StringMatching(`[a-e]{1,2}`).Draw(t, "key")
		marker := rapid.Int().Draw(t, "marker")

		merged, err := MergeWith(base, override, MergeConfig{Strategies: Strategies{
			key: StrategyFunc(func(StrategyInput) (any, error) { return marker, nil }),
		}})
		if err != nil {
			t.Fatalf("merge: %v", err)
		}
		if override[key] != nil && merged[key] != marker {
			t.Fatalf("key %q: expected strategy output %d, got %#v", key, marker, merged[key])
		}
		if override[key] == nil && !reflect.DeepEqual(merged[key], base[key]) {
			t.Fatalf("key %q: strategy ran without an override", key)
		}
	})
}
