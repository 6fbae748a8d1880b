package buildopts

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewScopeCopiesMetadata(t *testing.T) {
	meta := map[string]any{"owner": "workspace"}
	scope := NewScope("target", ScopePriorityTarget,
		WithScopeLabel("Target options"),
		WithScopeMetadata(meta),
	)

	meta["owner"] = "mutated"

	if got := scope.Metadata["owner"]; got != "workspace" {
		t.Fatalf("expected metadata copy to remain 'workspace', got %q", got)
	}
	if scope.Label != "Target options" {
		t.Fatalf("label not set, got %q", scope.Label)
	}
}

func TestNewLayerClonesFragment(t *testing.T) {
	fragment := Fragment{
		"outputPath": "dist/app",
		"budgets":    map[string]any{"initial": "2mb"},
	}

	layer := NewLayer(NewScope("local", ScopePriorityLocal), fragment, WithLayerSource("angular.json"))

	fragment["budgets"].(map[string]any)["initial"] = "5mb"
	if got := layer.Fragment["budgets"].(map[string]any)["initial"]; got != "2mb" {
		t.Fatalf("expected layer fragment to remain immutable; got %q", got)
	}
	if layer.Source != "angular.json" {
		t.Fatalf("source not set, got %q", layer.Source)
	}
}

func TestNewStackOrdersAndValidates(t *testing.T) {
	overrides := NewLayer(NewScope("overrides", 300), Fragment{"a": 3})
	local := NewLayer(NewScope("local", 200), Fragment{"a": 2})
	target := NewLayer(NewScope("target", 100), Fragment{"a": 1})

	stack, err := NewStack(target, overrides, local)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	layers := stack.Layers()
	wantOrder := []string{"overrides", "local", "target"}
	for i, want := range wantOrder {
		if layers[i].Scope.Name != want {
			t.Fatalf("expected layer %d to be %q, got %q", i, want, layers[i].Scope.Name)
		}
	}

	if _, err := NewStack(local, NewLayer(NewScope("local", 50), nil)); !errors.Is(err, ErrDuplicateScopeName) {
		t.Fatalf("expected duplicate scope name error, got %v", err)
	}
	if _, err := NewStack(local, NewLayer(NewScope("other", 200), nil)); !errors.Is(err, ErrPriorityOrder) {
		t.Fatalf("expected priority order error, got %v", err)
	}
	if _, err := NewStack(NewLayer(NewScope("", 1), nil)); !errors.Is(err, ErrScopeNameRequired) {
		t.Fatalf("expected scope name error, got %v", err)
	}
}

func TestStackMergeFoldsWeakestToStrongest(t *testing.T) {
	stack, err := TargetLocalOverrides(
		NewLayer(Scope{}, Fragment{"outputPath": "dist/target", "aot": true, "assets": []any{"a.png"}}),
		NewLayer(Scope{}, Fragment{"outputPath": "dist/local", "aot": nil}),
		NewLayer(Scope{}, Fragment{"sourceMap": false}),
	)
	if err != nil {
		t.Fatalf("stack: %v", err)
	}

	merged, err := stack.Merge(MergeConfig{})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	want := Fragment{
		"outputPath": "dist/local",
		"aot":        true,
		"assets":     []any{"a.png"},
		"sourceMap":  false,
	}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged mismatch (-want +got):\n%s", diff)
	}
}

func TestStackMergeRunsStrategiesPerLayer(t *testing.T) {
	var calls []StrategyInput
	appendPlugins := StrategyFunc(func(in StrategyInput) (any, error) {
		calls = append(calls, in)
		base, _ := in.Base.([]any)
		override, _ := in.Override.([]any)
		return append(append([]any{}, base...), override...), nil
	})
	stack, err := TargetLocalOverrides(
		NewLayer(Scope{}, Fragment{"plugins": []any{"a"}}),
		NewLayer(Scope{}, Fragment{"plugins": []any{"b"}}),
		NewLayer(Scope{}, Fragment{"plugins": []any{"c"}}),
	)
	if err != nil {
		t.Fatalf("stack: %v", err)
	}

	merged, err := stack.Merge(MergeConfig{Strategies: Strategies{"plugins": appendPlugins}})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if diff := cmp.Diff([]any{"a", "b", "c"}, merged["plugins"]); diff != "" {
		t.Fatalf("plugins mismatch (-want +got):\n%s", diff)
	}
	if len(calls) != 2 {
		t.Fatalf("expected strategy to run once per overriding layer, got %d", len(calls))
	}
}

func TestStackMergeRequiresLayers(t *testing.T) {
	var stack *Stack
	if _, err := stack.Merge(MergeConfig{}); !errors.Is(err, ErrEmptyStack) {
		t.Fatalf("expected empty stack error, got %v", err)
	}
	empty, _ := NewStack()
	if _, err := empty.Merge(MergeConfig{}); !errors.Is(err, ErrEmptyStack) {
		t.Fatalf("expected empty stack error, got %v", err)
	}
}

func TestStackMergeWrapsStrategyErrors(t *testing.T) {
	boom := errors.New("boom")
	stack, err := NewStack(
		NewLayer(NewScope("base", 1), Fragment{"a": 1}),
		NewLayer(NewScope("top", 2), Fragment{"a": 2}),
	)
	if err != nil {
		t.Fatalf("stack: %v", err)
	}
	_, err = stack.Merge(MergeConfig{Strategies: Strategies{
		"a": StrategyFunc(func(StrategyInput) (any, error) { return nil, boom }),
	}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected strategy error, got %v", err)
	}
}
