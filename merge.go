package buildopts

import (
	"fmt"

	"github.com/goliatone/go-buildopts/layering"
)

// StrategyInput is what a merge strategy sees for one option.
type StrategyInput struct {
	Key            string
	Base           any
	HasBase        bool
	Override       any
	ReplacePlugins bool
}

// Strategy computes the merged value of a single option in place of the
// default "override replaces base" rule.
type Strategy interface {
	Combine(input StrategyInput) (any, error)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(StrategyInput) (any, error)

// Combine implements Strategy.
func (f StrategyFunc) Combine(input StrategyInput) (any, error) {
	if f == nil {
		return input.Override, nil
	}
	return f(input)
}

// Strategies maps option names to their merge strategy.
type Strategies map[string]Strategy

// Clone returns a copy of s without nil entries.
func (s Strategies) Clone() Strategies {
	if len(s) == 0 {
		return nil
	}
	out := make(Strategies, len(s))
	for key, strategy := range s {
		if strategy != nil {
			out[key] = strategy
		}
	}
	return out
}

// MergeConfig configures MergeWith. The zero value merges shallowly with no
// strategies.
type MergeConfig struct {
	Strategies     Strategies
	ReplacePlugins bool
}

// Merge combines base and override: every option defined in override replaces
// the one in base, options override leaves absent keep their base value.
// Neither input is modified.
func Merge(base, override Fragment) Fragment {
	merged, _ := MergeWith(base, override, MergeConfig{})
	return merged
}

// MergeWith is Merge with per-option strategies. A strategy runs only for
// options override defines; its error aborts the merge.
func MergeWith(base, override Fragment, cfg MergeConfig) (Fragment, error) {
	merged := base.Clone()
	for _, key := range override.Keys() {
		value := override[key]
		if value == nil {
			continue
		}
		strategy := cfg.Strategies[key]
		if strategy == nil {
			merged[key] = layering.Clone(value)
			continue
		}
		baseValue, hasBase := base[key]
		result, err := strategy.Combine(StrategyInput{
			Key:            key,
			Base:           layering.Clone(baseValue),
			HasBase:        hasBase && baseValue != nil,
			Override:       layering.Clone(value),
			ReplacePlugins: cfg.ReplacePlugins,
		})
		if err != nil {
			return nil, fmt.Errorf("buildopts: merge %q: %w", key, err)
		}
		merged[key] = result
	}
	return merged, nil
}

// DeepMerge returns a strategy that merges nested mappings recursively, the
// override winning on conflicts. Lists and scalars are still replaced.
func DeepMerge() Strategy {
	return StrategyFunc(func(input StrategyInput) (any, error) {
		return layering.DeepMerge(input.Override, input.Base), nil
	})
}
