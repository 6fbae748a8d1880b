package buildopts

import (
	"context"
	"time"

	"github.com/goliatone/go-buildopts/internal/metrics"
)

// AssetsKey is the option post-processed by FetchTargetOptions.
const AssetsKey = "assets"

// TargetContext is the execution context able to look up the options a
// target was registered with.
type TargetContext interface {
	GetTargetOptions(ctx context.Context, target Target) (Fragment, error)
}

// TargetContextFunc adapts a function to TargetContext.
type TargetContextFunc func(context.Context, Target) (Fragment, error)

// GetTargetOptions implements TargetContext.
func (f TargetContextFunc) GetTargetOptions(ctx context.Context, target Target) (Fragment, error) {
	return f(ctx, target)
}

// AssetEntry is a copy rule produced from a raw asset path.
type AssetEntry struct {
	Input  string `json:"input" mapstructure:"input"`
	Output string `json:"output" mapstructure:"output"`
}

func (a AssetEntry) fragment() map[string]any {
	return map[string]any{"input": a.Input, "output": a.Output}
}

// FetchTargetOptions returns the options registered for the target named by
// ref. Anything other than a non-empty string yields an empty Fragment
// without consulting targets. String entries of the assets option are
// expanded into {input, output} copy rules whose output is the project.
// Lookup failures are returned as is.
func FetchTargetOptions(ctx context.Context, targets TargetContext, ref any) (Fragment, error) {
	reference, ok := ref.(string)
	if !ok || reference == "" {
		return Fragment{}, nil
	}
	target, err := ParseTarget(reference)
	if err != nil {
		return nil, err
	}
	if targets == nil {
		return nil, &NotFoundError{Target: target, What: "execution context"}
	}

	start := time.Now()
	options, err := targets.GetTargetOptions(ctx, target)
	metrics.TargetFetchDuration.WithLabelValues(target.Project, target.Target).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.TargetFetchFailed.WithLabelValues(target.Project, target.Target).Inc()
		return nil, err
	}

	out := options.Clone()
	if assets, ok := out[AssetsKey]; ok && assets != nil {
		out[AssetsKey] = expandAssets(assets, target.Project)
	}
	return out, nil
}

func expandAssets(assets any, output string) any {
	switch entries := assets.(type) {
	case []string:
		expanded := make([]any, 0, len(entries))
		for _, input := range entries {
			expanded = append(expanded, AssetEntry{Input: input, Output: output}.fragment())
		}
		return expanded
	case []any:
		expanded := make([]any, 0, len(entries))
		for _, entry := range entries {
			if input, ok := entry.(string); ok {
				expanded = append(expanded, AssetEntry{Input: input, Output: output}.fragment())
				continue
			}
			expanded = append(expanded, entry)
		}
		return expanded
	default:
		return assets
	}
}
