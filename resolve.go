package buildopts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-buildopts/internal/metrics"
	"github.com/goliatone/go-buildopts/pkg/activity"
	"github.com/goliatone/go-buildopts/pkg/module"
)

const (
	// MergeStrategiesKey names the option block declaring expression
	// strategies for a resolution.
	MergeStrategiesKey = "mergeStrategies"
	// ReplacePluginsKey names the option enabling the replacePlugins flag.
	ReplacePluginsKey = "replacePlugins"
)

// Request describes one resolution: the target to inherit from, the local
// options and explicit overrides. Target is usually a "project:target[:conf]"
// string; anything else means no target.
type Request struct {
	Target    any
	Local     Source
	Overrides Fragment
}

// Resolver computes the final option set of a build invocation.
type Resolver struct {
	cfg       resolverConfig
	modules   *module.Resolver
	evaluator Evaluator
	emitter   *activity.Emitter
}

// NewResolver builds a Resolver. Without WithModuleResolver a module
// resolver with default loaders is created.
func NewResolver(opts ...Option) (*Resolver, error) {
	cfg := applyOptions(opts)
	if cfg.logger == nil {
		cfg.logger = noopLogger{}
	}
	if cfg.evaluatorLogger == nil {
		cfg.evaluatorLogger = noopEvaluatorLogger{}
	}
	if cfg.functions == nil {
		cfg.functions = DefaultFunctions()
	}
	if cfg.programCache == nil {
		cfg.programCache = NewProgramCache(DefaultProgramCacheSize)
	}

	modules := cfg.modules
	if modules == nil {
		var err error
		modules, err = module.NewResolver()
		if err != nil {
			return nil, err
		}
	}
	evaluator := cfg.evaluator
	if evaluator == nil {
		evaluator = NewEvaluator(cfg.engine, cfg.programCache, cfg.functions)
	}

	return &Resolver{
		cfg:       cfg,
		modules:   modules,
		evaluator: evaluator,
		emitter:   activity.NewEmitter(cfg.activityHooks, activity.Config{Enabled: true, Channel: cfg.activityChannel}),
	}, nil
}

// Modules returns the module resolver used by ModuleSource.
func (r *Resolver) Modules() *module.Resolver {
	return r.modules
}

// ModuleSource returns a Source loading path with the resolver's module
// resolver and tsconfig.
func (r *Resolver) ModuleSource(path string) Source {
	return ModuleSource{Path: path, TSConfig: r.cfg.tsconfig, Modules: r.modules}
}

// LoadOptions resolves options against the target named by its target key
// (browserTarget by default): the target's options are overridden by
// options.
func (r *Resolver) LoadOptions(ctx context.Context, options Fragment) (*Resolution, error) {
	return r.Resolve(ctx, Request{
		Target: options[r.cfg.targetKey],
		Local:  StaticSource(options),
	})
}

// Resolve fetches the target options and the local fragment concurrently,
// then merges target, local and overrides in that order of precedence. Any
// failure aborts the resolution before the merge.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Resolution, error) {
	start := time.Now()
	id := uuid.NewString()
	targetRef, _ := req.Target.(string)

	res, err := r.resolve(ctx, id, req)
	duration := time.Since(start)
	if err != nil {
		metrics.ResolveFailed.Inc()
		r.cfg.logger.LogResolve(ResolveEvent{ID: id, Target: targetRef, Duration: duration, Err: err})
		r.emitFailure(ctx, id, targetRef, err)
		return nil, err
	}

	metrics.ResolveCount.Inc()
	metrics.ResolveDuration.Observe(duration.Seconds())
	r.cfg.logger.LogResolve(ResolveEvent{ID: id, Target: targetRef, Keys: len(res.Options), Duration: duration})
	r.emitResolution(ctx, res)
	return res, nil
}

func (r *Resolver) resolve(ctx context.Context, id string, req Request) (*Resolution, error) {
	var remote, local Fragment
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fragment, err := FetchTargetOptions(gctx, r.cfg.targets, req.Target)
		if err != nil {
			return err
		}
		remote = fragment
		return nil
	})
	g.Go(func() error {
		if req.Local == nil {
			local = Fragment{}
			return nil
		}
		fragment, err := req.Local.Fragment(gctx)
		if err != nil {
			return err
		}
		local = fragment
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var target Target
	targetRef, _ := req.Target.(string)
	if targetRef != "" {
		target, _ = ParseTarget(targetRef)
	}

	localSource := "none"
	if req.Local != nil {
		localSource = sourceLabel(req.Local)
	}
	stack, err := TargetLocalOverrides(
		NewLayer(Scope{}, remote, WithLayerSource(targetRef)),
		NewLayer(Scope{}, local, WithLayerSource(localSource)),
		NewLayer(Scope{}, req.Overrides, WithLayerSource("overrides")),
	)
	if err != nil {
		return nil, err
	}

	cfg, err := r.mergeConfig(Merge(local, req.Overrides))
	if err != nil {
		return nil, err
	}
	merged, err := stack.Merge(cfg)
	if err != nil {
		return nil, err
	}

	return &Resolution{
		ID:        id,
		Target:    target,
		Options:   merged,
		stack:     stack,
		targetRef: targetRef,
	}, nil
}

// mergeConfig combines the configured strategies with the ones declared by
// the invocation's own options, which win on conflicts.
func (r *Resolver) mergeConfig(invocation Fragment) (MergeConfig, error) {
	cfg := MergeConfig{
		Strategies:     r.cfg.strategies.Clone(),
		ReplacePlugins: r.cfg.replacePlugins,
	}
	if replace, ok := invocation[ReplacePluginsKey].(bool); ok && replace {
		cfg.ReplacePlugins = true
	}
	declared, err := StrategiesFromMap(invocation[MergeStrategiesKey], r.evaluator, WithStrategyLogger(r.cfg.evaluatorLogger))
	if err != nil {
		return MergeConfig{}, fmt.Errorf("buildopts: %s: %w", MergeStrategiesKey, err)
	}
	if len(declared) > 0 && cfg.Strategies == nil {
		cfg.Strategies = Strategies{}
	}
	for key, strategy := range declared {
		cfg.Strategies[key] = strategy
	}
	return cfg, nil
}
