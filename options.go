package buildopts

import (
	"github.com/goliatone/go-buildopts/pkg/activity"
	"github.com/goliatone/go-buildopts/pkg/module"
)

// DefaultTargetKey is the option naming the target LoadOptions inherits from.
const DefaultTargetKey = "browserTarget"

// Option configures a Resolver.
type Option func(*resolverConfig)

type resolverConfig struct {
	targets         TargetContext
	modules         *module.Resolver
	tsconfig        string
	targetKey       string
	strategies      Strategies
	replacePlugins  bool
	engine          Engine
	evaluator       Evaluator
	programCache    ProgramCache
	functions       *FunctionRegistry
	logger          Logger
	evaluatorLogger EvaluatorLogger
	activityHooks   activity.Hooks
	activityChannel string
}

func applyOptions(opts []Option) resolverConfig {
	cfg := resolverConfig{
		targetKey: DefaultTargetKey,
		engine:    EngineExpr,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithTargetContext sets the execution context target options are fetched
// from.
func WithTargetContext(targets TargetContext) Option {
	return func(cfg *resolverConfig) {
		cfg.targets = targets
	}
}

// WithModuleResolver shares a module resolver, and with it its Env, with
// the Resolver's module sources.
func WithModuleResolver(modules *module.Resolver) Option {
	return func(cfg *resolverConfig) {
		cfg.modules = modules
	}
}

// WithTSConfig sets the tsconfig TypeScript option files compile against.
func WithTSConfig(path string) Option {
	return func(cfg *resolverConfig) {
		cfg.tsconfig = path
	}
}

// WithTargetKey changes the option LoadOptions reads the target from.
func WithTargetKey(key string) Option {
	return func(cfg *resolverConfig) {
		if key != "" {
			cfg.targetKey = key
		}
	}
}

// WithStrategies registers merge strategies. Later calls add to, and
// override, earlier ones.
func WithStrategies(strategies Strategies) Option {
	return func(cfg *resolverConfig) {
		for key, strategy := range strategies {
			WithStrategy(key, strategy)(cfg)
		}
	}
}

// WithStrategy registers strategy for key.
func WithStrategy(key string, strategy Strategy) Option {
	return func(cfg *resolverConfig) {
		if key == "" || strategy == nil {
			return
		}
		if cfg.strategies == nil {
			cfg.strategies = Strategies{}
		}
		cfg.strategies[key] = strategy
	}
}

// WithReplacePlugins sets the flag handed to every strategy.
func WithReplacePlugins(replace bool) Option {
	return func(cfg *resolverConfig) {
		cfg.replacePlugins = replace
	}
}

// WithEngine selects the expression language for strategies declared in
// the mergeStrategies option.
func WithEngine(engine Engine) Option {
	return func(cfg *resolverConfig) {
		if engine != "" {
			cfg.engine = engine
		}
	}
}

// WithEvaluator replaces the evaluator built from the engine.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *resolverConfig) {
		cfg.evaluator = e
	}
}

// WithProgramCache shares a compiled program cache.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *resolverConfig) {
		cfg.programCache = cache
	}
}

// WithFunctionRegistry configures the helpers strategy expressions can call.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *resolverConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name next to the default helpers.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *resolverConfig) {
		if cfg.functions == nil {
			cfg.functions = DefaultFunctions()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

// WithLogger attaches a resolution logger.
func WithLogger(logger Logger) Option {
	return func(cfg *resolverConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}

// WithEvaluatorLogger attaches a logger to strategies built from the
// mergeStrategies option.
func WithEvaluatorLogger(logger EvaluatorLogger) Option {
	return func(cfg *resolverConfig) {
		if logger == nil {
			cfg.evaluatorLogger = noopEvaluatorLogger{}
			return
		}
		cfg.evaluatorLogger = logger
	}
}
