package buildopts

// RuleContext carries the inputs of one merge strategy expression. Every
// field is exposed to expressions under its lower camel case name.
type RuleContext struct {
	Key            string
	Base           any
	HasBase        bool
	Override       any
	ReplacePlugins bool
	Args           map[string]any
	Metadata       map[string]any
}

func ruleContextFrom(input StrategyInput) RuleContext {
	return RuleContext{
		Key:            input.Key,
		Base:           input.Base,
		HasBase:        input.HasBase,
		Override:       input.Override,
		ReplacePlugins: input.ReplacePlugins,
	}
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) keyLabel() string {
	if ctx.Key != "" {
		return ctx.Key
	}
	return "unknown"
}

func (ctx RuleContext) bindings() map[string]any {
	return map[string]any{
		"key":            ctx.Key,
		"base":           ctx.Base,
		"hasBase":        ctx.HasBase,
		"override":       ctx.Override,
		"replacePlugins": ctx.ReplacePlugins,
		"args":           ctx.Args,
		"metadata":       ctx.Metadata,
	}
}

// Evaluator executes merge strategy expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule is a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// Engine names an expression language.
type Engine string

const (
	EngineExpr Engine = "expr"
	EngineCEL  Engine = "cel"
)

// NewEvaluator returns the evaluator for engine, sharing cache and registry.
// Unknown engines fall back to expr.
func NewEvaluator(engine Engine, cache ProgramCache, registry *FunctionRegistry) Evaluator {
	if engine == EngineCEL {
		return NewCELEvaluator(CELWithProgramCache(cache), CELWithFunctionRegistry(registry))
	}
	return NewExprEvaluator(ExprWithProgramCache(cache), ExprWithFunctionRegistry(registry))
}

func evaluatorEngineName(e Evaluator) string {
	switch e.(type) {
	case nil:
		return "unknown"
	case *exprEvaluator:
		return string(EngineExpr)
	case *celEvaluator:
		return string(EngineCEL)
	default:
		return "custom"
	}
}
