package buildopts

import (
	"fmt"
	"sync"

	celgo "github.com/google/cel-go/cel"
	functions "github.com/google/cel-go/common/functions"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
)

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry exposes a FunctionRegistry through call(name, ...).
func CELWithFunctionRegistry(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry

	envOnce sync.Once
	env     *celgo.Env
	envErr  error
}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

func (e *celEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("expression must not be empty"))
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, "", err)
	}
	return &celCompiledRule{program: program, expression: expression}, nil
}

func (e *celEvaluator) loadOrCompile(expression string) (celgo.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get("cel:" + expression); ok {
			if program, ok := cached.(celgo.Program); ok {
				return program, nil
			}
		}
	}

	env, err := e.environment()
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set("cel:"+expression, program)
	}
	return program, nil
}

func (e *celEvaluator) environment() (*celgo.Env, error) {
	e.envOnce.Do(func() {
		opts := []celgo.EnvOption{
			celgo.Variable("key", celgo.StringType),
			celgo.Variable("base", celgo.DynType),
			celgo.Variable("hasBase", celgo.BoolType),
			celgo.Variable("override", celgo.DynType),
			celgo.Variable("replacePlugins", celgo.BoolType),
			celgo.Variable("args", celgo.DynType),
			celgo.Variable("metadata", celgo.DynType),
		}
		if e.registry != nil {
			opts = append(opts, celgo.Function("call", celgo.Overload(
				"call_dyn",
				[]*celgo.Type{celgo.StringType, celgo.DynType},
				celgo.DynType,
				celgo.FunctionBinding(e.callBinding()),
			), celgo.Overload(
				"call_dyn_dyn",
				[]*celgo.Type{celgo.StringType, celgo.DynType, celgo.DynType},
				celgo.DynType,
				celgo.FunctionBinding(e.callBinding()),
			)))
		}
		e.env, e.envErr = celgo.NewEnv(opts...)
	})
	return e.env, e.envErr
}

func (e *celEvaluator) callBinding() functions.FunctionOp {
	return func(values ...ref.Val) ref.Val {
		if len(values) == 0 {
			return types.NewErr("buildopts: call requires function name")
		}
		name, ok := values[0].Value().(string)
		if !ok {
			return types.NewErr("buildopts: call name must be string")
		}
		args := make([]any, 0, len(values)-1)
		for _, val := range values[1:] {
			args = append(args, celToNative(val))
		}
		result, err := e.registry.Call(name, args...)
		if err != nil {
			return types.NewErr("%s", err.Error())
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}

type celCompiledRule struct {
	program    celgo.Program
	expression string
}

func (r *celCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	ctx = ctx.withDefaultMaps()
	out, _, err := r.program.Eval(ctx.bindings())
	if err != nil {
		return nil, wrapEvaluationError("cel", r.expression, ctx.keyLabel(), err)
	}
	return celToNative(out), nil
}

// celToNative unwraps CEL lists and maps into plain Go values.
func celToNative(val ref.Val) any {
	switch typed := val.(type) {
	case nil:
		return nil
	case types.Null:
		return nil
	case traits.Mapper:
		out := map[string]any{}
		it := typed.Iterator()
		for it.HasNext() == types.True {
			key := it.Next()
			out[fmt.Sprint(key.Value())] = celToNative(typed.Get(key))
		}
		return out
	case traits.Lister:
		size, _ := typed.Size().Value().(int64)
		out := make([]any, 0, size)
		for i := int64(0); i < size; i++ {
			out = append(out, celToNative(typed.Get(types.Int(i))))
		}
		return out
	default:
		return val.Value()
	}
}
