package buildopts

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/containerd/errdefs"
)

// DeepMergeDirective selects DeepMerge in a strategy block instead of an
// expression.
const DeepMergeDirective = "@deep"

var ErrNoEvaluator = errors.New("buildopts: evaluator not configured")

// StrategyOption configures an expression strategy.
type StrategyOption func(*expressionStrategy)

// WithStrategyLogger records every evaluation of the strategy.
func WithStrategyLogger(logger EvaluatorLogger) StrategyOption {
	return func(s *expressionStrategy) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStrategyArgs exposes args to the expression as the args variable.
func WithStrategyArgs(args map[string]any) StrategyOption {
	return func(s *expressionStrategy) {
		s.args = copyMetadata(args)
	}
}

type expressionStrategy struct {
	engine     string
	expression string
	rule       CompiledRule
	args       map[string]any
	logger     EvaluatorLogger
}

// NewExpressionStrategy compiles expression with evaluator and returns a
// Strategy whose merged value is the expression result. The expression sees
// key, base, hasBase, override, replacePlugins and args.
func NewExpressionStrategy(evaluator Evaluator, expression string, opts ...StrategyOption) (Strategy, error) {
	if evaluator == nil {
		return nil, ErrNoEvaluator
	}
	if strings.TrimSpace(expression) == "" {
		return nil, fmt.Errorf("buildopts: strategy expression must not be empty: %w", errdefs.ErrInvalidArgument)
	}
	rule, err := evaluator.Compile(expression)
	if err != nil {
		return nil, err
	}
	strategy := &expressionStrategy{
		engine:     evaluatorEngineName(evaluator),
		expression: expression,
		rule:       rule,
		logger:     noopEvaluatorLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(strategy)
		}
	}
	return strategy, nil
}

// ExprStrategy compiles expression with expr-lang/expr.
func ExprStrategy(expression string, opts ...ExprEvaluatorOption) (Strategy, error) {
	return NewExpressionStrategy(NewExprEvaluator(opts...), expression)
}

// CELStrategy compiles expression with cel-go.
func CELStrategy(expression string, opts ...CELEvaluatorOption) (Strategy, error) {
	return NewExpressionStrategy(NewCELEvaluator(opts...), expression)
}

func (s *expressionStrategy) Combine(input StrategyInput) (any, error) {
	ctx := ruleContextFrom(input)
	ctx.Args = s.args
	ctx = ctx.withDefaultMaps()

	start := time.Now()
	value, err := s.rule.Evaluate(ctx)
	duration := time.Since(start)
	err = wrapEvaluationError(s.engine, s.expression, ctx.keyLabel(), err)
	s.logger.LogEvaluation(EvaluatorLogEvent{
		Engine:   s.engine,
		Expr:     s.expression,
		Key:      ctx.keyLabel(),
		Duration: duration,
		Err:      err,
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// StrategiesFromMap builds strategies from an option block mapping option
// names to expressions, as found under the mergeStrategies option. The value
// DeepMergeDirective selects DeepMerge. A nil block yields no strategies.
func StrategiesFromMap(block any, evaluator Evaluator, opts ...StrategyOption) (Strategies, error) {
	if block == nil {
		return nil, nil
	}
	entries, ok := asMap(block)
	if !ok {
		return nil, fmt.Errorf("buildopts: merge strategies must be a mapping, got %T: %w", block, errdefs.ErrInvalidArgument)
	}
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make(Strategies, len(entries))
	for _, key := range keys {
		expression, ok := entries[key].(string)
		if !ok {
			return nil, fmt.Errorf("buildopts: merge strategy %q must be a string, got %T: %w", key, entries[key], errdefs.ErrInvalidArgument)
		}
		if strings.TrimSpace(expression) == DeepMergeDirective {
			out[key] = DeepMerge()
			continue
		}
		strategy, err := NewExpressionStrategy(evaluator, expression, opts...)
		if err != nil {
			return nil, fmt.Errorf("buildopts: merge strategy %q: %w", key, err)
		}
		out[key] = strategy
	}
	return out, nil
}

func copyMetadata(origin map[string]any) map[string]any {
	if len(origin) == 0 {
		return nil
	}
	out := make(map[string]any, len(origin))
	for key, value := range origin {
		out[key] = value
	}
	return out
}
