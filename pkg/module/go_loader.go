package module

import (
	"context"
	"fmt"
	"reflect"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

const (
	goDefaultFunc = "Default"
	goConfigFunc  = "Config"
)

// GoLoader interprets Go configuration files with yaegi. The file must be a
// main package declaring Default() (wrapped export) or Config() (direct
// export), returning the value and optionally an error.
type GoLoader struct{}

// NewGoLoader returns a loader for .go configuration modules.
func NewGoLoader() *GoLoader {
	return &GoLoader{}
}

func (l *GoLoader) Name() string {
	return "go"
}

func (l *GoLoader) Load(_ context.Context, _ *Env, path string) (Export, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return Export{}, fmt.Errorf("interpret: %w", err)
	}
	if _, err := i.EvalPath(path); err != nil {
		return Export{}, fmt.Errorf("interpret: %w", err)
	}

	if fn, err := i.Eval(goDefaultFunc); err == nil {
		value, err := invokeConfigFunc(goDefaultFunc, fn)
		if err != nil {
			return Export{}, err
		}
		return Wrapped(value), nil
	}
	fn, err := i.Eval(goConfigFunc)
	if err != nil {
		return Export{}, fmt.Errorf("must define %s() or %s(): %w", goDefaultFunc, goConfigFunc, err)
	}
	value, err := invokeConfigFunc(goConfigFunc, fn)
	if err != nil {
		return Export{}, err
	}
	return Direct(value), nil
}

func invokeConfigFunc(name string, fn reflect.Value) (any, error) {
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", name)
	}
	if fn.Type().NumIn() != 0 {
		return nil, fmt.Errorf("%s must not take arguments", name)
	}
	switch out := fn.Type(); out.NumOut() {
	case 1:
	case 2:
		if !out.Out(1).Implements(errorType) {
			return nil, fmt.Errorf("%s must return (value[, error]), got second result %s", name, out.Out(1))
		}
	default:
		return nil, fmt.Errorf("%s must return (value[, error])", name)
	}
	results := fn.Call(nil)
	if len(results) == 2 && !results[1].IsNil() {
		return nil, results[1].Interface().(error)
	}
	return normalize(results[0].Interface()), nil
}
