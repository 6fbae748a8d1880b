package buildopts

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/containerd/errdefs"

	"github.com/goliatone/go-buildopts/layering"
)

// Function is a helper callable from strategy expressions.
type Function func(args ...any) (any, error)

// FunctionRegistry stores expression helpers keyed by lower case name.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]Function),
	}
}

// DefaultFunctions returns a registry holding the list and mapping helpers
// strategies commonly need: deep_merge(override, base) and
// append_unique(base, override).
func DefaultFunctions() *FunctionRegistry {
	registry := NewFunctionRegistry()
	_ = registry.Register("deep_merge", deepMergeFunction)
	_ = registry.Register("append_unique", appendUniqueFunction)
	return registry
}

// Register stores fn under name guarding against duplicates.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("buildopts: function %q is nil: %w", name, errdefs.ErrInvalidArgument)
	}
	if name == "" {
		return fmt.Errorf("buildopts: function name must not be empty: %w", errdefs.ErrInvalidArgument)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
	}
	key := strings.ToLower(name)
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("buildopts: function %q: %w", name, errdefs.ErrAlreadyExists)
	}
	r.functions[key] = fn
	return nil
}

// Clone returns a shallow copy of the registry.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{
		functions: make(map[string]Function, len(r.functions)),
	}
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

// Call executes the function registered for name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("buildopts: function registry is nil")
	}
	r.mu.RLock()
	fn := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("buildopts: function %q: %w", name, errdefs.ErrNotFound)
	}
	return fn(args...)
}

// Names returns registered function names sorted alphabetically.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func deepMergeFunction(args ...any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("deep_merge expects 2 arguments, got %d", len(args))
	}
	return layering.DeepMerge(args[0], args[1]), nil
}

func appendUniqueFunction(args ...any) (any, error) {
	var out []any
	for _, arg := range args {
		for _, item := range listItems(arg) {
			if containsValue(out, item) {
				continue
			}
			out = append(out, item)
		}
	}
	if out == nil {
		out = []any{}
	}
	return out, nil
}

func listItems(value any) []any {
	if value == nil {
		return nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{value}
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items
}

func containsValue(list []any, value any) bool {
	for _, item := range list {
		if reflect.DeepEqual(item, value) {
			return true
		}
	}
	return false
}
