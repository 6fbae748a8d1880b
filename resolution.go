package buildopts

import (
	"github.com/goliatone/go-buildopts/internal/hydrate"
)

// Resolution is the outcome of one Resolve call.
type Resolution struct {
	ID      string
	Target  Target
	Options Fragment

	stack     *Stack
	targetRef string
}

// Trace reports what each layer holds at path, strongest layer first.
func (r *Resolution) Trace(path string) Trace {
	if r == nil {
		return Trace{Path: path}
	}
	return r.stack.Trace(path)
}

// Layers returns the merged layers, strongest first.
func (r *Resolution) Layers() []Layer {
	if r == nil {
		return nil
	}
	return r.stack.Layers()
}

// Describe lists the resolved option paths with their value types.
func (r *Resolution) Describe() []FieldDescriptor {
	if r == nil {
		return nil
	}
	return Describe(r.Options)
}

// Decode hydrates the resolved options into T. Fields map through
// mapstructure tags and input is weakly typed, so "true" fills a bool.
func Decode[T any](r *Resolution) (T, error) {
	var zero T
	if r == nil {
		return zero, ErrNilResolution
	}
	decoder := hydrate.NewDecoder[T](hydrate.WithWeaklyTypedInput[T]())
	return decoder.Decode(r.hydrateContext(), r.Options)
}

func (r *Resolution) hydrateContext() hydrate.Context {
	return hydrate.Context{ID: r.ID, Target: r.targetRef}
}
