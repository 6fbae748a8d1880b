package buildopts

import (
	"errors"
	"fmt"
	"sort"
)

// Scope names one option source in a Stack. Higher priority values represent
// stronger layers.
type Scope struct {
	Name     string         `json:"name"`
	Label    string         `json:"label,omitempty"`
	Priority int            `json:"priority"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ScopeOption configures metadata on Scope creation.
type ScopeOption func(*scopeConfig)

type scopeConfig struct {
	label    string
	metadata map[string]any
}

// WithScopeLabel sets a human-friendly label on the scope.
func WithScopeLabel(label string) ScopeOption {
	return func(cfg *scopeConfig) {
		cfg.label = label
	}
}

// WithScopeMetadata attaches metadata to the scope. The map is copied.
func WithScopeMetadata(metadata map[string]any) ScopeOption {
	return func(cfg *scopeConfig) {
		if len(metadata) == 0 {
			return
		}
		cfg.metadata = copyMetadata(metadata)
	}
}

// NewScope builds a Scope. Validation is deferred to NewStack.
func NewScope(name string, priority int, opts ...ScopeOption) Scope {
	cfg := scopeConfig{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return Scope{
		Name:     name,
		Label:    cfg.label,
		Priority: priority,
		Metadata: copyMetadata(cfg.metadata),
	}
}

func (s Scope) clone() Scope {
	return Scope{
		Name:     s.Name,
		Label:    s.Label,
		Priority: s.Priority,
		Metadata: copyMetadata(s.Metadata),
	}
}

// Layer pairs a scope with the fragment it contributed.
type Layer struct {
	Scope    Scope
	Fragment Fragment
	// Source describes where the fragment came from: a target reference,
	// a file path or a flag set.
	Source string
}

// LayerOption configures optional metadata for a layer.
type LayerOption func(*Layer)

// WithLayerSource records where the layer's fragment came from.
func WithLayerSource(source string) LayerOption {
	return func(layer *Layer) {
		layer.Source = source
	}
}

// NewLayer constructs a Layer holding detached copies of scope and fragment.
func NewLayer(scope Scope, fragment Fragment, opts ...LayerOption) Layer {
	layer := Layer{
		Scope:    scope.clone(),
		Fragment: fragment.Clone(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&layer)
	}
	return layer
}

var (
	// ErrScopeNameRequired indicates a missing scope name.
	ErrScopeNameRequired = errors.New("scope: name must be provided")
	// ErrDuplicateScopeName indicates Stack construction received multiple
	// layers with the same scope name.
	ErrDuplicateScopeName = errors.New("scope: names must be unique")
	// ErrPriorityOrder indicates Stack construction detected duplicate
	// priorities.
	ErrPriorityOrder = errors.New("scope: priorities must be strictly ordered")
	// ErrEmptyStack indicates a merge of a stack without layers.
	ErrEmptyStack = errors.New("scope: stack must include at least one layer")
)

// Stack is an immutable set of layers ordered from strongest to weakest.
type Stack struct {
	layers []Layer
}

// NewStack validates the layers and sorts them so the highest priority comes
// first. Fragments are copied.
func NewStack(layers ...Layer) (*Stack, error) {
	if len(layers) == 0 {
		return &Stack{}, nil
	}

	seenNames := make(map[string]struct{}, len(layers))
	copied := make([]Layer, len(layers))
	for i, layer := range layers {
		layer := cloneLayer(layer)
		if layer.Scope.Name == "" {
			return nil, ErrScopeNameRequired
		}
		if _, ok := seenNames[layer.Scope.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateScopeName, layer.Scope.Name)
		}
		seenNames[layer.Scope.Name] = struct{}{}
		copied[i] = layer
	}

	sort.Slice(copied, func(i, j int) bool {
		if copied[i].Scope.Priority == copied[j].Scope.Priority {
			return copied[i].Scope.Name < copied[j].Scope.Name
		}
		return copied[i].Scope.Priority > copied[j].Scope.Priority
	})

	for i := 1; i < len(copied); i++ {
		if copied[i-1].Scope.Priority <= copied[i].Scope.Priority {
			return nil, fmt.Errorf("%w: %d", ErrPriorityOrder, copied[i].Scope.Priority)
		}
	}

	return &Stack{layers: copied}, nil
}

// Layers returns copies of the layers, strongest first.
func (s *Stack) Layers() []Layer {
	if s == nil || len(s.layers) == 0 {
		return nil
	}
	out := make([]Layer, len(s.layers))
	for i := range s.layers {
		out[i] = cloneLayer(s.layers[i])
	}
	return out
}

// Len returns the number of layers in the stack.
func (s *Stack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.layers)
}

// Merge folds the layers from weakest to strongest with MergeWith: each
// layer is the override of everything weaker than it.
func (s *Stack) Merge(cfg MergeConfig) (Fragment, error) {
	if s == nil || len(s.layers) == 0 {
		return nil, ErrEmptyStack
	}
	last := len(s.layers) - 1
	merged := s.layers[last].Fragment.Clone()
	for i := last - 1; i >= 0; i-- {
		next, err := MergeWith(merged, s.layers[i].Fragment, cfg)
		if err != nil {
			return nil, fmt.Errorf("scope %s: %w", s.layers[i].Scope.Name, err)
		}
		merged = next
	}
	return merged, nil
}

// Trace reports, strongest first, what every layer holds at path.
func (s *Stack) Trace(path string) Trace {
	trace := Trace{Path: path}
	if s == nil {
		return trace
	}
	for _, layer := range s.layers {
		value, found := layer.Fragment.Lookup(path)
		trace.Layers = append(trace.Layers, Provenance{
			Scope:  layer.Scope.clone(),
			Source: layer.Source,
			Path:   path,
			Value:  value,
			Found:  found && value != nil,
		})
	}
	return trace
}

func cloneLayer(layer Layer) Layer {
	return Layer{
		Scope:    layer.Scope.clone(),
		Fragment: layer.Fragment.Clone(),
		Source:   layer.Source,
	}
}
