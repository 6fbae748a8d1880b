package buildopts

import (
	"context"
	"fmt"

	"github.com/containerd/errdefs"

	"github.com/goliatone/go-buildopts/pkg/module"
)

// Source produces the local option fragment of a resolution.
type Source interface {
	Fragment(ctx context.Context) (Fragment, error)
}

type staticSource struct {
	fragment Fragment
}

// StaticSource returns a Source yielding a copy of fragment.
func StaticSource(fragment Fragment) Source {
	return staticSource{fragment: fragment.Clone()}
}

func (s staticSource) Fragment(ctx context.Context) (Fragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.fragment.Clone(), nil
}

func (s staticSource) String() string {
	return "inline"
}

// ModuleSource reads the local options from a configuration module. When
// TSConfig is set and Path is a TypeScript file, the tsconfig's aliases are
// registered before the load.
type ModuleSource struct {
	Path     string
	TSConfig string
	Modules  *module.Resolver
}

func (s ModuleSource) Fragment(ctx context.Context) (Fragment, error) {
	modules := s.Modules
	if modules == nil {
		var err error
		if modules, err = module.NewResolver(); err != nil {
			return nil, err
		}
	}
	if err := modules.RegisterAliases(ctx, s.Path, s.TSConfig); err != nil {
		return nil, err
	}
	value, err := modules.ResolveExport(ctx, s.Path)
	if err != nil {
		return nil, err
	}
	fragment, ok := FragmentOf(value)
	if !ok {
		return nil, fmt.Errorf("buildopts: %s exports %T, want a mapping: %w", s.Path, value, errdefs.ErrInvalidArgument)
	}
	return fragment, nil
}

func (s ModuleSource) String() string {
	return s.Path
}

func sourceLabel(source Source) string {
	if named, ok := source.(fmt.Stringer); ok {
		return named.String()
	}
	return fmt.Sprintf("%T", source)
}
