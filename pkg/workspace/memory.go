package workspace

import (
	"context"
	"fmt"
	"sync"

	"github.com/containerd/errdefs"

	"github.com/goliatone/go-buildopts"
)

// Memory is an in-memory target registry for tests and embedding. Lookups
// follow the same rules as Workspace.
type Memory struct {
	mu       sync.RWMutex
	projects map[string]Project
}

var _ buildopts.TargetContext = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{projects: map[string]Project{}}
}

// Register stores def under a "project:target" reference, replacing any
// previous definition.
func (m *Memory) Register(reference string, def TargetDefinition) error {
	target, err := buildopts.ParseTarget(reference)
	if err != nil {
		return err
	}
	if target.Configuration != "" {
		return fmt.Errorf("workspace: register %q: configuration not allowed: %w", reference, errdefs.ErrInvalidArgument)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	project := m.projects[target.Project]
	if project.Architect == nil {
		project.Architect = map[string]TargetDefinition{}
	}
	project.Architect[target.Target] = cloneDefinition(def)
	m.projects[target.Project] = project
	return nil
}

// GetTargetOptions implements buildopts.TargetContext.
func (m *Memory) GetTargetOptions(ctx context.Context, target buildopts.Target) (buildopts.Fragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return targetOptions(m.projects, target)
}

// Targets lists registered targets matching pattern.
func (m *Memory) Targets(pattern string) ([]TargetInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return listTargets(m.projects, pattern)
}

func cloneDefinition(def TargetDefinition) TargetDefinition {
	out := def
	out.Options = buildopts.Fragment(def.Options).Clone()
	if def.Configurations != nil {
		out.Configurations = make(map[string]map[string]any, len(def.Configurations))
		for name, configuration := range def.Configurations {
			out.Configurations[name] = buildopts.Fragment(configuration).Clone()
		}
	}
	return out
}
