package workspace

import (
	"github.com/goliatone/go-buildopts"
)

// TargetDefinition is one builder target of a project.
type TargetDefinition struct {
	Builder              string                    `json:"builder,omitempty"`
	Options              map[string]any            `json:"options,omitempty"`
	Configurations       map[string]map[string]any `json:"configurations,omitempty"`
	DefaultConfiguration string                    `json:"defaultConfiguration,omitempty"`
}

// Project groups the targets registered for one project.
type Project struct {
	Root       string                      `json:"root,omitempty"`
	SourceRoot string                      `json:"sourceRoot,omitempty"`
	Architect  map[string]TargetDefinition `json:"architect,omitempty"`
	Targets    map[string]TargetDefinition `json:"targets,omitempty"`
}

func (p Project) target(name string) (TargetDefinition, bool) {
	if def, ok := p.Architect[name]; ok {
		return def, true
	}
	def, ok := p.Targets[name]
	return def, ok
}

func (p Project) targetNames() []string {
	names := make([]string, 0, len(p.Architect)+len(p.Targets))
	for name := range p.Architect {
		names = append(names, name)
	}
	for name := range p.Targets {
		if _, dup := p.Architect[name]; !dup {
			names = append(names, name)
		}
	}
	return names
}

// Resolve returns the target options for target: the options block merged
// with every requested configuration in order. Unknown configurations yield a
// buildopts.NotFoundError.
func (d TargetDefinition) Resolve(target buildopts.Target) (buildopts.Fragment, error) {
	out := buildopts.Fragment(d.Options).Clone()

	configurations := target.Configurations()
	if len(configurations) == 0 && d.DefaultConfiguration != "" {
		configurations = buildopts.Target{Configuration: d.DefaultConfiguration}.Configurations()
	}
	for _, name := range configurations {
		configuration, ok := d.Configurations[name]
		if !ok {
			return nil, &buildopts.NotFoundError{Target: target, What: "configuration " + name}
		}
		out = buildopts.Merge(out, configuration)
	}
	return out, nil
}

// TargetInfo summarizes a registered target for listings.
type TargetInfo struct {
	Reference            string   `json:"reference"`
	Builder              string   `json:"builder,omitempty"`
	Configurations       []string `json:"configurations,omitempty"`
	DefaultConfiguration string   `json:"defaultConfiguration,omitempty"`
}
