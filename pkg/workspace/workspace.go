package workspace

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/containerd/errdefs"
	"github.com/gobwas/glob"
	"github.com/goccy/go-yaml"

	"github.com/goliatone/go-buildopts"
	"github.com/goliatone/go-buildopts/pkg/fsutil"
)

// DefaultFile is the workspace document looked up when none is named.
const DefaultFile = "angular.json"

// Workspace is a parsed workspace document.
type Workspace struct {
	Version        any                `json:"version,omitempty"`
	DefaultProject string             `json:"defaultProject,omitempty"`
	Projects       map[string]Project `json:"projects"`

	path string
}

var _ buildopts.TargetContext = (*Workspace)(nil)

// Load reads and validates the workspace document at path. JSON and YAML
// documents are both accepted.
func Load(ctx context.Context, fs fsutil.FS, path string) (*Workspace, error) {
	if fs == nil {
		fs = fsutil.New()
	}
	if !fs.Exists(ctx, path) {
		return nil, fmt.Errorf("workspace: %s: %w", path, errdefs.ErrNotFound)
	}
	content, err := fs.ReadText(ctx, path)
	if err != nil {
		return nil, err
	}
	ws, err := Parse(path, []byte(content))
	if err != nil {
		return nil, err
	}
	if abs, err := filepath.Abs(path); err == nil {
		ws.path = abs
	}
	return ws, nil
}

// Parse validates data against the workspace schema and decodes it. name is
// only used in error messages.
func Parse(name string, data []byte) (*Workspace, error) {
	if err := validate(name, data); err != nil {
		return nil, err
	}

	ws := &Workspace{path: name}
	if err := yaml.Unmarshal(data, ws); err != nil {
		return nil, fmt.Errorf("workspace: %s: %w: %w", name, errdefs.ErrInvalidArgument, err)
	}
	if ws.Projects == nil {
		ws.Projects = map[string]Project{}
	}
	return ws, nil
}

// Path returns where the workspace was loaded from.
func (w *Workspace) Path() string {
	return w.path
}

// Root returns the directory holding the workspace document.
func (w *Workspace) Root() string {
	return filepath.Dir(w.path)
}

// GetTargetOptions implements buildopts.TargetContext.
func (w *Workspace) GetTargetOptions(ctx context.Context, target buildopts.Target) (buildopts.Fragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return targetOptions(w.Projects, target)
}

// Targets lists the workspace targets whose "project:target" reference
// matches pattern. An empty pattern lists everything.
func (w *Workspace) Targets(pattern string) ([]TargetInfo, error) {
	return listTargets(w.Projects, pattern)
}

func targetOptions(projects map[string]Project, target buildopts.Target) (buildopts.Fragment, error) {
	project, ok := projects[target.Project]
	if !ok {
		return nil, &buildopts.NotFoundError{Target: target, What: "project"}
	}
	def, ok := project.target(target.Target)
	if !ok {
		return nil, &buildopts.NotFoundError{Target: target}
	}
	return def.Resolve(target)
}

func listTargets(projects map[string]Project, pattern string) ([]TargetInfo, error) {
	var matcher glob.Glob
	if pattern != "" {
		var err error
		matcher, err = glob.Compile(pattern, ':')
		if err != nil {
			return nil, fmt.Errorf("workspace: pattern %q: %w: %w", pattern, errdefs.ErrInvalidArgument, err)
		}
	}

	var out []TargetInfo
	for projectName, project := range projects {
		for _, targetName := range project.targetNames() {
			reference := projectName + ":" + targetName
			if matcher != nil && !matcher.Match(reference) {
				continue
			}
			def, _ := project.target(targetName)
			out = append(out, TargetInfo{
				Reference:            reference,
				Builder:              def.Builder,
				Configurations:       configurationNames(def),
				DefaultConfiguration: def.DefaultConfiguration,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Reference < out[j].Reference
	})
	return out, nil
}

func configurationNames(def TargetDefinition) []string {
	if len(def.Configurations) == 0 {
		return nil
	}
	names := make([]string, 0, len(def.Configurations))
	for name := range def.Configurations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
