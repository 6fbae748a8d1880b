package module

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-buildopts/pkg/fsutil"
)

// SourceLoader turns one configuration file into an Export.
type SourceLoader interface {
	Name() string
	Load(ctx context.Context, env *Env, path string) (Export, error)
}

// DataLoader reads configuration files that need no compilation.
type DataLoader struct {
	fs     fsutil.FS
	decode func([]byte, any) error
	name   string
}

// NewJSONLoader decodes .json modules.
func NewJSONLoader(fs fsutil.FS) *DataLoader {
	return &DataLoader{fs: fs, decode: json.Unmarshal, name: "json"}
}

// NewYAMLLoader decodes .yaml and .yml modules.
func NewYAMLLoader(fs fsutil.FS) *DataLoader {
	return &DataLoader{fs: fs, decode: yaml.Unmarshal, name: "yaml"}
}

// NewTOMLLoader decodes .toml modules.
func NewTOMLLoader(fs fsutil.FS) *DataLoader {
	return &DataLoader{fs: fs, decode: toml.Unmarshal, name: "toml"}
}

func (l *DataLoader) Name() string {
	return l.name
}

func (l *DataLoader) Load(ctx context.Context, _ *Env, path string) (Export, error) {
	raw, err := l.fs.ReadText(ctx, path)
	if err != nil {
		return Export{}, err
	}
	var value any
	if err := l.decode([]byte(raw), &value); err != nil {
		return Export{}, fmt.Errorf("decode: %w", err)
	}
	return classifyData(normalize(value)), nil
}

// normalize rewrites map[any]any nodes into map[string]any so every loader
// hands out the same plain shapes.
func normalize(value any) any {
	switch v := value.(type) {
	case map[string]any:
		for key, inner := range v {
			v[key] = normalize(inner)
		}
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			out[fmt.Sprint(key)] = normalize(inner)
		}
		return out
	case []any:
		for i := range v {
			v[i] = normalize(v[i])
		}
		return v
	default:
		return value
	}
}
