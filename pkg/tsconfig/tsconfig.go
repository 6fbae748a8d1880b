// Package tsconfig loads the path alias table of a TypeScript project
// configuration and resolves aliased module specifiers against it.
package tsconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/tidwall/jsonc"

	"github.com/goliatone/go-buildopts/pkg/fsutil"
)

// ErrExtendsCycle is returned when an extends chain references itself.
var ErrExtendsCycle = errors.New("tsconfig: extends cycle")

// AliasTable is the compiler's base URL plus its alias patterns.
type AliasTable struct {
	BaseURL string
	Paths   map[string][]string
}

// Empty reports whether the table carries nothing worth registering.
func (t AliasTable) Empty() bool {
	return t.BaseURL == "" || len(t.Paths) == 0
}

// Equal reports whether both tables register the same aliases.
func (t AliasTable) Equal(other AliasTable) bool {
	if t.BaseURL != other.BaseURL || len(t.Paths) != len(other.Paths) {
		return false
	}
	for pattern, targets := range t.Paths {
		theirs, ok := other.Paths[pattern]
		if !ok || len(theirs) != len(targets) {
			return false
		}
		for i := range targets {
			if targets[i] != theirs[i] {
				return false
			}
		}
	}
	return true
}

type document struct {
	Extends         json.RawMessage `json:"extends"`
	CompilerOptions struct {
		BaseURL *string             `json:"baseUrl"`
		Paths   map[string][]string `json:"paths"`
	} `json:"compilerOptions"`
}

// Load reads the tsconfig at path, following extends, and returns its alias
// table with an absolute BaseURL. A config without baseUrl yields an empty
// BaseURL.
func Load(ctx context.Context, fs fsutil.FS, path string) (AliasTable, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return AliasTable{}, fmt.Errorf("tsconfig: %s: %w", path, err)
	}
	return load(ctx, fs, abs, map[string]struct{}{})
}

func load(ctx context.Context, fs fsutil.FS, path string, seen map[string]struct{}) (AliasTable, error) {
	if _, ok := seen[path]; ok {
		return AliasTable{}, fmt.Errorf("%w: %s", ErrExtendsCycle, path)
	}
	seen[path] = struct{}{}

	if !fs.Exists(ctx, path) {
		return AliasTable{}, fmt.Errorf("tsconfig: %s: %w", path, errdefs.ErrNotFound)
	}
	raw, err := fs.ReadText(ctx, path)
	if err != nil {
		return AliasTable{}, err
	}
	var doc document
	if err := json.Unmarshal(jsonc.ToJSON([]byte(raw)), &doc); err != nil {
		return AliasTable{}, fmt.Errorf("tsconfig: decode %s: %w", path, err)
	}

	var table AliasTable
	for _, parent := range extendsList(doc.Extends) {
		parentPath := resolveExtends(ctx, fs, filepath.Dir(path), parent)
		inherited, err := load(ctx, fs, parentPath, seen)
		if err != nil {
			return AliasTable{}, fmt.Errorf("tsconfig: extends %q from %s: %w", parent, path, err)
		}
		if inherited.BaseURL != "" {
			table.BaseURL = inherited.BaseURL
		}
		if inherited.Paths != nil {
			table.Paths = inherited.Paths
		}
	}

	if doc.CompilerOptions.BaseURL != nil {
		table.BaseURL = filepath.Join(filepath.Dir(path), *doc.CompilerOptions.BaseURL)
	}
	if doc.CompilerOptions.Paths != nil {
		table.Paths = doc.CompilerOptions.Paths
	}
	return table, nil
}

func extendsList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single == "" {
			return nil
		}
		return []string{single}
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return many
	}
	return nil
}

func resolveExtends(ctx context.Context, fs fsutil.FS, dir, ref string) string {
	if strings.HasPrefix(ref, ".") || filepath.IsAbs(ref) {
		candidate := ref
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(dir, ref)
		}
		if filepath.Ext(candidate) != ".json" && !fs.Exists(ctx, candidate) {
			candidate += ".json"
		}
		return candidate
	}
	// package reference: walk up looking for node_modules/<ref>
	for current := dir; ; current = filepath.Dir(current) {
		candidate := filepath.Join(current, "node_modules", ref)
		if filepath.Ext(candidate) != ".json" {
			if fs.Exists(ctx, filepath.Join(candidate, "tsconfig.json")) {
				return filepath.Join(candidate, "tsconfig.json")
			}
			candidate += ".json"
		}
		if fs.Exists(ctx, candidate) {
			return candidate
		}
		if parent := filepath.Dir(current); parent == current {
			return filepath.Join(dir, "node_modules", ref)
		}
	}
}
