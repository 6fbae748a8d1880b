package module

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-buildopts/pkg/fsutil"
	"github.com/goliatone/go-buildopts/pkg/tsconfig"
)

// sourceExtensions are the configuration file extensions that must be
// compiled before they can be evaluated.
var sourceExtensions = map[string]struct{}{
	".ts":  {},
	".mts": {},
	".cts": {},
}

// IsSourceFile reports whether path is a configuration file that needs the
// TypeScript compile step.
func IsSourceFile(path string) bool {
	_, ok := sourceExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Env is the resolution state shared by every load of one build invocation:
// the TypeScript project scripts compile against and its alias table.
//
// An Env is owned by a single invocation. Registration is expected to happen
// once before loads start; registering from several goroutines on the same
// Env is unsupported.
type Env struct {
	fs      fsutil.FS
	project string
	aliases tsconfig.AliasTable
}

// NewEnv returns an empty Env reading through fs.
func NewEnv(fs fsutil.FS) *Env {
	if fs == nil {
		fs = fsutil.New()
	}
	return &Env{fs: fs}
}

// RegisterAliases scopes script compilation to tsconfigPath and records its
// alias table. It does nothing unless file is a TypeScript configuration
// file. The first registration pins both the project and its table.
// Registering a project with the same table again is a no-op; a different
// project with a different table, including one that adds paths to a project
// that had none, fails with ErrAliasesRegistered.
func (e *Env) RegisterAliases(ctx context.Context, file, tsconfigPath string) error {
	if e == nil || file == "" || !IsSourceFile(file) {
		return nil
	}
	if tsconfigPath == "" {
		return nil
	}
	project, err := filepath.Abs(tsconfigPath)
	if err != nil {
		return fmt.Errorf("module: tsconfig %s: %w", tsconfigPath, err)
	}
	table, err := tsconfig.Load(ctx, e.fs, project)
	if err != nil {
		return err
	}

	if table.Empty() {
		table = tsconfig.AliasTable{}
	}
	if e.project != "" {
		if e.project != project && !e.aliases.Equal(table) {
			return fmt.Errorf("%w: %s", ErrAliasesRegistered, e.project)
		}
		return nil
	}
	e.project = project
	e.aliases = table
	return nil
}

// Project returns the tsconfig path scripts compile against.
func (e *Env) Project() string {
	if e == nil {
		return ""
	}
	return e.project
}

// Aliases returns the registered alias table.
func (e *Env) Aliases() tsconfig.AliasTable {
	if e == nil {
		return tsconfig.AliasTable{}
	}
	return e.aliases
}

// ResolveAlias maps an aliased specifier onto an existing module file.
func (e *Env) ResolveAlias(ctx context.Context, specifier string) (string, bool) {
	if e == nil || e.aliases.Empty() {
		return "", false
	}
	return e.aliases.Resolve(ctx, e.fs, specifier)
}
