// Package module loads user-authored configuration modules into plain data.
//
// A loader is picked by file extension: data files (.json, .yaml, .yml,
// .toml) are decoded as-is, JavaScript and TypeScript files are bundled with
// esbuild and evaluated in goja, and Go files are interpreted with yaegi.
// Whatever the loader, the resolved value is the intended configuration,
// never the module envelope around it.
package module

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/containerd/errdefs"
	lru "github.com/hashicorp/golang-lru"

	"github.com/goliatone/go-buildopts/internal/metrics"
	"github.com/goliatone/go-buildopts/pkg/fsutil"
)

// DefaultCacheSize bounds the number of loaded modules kept per Resolver.
const DefaultCacheSize = 128

// Resolver loads configuration modules through the loader registered for
// their extension, caching exports per absolute path.
type Resolver struct {
	fs        fsutil.FS
	env       *Env
	loaders   map[string]SourceLoader
	cache     *lru.Cache
	cacheSize int
	logger    LoadLogger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFS sets the filesystem collaborator.
func WithFS(fs fsutil.FS) Option {
	return func(r *Resolver) {
		if fs != nil {
			r.fs = fs
		}
	}
}

// WithEnv shares an existing Env, typically one with aliases registered.
func WithEnv(env *Env) Option {
	return func(r *Resolver) {
		r.env = env
	}
}

// WithLoader registers loader for ext (with or without the leading dot).
func WithLoader(ext string, loader SourceLoader) Option {
	return func(r *Resolver) {
		if loader == nil {
			return
		}
		r.loaders[normalizeExt(ext)] = loader
	}
}

// WithCacheSize bounds the export cache. Zero or less disables caching.
func WithCacheSize(size int) Option {
	return func(r *Resolver) {
		r.cacheSize = size
	}
}

// WithLoadLogger attaches a load logger.
func WithLoadLogger(logger LoadLogger) Option {
	return func(r *Resolver) {
		if logger == nil {
			r.logger = noopLoadLogger{}
			return
		}
		r.logger = logger
	}
}

// NewResolver builds a Resolver with the default loaders.
func NewResolver(opts ...Option) (*Resolver, error) {
	r := &Resolver{
		fs:        fsutil.New(),
		loaders:   map[string]SourceLoader{},
		cacheSize: DefaultCacheSize,
		logger:    noopLoadLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.env == nil {
		r.env = NewEnv(r.fs)
	}
	r.registerDefaults()
	if r.cacheSize > 0 {
		cache, err := lru.New(r.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("module: cache: %w", err)
		}
		r.cache = cache
	}
	return r, nil
}

func (r *Resolver) registerDefaults() {
	defaults := map[string]SourceLoader{
		".json": NewJSONLoader(r.fs),
		".yaml": NewYAMLLoader(r.fs),
		".yml":  NewYAMLLoader(r.fs),
		".toml": NewTOMLLoader(r.fs),
		".go":   NewGoLoader(),
	}
	script := NewScriptLoader()
	for _, ext := range []string{".js", ".cjs", ".mjs", ".ts", ".cts", ".mts"} {
		defaults[ext] = script
	}
	for ext, loader := range defaults {
		if _, ok := r.loaders[ext]; !ok {
			r.loaders[ext] = loader
		}
	}
}

// Env returns the resolution state shared by this resolver's loads.
func (r *Resolver) Env() *Env {
	return r.env
}

// RegisterAliases forwards to the resolver's Env.
func (r *Resolver) RegisterAliases(ctx context.Context, file, tsconfigPath string) error {
	return r.env.RegisterAliases(ctx, file, tsconfigPath)
}

// ResolveExport loads path and returns the configuration value it exports,
// unwrapping a default export when the module has one.
func (r *Resolver) ResolveExport(ctx context.Context, path string) (any, error) {
	export, err := r.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return export.Value, nil
}

// Load loads path and returns its export. Missing files fail with an error
// matching errdefs.ErrNotFound; unknown extensions with
// errdefs.ErrInvalidArgument.
func (r *Resolver) Load(ctx context.Context, path string) (Export, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Export{}, &LoadError{Path: path, Err: err}
	}
	loader, ok := r.loaders[normalizeExt(filepath.Ext(abs))]
	if !ok {
		return Export{}, &LoadError{Path: abs, Err: fmt.Errorf("unsupported extension %q: %w", filepath.Ext(abs), errdefs.ErrInvalidArgument)}
	}

	if r.cache != nil {
		if cached, ok := r.cache.Get(abs); ok {
			export := cached.(Export)
			metrics.ModuleLoadCount.WithLabelValues(loader.Name(), strconv.FormatBool(true)).Inc()
			r.logger.LogLoad(LoadEvent{Path: abs, Loader: loader.Name(), Kind: export.Kind, Cached: true})
			return export.clone(), nil
		}
	}

	start := time.Now()
	export, err := r.load(ctx, loader, abs)
	duration := time.Since(start)
	r.logger.LogLoad(LoadEvent{Path: abs, Loader: loader.Name(), Kind: export.Kind, Duration: duration, Err: err})
	if err != nil {
		metrics.ModuleLoadFailed.WithLabelValues(loader.Name()).Inc()
		return Export{}, err
	}
	metrics.ModuleLoadCount.WithLabelValues(loader.Name(), strconv.FormatBool(false)).Inc()
	metrics.ModuleLoadDuration.WithLabelValues(loader.Name()).Observe(duration.Seconds())
	if r.cache != nil {
		r.cache.Add(abs, export.clone())
	}
	return export, nil
}

func (r *Resolver) load(ctx context.Context, loader SourceLoader, path string) (Export, error) {
	if err := ctx.Err(); err != nil {
		return Export{}, err
	}
	if !r.fs.Exists(ctx, path) {
		return Export{}, &LoadError{Path: path, Loader: loader.Name(), Err: errdefs.ErrNotFound}
	}
	export, err := loader.Load(ctx, r.env, path)
	if err != nil {
		return Export{}, &LoadError{Path: path, Loader: loader.Name(), Err: err}
	}
	return export, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
