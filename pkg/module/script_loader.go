package module

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/dop251/goja"
	esbuild "github.com/evanw/esbuild/pkg/api"
)

// ScriptLoader compiles JavaScript and TypeScript configuration modules into
// a single CommonJS program with esbuild and evaluates it in goja.
type ScriptLoader struct {
	once    sync.Once
	options esbuild.BuildOptions
}

// NewScriptLoader returns a loader for .js/.cjs/.mjs/.ts/.cts/.mts modules.
func NewScriptLoader() *ScriptLoader {
	return &ScriptLoader{}
}

func (l *ScriptLoader) Name() string {
	return "script"
}

// register prepares the shared compiler options. Safe to call repeatedly.
func (l *ScriptLoader) register() {
	l.once.Do(func() {
		l.options = esbuild.BuildOptions{
			Bundle:   true,
			Write:    false,
			Format:   esbuild.FormatCommonJS,
			Platform: esbuild.PlatformNode,
			Target:   esbuild.ES2017,
			LogLevel: esbuild.LogLevelSilent,
		}
	})
}

func (l *ScriptLoader) Load(ctx context.Context, env *Env, path string) (Export, error) {
	code, err := l.compile(ctx, env, path)
	if err != nil {
		return Export{}, err
	}
	return evaluate(ctx, path, code)
}

func (l *ScriptLoader) compile(ctx context.Context, env *Env, path string) (string, error) {
	l.register()

	options := l.options
	options.EntryPoints = []string{path}
	options.AbsWorkingDir = filepath.Dir(path)
	if IsSourceFile(path) && env.Project() != "" {
		options.Tsconfig = env.Project()
	}
	if !env.Aliases().Empty() {
		options.Plugins = []esbuild.Plugin{aliasPlugin(ctx, env)}
	}

	result := esbuild.Build(options)
	if len(result.Errors) > 0 {
		messages := esbuild.FormatMessages(result.Errors, esbuild.FormatMessagesOptions{
			Kind: esbuild.ErrorMessage,
		})
		return "", fmt.Errorf("compile: %s", strings.TrimSpace(strings.Join(messages, "\n")))
	}
	if len(result.OutputFiles) == 0 {
		return "", errors.New("compile: no output produced")
	}
	return string(result.OutputFiles[0].Contents), nil
}

// aliasPlugin resolves aliased imports through the Env's alias table and
// leaves every other specifier to esbuild.
func aliasPlugin(ctx context.Context, env *Env) esbuild.Plugin {
	patterns := env.Aliases().Patterns()
	quoted := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		prefix, _, _ := strings.Cut(pattern, "*")
		quoted = append(quoted, regexp.QuoteMeta(prefix))
	}
	filter := "^(" + strings.Join(quoted, "|") + ")"

	return esbuild.Plugin{
		Name: "buildopts-aliases",
		Setup: func(build esbuild.PluginBuild) {
			build.OnResolve(esbuild.OnResolveOptions{Filter: filter}, func(args esbuild.OnResolveArgs) (esbuild.OnResolveResult, error) {
				if resolved, ok := env.ResolveAlias(ctx, args.Path); ok {
					return esbuild.OnResolveResult{Path: resolved}, nil
				}
				return esbuild.OnResolveResult{}, nil
			})
		},
	}
}

func evaluate(ctx context.Context, path, code string) (Export, error) {
	if err := ctx.Err(); err != nil {
		return Export{}, err
	}
	vm := goja.New()
	module := vm.NewObject()
	exports := vm.NewObject()
	if err := module.Set("exports", exports); err != nil {
		return Export{}, err
	}
	if err := vm.Set("module", module); err != nil {
		return Export{}, err
	}
	if err := vm.Set("exports", exports); err != nil {
		return Export{}, err
	}
	if err := vm.Set("process", map[string]any{"env": environ()}); err != nil {
		return Export{}, err
	}
	if err := vm.Set("require", func(call goja.FunctionCall) goja.Value {
		panic(vm.NewTypeError("module %q is not available to configuration scripts", call.Argument(0).String()))
	}); err != nil {
		return Export{}, err
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-stop:
		}
	}()

	if _, err := vm.RunScript(path, code); err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) && ctx.Err() != nil {
			return Export{}, fmt.Errorf("evaluate: %w", ctx.Err())
		}
		return Export{}, fmt.Errorf("evaluate: %w", err)
	}

	result := module.Get("exports")
	if obj, ok := result.(*goja.Object); ok {
		if inner := obj.Get("default"); inner != nil && inner.ToBoolean() {
			return Wrapped(inner.Export()), nil
		}
	}
	if result == nil || goja.IsUndefined(result) || goja.IsNull(result) {
		return Direct(nil), nil
	}
	return Direct(result.Export()), nil
}

func environ() map[string]any {
	out := map[string]any{}
	for _, kv := range os.Environ() {
		if key, value, ok := strings.Cut(kv, "="); ok {
			out[key] = value
		}
	}
	return out
}
