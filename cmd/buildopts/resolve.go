package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thediveo/enumflag/v2"

	"github.com/goliatone/go-buildopts"
	"github.com/goliatone/go-buildopts/pkg/activity"
	"github.com/goliatone/go-buildopts/pkg/module"
)

type outputFormat enumflag.Flag

const (
	outputJSON outputFormat = iota
	outputYAML
)

var outputFormatIDs = map[outputFormat][]string{
	outputJSON: {"json"},
	outputYAML: {"yaml", "yml"},
}

type engineFlag enumflag.Flag

const (
	engineExpr engineFlag = iota
	engineCEL
)

var engineIDs = map[engineFlag][]string{
	engineExpr: {string(buildopts.EngineExpr)},
	engineCEL:  {string(buildopts.EngineCEL)},
}

func (e engineFlag) engine() buildopts.Engine {
	if e == engineCEL {
		return buildopts.EngineCEL
	}
	return buildopts.EngineExpr
}

type resolveOptions struct {
	target     string
	options    string
	tsconfig   string
	set        []string
	strategies []string
	engine     engineFlag
	output     outputFormat
	trace      string
	entries    bool
	describe   bool
}

func (o *resolveOptions) addFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.target, "target", "t", "", "target reference project:target[:configuration]")
	fs.StringVar(&o.options, "options", "", "local options module (.json, .yaml, .toml, .js, .ts, .go)")
	fs.StringVar(&o.tsconfig, "tsconfig", "", "tsconfig whose path aliases TypeScript option modules use")
	fs.StringArrayVar(&o.set, "set", nil, "override an option, key=value (dotted keys nest, values parse as YAML)")
	fs.StringArrayVar(&o.strategies, "strategy", nil, "merge strategy for an option, key=expression or key=@deep")
	fs.Var(enumflag.New(&o.engine, "engine", engineIDs, enumflag.EnumCaseInsensitive), "engine", "strategy expression language: expr or cel")
	fs.Var(enumflag.New(&o.output, "output", outputFormatIDs, enumflag.EnumCaseInsensitive), "output", "output format: json or yaml")
	fs.StringVar(&o.trace, "trace", "", "print which layers set the given option path instead of the options")
	fs.BoolVar(&o.entries, "entries", false, "print the extra entry points derived from lazyStyles")
	fs.BoolVar(&o.describe, "describe", false, "print the resolved option paths and their types")
}

func newResolveCommand(global *globalOptions) *cobra.Command {
	opts := &resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the options of a target",
		Example: `  buildopts resolve --target app:build:production
  buildopts resolve --options build.options.ts --tsconfig tsconfig.json
  buildopts resolve -t app:build --set outputPath=dist/next --strategy styles='append_unique(base, override)'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResolve(cmd, global, opts)
		},
	}
	opts.addFlags(cmd.Flags())
	return cmd
}

func runResolve(cmd *cobra.Command, global *globalOptions, opts *resolveOptions) error {
	ctx := cmd.Context()
	zl, err := global.logger(cmd)
	if err != nil {
		return err
	}
	logger := buildopts.NewZerologLogger(zl)

	overrides, err := parseOverrides(opts.set)
	if err != nil {
		return err
	}
	strategies, err := parseStrategies(opts.strategies, opts.engine.engine())
	if err != nil {
		return err
	}

	modules, err := module.NewResolver(module.WithLoadLogger(logger))
	if err != nil {
		return err
	}
	resolverOpts := []buildopts.Option{
		buildopts.WithModuleResolver(modules),
		buildopts.WithTSConfig(opts.tsconfig),
		buildopts.WithEngine(opts.engine.engine()),
		buildopts.WithStrategies(strategies),
		buildopts.WithLogger(logger),
		buildopts.WithEvaluatorLogger(logger),
		buildopts.WithActivityHooks(activity.Hooks{activity.LogHook(zl)}),
	}
	ws, err := global.loadWorkspace(ctx)
	if err != nil {
		return err
	}
	if ws != nil {
		resolverOpts = append(resolverOpts, buildopts.WithTargetContext(ws))
	}
	resolver, err := buildopts.NewResolver(resolverOpts...)
	if err != nil {
		return err
	}

	req := buildopts.Request{Target: opts.target, Overrides: overrides}
	if opts.options != "" {
		req.Local = resolver.ModuleSource(opts.options)
		if opts.target == "" {
			local, err := req.Local.Fragment(ctx)
			if err != nil {
				return err
			}
			req.Target = local[buildopts.DefaultTargetKey]
		}
	}

	res, err := resolver.Resolve(ctx, req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case opts.trace != "":
		return writeValue(out, opts.output, res.Trace(opts.trace))
	case opts.describe:
		return writeDescriptors(out, res.Describe())
	case opts.entries:
		builder, err := res.BuilderOptions()
		if err != nil {
			return err
		}
		entries := builder.EntryPoints()
		if entries == nil {
			entries = []buildopts.EntryPoint{}
		}
		return writeValue(out, opts.output, entries)
	default:
		return writeValue(out, opts.output, res.Options)
	}
}

// parseOverrides turns key=value pairs into a fragment. Dotted keys build
// nested mappings.
func parseOverrides(pairs []string) (buildopts.Fragment, error) {
	out := buildopts.Fragment{}
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("--set %q: want key=value", pair)
		}
		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("--set %q: %w", pair, err)
		}
		if value == nil && raw != "" && raw != "null" && raw != "~" {
			value = raw
		}

		segments := strings.Split(key, ".")
		current := map[string]any(out)
		for _, segment := range segments[:len(segments)-1] {
			next, ok := current[segment].(map[string]any)
			if !ok {
				next = map[string]any{}
				current[segment] = next
			}
			current = next
		}
		current[segments[len(segments)-1]] = value
	}
	return out, nil
}

func parseStrategies(pairs []string, engine buildopts.Engine) (buildopts.Strategies, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	block := map[string]any{}
	for _, pair := range pairs {
		key, expression, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("--strategy %q: want key=expression", pair)
		}
		block[strings.TrimSpace(key)] = expression
	}
	evaluator := buildopts.NewEvaluator(engine, nil, buildopts.DefaultFunctions())
	return buildopts.StrategiesFromMap(block, evaluator)
}

func writeValue(w io.Writer, format outputFormat, value any) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case outputYAML:
		data, err = yaml.Marshal(value)
	default:
		data, err = json.MarshalIndent(value, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func writeDescriptors(w io.Writer, fields []buildopts.FieldDescriptor) error {
	table := tablewriter.NewWriter(w)
	table.Header("Path", "Type")
	for _, field := range fields {
		if err := table.Append(field.Path, field.Type); err != nil {
			return err
		}
	}
	return table.Render()
}
