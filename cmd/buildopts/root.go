package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/containerd/errdefs"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/goliatone/go-buildopts/pkg/fsutil"
	"github.com/goliatone/go-buildopts/pkg/workspace"
)

// WorkspaceEnv names the environment variable holding the default workspace.
const WorkspaceEnv = "BUILDOPTS_WORKSPACE"

type globalOptions struct {
	workspace string
	logLevel  string
}

func (g *globalOptions) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&g.workspace, "workspace", cmp.Or(os.Getenv(WorkspaceEnv), workspace.DefaultFile),
		"workspace document (JSON or YAML), default $"+WorkspaceEnv)
	fs.StringVar(&g.logLevel, "log-level", "warn", "log level: trace, debug, info, warn, error")
}

func (g *globalOptions) logger(cmd *cobra.Command) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(g.logLevel)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("--log-level: %w", err)
	}
	out := zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// loadWorkspace returns nil without error when the workspace file does not
// exist, so target-less resolutions still work.
func (g *globalOptions) loadWorkspace(ctx context.Context) (*workspace.Workspace, error) {
	ws, err := workspace.Load(ctx, fsutil.New(), g.workspace)
	if errors.Is(err, errdefs.ErrNotFound) {
		return nil, nil
	}
	return ws, err
}

func newRootCommand() *cobra.Command {
	global := &globalOptions{}
	root := &cobra.Command{
		Use:   "buildopts",
		Short: "Resolve build target options",
		Long: `buildopts computes the options a build runs with: the options registered
for a workspace target, overridden by a local options module, overridden by
explicit values.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	global.addFlags(root.PersistentFlags())

	root.AddCommand(newResolveCommand(global))
	root.AddCommand(newTargetsCommand(global))
	return root
}
