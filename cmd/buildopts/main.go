// Command buildopts resolves the effective options of a build target.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	os.Exit(run())
}

func run() int {
	cmd := newRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "buildopts:", err)
		return 1
	}
	return 0
}
