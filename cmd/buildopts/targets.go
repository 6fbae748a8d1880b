package main

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newTargetsCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "targets [pattern]",
		Short: "List workspace targets, optionally filtered by a glob such as '*:build'",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := global.loadWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			if ws == nil {
				return fmt.Errorf("workspace %s not found", global.workspace)
			}
			pattern := ""
			if len(args) == 1 {
				pattern = args[0]
			}
			infos, err := ws.Targets(pattern)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Target", "Builder", "Configurations", "Default")
			for _, info := range infos {
				if err := table.Append(info.Reference, info.Builder, strings.Join(info.Configurations, ","), info.DefaultConfiguration); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
}
