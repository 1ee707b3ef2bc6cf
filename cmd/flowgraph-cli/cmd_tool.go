package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newToolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tool",
		Short: "Tool catalog commands",
	}
	cmd.AddCommand(toolListCmd())
	cmd.AddCommand(toolGetCmd())
	return cmd
}

func toolListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tools in the graph",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			result, err := apiClient.Tools.List(context.Background(), limit)
			if err != nil {
				fatal("tool list", err)
			}
			if flagFmt == "table" {
				rows := make([][]string, 0, len(result.Tools))
				for _, t := range result.Tools {
					community := ""
					if t.CommunityID != nil {
						community = strconv.Itoa(*t.CommunityID)
					}
					rows = append(rows, []string{t.ID, t.Name, t.Category, community})
				}
				formatTable([]string{"ID", "NAME", "CATEGORY", "COMMUNITY"}, rows)
				return
			}
			output(result, fmt.Sprintf("%d", result.Count))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results")
	return cmd
}

func toolGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a tool by ID",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			tool, err := apiClient.Tools.Get(context.Background(), args[0])
			if err != nil {
				fatal("tool get", err)
			}
			output(tool, tool.ID)
		},
	}
}
