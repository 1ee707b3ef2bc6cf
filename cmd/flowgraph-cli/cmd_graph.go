package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Co-occurrence graph commands",
	}
	cmd.AddCommand(graphShowCmd())
	cmd.AddCommand(graphNeighborsCmd())
	cmd.AddCommand(graphStatsCmd())
	return cmd
}

func graphShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Dump the full graph as nodes and edges",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			result, err := apiClient.Graph.Get(context.Background())
			if err != nil {
				fatal("graph show", err)
			}
			output(result, fmt.Sprintf("%d nodes, %d edges", len(result.Nodes), len(result.Edges)))
		},
	}
}

func graphNeighborsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "neighbors <tool-id>",
		Short: "Get tools adjacent to a tool, strongest edges first",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			result, err := apiClient.Graph.Neighbors(context.Background(), args[0])
			if err != nil {
				fatal("graph neighbors", err)
			}
			if flagFmt == "table" {
				rows := make([][]string, 0, len(result.Edges))
				for _, e := range result.Edges {
					other := e.Target
					if other == args[0] {
						other = e.Source
					}
					rows = append(rows, []string{other, fmt.Sprintf("%g", e.Weight)})
				}
				formatTable([]string{"TOOL", "WEIGHT"}, rows)
				return
			}
			output(result, "")
		},
	}
}

func graphStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate graph statistics",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			stats, err := apiClient.Stats(context.Background())
			if err != nil {
				fatal("graph stats", err)
			}
			output(stats, "")
		},
	}
}
