package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newCommunityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "community",
		Short: "Community hierarchy commands",
	}
	cmd.AddCommand(communityLevelsCmd())
	cmd.AddCommand(communityListCmd())
	cmd.AddCommand(communityGetCmd())
	return cmd
}

func communityLevelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "levels <run-id>",
		Short: "List the hierarchy levels of a run",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			result, err := apiClient.Communities.Levels(context.Background(), args[0])
			if err != nil {
				fatal("community levels", err)
			}
			output(result, fmt.Sprintf("%d", len(result.Levels)))
		},
	}
}

func communityListCmd() *cobra.Command {
	var (
		runID string
		level int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List communities at one level (latest run unless --run is given)",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			var (
				result any
				err    error
			)
			if runID != "" {
				result, err = apiClient.Communities.List(ctx, runID, level)
			} else {
				result, err = apiClient.Communities.ListLatest(ctx, level)
			}
			if err != nil {
				fatal("community list", err)
			}
			output(result, "")
		},
	}
	cmd.Flags().StringVar(&runID, "run", "", "Run ID (defaults to the latest completed run)")
	cmd.Flags().IntVar(&level, "level", 0, "Hierarchy level")
	return cmd
}

func communityGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <run-id> <level> <label>",
		Short: "Get a single community with its members and summary",
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			level, err := strconv.Atoi(args[1])
			if err != nil {
				fatal("community get", fmt.Errorf("level must be an integer: %w", err))
			}
			label, err := strconv.Atoi(args[2])
			if err != nil {
				fatal("community get", fmt.Errorf("label must be an integer: %w", err))
			}

			community, err := apiClient.Communities.Get(context.Background(), args[0], level, label)
			if err != nil {
				fatal("community get", err)
			}
			output(community, community.Title)
		},
	}
}
