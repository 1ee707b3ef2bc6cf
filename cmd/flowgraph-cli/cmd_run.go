package main

import (
	"context"
	"fmt"
	"time"

	"github.com/flowgraphai/flowgraph/client"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Pipeline run commands",
	}
	cmd.AddCommand(runTriggerCmd())
	cmd.AddCommand(runListCmd())
	cmd.AddCommand(runLatestCmd())
	cmd.AddCommand(runGetCmd())
	return cmd
}

func runTriggerCmd() *cobra.Command {
	var (
		wait    bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Start a new pipeline run",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			resp, err := apiClient.Runs.Trigger(ctx)
			if err != nil {
				fatal("run trigger", err)
			}
			if !wait {
				output(resp, resp.Status)
				return
			}

			run, err := waitForRun(ctx, apiClient, timeout)
			if err != nil {
				fatal("run trigger", err)
			}
			output(run, run.ID)
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", false, "Poll until the run finishes")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Minute, "Max time to wait with --wait")
	return cmd
}

// waitForRun polls the newest run until it leaves the running state.
func waitForRun(ctx context.Context, c *client.Client, timeout time.Duration) (*client.Run, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("timed out waiting for run to finish")
		case <-ticker.C:
		}

		list, err := c.Runs.List(ctx, 1)
		if err != nil {
			return nil, err
		}
		if list.Count == 0 {
			continue
		}

		run := list.Runs[0]
		if run.Status == "running" {
			continue
		}
		if run.Status == "failed" {
			return &run, fmt.Errorf("run failed: %s", run.Error)
		}
		return &run, nil
	}
}

func runListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List runs, newest first",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			result, err := apiClient.Runs.List(context.Background(), limit)
			if err != nil {
				fatal("run list", err)
			}
			if flagFmt == "table" {
				rows := make([][]string, 0, len(result.Runs))
				for _, r := range result.Runs {
					rows = append(rows, []string{
						r.ID, r.Status,
						fmt.Sprintf("%d", r.Nodes),
						fmt.Sprintf("%d", r.Edges),
						fmt.Sprintf("%d", r.Levels),
						fmt.Sprintf("%.4f", r.Modularity),
					})
				}
				formatTable([]string{"ID", "STATUS", "NODES", "EDGES", "LEVELS", "MODULARITY"}, rows)
				return
			}
			output(result, fmt.Sprintf("%d", result.Count))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results")
	return cmd
}

func runLatestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "latest",
		Short: "Show the most recent completed run",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			run, err := apiClient.Runs.Latest(context.Background())
			if err != nil {
				fatal("run latest", err)
			}
			output(run, run.ID)
		},
	}
}

func runGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <run-id>",
		Short: "Get a run by ID",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			run, err := apiClient.Runs.Get(context.Background(), args[0])
			if err != nil {
				fatal("run get", err)
			}
			output(run, run.ID)
		},
	}
}
