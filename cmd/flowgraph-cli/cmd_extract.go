package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/flowgraphai/flowgraph/internal/source"
)

func newExtractCmd() *cobra.Command {
	var (
		galaxyURL     string
		apiKey        string
		workflowsOut  string
		toolsOut      string
		toolLimit     int
		workflowLimit int
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract tools and workflows from a Galaxy instance to JSON files",
		Long: "Fetch the tool panel and published workflows directly from a Galaxy\n" +
			"instance and write them as JSON, suitable for offline detection with\n" +
			"`flowgraph detect`.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if galaxyURL == "" {
				galaxyURL = os.Getenv("GALAXY_URL")
			}
			if apiKey == "" {
				apiKey = os.Getenv("GALAXY_API_KEY")
			}
			if galaxyURL == "" {
				return fmt.Errorf("--galaxy-url or GALAXY_URL is required")
			}

			log := logrus.New()
			log.SetOutput(os.Stderr)

			gc := source.NewGalaxyClient(galaxyURL, apiKey, log)
			if toolLimit > 0 {
				gc.ToolLimit = toolLimit
			}
			if workflowLimit > 0 {
				gc.WorkflowLimit = workflowLimit
			}

			ctx := context.Background()

			records, err := gc.FetchWorkflows(ctx)
			if err != nil {
				return fmt.Errorf("fetching workflows: %w", err)
			}
			if err := writeJSONFile(workflowsOut, records); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "wrote %d workflows to %s\n", len(records), workflowsOut)

			if toolsOut != "" {
				tools, err := gc.FetchTools(ctx)
				if err != nil {
					return fmt.Errorf("fetching tools: %w", err)
				}
				if err := writeJSONFile(toolsOut, tools); err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "wrote %d tools to %s\n", len(tools), toolsOut)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&galaxyURL, "galaxy-url", "", "Galaxy instance URL (env: GALAXY_URL)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Galaxy API key (env: GALAXY_API_KEY)")
	cmd.Flags().StringVar(&workflowsOut, "out", "workflows.json", "Output path for workflow records")
	cmd.Flags().StringVar(&toolsOut, "tools-out", "", "Also write tool metadata to this path")
	cmd.Flags().IntVar(&toolLimit, "tool-limit", 0, "Max tools to fetch (0 = default cap)")
	cmd.Flags().IntVar(&workflowLimit, "workflow-limit", 0, "Max workflows to fetch (0 = default cap)")
	return cmd
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
