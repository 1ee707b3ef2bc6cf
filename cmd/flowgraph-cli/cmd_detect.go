package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/flowgraphai/flowgraph/internal/graph"
	"github.com/flowgraphai/flowgraph/internal/leiden"
	"github.com/flowgraphai/flowgraph/internal/source"
)

// detectResult is the offline detection output: the assembled graph summary
// plus the full community hierarchy.
type detectResult struct {
	Workflows  int              `json:"workflows"`
	Nodes      int              `json:"nodes"`
	Edges      int              `json:"edges"`
	Modularity float64          `json:"modularity"`
	Hierarchy  *leiden.Hierarchy `json:"hierarchy"`
}

func newDetectCmd() *cobra.Command {
	var (
		increment  float64
		resolution float64
		maxPasses  int
		maxLevels  int
	)

	cmd := &cobra.Command{
		Use:   "detect <workflows.json>",
		Short: "Run community detection offline on a workflows file",
		Long: "Assemble the co-occurrence graph from a workflow records file (as\n" +
			"written by `flowgraph extract`) and detect hierarchical communities,\n" +
			"without a server or database.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := leiden.Config{
				Resolution:     resolution,
				MaxLocalPasses: maxPasses,
				MaxLevels:      maxLevels,
			}
			result, err := runDetect(args[0], increment, cfg, os.Stderr)
			if err != nil {
				return err
			}
			output(result, fmt.Sprintf("%d levels", len(result.Hierarchy.Levels)))
			return nil
		},
	}

	cmd.Flags().Float64Var(&increment, "increment", 1.0, "Edge weight added per co-occurring pair per workflow")
	cmd.Flags().Float64Var(&resolution, "resolution", 1.0, "Modularity resolution parameter")
	cmd.Flags().IntVar(&maxPasses, "max-passes", 10, "Max local moving passes per level")
	cmd.Flags().IntVar(&maxLevels, "max-levels", 10, "Max hierarchy levels")
	return cmd
}

// runDetect loads workflow records, assembles the graph, and detects the
// community hierarchy. Log output goes to logSink so stdout stays parseable.
func runDetect(path string, increment float64, cfg leiden.Config, logSink io.Writer) (*detectResult, error) {
	log := logrus.New()
	log.SetOutput(logSink)

	records, err := source.LoadWorkflowsFile(path)
	if err != nil {
		return nil, err
	}

	detector, err := leiden.New(cfg, log)
	if err != nil {
		return nil, err
	}

	builder := graph.NewBuilder(increment, log)
	for _, rec := range records {
		builder.Ingest(rec)
	}
	g := builder.Finalize()

	hierarchy := detector.Detect(g)

	result := &detectResult{
		Workflows: len(records),
		Nodes:     g.NodeCount(),
		Edges:     g.EdgeCount(),
		Hierarchy: hierarchy,
	}
	if final := hierarchy.Final(); final != nil {
		result.Modularity = final.Modularity
	}
	return result, nil
}
