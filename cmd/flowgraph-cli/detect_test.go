package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/flowgraphai/flowgraph/internal/leiden"
)

func writeWorkflowsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workflows.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func defaultDetectConfig() leiden.Config {
	return leiden.Config{Resolution: 1.0, MaxLocalPasses: 10, MaxLevels: 10}
}

func TestRunDetect(t *testing.T) {
	// Two dense groups joined by nothing: detection should separate them.
	path := writeWorkflowsFile(t, `[
		{"id": "w1", "name": "mapping", "included_tools": ["bwa", "samtools", "picard"]},
		{"id": "w2", "name": "mapping2", "included_tools": ["bwa", "samtools"]},
		{"id": "w3", "name": "qc", "included_tools": ["fastqc", "multiqc", "trimmomatic"]},
		{"id": "w4", "name": "qc2", "included_tools": ["fastqc", "multiqc"]}
	]`)

	result, err := runDetect(path, 1.0, defaultDetectConfig(), io.Discard)
	if err != nil {
		t.Fatalf("runDetect: %v", err)
	}

	if result.Workflows != 4 {
		t.Errorf("workflows: got %d, want 4", result.Workflows)
	}
	if result.Nodes != 6 {
		t.Errorf("nodes: got %d, want 6", result.Nodes)
	}
	if len(result.Hierarchy.Levels) == 0 {
		t.Fatal("expected at least one hierarchy level")
	}

	// bwa and samtools must share a community; they never co-occur with fastqc.
	finest := result.Hierarchy.Levels[0]
	if finest.Assignments["bwa"] != finest.Assignments["samtools"] {
		t.Errorf("bwa and samtools should share a community: %v", finest.Assignments)
	}
	if finest.Assignments["bwa"] == finest.Assignments["fastqc"] {
		t.Errorf("bwa and fastqc should be in different communities: %v", finest.Assignments)
	}
}

func TestRunDetectDegenerateRecords(t *testing.T) {
	// Single-tool and empty records contribute nodes but no edges.
	path := writeWorkflowsFile(t, `[
		{"id": "w1", "name": "solo", "included_tools": ["lonely"]},
		{"id": "w2", "name": "empty", "included_tools": []}
	]`)

	result, err := runDetect(path, 1.0, defaultDetectConfig(), io.Discard)
	if err != nil {
		t.Fatalf("runDetect: %v", err)
	}

	if result.Nodes != 1 {
		t.Errorf("nodes: got %d, want 1", result.Nodes)
	}
	if result.Edges != 0 {
		t.Errorf("edges: got %d, want 0", result.Edges)
	}
}

func TestRunDetectMissingFile(t *testing.T) {
	_, err := runDetect(filepath.Join(t.TempDir(), "nope.json"), 1.0, defaultDetectConfig(), io.Discard)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRunDetectInvalidConfig(t *testing.T) {
	path := writeWorkflowsFile(t, `[]`)

	cfg := leiden.Config{Resolution: -1, MaxLocalPasses: 10, MaxLevels: 10}
	if _, err := runDetect(path, 1.0, cfg, io.Discard); err == nil {
		t.Fatal("expected error for invalid resolution")
	}
}
