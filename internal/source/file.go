package source

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/flowgraphai/flowgraph/internal/models"
)

// LoadWorkflowsFile reads workflow records from a JSON file, the same
// format produced by `flowgraph-cli extract`.
func LoadWorkflowsFile(path string) ([]models.WorkflowRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workflows file: %w", err)
	}

	var records []models.WorkflowRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing workflows file %s: %w", path, err)
	}

	return records, nil
}

// LoadToolsFile reads tool metadata from a JSON file.
func LoadToolsFile(path string) ([]models.Tool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tools file: %w", err)
	}

	var tools []models.Tool
	if err := json.Unmarshal(data, &tools); err != nil {
		return nil, fmt.Errorf("parsing tools file %s: %w", path, err)
	}

	return tools, nil
}

// sortedSet returns the set's members as a sorted slice.
func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}

	sort.Strings(out)

	return out
}
