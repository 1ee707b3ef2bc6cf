// Package models defines data types for the workflow tool graph.
package models

// WorkflowRecord is one workflow as delivered by the record source: an
// ordered list of tool identifiers plus display metadata. Duplicate tool IDs
// within one record are allowed and represent repeated tool use.
type WorkflowRecord struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	NumSteps int      `json:"num_steps"`
	Tools    []string `json:"included_tools"`
}

// Degenerate reports whether the record can contribute no co-occurrence
// edges (fewer than two distinct tools). Degenerate records are tolerated,
// not rejected.
func (w *WorkflowRecord) Degenerate() bool {
	seen := make(map[string]struct{}, len(w.Tools))
	for _, t := range w.Tools {
		if t == "" {
			continue
		}
		seen[t] = struct{}{}
		if len(seen) > 1 {
			return false
		}
	}
	return true
}
