package models

import "time"

// Tool represents a vertex in the co-occurrence graph: one distinct tool
// identifier seen in at least one workflow record.
type Tool struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Category      string     `json:"category,omitempty"`
	InputFormats  []string   `json:"input_formats,omitempty"`
	OutputFormats []string   `json:"output_formats,omitempty"`
	Embedding     []float32  `json:"embedding,omitempty"`
	CommunityID   *int       `json:"community_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	LastSeenAt    *time.Time `json:"last_seen_at,omitempty"`
}

// EmbeddingText returns the text to embed for this tool.
func (t *Tool) EmbeddingText() string {
	if t.Description == "" {
		return t.Name
	}
	return t.Name + ": " + t.Description
}

// Edge is an undirected weighted co-occurrence edge between two distinct
// tools. Source is always lexicographically smaller than Target so each
// unordered pair has exactly one representation.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// OrderEndpoints returns the pair (a, b) in canonical edge order.
func OrderEndpoints(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

// GraphResult holds a snapshot of the persisted graph.
type GraphResult struct {
	Nodes []Tool `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// NeighborResult holds tools directly connected to a given tool plus the
// connecting edges.
type NeighborResult struct {
	Nodes []Tool `json:"nodes"`
	Edges []Edge `json:"edges"`
}
