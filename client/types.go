package client

import "time"

// Tool is a vertex in the co-occurrence graph.
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

// Edge is an undirected weighted co-occurrence edge.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// Graph is a snapshot of the persisted graph.
type Graph struct {
	Nodes []Tool `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Neighborhood holds the tools adjacent to a tool plus the connecting edges.
type Neighborhood struct {
	Nodes []Tool `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Run is one pipeline execution record.
type Run struct {
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	Workflows  int        `json:"workflows"`
	Nodes      int        `json:"nodes"`
	Edges      int        `json:"edges"`
	Levels     int        `json:"levels"`
	Modularity float64    `json:"modularity"`
	Warnings   []string   `json:"warnings,omitempty"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Community is one cluster of tools at a single hierarchy level.
type Community struct {
	RunID   string   `json:"run_id"`
	Level   int      `json:"level"`
	Label   int      `json:"label"`
	Title   string   `json:"title,omitempty"`
	Summary string   `json:"summary,omitempty"`
	Size    int      `json:"size"`
	Members []string `json:"members,omitempty"`
}

// HealthResponse is the liveness check payload.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	Galaxy        string  `json:"galaxy"`
	Clients       int     `json:"websocket_clients"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// StatsResponse is the aggregate statistics payload.
type StatsResponse struct {
	Tools       int     `json:"tools"`
	Edges       int     `json:"edges"`
	TotalWeight float64 `json:"total_weight"`
	Embedded    int     `json:"embedded"`
}

// ToolList is the list-tools payload.
type ToolList struct {
	Tools []Tool `json:"tools"`
	Count int    `json:"count"`
}

// RunList is the list-runs payload.
type RunList struct {
	Runs  []Run `json:"runs"`
	Count int   `json:"count"`
}

// CommunityList is the list-communities payload.
type CommunityList struct {
	RunID       string      `json:"run_id"`
	Level       int         `json:"level"`
	Communities []Community `json:"communities"`
	Count       int         `json:"count"`
}

// LevelList is the list-levels payload.
type LevelList struct {
	Levels []int `json:"levels"`
}

// TriggerResponse is returned by POST /runs.
type TriggerResponse struct {
	Status string `json:"status"`
}
