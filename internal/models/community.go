package models

import (
	"time"

	"github.com/google/uuid"
)

// Community is one cluster of tools at a single hierarchy level. Labels are
// unique within a level; every tool belongs to exactly one community per
// level.
type Community struct {
	RunID   uuid.UUID `json:"run_id"`
	Level   int       `json:"level"`
	Label   int       `json:"label"`
	Title   string    `json:"title,omitempty"`
	Summary string    `json:"summary,omitempty"`
	Size    int       `json:"size"`
	Members []string  `json:"members,omitempty"`
}

// Run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run records one pipeline execution: extraction, graph assembly, community
// detection and persistence. Warnings carry non-fatal anomalies such as
// non-convergence; a run with warnings is still usable.
type Run struct {
	ID         uuid.UUID  `json:"id"`
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
