package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/flowgraphai/flowgraph/internal/models"
	"github.com/flowgraphai/flowgraph/internal/store"
)

// ToolRepository provides tool node reads.
type ToolRepository interface {
	GetTool(ctx context.Context, id string) (*models.Tool, error)
	ListTools(ctx context.Context, limit int) ([]models.Tool, error)
}

// GraphRepository provides whole-graph reads.
type GraphRepository interface {
	GetGraph(ctx context.Context) (*models.GraphResult, error)
	Neighbors(ctx context.Context, toolID string) (*models.NeighborResult, error)
	GetStats(ctx context.Context) (*store.Stats, error)
}

// RunRepository provides pipeline run reads.
type RunRepository interface {
	GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error)
	ListRuns(ctx context.Context, limit int) ([]models.Run, error)
	LatestRun(ctx context.Context) (*models.Run, error)
	RunInProgress(ctx context.Context) (bool, error)
}

// CommunityRepository provides community hierarchy reads.
type CommunityRepository interface {
	ListCommunities(ctx context.Context, runID uuid.UUID, level int) ([]models.Community, error)
	GetCommunity(ctx context.Context, runID uuid.UUID, level, label int) (*models.Community, error)
	Levels(ctx context.Context, runID uuid.UUID) ([]int, error)
}

// PipelineRunner executes one full pipeline run.
type PipelineRunner interface {
	Run(ctx context.Context) (*models.Run, error)
}
