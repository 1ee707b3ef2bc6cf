package store

import (
	"context"
	"fmt"

	"github.com/flowgraphai/flowgraph/internal/models"
)

// GraphStore provides whole-graph read operations.
type GraphStore struct {
	Base
}

// NewGraphStore creates a new GraphStore.
func NewGraphStore(base Base) *GraphStore {
	return &GraphStore{Base: base}
}

// GetGraph returns the full persisted graph snapshot.
func (s *GraphStore) GetGraph(ctx context.Context) (*models.GraphResult, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	toolRows, err := s.Pool.Query(ctx,
		`SELECT `+toolColumns+` FROM fg_tools ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("fetching graph nodes: %w", err)
	}
	defer toolRows.Close()

	nodes, err := collectTools(toolRows)
	if err != nil {
		return nil, err
	}

	edgeRows, err := s.Pool.Query(ctx,
		`SELECT `+edgeColumns+` FROM fg_edges ORDER BY source, target`)
	if err != nil {
		return nil, fmt.Errorf("fetching graph edges: %w", err)
	}
	defer edgeRows.Close()

	edges, err := collectEdges(edgeRows)
	if err != nil {
		return nil, err
	}

	return &models.GraphResult{Nodes: nodes, Edges: edges}, nil
}

// Neighbors returns the tools adjacent to the given tool plus the
// connecting edges, ordered by descending edge weight.
func (s *GraphStore) Neighbors(ctx context.Context, toolID string) (*models.NeighborResult, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var exists bool
	if err := s.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM fg_tools WHERE id = $1)`, toolID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking tool %q: %w", toolID, err)
	}

	if !exists {
		return nil, models.ErrToolNotFound
	}

	edgeRows, err := s.Pool.Query(ctx,
		`SELECT `+edgeColumns+` FROM fg_edges
		WHERE source = $1 OR target = $1
		ORDER BY weight DESC, source, target`, toolID)
	if err != nil {
		return nil, fmt.Errorf("fetching neighbor edges: %w", err)
	}
	defer edgeRows.Close()

	edges, err := collectEdges(edgeRows)
	if err != nil {
		return nil, err
	}

	toolRows, err := s.Pool.Query(ctx,
		`SELECT `+toolColumns+` FROM fg_tools
		WHERE id IN (
			SELECT target FROM fg_edges WHERE source = $1
			UNION
			SELECT source FROM fg_edges WHERE target = $1
		)
		ORDER BY id`, toolID)
	if err != nil {
		return nil, fmt.Errorf("fetching neighbor tools: %w", err)
	}
	defer toolRows.Close()

	nodes, err := collectTools(toolRows)
	if err != nil {
		return nil, err
	}

	return &models.NeighborResult{Nodes: nodes, Edges: edges}, nil
}

// Stats summarizes the persisted graph.
type Stats struct {
	Tools       int     `json:"tools"`
	Edges       int     `json:"edges"`
	TotalWeight float64 `json:"total_weight"`
	Embedded    int     `json:"embedded"`
}

// GetStats returns aggregate counts over the persisted graph.
func (s *GraphStore) GetStats(ctx context.Context) (*Stats, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var st Stats

	err := s.Pool.QueryRow(ctx, `SELECT
		(SELECT count(*) FROM fg_tools),
		(SELECT count(*) FROM fg_edges),
		(SELECT COALESCE(sum(weight), 0) FROM fg_edges),
		(SELECT count(*) FROM fg_tools WHERE embedding IS NOT NULL)`,
	).Scan(&st.Tools, &st.Edges, &st.TotalWeight, &st.Embedded)
	if err != nil {
		return nil, fmt.Errorf("fetching graph stats: %w", err)
	}

	return &st, nil
}
