package store

import (
	"context"
	"fmt"

	"github.com/flowgraphai/flowgraph/internal/models"
)

// EdgeStore provides co-occurrence edge persistence.
type EdgeStore struct {
	Base
}

// NewEdgeStore creates a new EdgeStore.
func NewEdgeStore(base Base) *EdgeStore {
	return &EdgeStore{Base: base}
}

// ReplaceEdges swaps the persisted edge set for the given one atomically.
// Edge weights are absolute counts from a full re-assembly, not deltas, so
// the old set is discarded rather than merged.
func (s *EdgeStore) ReplaceEdges(ctx context.Context, edges []models.Edge) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return fmt.Errorf("replacing edges: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	if _, err := tx.Exec(ctx, `DELETE FROM fg_edges`); err != nil {
		return fmt.Errorf("clearing edges: %w", err)
	}

	for _, e := range edges {
		src, dst := models.OrderEndpoints(e.Source, e.Target)
		if _, err := tx.Exec(ctx,
			`INSERT INTO fg_edges (source, target, weight) VALUES ($1, $2, $3)`,
			src, dst, e.Weight); err != nil {
			return fmt.Errorf("inserting edge %s-%s: %w", src, dst, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing edge replacement: %w", err)
	}

	s.Log.WithField("count", len(edges)).Debug("edges replaced")

	return nil
}

// ListEdges returns edges ordered by endpoints, capped at limit.
func (s *EdgeStore) ListEdges(ctx context.Context, limit int) ([]models.Edge, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if limit < 1 || limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := s.Pool.Query(ctx,
		`SELECT `+edgeColumns+` FROM fg_edges ORDER BY source, target LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing edges: %w", err)
	}
	defer rows.Close()

	return collectEdges(rows)
}
