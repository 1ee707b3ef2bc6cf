package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/flowgraphai/flowgraph/internal/models"
)

// ToolStore provides tool node persistence.
type ToolStore struct {
	Base
}

// NewToolStore creates a new ToolStore.
func NewToolStore(base Base) *ToolStore {
	return &ToolStore{Base: base}
}

// UpsertTools inserts or refreshes the given tools in a single transaction.
// Existing embeddings and community assignments are preserved; metadata and
// last_seen_at are refreshed.
func (s *ToolStore) UpsertTools(ctx context.Context, tools []models.Tool) error {
	if len(tools) == 0 {
		return nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return fmt.Errorf("upserting tools: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	query := `INSERT INTO fg_tools
			(id, name, description, category, input_formats, output_formats, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			input_formats = EXCLUDED.input_formats,
			output_formats = EXCLUDED.output_formats,
			updated_at = now(),
			last_seen_at = now()`

	for i := range tools {
		t := &tools[i]
		if _, err := tx.Exec(ctx, query,
			t.ID, t.Name, t.Description, t.Category,
			emptyIfNil(t.InputFormats), emptyIfNil(t.OutputFormats),
		); err != nil {
			return fmt.Errorf("upserting tool %q: %w", t.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing tool upsert: %w", err)
	}

	s.Log.WithField("count", len(tools)).Debug("tools upserted")

	return nil
}

// GetTool returns a single tool by ID.
func (s *ToolStore) GetTool(ctx context.Context, id string) (*models.Tool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx, `SELECT `+toolColumns+` FROM fg_tools WHERE id = $1`, id)

	t, err := scanTool(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrToolNotFound
		}

		return nil, fmt.Errorf("fetching tool %q: %w", id, err)
	}

	return t, nil
}

// ListTools returns tools ordered by ID, capped at limit.
func (s *ToolStore) ListTools(ctx context.Context, limit int) ([]models.Tool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if limit < 1 || limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := s.Pool.Query(ctx,
		`SELECT `+toolColumns+` FROM fg_tools ORDER BY id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing tools: %w", err)
	}
	defer rows.Close()

	return collectTools(rows)
}

// SetEmbedding stores the embedding vector for a tool.
func (s *ToolStore) SetEmbedding(ctx context.Context, id string, embedding []float32) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := s.Pool.Exec(ctx,
		`UPDATE fg_tools SET embedding = $2, updated_at = now() WHERE id = $1`,
		id, embedding)
	if err != nil {
		return fmt.Errorf("storing embedding for %q: %w", id, err)
	}

	if tag.RowsAffected() == 0 {
		return models.ErrToolNotFound
	}

	return nil
}

// ToolsWithoutEmbedding returns tools that have no embedding yet, for
// backfilling the embed queue.
func (s *ToolStore) ToolsWithoutEmbedding(ctx context.Context) ([]models.Tool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx,
		`SELECT `+toolColumns+` FROM fg_tools WHERE embedding IS NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing unembedded tools: %w", err)
	}
	defer rows.Close()

	return collectTools(rows)
}

// AssignCommunities updates each tool's community_id to its finest-level
// community label from the latest run.
func (s *ToolStore) AssignCommunities(ctx context.Context, assignments map[string]int) error {
	if len(assignments) == 0 {
		return nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return fmt.Errorf("assigning communities: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	for id, label := range assignments {
		if _, err := tx.Exec(ctx,
			`UPDATE fg_tools SET community_id = $2, updated_at = now() WHERE id = $1`,
			id, label); err != nil {
			return fmt.Errorf("assigning community for %q: %w", id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing community assignment: %w", err)
	}

	return nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
