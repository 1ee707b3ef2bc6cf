package store

import (
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/flowgraphai/flowgraph/internal/models"
)

// toolColumns lists the columns selected for tool queries (excluding embedding).
const toolColumns = `id, name, description, category, input_formats,
	output_formats, community_id, created_at, updated_at, last_seen_at`

// edgeColumns lists the columns selected for edge queries.
const edgeColumns = `source, target, weight`

// scanTool scans a single row into a models.Tool.
func scanTool(scan func(dest ...any) error) (*models.Tool, error) {
	var t models.Tool

	err := scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.Category,
		&t.InputFormats,
		&t.OutputFormats,
		&t.CommunityID,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.LastSeenAt,
	)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// scanEdge scans a single row into a models.Edge.
func scanEdge(scan func(dest ...any) error) (*models.Edge, error) {
	var e models.Edge

	if err := scan(&e.Source, &e.Target, &e.Weight); err != nil {
		return nil, err
	}

	return &e, nil
}

// collectTools scans all rows into a tool slice.
func collectTools(rows pgx.Rows) ([]models.Tool, error) {
	tools := make([]models.Tool, 0, 16)

	for rows.Next() {
		t, err := scanTool(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning tool row: %w", err)
		}

		tools = append(tools, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tool rows: %w", err)
	}

	return tools, nil
}

// collectEdges scans all rows into an edge slice.
func collectEdges(rows pgx.Rows) ([]models.Edge, error) {
	edges := make([]models.Edge, 0, 16)

	for rows.Next() {
		e, err := scanEdge(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning edge row: %w", err)
		}

		edges = append(edges, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating edge rows: %w", err)
	}

	return edges, nil
}
