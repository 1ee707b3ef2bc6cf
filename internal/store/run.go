package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/flowgraphai/flowgraph/internal/models"
)

// RunStore persists pipeline run records.
type RunStore struct {
	Base
}

// NewRunStore creates a new RunStore.
func NewRunStore(base Base) *RunStore {
	return &RunStore{Base: base}
}

const runColumns = `id, status, workflows, nodes, edges, levels,
	modularity, warnings, error, started_at, finished_at`

// CreateRun inserts a new run in the running state.
func (s *RunStore) CreateRun(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx,
		`INSERT INTO fg_runs (id, status) VALUES ($1, $2) RETURNING `+runColumns,
		id, models.RunStatusRunning)

	r, err := scanRun(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("creating run: %w", err)
	}

	return r, nil
}

// FinishRun marks a run completed and records its result counters.
func (s *RunStore) FinishRun(ctx context.Context, run *models.Run) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := s.Pool.Exec(ctx,
		`UPDATE fg_runs SET
			status = $2, workflows = $3, nodes = $4, edges = $5,
			levels = $6, modularity = $7, warnings = $8,
			finished_at = now()
		WHERE id = $1`,
		run.ID, models.RunStatusCompleted,
		run.Workflows, run.Nodes, run.Edges,
		run.Levels, run.Modularity, emptyIfNil(run.Warnings))
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return models.ErrRunNotFound
	}

	return nil
}

// FailRun marks a run failed with the given error message.
func (s *RunStore) FailRun(ctx context.Context, id uuid.UUID, runErr string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := s.Pool.Exec(ctx,
		`UPDATE fg_runs SET status = $2, error = $3, finished_at = now() WHERE id = $1`,
		id, models.RunStatusFailed, runErr)
	if err != nil {
		return fmt.Errorf("failing run: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return models.ErrRunNotFound
	}

	return nil
}

// GetRun returns a run by ID.
func (s *RunStore) GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx, `SELECT `+runColumns+` FROM fg_runs WHERE id = $1`, id)

	r, err := scanRun(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrRunNotFound
		}

		return nil, fmt.Errorf("fetching run %s: %w", id, err)
	}

	return r, nil
}

// LatestRun returns the most recently started completed run, or
// ErrRunNotFound when no run has completed yet.
func (s *RunStore) LatestRun(ctx context.Context) (*models.Run, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx,
		`SELECT `+runColumns+` FROM fg_runs
		WHERE status = $1 ORDER BY started_at DESC LIMIT 1`,
		models.RunStatusCompleted)

	r, err := scanRun(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrRunNotFound
		}

		return nil, fmt.Errorf("fetching latest run: %w", err)
	}

	return r, nil
}

// ListRuns returns runs newest first, capped at limit.
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]models.Run, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if limit < 1 || limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := s.Pool.Query(ctx,
		`SELECT `+runColumns+` FROM fg_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	runs := make([]models.Run, 0, 16)

	for rows.Next() {
		r, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}

		runs = append(runs, *r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run rows: %w", err)
	}

	return runs, nil
}

// RunInProgress reports whether any run is currently in the running state.
func (s *RunStore) RunInProgress(ctx context.Context) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var running bool

	err := s.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM fg_runs WHERE status = $1)`,
		models.RunStatusRunning).Scan(&running)
	if err != nil {
		return false, fmt.Errorf("checking running runs: %w", err)
	}

	return running, nil
}

func scanRun(scan func(dest ...any) error) (*models.Run, error) {
	var r models.Run

	err := scan(
		&r.ID,
		&r.Status,
		&r.Workflows,
		&r.Nodes,
		&r.Edges,
		&r.Levels,
		&r.Modularity,
		&r.Warnings,
		&r.Error,
		&r.StartedAt,
		&r.FinishedAt,
	)
	if err != nil {
		return nil, err
	}

	return &r, nil
}
