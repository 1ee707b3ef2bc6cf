package store

import (
	"context"
	"fmt"
)

// schema bootstraps the flowgraph tables. Statements are idempotent so
// EnsureSchema is safe to run on every startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS fg_tools (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		description    TEXT NOT NULL DEFAULT '',
		category       TEXT NOT NULL DEFAULT '',
		input_formats  TEXT[] NOT NULL DEFAULT '{}',
		output_formats TEXT[] NOT NULL DEFAULT '{}',
		embedding      REAL[],
		community_id   INTEGER,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_seen_at   TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS fg_edges (
		source     TEXT NOT NULL REFERENCES fg_tools(id) ON DELETE CASCADE,
		target     TEXT NOT NULL REFERENCES fg_tools(id) ON DELETE CASCADE,
		weight     DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (source, target),
		CHECK (source < target),
		CHECK (weight > 0)
	)`,
	`CREATE TABLE IF NOT EXISTS fg_runs (
		id          UUID PRIMARY KEY,
		status      TEXT NOT NULL,
		workflows   INTEGER NOT NULL DEFAULT 0,
		nodes       INTEGER NOT NULL DEFAULT 0,
		edges       INTEGER NOT NULL DEFAULT 0,
		levels      INTEGER NOT NULL DEFAULT 0,
		modularity  DOUBLE PRECISION NOT NULL DEFAULT 0,
		warnings    TEXT[] NOT NULL DEFAULT '{}',
		error       TEXT NOT NULL DEFAULT '',
		started_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		finished_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS fg_communities (
		run_id  UUID NOT NULL REFERENCES fg_runs(id) ON DELETE CASCADE,
		level   INTEGER NOT NULL,
		label   INTEGER NOT NULL,
		title   TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		members TEXT[] NOT NULL DEFAULT '{}',
		PRIMARY KEY (run_id, level, label)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_fg_edges_target ON fg_edges (target)`,
	`CREATE INDEX IF NOT EXISTS idx_fg_runs_started ON fg_runs (started_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_fg_communities_level ON fg_communities (run_id, level)`,
}

// EnsureSchema creates the flowgraph tables if they do not exist.
func (b *Base) EnsureSchema(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	for _, stmt := range schema {
		if _, err := b.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}

	b.Log.Debug("database schema ensured")

	return nil
}
