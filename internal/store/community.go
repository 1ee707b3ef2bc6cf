package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/flowgraphai/flowgraph/internal/models"
)

// CommunityStore persists detected community hierarchies.
type CommunityStore struct {
	Base
}

// NewCommunityStore creates a new CommunityStore.
func NewCommunityStore(base Base) *CommunityStore {
	return &CommunityStore{Base: base}
}

const communityColumns = `run_id, level, label, title, summary, members`

// SaveCommunities inserts all communities for a run in one transaction.
func (s *CommunityStore) SaveCommunities(ctx context.Context, communities []models.Community) error {
	if len(communities) == 0 {
		return nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return fmt.Errorf("saving communities: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	for _, c := range communities {
		if _, err := tx.Exec(ctx,
			`INSERT INTO fg_communities (run_id, level, label, title, summary, members)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			c.RunID, c.Level, c.Label, c.Title, c.Summary, emptyIfNil(c.Members),
		); err != nil {
			return fmt.Errorf("inserting community %d/%d: %w", c.Level, c.Label, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing communities: %w", err)
	}

	s.Log.WithField("count", len(communities)).Debug("communities saved")

	return nil
}

// SetSummary stores the generated title and summary for one community.
func (s *CommunityStore) SetSummary(ctx context.Context, runID uuid.UUID, level, label int, title, summary string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := s.Pool.Exec(ctx,
		`UPDATE fg_communities SET title = $4, summary = $5
		WHERE run_id = $1 AND level = $2 AND label = $3`,
		runID, level, label, title, summary)
	if err != nil {
		return fmt.Errorf("storing community summary: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return models.ErrCommunityNotFound
	}

	return nil
}

// ListCommunities returns all communities at one level of a run, ordered
// by label.
func (s *CommunityStore) ListCommunities(ctx context.Context, runID uuid.UUID, level int) ([]models.Community, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx,
		`SELECT `+communityColumns+` FROM fg_communities
		WHERE run_id = $1 AND level = $2
		ORDER BY label`, runID, level)
	if err != nil {
		return nil, fmt.Errorf("listing communities: %w", err)
	}
	defer rows.Close()

	communities := make([]models.Community, 0, 16)

	for rows.Next() {
		c, err := scanCommunity(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning community row: %w", err)
		}

		communities = append(communities, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating community rows: %w", err)
	}

	return communities, nil
}

// GetCommunity returns a single community by run, level and label.
func (s *CommunityStore) GetCommunity(ctx context.Context, runID uuid.UUID, level, label int) (*models.Community, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx,
		`SELECT `+communityColumns+` FROM fg_communities
		WHERE run_id = $1 AND level = $2 AND label = $3`,
		runID, level, label)

	c, err := scanCommunity(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrCommunityNotFound
		}

		return nil, fmt.Errorf("fetching community %d/%d: %w", level, label, err)
	}

	return c, nil
}

// Levels returns the distinct hierarchy levels stored for a run, ascending.
func (s *CommunityStore) Levels(ctx context.Context, runID uuid.UUID) ([]int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx,
		`SELECT DISTINCT level FROM fg_communities WHERE run_id = $1 ORDER BY level`, runID)
	if err != nil {
		return nil, fmt.Errorf("listing community levels: %w", err)
	}
	defer rows.Close()

	var levels []int

	for rows.Next() {
		var l int
		if err := rows.Scan(&l); err != nil {
			return nil, fmt.Errorf("scanning level: %w", err)
		}

		levels = append(levels, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating levels: %w", err)
	}

	return levels, nil
}

func scanCommunity(scan func(dest ...any) error) (*models.Community, error) {
	var c models.Community

	if err := scan(&c.RunID, &c.Level, &c.Label, &c.Title, &c.Summary, &c.Members); err != nil {
		return nil, err
	}

	c.Size = len(c.Members)

	return &c, nil
}
