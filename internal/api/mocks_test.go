package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/flowgraphai/flowgraph/internal/models"
	"github.com/flowgraphai/flowgraph/internal/store"
)

type mockToolRepo struct {
	tools map[string]*models.Tool
	err   error
}

func (m *mockToolRepo) GetTool(_ context.Context, id string) (*models.Tool, error) {
	if m.err != nil {
		return nil, m.err
	}
	t, ok := m.tools[id]
	if !ok {
		return nil, models.ErrToolNotFound
	}
	return t, nil
}

func (m *mockToolRepo) ListTools(_ context.Context, limit int) ([]models.Tool, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.Tool, 0, len(m.tools))
	for _, t := range m.tools {
		if len(out) >= limit {
			break
		}
		out = append(out, *t)
	}
	return out, nil
}

type mockGraphRepo struct {
	graph     *models.GraphResult
	neighbors map[string]*models.NeighborResult
	stats     *store.Stats
	err       error
}

func (m *mockGraphRepo) GetGraph(context.Context) (*models.GraphResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.graph, nil
}

func (m *mockGraphRepo) Neighbors(_ context.Context, toolID string) (*models.NeighborResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	n, ok := m.neighbors[toolID]
	if !ok {
		return nil, models.ErrToolNotFound
	}
	return n, nil
}

func (m *mockGraphRepo) GetStats(context.Context) (*store.Stats, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.stats, nil
}

type mockRunRepo struct {
	runs       map[uuid.UUID]*models.Run
	latest     *models.Run
	inProgress bool
	err        error
}

func (m *mockRunRepo) GetRun(_ context.Context, id uuid.UUID) (*models.Run, error) {
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.runs[id]
	if !ok {
		return nil, models.ErrRunNotFound
	}
	return r, nil
}

func (m *mockRunRepo) ListRuns(_ context.Context, _ int) ([]models.Run, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.Run, 0, len(m.runs))
	for _, r := range m.runs {
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockRunRepo) LatestRun(context.Context) (*models.Run, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.latest == nil {
		return nil, models.ErrRunNotFound
	}
	return m.latest, nil
}

func (m *mockRunRepo) RunInProgress(context.Context) (bool, error) {
	return m.inProgress, m.err
}

type mockCommunityRepo struct {
	communities map[int][]models.Community // level -> communities
	levels      []int
	err         error
}

func (m *mockCommunityRepo) ListCommunities(_ context.Context, _ uuid.UUID, level int) ([]models.Community, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.communities[level], nil
}

func (m *mockCommunityRepo) GetCommunity(_ context.Context, _ uuid.UUID, level, label int) (*models.Community, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, c := range m.communities[level] {
		if c.Label == label {
			return &c, nil
		}
	}
	return nil, models.ErrCommunityNotFound
}

func (m *mockCommunityRepo) Levels(context.Context, uuid.UUID) ([]int, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.levels, nil
}

type mockPipeline struct {
	started chan struct{}
	err     error
}

func (m *mockPipeline) Run(context.Context) (*models.Run, error) {
	if m.started != nil {
		close(m.started)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &models.Run{ID: uuid.New(), Status: models.RunStatusCompleted}, nil
}
