package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/flowgraphai/flowgraph/internal/models"
)

// mockSource serves canned tools and workflow records.
type mockSource struct {
	tools   []models.Tool
	records []models.WorkflowRecord
	err     error
}

func (m *mockSource) FetchTools(context.Context) ([]models.Tool, error) {
	return m.tools, m.err
}

func (m *mockSource) FetchWorkflows(context.Context) ([]models.WorkflowRecord, error) {
	return m.records, m.err
}

// mockStore records everything persisted through the pipeline interfaces.
type mockStore struct {
	mu sync.Mutex

	tools       []models.Tool
	assignments map[string]int
	edges       []models.Edge
	communities []models.Community
	summaries   map[int]string // label -> title at coarsest level

	runs       map[uuid.UUID]*models.Run
	inProgress bool

	upsertErr error
	runErr    error
}

func newMockStore() *mockStore {
	return &mockStore{
		summaries: make(map[int]string),
		runs:      make(map[uuid.UUID]*models.Run),
	}
}

func (m *mockStore) UpsertTools(_ context.Context, tools []models.Tool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.tools = tools
	return nil
}

func (m *mockStore) AssignCommunities(_ context.Context, assignments map[string]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments = assignments
	return nil
}

func (m *mockStore) ReplaceEdges(_ context.Context, edges []models.Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges = edges
	return nil
}

func (m *mockStore) CreateRun(_ context.Context, id uuid.UUID) (*models.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.runErr != nil {
		return nil, m.runErr
	}
	run := &models.Run{ID: id, Status: models.RunStatusRunning}
	m.runs[id] = run
	return run, nil
}

func (m *mockStore) FinishRun(_ context.Context, run *models.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *run
	stored.Status = models.RunStatusCompleted
	m.runs[run.ID] = &stored
	return nil
}

func (m *mockStore) FailRun(_ context.Context, id uuid.UUID, runErr string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if run, ok := m.runs[id]; ok {
		run.Status = models.RunStatusFailed
		run.Error = runErr
	}
	return nil
}

func (m *mockStore) RunInProgress(context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inProgress, nil
}

func (m *mockStore) SaveCommunities(_ context.Context, communities []models.Community) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.communities = communities
	return nil
}

func (m *mockStore) SetSummary(_ context.Context, _ uuid.UUID, _, label int, title, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[label] = title
	return nil
}

func (m *mockStore) SetEmbedding(_ context.Context, _ string, _ []float32) error {
	return nil
}

// mockSummarizer returns a fixed title per call count.
type mockSummarizer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *mockSummarizer) Summarize(_ context.Context, _ []string) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", "", m.err
	}
	m.calls++
	return "Title", "Summary.", nil
}

// mockBroadcaster collects broadcast events.
type mockBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (m *mockBroadcaster) BroadcastEvent(eventType string, _ json.RawMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, eventType)
}

func (m *mockBroadcaster) eventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	copy(out, m.events)
	return out
}
