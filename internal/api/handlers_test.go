package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/flowgraphai/flowgraph/internal/models"
	"github.com/flowgraphai/flowgraph/internal/store"
)

func TestHealth_Liveness(t *testing.T) {
	w := doRequest(t, testRouter(newTestDeps()), http.MethodGet, "/api/v1/health")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp map[string]any
	decodeBody(t, w, &resp)

	if resp["status"] != "ok" {
		t.Errorf("status field = %v, want ok", resp["status"])
	}
	if resp["database"] != "not_configured" {
		t.Errorf("database = %v, want not_configured without a pool", resp["database"])
	}
}

func TestTools_Get(t *testing.T) {
	d := newTestDeps()
	d.tools.tools = map[string]*models.Tool{
		"bwa": {ID: "bwa", Name: "BWA"},
	}
	router := testRouter(d)

	w := doRequest(t, router, http.MethodGet, "/api/v1/tools/bwa")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var tool models.Tool
	decodeBody(t, w, &tool)
	if tool.Name != "BWA" {
		t.Errorf("name = %q, want BWA", tool.Name)
	}

	w = doRequest(t, router, http.MethodGet, "/api/v1/tools/missing")
	if w.Code != http.StatusNotFound {
		t.Errorf("missing tool status = %d, want 404", w.Code)
	}
}

func TestGraph_GetGraphAndStats(t *testing.T) {
	d := newTestDeps()
	d.graph.graph = &models.GraphResult{
		Nodes: []models.Tool{{ID: "a"}, {ID: "b"}},
		Edges: []models.Edge{{Source: "a", Target: "b", Weight: 2}},
	}
	d.graph.stats = &store.Stats{Tools: 2, Edges: 1, TotalWeight: 2}
	router := testRouter(d)

	w := doRequest(t, router, http.MethodGet, "/api/v1/graph")
	if w.Code != http.StatusOK {
		t.Fatalf("graph status = %d, want 200", w.Code)
	}

	var graph models.GraphResult
	decodeBody(t, w, &graph)
	if len(graph.Nodes) != 2 || len(graph.Edges) != 1 {
		t.Errorf("graph = %d nodes / %d edges, want 2/1", len(graph.Nodes), len(graph.Edges))
	}

	w = doRequest(t, router, http.MethodGet, "/api/v1/stats")
	if w.Code != http.StatusOK {
		t.Fatalf("stats status = %d, want 200", w.Code)
	}

	var stats store.Stats
	decodeBody(t, w, &stats)
	if stats.Tools != 2 || stats.TotalWeight != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestGraph_NeighborsNotFound(t *testing.T) {
	w := doRequest(t, testRouter(newTestDeps()), http.MethodGet, "/api/v1/graph/neighbors/ghost")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestRuns_TriggerStartsPipeline(t *testing.T) {
	d := newTestDeps()
	d.pipeline.started = make(chan struct{})
	router := testRouter(d)

	w := doRequest(t, router, http.MethodPost, "/api/v1/runs")
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", w.Code)
	}

	select {
	case <-d.pipeline.started:
	case <-time.After(time.Second):
		t.Fatal("pipeline never started")
	}
}

func TestRuns_TriggerConflictWhileRunning(t *testing.T) {
	d := newTestDeps()
	d.runs.inProgress = true

	w := doRequest(t, testRouter(d), http.MethodPost, "/api/v1/runs")
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestRuns_GetAndLatest(t *testing.T) {
	id := uuid.New()
	run := &models.Run{ID: id, Status: models.RunStatusCompleted, Modularity: 0.42}

	d := newTestDeps()
	d.runs.runs = map[uuid.UUID]*models.Run{id: run}
	d.runs.latest = run
	router := testRouter(d)

	w := doRequest(t, router, http.MethodGet, "/api/v1/runs/"+id.String())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got models.Run
	decodeBody(t, w, &got)
	if got.Modularity != 0.42 {
		t.Errorf("modularity = %v, want 0.42", got.Modularity)
	}

	w = doRequest(t, router, http.MethodGet, "/api/v1/runs/latest")
	if w.Code != http.StatusOK {
		t.Errorf("latest status = %d, want 200", w.Code)
	}

	w = doRequest(t, router, http.MethodGet, "/api/v1/runs/not-a-uuid")
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", w.Code)
	}
}

func TestCommunities_ListAndGet(t *testing.T) {
	runID := uuid.New()
	d := newTestDeps()
	d.runs.latest = &models.Run{ID: runID, Status: models.RunStatusCompleted}
	d.communities.levels = []int{0, 1}
	d.communities.communities = map[int][]models.Community{
		0: {
			{RunID: runID, Level: 0, Label: 0, Title: "Alignment", Members: []string{"a", "b"}},
			{RunID: runID, Level: 0, Label: 1, Members: []string{"c"}},
		},
	}
	router := testRouter(d)

	w := doRequest(t, router, http.MethodGet, "/api/v1/runs/"+runID.String()+"/levels")
	if w.Code != http.StatusOK {
		t.Fatalf("levels status = %d, want 200", w.Code)
	}

	w = doRequest(t, router, http.MethodGet, "/api/v1/runs/"+runID.String()+"/communities?level=0")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", w.Code)
	}

	var listResp struct {
		Count       int                `json:"count"`
		Communities []models.Community `json:"communities"`
	}
	decodeBody(t, w, &listResp)
	if listResp.Count != 2 {
		t.Errorf("count = %d, want 2", listResp.Count)
	}

	// Latest-run convenience route resolves to the same data.
	w = doRequest(t, router, http.MethodGet, "/api/v1/communities")
	if w.Code != http.StatusOK {
		t.Errorf("latest communities status = %d, want 200", w.Code)
	}

	w = doRequest(t, router, http.MethodGet, "/api/v1/runs/"+runID.String()+"/communities/0/0")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", w.Code)
	}

	var community models.Community
	decodeBody(t, w, &community)
	if community.Title != "Alignment" {
		t.Errorf("title = %q, want Alignment", community.Title)
	}

	w = doRequest(t, router, http.MethodGet, "/api/v1/runs/"+runID.String()+"/communities/0/99")
	if w.Code != http.StatusNotFound {
		t.Errorf("missing community status = %d, want 404", w.Code)
	}
}

func TestCommunities_LatestWithoutRuns(t *testing.T) {
	w := doRequest(t, testRouter(newTestDeps()), http.MethodGet, "/api/v1/communities")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when no run completed", w.Code)
	}
}
