package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestServer creates a test server that routes to the given handler map.
// Keys are "METHOD /path", values are handler funcs.
func newTestServer(t *testing.T, routes map[string]http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, handler := range routes {
		mux.HandleFunc(pattern, handler)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c := New(srv.URL)
	return srv, c
}

func jsonResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func TestHealth(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/health": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, HealthResponse{Status: "ok", Version: "0.3.0"})
		},
	})
	resp, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("got status %q, want ok", resp.Status)
	}
	if resp.Version != "0.3.0" {
		t.Errorf("got version %q, want 0.3.0", resp.Version)
	}
}

func TestStats(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/stats": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, StatsResponse{Tools: 1200, Edges: 4800, TotalWeight: 9600.5, Embedded: 1100})
		},
	})
	resp, err := c.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if resp.Tools != 1200 {
		t.Errorf("got tools %d, want 1200", resp.Tools)
	}
	if resp.TotalWeight != 9600.5 {
		t.Errorf("got total weight %f, want 9600.5", resp.TotalWeight)
	}
}

func TestTools(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/tools": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("limit") != "25" {
				jsonResponse(w, 400, map[string]string{"code": "invalid_request", "message": "unexpected limit"})
				return
			}
			jsonResponse(w, 200, ToolList{Tools: []Tool{{ID: "bwa", Name: "BWA"}}, Count: 1})
		},
		"GET /api/v1/tools/bwa": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, Tool{ID: "bwa", Name: "BWA", Category: "Mapping"})
		},
	})

	ctx := context.Background()

	list, err := c.Tools.List(ctx, 25)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if list.Count != 1 || len(list.Tools) != 1 {
		t.Errorf("List: got count=%d, len=%d", list.Count, len(list.Tools))
	}

	tool, err := c.Tools.Get(ctx, "bwa")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if tool.Category != "Mapping" {
		t.Errorf("Get: got category %q, want Mapping", tool.Category)
	}
}

func TestGraph(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/graph": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, Graph{
				Nodes: []Tool{{ID: "bwa"}, {ID: "samtools"}},
				Edges: []Edge{{Source: "bwa", Target: "samtools", Weight: 3}},
			})
		},
		"GET /api/v1/graph/neighbors/bwa": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, Neighborhood{
				Nodes: []Tool{{ID: "samtools"}},
				Edges: []Edge{{Source: "bwa", Target: "samtools", Weight: 3}},
			})
		},
	})

	ctx := context.Background()

	g, err := c.Graph.Get(ctx)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if len(g.Nodes) != 2 || len(g.Edges) != 1 {
		t.Errorf("Get: got %d nodes, %d edges", len(g.Nodes), len(g.Edges))
	}

	nb, err := c.Graph.Neighbors(ctx, "bwa")
	if err != nil {
		t.Fatalf("Neighbors error: %v", err)
	}
	if len(nb.Nodes) != 1 || nb.Edges[0].Weight != 3 {
		t.Errorf("Neighbors: got %d nodes, weight %f", len(nb.Nodes), nb.Edges[0].Weight)
	}
}

func TestRuns(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/runs": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 202, TriggerResponse{Status: "started"})
		},
		"GET /api/v1/runs": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, RunList{Runs: []Run{{ID: "r1", Status: "completed"}}, Count: 1})
		},
		"GET /api/v1/runs/latest": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, Run{ID: "r1", Status: "completed", Modularity: 0.42})
		},
		"GET /api/v1/runs/r1": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, Run{ID: "r1", Status: "completed", Levels: 3})
		},
	})

	ctx := context.Background()

	trig, err := c.Runs.Trigger(ctx)
	if err != nil {
		t.Fatalf("Trigger error: %v", err)
	}
	if trig.Status != "started" {
		t.Errorf("Trigger: got status %q, want started", trig.Status)
	}

	list, err := c.Runs.List(ctx, 0)
	if err != nil || list.Count != 1 {
		t.Fatalf("List: err=%v, count=%d", err, list.Count)
	}

	latest, err := c.Runs.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest error: %v", err)
	}
	if latest.Modularity != 0.42 {
		t.Errorf("Latest: got modularity %f, want 0.42", latest.Modularity)
	}

	run, err := c.Runs.Get(ctx, "r1")
	if err != nil || run.Levels != 3 {
		t.Fatalf("Get: err=%v, levels=%d", err, run.Levels)
	}
}

func TestCommunities(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/runs/r1/levels": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, LevelList{Levels: []int{0, 1, 2}})
		},
		"GET /api/v1/runs/r1/communities": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("level") != "1" {
				jsonResponse(w, 400, map[string]string{"code": "invalid_request", "message": "unexpected level"})
				return
			}
			jsonResponse(w, 200, CommunityList{RunID: "r1", Level: 1, Communities: []Community{{Label: 0, Size: 4}}, Count: 1})
		},
		"GET /api/v1/communities": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, CommunityList{RunID: "r1", Level: 0, Communities: []Community{{Label: 0}, {Label: 1}}, Count: 2})
		},
		"GET /api/v1/runs/r1/communities/1/0": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, Community{RunID: "r1", Level: 1, Label: 0, Title: "Alignment", Members: []string{"bwa", "samtools"}})
		},
	})

	ctx := context.Background()

	levels, err := c.Communities.Levels(ctx, "r1")
	if err != nil || len(levels.Levels) != 3 {
		t.Fatalf("Levels: err=%v, len=%d", err, len(levels.Levels))
	}

	list, err := c.Communities.List(ctx, "r1", 1)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if list.Count != 1 || list.Communities[0].Size != 4 {
		t.Errorf("List: got count=%d, size=%d", list.Count, list.Communities[0].Size)
	}

	latest, err := c.Communities.ListLatest(ctx, 0)
	if err != nil || latest.Count != 2 {
		t.Fatalf("ListLatest: err=%v, count=%d", err, latest.Count)
	}

	comm, err := c.Communities.Get(ctx, "r1", 1, 0)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if comm.Title != "Alignment" || len(comm.Members) != 2 {
		t.Errorf("Get: got title %q, %d members", comm.Title, len(comm.Members))
	}
}

func TestAPIError(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/tools/missing": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 404, map[string]string{"code": "not_found", "message": "tool not found"})
		},
		"POST /api/v1/runs": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 409, map[string]string{"code": "conflict", "message": "a run is already in progress"})
		},
	})

	ctx := context.Background()

	_, err := c.Tools.Get(ctx, "missing")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsNotFound(err) {
		t.Errorf("expected not found, got: %v", err)
	}

	_, err = c.Runs.Trigger(ctx)
	if !IsConflict(err) {
		t.Errorf("expected conflict, got: %v", err)
	}
}

func TestAPIErrorNonJSON(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/health": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(502)
			w.Write([]byte("bad gateway")) //nolint:errcheck
		},
	})

	_, err := c.Health(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != 502 || apiErr.Code != "unknown" {
		t.Errorf("got status=%d code=%q", apiErr.StatusCode, apiErr.Code)
	}
}
