package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func galaxyFixture(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(v); err != nil {
			t.Errorf("encoding fixture response: %v", err)
		}
	}

	mux.HandleFunc("/api/version", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"version_major": "24.1"})
	})

	mux.HandleFunc("/api/tools", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []map[string]any{
			{"id": "bwa", "model_class": "Tool", "panel_section_name": "Mapping"},
			{"id": "mapping_section", "model_class": "ToolSection"},
			{"id": "samtools", "model_class": "Tool"},
			{"id": "broken", "model_class": "Tool"},
		})
	})
	mux.HandleFunc("/api/tools/bwa", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"id": "bwa", "name": "BWA", "description": "read aligner",
			"inputs":  []map[string]any{{"format": []any{"fastq", "fasta"}}},
			"outputs": []map[string]any{{"format": "bam"}},
		})
	})
	mux.HandleFunc("/api/tools/samtools", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"id": "samtools", "name": "Samtools",
			"inputs":  []map[string]any{{"format": "bam"}},
			"outputs": []map[string]any{{"format": ""}},
		})
	})
	mux.HandleFunc("/api/tools/broken", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	mux.HandleFunc("/api/workflows", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []map[string]any{
			{"id": "wf1"}, {"id": "wf2"}, {"id": "wf3"},
		})
	})
	mux.HandleFunc("/api/workflows/wf1", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"id": "wf1", "name": "alignment",
			"steps": map[string]any{
				"0": map[string]any{"type": "data_input"},
				"1": map[string]any{"type": "tool", "tool_id": "bwa"},
				"2": map[string]any{"type": "tool", "tool_id": "samtools"},
				"3": map[string]any{"type": "tool", "tool_id": "bwa"},
			},
		})
	})
	mux.HandleFunc("/api/workflows/wf2", func(w http.ResponseWriter, _ *http.Request) {
		// Input-only workflow: no tool steps, dropped by the extractor.
		writeJSON(w, map[string]any{
			"id": "wf2", "name": "inputs only",
			"steps": map[string]any{
				"0": map[string]any{"type": "data_input"},
			},
		})
	})
	mux.HandleFunc("/api/workflows/wf3", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func TestGalaxyClient_FetchTools(t *testing.T) {
	srv := galaxyFixture(t)
	c := NewGalaxyClient(srv.URL, "", testLogger())

	tools, err := c.FetchTools(context.Background())
	if err != nil {
		t.Fatalf("fetching tools: %v", err)
	}

	// Sections are filtered, failing details are skipped.
	if len(tools) != 2 {
		t.Fatalf("tools = %d, want 2", len(tools))
	}

	sort.Slice(tools, func(i, j int) bool { return tools[i].ID < tools[j].ID })

	bwa := tools[0]
	if bwa.ID != "bwa" || bwa.Category != "Mapping" {
		t.Errorf("unexpected tool: %+v", bwa)
	}
	if len(bwa.InputFormats) != 2 {
		t.Errorf("input formats = %v, want [fasta fastq]", bwa.InputFormats)
	}

	sam := tools[1]
	if sam.Category != "Miscellaneous" {
		t.Errorf("missing panel section should default to Miscellaneous, got %q", sam.Category)
	}
	if len(sam.OutputFormats) != 1 || sam.OutputFormats[0] != "unknown" {
		t.Errorf("empty output format should map to unknown, got %v", sam.OutputFormats)
	}
}

func TestGalaxyClient_FetchWorkflows(t *testing.T) {
	srv := galaxyFixture(t)
	c := NewGalaxyClient(srv.URL, "", testLogger())

	records, err := c.FetchWorkflows(context.Background())
	if err != nil {
		t.Fatalf("fetching workflows: %v", err)
	}

	// wf2 has no tool steps, wf3 404s; only wf1 survives.
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}

	wf := records[0]
	if wf.ID != "wf1" || wf.NumSteps != 4 {
		t.Errorf("unexpected record: %+v", wf)
	}
	// Repeated tool steps collapse to one entry.
	want := []string{"bwa", "samtools"}
	if len(wf.Tools) != len(want) || wf.Tools[0] != want[0] || wf.Tools[1] != want[1] {
		t.Errorf("tools = %v, want %v", wf.Tools, want)
	}
}

func TestGalaxyClient_ToolLimit(t *testing.T) {
	srv := galaxyFixture(t)
	c := NewGalaxyClient(srv.URL, "", testLogger())
	c.ToolLimit = 1

	tools, err := c.FetchTools(context.Background())
	if err != nil {
		t.Fatalf("fetching tools: %v", err)
	}
	if len(tools) != 1 {
		t.Errorf("tools = %d, want 1 with limit applied", len(tools))
	}
}
