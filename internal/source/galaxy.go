// Package source extracts tool and workflow records from a Galaxy
// instance over its REST API.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/flowgraphai/flowgraph/internal/models"
)

const (
	defaultToolLimit     = 1000
	defaultWorkflowLimit = 1000
	maxFetchWorkers      = 10

	galaxyTimeout   = 30 * time.Second
	maxResponseSize = 50 << 20 // 50 MB; tool panels can be large
)

// GalaxyClient fetches tools and workflows from a Galaxy server.
// Detail requests fan out over a bounded worker group; individual
// failures are logged and skipped, matching the tolerant posture of
// the ingest pipeline.
type GalaxyClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *logrus.Logger

	ToolLimit     int
	WorkflowLimit int
}

// NewGalaxyClient creates a client for the given Galaxy endpoint. The API
// key may be empty for servers that expose published data anonymously.
func NewGalaxyClient(baseURL, apiKey string, log *logrus.Logger) *GalaxyClient {
	return &GalaxyClient{
		baseURL:       baseURL,
		apiKey:        apiKey,
		client:        &http.Client{Timeout: galaxyTimeout},
		log:           log,
		ToolLimit:     defaultToolLimit,
		WorkflowLimit: defaultWorkflowLimit,
	}
}

// Ping verifies connectivity by fetching the server version.
func (c *GalaxyClient) Ping(ctx context.Context) error {
	var version struct {
		VersionMajor string `json:"version_major"`
	}

	if err := c.getJSON(ctx, "/api/version", nil, &version); err != nil {
		return fmt.Errorf("galaxy ping: %w", err)
	}

	return nil
}

type toolSummary struct {
	ID               string `json:"id"`
	ModelClass       string `json:"model_class"`
	PanelSectionName string `json:"panel_section_name"`
}

type toolDetail struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Inputs      []struct {
		Format any `json:"format"`
	} `json:"inputs"`
	Outputs []struct {
		Format string `json:"format"`
	} `json:"outputs"`
}

// FetchTools lists the tool panel and fetches per-tool details
// concurrently. Tools whose detail fetch fails are skipped.
func (c *GalaxyClient) FetchTools(ctx context.Context) ([]models.Tool, error) {
	var panel []toolSummary
	if err := c.getJSON(ctx, "/api/tools", url.Values{"in_panel": {"false"}}, &panel); err != nil {
		return nil, fmt.Errorf("listing tools: %w", err)
	}

	summaries := make([]toolSummary, 0, len(panel))
	for _, t := range panel {
		if t.ModelClass == "Tool" && t.ID != "" {
			summaries = append(summaries, t)
		}
	}

	if c.ToolLimit > 0 && len(summaries) > c.ToolLimit {
		summaries = summaries[:c.ToolLimit]
	}

	c.log.WithField("count", len(summaries)).Info("fetching tool details")

	var mu sync.Mutex
	tools := make([]models.Tool, 0, len(summaries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxFetchWorkers)

	for _, summary := range summaries {
		g.Go(func() error {
			tool, err := c.fetchToolDetail(gctx, summary)
			if err != nil {
				c.log.WithError(err).WithField("tool_id", summary.ID).Warn("skipping tool")

				return nil
			}

			mu.Lock()
			tools = append(tools, *tool)
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.log.WithField("count", len(tools)).Info("tool extraction complete")

	return tools, nil
}

func (c *GalaxyClient) fetchToolDetail(ctx context.Context, summary toolSummary) (*models.Tool, error) {
	var detail toolDetail
	if err := c.getJSON(ctx, "/api/tools/"+url.PathEscape(summary.ID),
		url.Values{"io_details": {"true"}}, &detail); err != nil {
		return nil, err
	}

	inputs := make(map[string]struct{})
	for _, in := range detail.Inputs {
		switch f := in.Format.(type) {
		case string:
			inputs[f] = struct{}{}
		case []any:
			for _, v := range f {
				if s, ok := v.(string); ok {
					inputs[s] = struct{}{}
				}
			}
		}
	}

	outputs := make(map[string]struct{})
	for _, out := range detail.Outputs {
		format := out.Format
		if format == "" {
			format = "unknown"
		}
		outputs[format] = struct{}{}
	}

	category := summary.PanelSectionName
	if category == "" {
		category = "Miscellaneous"
	}

	return &models.Tool{
		ID:            detail.ID,
		Name:          detail.Name,
		Description:   detail.Description,
		Category:      category,
		InputFormats:  sortedSet(inputs),
		OutputFormats: sortedSet(outputs),
	}, nil
}

type workflowSummary struct {
	ID string `json:"id"`
}

type workflowDetail struct {
	ID    string                  `json:"id"`
	Name  string                  `json:"name"`
	Steps map[string]workflowStep `json:"steps"`
}

type workflowStep struct {
	Type   string  `json:"type"`
	ToolID *string `json:"tool_id"`
}

// FetchWorkflows lists published workflows and fetches per-workflow
// details concurrently. Workflows with no tool steps are dropped here;
// downstream ingest handles the remaining degenerate cases.
func (c *GalaxyClient) FetchWorkflows(ctx context.Context) ([]models.WorkflowRecord, error) {
	var summaries []workflowSummary
	if err := c.getJSON(ctx, "/api/workflows", url.Values{"show_published": {"true"}}, &summaries); err != nil {
		return nil, fmt.Errorf("listing workflows: %w", err)
	}

	if c.WorkflowLimit > 0 && len(summaries) > c.WorkflowLimit {
		summaries = summaries[:c.WorkflowLimit]
	}

	c.log.WithField("count", len(summaries)).Info("fetching workflow details")

	var mu sync.Mutex
	records := make([]models.WorkflowRecord, 0, len(summaries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxFetchWorkers)

	for _, summary := range summaries {
		if summary.ID == "" {
			continue
		}

		g.Go(func() error {
			record, err := c.fetchWorkflowDetail(gctx, summary.ID)
			if err != nil {
				c.log.WithError(err).WithField("workflow_id", summary.ID).Warn("skipping workflow")

				return nil
			}

			if record != nil {
				mu.Lock()
				records = append(records, *record)
				mu.Unlock()
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.log.WithField("count", len(records)).Info("workflow extraction complete")

	return records, nil
}

func (c *GalaxyClient) fetchWorkflowDetail(ctx context.Context, id string) (*models.WorkflowRecord, error) {
	var detail workflowDetail
	if err := c.getJSON(ctx, "/api/workflows/"+url.PathEscape(id), nil, &detail); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, step := range detail.Steps {
		if step.Type == "tool" && step.ToolID != nil {
			seen[*step.ToolID] = struct{}{}
		}
	}

	if len(seen) == 0 {
		return nil, nil
	}

	return &models.WorkflowRecord{
		ID:       detail.ID,
		Name:     detail.Name,
		NumSteps: len(detail.Steps),
		Tools:    sortedSet(seen),
	}, nil
}

func (c *GalaxyClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling galaxy API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain body so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20)) //nolint:errcheck // best-effort drain before close.
		return fmt.Errorf("galaxy API %s returned status %d", path, resp.StatusCode)
	}

	limited := io.LimitReader(resp.Body, maxResponseSize)
	if err := json.NewDecoder(limited).Decode(out); err != nil {
		return fmt.Errorf("decoding galaxy response: %w", err)
	}

	return nil
}
