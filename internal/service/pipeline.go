package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/flowgraphai/flowgraph/internal/graph"
	"github.com/flowgraphai/flowgraph/internal/leiden"
	"github.com/flowgraphai/flowgraph/internal/metrics"
	"github.com/flowgraphai/flowgraph/internal/models"
	"github.com/flowgraphai/flowgraph/internal/ws"
)

// RecordSource provides tool metadata and workflow records for a run.
type RecordSource interface {
	FetchTools(ctx context.Context) ([]models.Tool, error)
	FetchWorkflows(ctx context.Context) ([]models.WorkflowRecord, error)
}

// ToolPersister stores tool nodes and their community assignments.
type ToolPersister interface {
	UpsertTools(ctx context.Context, tools []models.Tool) error
	AssignCommunities(ctx context.Context, assignments map[string]int) error
}

// EdgePersister stores the co-occurrence edge set.
type EdgePersister interface {
	ReplaceEdges(ctx context.Context, edges []models.Edge) error
}

// RunPersister records pipeline run lifecycle state.
type RunPersister interface {
	CreateRun(ctx context.Context, id uuid.UUID) (*models.Run, error)
	FinishRun(ctx context.Context, run *models.Run) error
	FailRun(ctx context.Context, id uuid.UUID, runErr string) error
	RunInProgress(ctx context.Context) (bool, error)
}

// CommunityPersister stores detected communities and their summaries.
type CommunityPersister interface {
	SaveCommunities(ctx context.Context, communities []models.Community) error
	SetSummary(ctx context.Context, runID uuid.UUID, level, label int, title, summary string) error
}

// Summarizer generates a title and summary for a community's members.
type Summarizer interface {
	Summarize(ctx context.Context, members []string) (title, summary string, err error)
}

// Broadcaster pushes run events to connected clients.
type Broadcaster interface {
	BroadcastEvent(eventType string, data json.RawMessage)
}

// PipelineConfig carries the graph assembly and detection parameters.
type PipelineConfig struct {
	EdgeIncrement float64
	Leiden        leiden.Config
}

// PipelineService orchestrates one full run: extraction, graph assembly,
// community detection, persistence, and the follow-up embedding and
// summarization stages.
type PipelineService struct {
	cfg        PipelineConfig
	source     RecordSource
	tools      ToolPersister
	edges      EdgePersister
	runs       RunPersister
	comms      CommunityPersister
	summarizer Summarizer
	embedQueue *EmbedWorker
	hub        Broadcaster
	log        *logrus.Logger
}

// NewPipelineService wires a pipeline. The summarizer, embed queue and hub
// are optional; nil disables the corresponding stage.
func NewPipelineService(
	cfg PipelineConfig,
	source RecordSource,
	tools ToolPersister,
	edges EdgePersister,
	runs RunPersister,
	comms CommunityPersister,
	summarizer Summarizer,
	embedQueue *EmbedWorker,
	hub Broadcaster,
	log *logrus.Logger,
) *PipelineService {
	return &PipelineService{
		cfg:        cfg,
		source:     source,
		tools:      tools,
		edges:      edges,
		runs:       runs,
		comms:      comms,
		summarizer: summarizer,
		embedQueue: embedQueue,
		hub:        hub,
		log:        log,
	}
}

// Run executes one pipeline run end to end. At most one run may be in
// progress; a second concurrent request fails with ErrRunInProgress.
func (s *PipelineService) Run(ctx context.Context) (*models.Run, error) {
	detector, err := leiden.New(s.cfg.Leiden, s.log)
	if err != nil {
		return nil, err
	}

	inProgress, err := s.runs.RunInProgress(ctx)
	if err != nil {
		return nil, err
	}
	if inProgress {
		return nil, models.ErrRunInProgress
	}

	run, err := s.runs.CreateRun(ctx, uuid.New())
	if err != nil {
		return nil, err
	}

	started := time.Now()
	s.broadcast(ws.EventRunStarted, map[string]any{"run_id": run.ID})
	s.log.WithField("run_id", run.ID).Info("pipeline run started")

	result, err := s.execute(ctx, detector, run)
	if err != nil {
		metrics.RunsTotal.WithLabelValues(models.RunStatusFailed).Inc()
		s.broadcast(ws.EventRunFailed, map[string]any{"run_id": run.ID, "error": err.Error()})
		s.log.WithError(err).WithField("run_id", run.ID).Error("pipeline run failed")

		if failErr := s.runs.FailRun(ctx, run.ID, err.Error()); failErr != nil {
			s.log.WithError(failErr).Error("recording run failure")
		}

		return nil, err
	}

	metrics.RunsTotal.WithLabelValues(models.RunStatusCompleted).Inc()
	metrics.RunDuration.Observe(time.Since(started).Seconds())
	s.broadcast(ws.EventRunCompleted, map[string]any{
		"run_id":     result.ID,
		"nodes":      result.Nodes,
		"edges":      result.Edges,
		"levels":     result.Levels,
		"modularity": result.Modularity,
	})
	s.log.WithFields(logrus.Fields{
		"run_id":     result.ID,
		"workflows":  result.Workflows,
		"nodes":      result.Nodes,
		"edges":      result.Edges,
		"levels":     result.Levels,
		"modularity": result.Modularity,
	}).Info("pipeline run completed")

	return result, nil
}

func (s *PipelineService) execute(ctx context.Context, detector *leiden.Detector, run *models.Run) (*models.Run, error) {
	tools, err := s.source.FetchTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("extracting tools: %w", err)
	}

	records, err := s.source.FetchWorkflows(ctx)
	if err != nil {
		return nil, fmt.Errorf("extracting workflows: %w", err)
	}

	s.progress(run.ID, "extracted", map[string]any{
		"tools": len(tools), "workflows": len(records),
	})

	g := s.assemble(records, tools)

	// Tools that appear in workflows but not in the tool panel still
	// become graph nodes; register them so edge inserts can reference them.
	known := make(map[string]struct{}, len(tools))
	for _, t := range tools {
		known[t.ID] = struct{}{}
	}
	for _, id := range g.NodeIDs() {
		if _, ok := known[id]; !ok {
			tools = append(tools, models.Tool{ID: id, Name: id})
		}
	}

	if err := s.tools.UpsertTools(ctx, tools); err != nil {
		return nil, fmt.Errorf("persisting tools: %w", err)
	}

	if err := s.edges.ReplaceEdges(ctx, g.Edges()); err != nil {
		return nil, fmt.Errorf("persisting edges: %w", err)
	}

	metrics.NodeCount.Set(float64(g.NodeCount()))
	metrics.EdgeCount.Set(float64(g.EdgeCount()))
	s.progress(run.ID, "graph_assembled", map[string]any{
		"nodes": g.NodeCount(), "edges": g.EdgeCount(),
	})

	hierarchy := detector.Detect(g)

	if err := s.persistHierarchy(ctx, run.ID, hierarchy); err != nil {
		return nil, err
	}

	s.progress(run.ID, "communities_detected", map[string]any{
		"levels": len(hierarchy.Levels),
	})

	s.enqueueEmbeddings(tools)
	s.summarizeHierarchy(ctx, run.ID, hierarchy, tools)

	run.Workflows = len(records)
	run.Nodes = g.NodeCount()
	run.Edges = g.EdgeCount()
	run.Levels = len(hierarchy.Levels)
	run.Warnings = hierarchy.Warnings
	if final := hierarchy.Final(); final != nil {
		run.Modularity = final.Modularity
		metrics.CommunityCount.Set(float64(len(final.Communities)))
	}

	if err := s.runs.FinishRun(ctx, run); err != nil {
		return nil, fmt.Errorf("recording run completion: %w", err)
	}

	run.Status = models.RunStatusCompleted

	return run, nil
}

// assemble builds the co-occurrence graph from workflow records. Tool
// metadata contributes nothing to the topology; only workflow membership
// does.
func (s *PipelineService) assemble(records []models.WorkflowRecord, _ []models.Tool) *graph.Graph {
	builder := graph.NewBuilder(s.cfg.EdgeIncrement, s.log)

	for _, record := range records {
		builder.Ingest(record)
		metrics.WorkflowsIngested.Inc()
		if record.Degenerate() {
			metrics.DegenerateWorkflows.Inc()
		}
	}

	return builder.Finalize()
}

func (s *PipelineService) persistHierarchy(ctx context.Context, runID uuid.UUID, h *leiden.Hierarchy) error {
	var communities []models.Community

	for level, lvl := range h.Levels {
		for _, c := range lvl.Communities {
			communities = append(communities, models.Community{
				RunID:   runID,
				Level:   level,
				Label:   c.Label,
				Size:    len(c.Members),
				Members: c.Members,
			})
		}
	}

	if err := s.comms.SaveCommunities(ctx, communities); err != nil {
		return fmt.Errorf("persisting communities: %w", err)
	}

	// Tag each tool with its finest-level community for quick lookups.
	if len(h.Levels) > 0 {
		if err := s.tools.AssignCommunities(ctx, h.Levels[0].Assignments); err != nil {
			return fmt.Errorf("assigning tool communities: %w", err)
		}
	}

	return nil
}

func (s *PipelineService) enqueueEmbeddings(tools []models.Tool) {
	if s.embedQueue == nil {
		return
	}

	for i := range tools {
		s.embedQueue.Enqueue(EmbedJob{ToolID: tools[i].ID, Text: tools[i].EmbeddingText()})
	}
}

// summarizeHierarchy generates titles and summaries for every community
// at the coarsest level. Failures are logged and skipped; summaries are
// an enrichment, not a run requirement.
func (s *PipelineService) summarizeHierarchy(ctx context.Context, runID uuid.UUID, h *leiden.Hierarchy, tools []models.Tool) {
	if s.summarizer == nil {
		return
	}

	final := h.Final()
	if final == nil {
		return
	}

	descriptions := make(map[string]string, len(tools))
	for i := range tools {
		descriptions[tools[i].ID] = tools[i].EmbeddingText()
	}

	level := len(h.Levels) - 1
	for _, c := range final.Communities {
		members := make([]string, 0, len(c.Members))
		for _, id := range c.Members {
			if d, ok := descriptions[id]; ok {
				members = append(members, "Tool: "+d)
			} else {
				members = append(members, "Tool: "+id)
			}
		}

		title, summary, err := s.summarizer.Summarize(ctx, members)
		if err != nil {
			s.log.WithError(err).WithField("label", c.Label).Warn("community summarization failed")
			continue
		}

		if err := s.comms.SetSummary(ctx, runID, level, c.Label, title, summary); err != nil {
			s.log.WithError(err).WithField("label", c.Label).Error("storing community summary")
			continue
		}

		s.log.WithFields(logrus.Fields{"label": c.Label, "title": title}).Info("community summarized")
	}
}

func (s *PipelineService) progress(runID uuid.UUID, stage string, extra map[string]any) {
	payload := map[string]any{"run_id": runID, "stage": stage}
	for k, v := range extra {
		payload[k] = v
	}

	s.broadcast(ws.EventRunProgress, payload)
}

func (s *PipelineService) broadcast(eventType string, payload map[string]any) {
	if s.hub == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		s.log.WithError(err).Error("marshaling run event")
		return
	}

	s.hub.BroadcastEvent(eventType, data)
}
