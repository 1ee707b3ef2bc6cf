package graph

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/flowgraphai/flowgraph/internal/models"
)

// DefaultEdgeIncrement is the weight added per co-occurring pair per record.
const DefaultEdgeIncrement = 1.0

type pair struct {
	a, b string // a < b
}

// Builder accumulates workflow records into a Graph. Not safe for concurrent
// use; callers that ingest in parallel must merge through their own
// aggregation before calling Ingest.
type Builder struct {
	increment float64
	log       *logrus.Logger
	nodes     map[string]struct{}
	weights   map[pair]float64
	records   int
	final     *Graph
}

// NewBuilder creates a Builder. An increment of zero falls back to
// DefaultEdgeIncrement; negative increments are rejected earlier by config
// validation.
func NewBuilder(increment float64, log *logrus.Logger) *Builder {
	if increment == 0 {
		increment = DefaultEdgeIncrement
	}
	return &Builder{
		increment: increment,
		log:       log,
		nodes:     make(map[string]struct{}),
		weights:   make(map[pair]float64),
	}
}

// Ingest adds one workflow record. Every unordered pair of distinct tools in
// the record gains the edge increment exactly once, no matter how often the
// pair repeats inside the record. Records with fewer than two distinct tools
// contribute nodes only and are logged, never rejected.
func (b *Builder) Ingest(rec models.WorkflowRecord) {
	if b.final != nil {
		b.log.WithField("workflow_id", rec.ID).Warn("ingest after finalize ignored")
		return
	}

	distinct := make([]string, 0, len(rec.Tools))
	seen := make(map[string]struct{}, len(rec.Tools))
	for _, id := range rec.Tools {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}

	for _, id := range distinct {
		b.nodes[id] = struct{}{}
	}
	b.records++

	if len(distinct) < 2 {
		b.log.WithFields(logrus.Fields{
			"workflow_id": rec.ID,
			"tools":       len(distinct),
		}).Info("degenerate workflow record, no edges contributed")
		return
	}

	sort.Strings(distinct)
	for i := 0; i < len(distinct); i++ {
		for j := i + 1; j < len(distinct); j++ {
			b.weights[pair{distinct[i], distinct[j]}] += b.increment
		}
	}
}

// Records returns the number of records ingested so far.
func (b *Builder) Records() int { return b.records }

// Finalize freezes the builder and returns the assembled graph. Idempotent;
// later calls return the same immutable graph.
func (b *Builder) Finalize() *Graph {
	if b.final != nil {
		return b.final
	}

	ids := make([]string, 0, len(b.nodes))
	for id := range b.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	g := &Graph{
		ids:      ids,
		index:    make(map[string]int, len(ids)),
		adj:      make([][]Neighbor, len(ids)),
		strength: make([]float64, len(ids)),
	}
	for i, id := range ids {
		g.index[id] = i
	}

	for p, w := range b.weights {
		ia, ib := g.index[p.a], g.index[p.b]
		g.adj[ia] = append(g.adj[ia], Neighbor{Node: ib, Weight: w})
		g.adj[ib] = append(g.adj[ib], Neighbor{Node: ia, Weight: w})
		g.strength[ia] += w
		g.strength[ib] += w
		g.totalWeight += w
		g.edgeCount++
	}

	for i := range g.adj {
		sort.Slice(g.adj[i], func(x, y int) bool {
			return g.adj[i][x].Node < g.adj[i][y].Node
		})
	}

	b.log.WithFields(logrus.Fields{
		"workflows": b.records,
		"nodes":     g.NodeCount(),
		"edges":     g.EdgeCount(),
	}).Info("graph assembled")

	b.final = g
	return g
}
