// Package graph assembles workflow records into an undirected weighted
// tool co-occurrence graph.
package graph

import "github.com/flowgraphai/flowgraph/internal/models"

// Neighbor is one adjacency entry: the neighbor's node index and the
// accumulated edge weight.
type Neighbor struct {
	Node   int
	Weight float64
}

// Graph is an immutable undirected weighted graph over tool identifiers.
// Node indices are assigned in ascending identifier order so traversal is
// deterministic. The graph is loop-free; every edge endpoint is a node.
type Graph struct {
	ids         []string
	index       map[string]int
	adj         [][]Neighbor
	strength    []float64
	totalWeight float64
	edgeCount   int
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.ids) }

// EdgeCount returns the number of distinct undirected edges.
func (g *Graph) EdgeCount() int { return g.edgeCount }

// TotalWeight returns the sum of all edge weights (m in modularity terms).
func (g *Graph) TotalWeight() float64 { return g.totalWeight }

// NodeID returns the tool identifier for a node index.
func (g *Graph) NodeID(i int) string { return g.ids[i] }

// NodeIndex returns the index of a tool identifier.
func (g *Graph) NodeIndex(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// NodeIDs returns all tool identifiers in ascending order.
func (g *Graph) NodeIDs() []string {
	out := make([]string, len(g.ids))
	copy(out, g.ids)
	return out
}

// Neighbors returns the adjacency list of node i, ordered by neighbor index.
// Callers must not mutate the returned slice.
func (g *Graph) Neighbors(i int) []Neighbor { return g.adj[i] }

// Strength returns the weighted degree of node i.
func (g *Graph) Strength(i int) float64 { return g.strength[i] }

// Weight returns the edge weight between two tool identifiers, or zero if
// no edge exists.
func (g *Graph) Weight(a, b string) float64 {
	ia, ok := g.index[a]
	if !ok {
		return 0
	}
	ib, ok := g.index[b]
	if !ok {
		return 0
	}
	for _, n := range g.adj[ia] {
		if n.Node == ib {
			return n.Weight
		}
	}
	return 0
}

// Edges returns all edges in canonical order (source < target, sorted by
// source then target).
func (g *Graph) Edges() []models.Edge {
	out := make([]models.Edge, 0, g.edgeCount)
	for i, neighbors := range g.adj {
		for _, n := range neighbors {
			if n.Node > i {
				out = append(out, models.Edge{
					Source: g.ids[i],
					Target: g.ids[n.Node],
					Weight: n.Weight,
				})
			}
		}
	}
	return out
}
