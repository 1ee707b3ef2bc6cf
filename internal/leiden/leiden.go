package leiden

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/flowgraphai/flowgraph/internal/graph"
)

// Detector runs Leiden-style community detection with a fixed configuration.
type Detector struct {
	cfg Config
	log *logrus.Logger
}

// New validates the configuration and creates a Detector. Invalid
// configuration is the only hard failure in this package.
func New(cfg Config, log *logrus.Logger) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("leiden config: %w", err)
	}
	return &Detector{cfg: cfg.withDefaults(), log: log}, nil
}

// levelGraph is one snapshot in the aggregation sequence. self holds the
// intra-community weight collapsed into each node; it counts toward
// modularity but never proposes moves. strength includes twice the self
// weight, so the sum of strengths stays 2m at every level.
type levelGraph struct {
	adj      [][]graph.Neighbor
	self     []float64
	strength []float64
	total    float64
}

func (lg *levelGraph) n() int { return len(lg.adj) }

func fromGraph(g *graph.Graph) *levelGraph {
	n := g.NodeCount()
	lg := &levelGraph{
		adj:      make([][]graph.Neighbor, n),
		self:     make([]float64, n),
		strength: make([]float64, n),
		total:    g.TotalWeight(),
	}
	for i := range n {
		lg.adj[i] = g.Neighbors(i)
		lg.strength[i] = g.Strength(i)
	}
	return lg
}

// Detect partitions the graph into a community hierarchy. Levels run from
// finest to coarsest; every level is a strict partition of the original
// node set, and each level's communities are unions of the previous
// level's, because intermediate levels record the refinement partitions
// that also serve as aggregation units. An empty graph yields an empty
// hierarchy; isolated nodes stay singletons at every level. All anomalies
// degrade to warnings on the result.
func (d *Detector) Detect(g *graph.Graph) *Hierarchy {
	h := &Hierarchy{}
	if g.NodeCount() == 0 {
		d.log.Warn("graph is empty, skipping community detection")
		return h
	}

	lg := fromGraph(g)

	// nodeToSuper maps original node index to its super-node at the current
	// level; identity before any aggregation.
	nodeToSuper := make([]int, g.NodeCount())
	for i := range nodeToSuper {
		nodeToSuper[i] = i
	}

	// Singleton seed for the first level; later levels are seeded by the
	// coarse partition carried through aggregation.
	seed := make([]int, lg.n())
	for i := range seed {
		seed[i] = i
	}

	var (
		coarseAssign map[string]int
		coarseMod    float64
	)

	for level := 0; ; level++ {
		if level >= d.cfg.MaxLevels {
			h.Warnings = append(h.Warnings,
				fmt.Sprintf("level budget (%d) exhausted before convergence", d.cfg.MaxLevels))
			d.log.WithField("max_levels", d.cfg.MaxLevels).Warn("aggregation did not converge")
			break
		}

		part := make([]int, lg.n())
		copy(part, seed)

		if !d.localMove(lg, part) {
			h.Warnings = append(h.Warnings,
				fmt.Sprintf("local moving pass budget (%d) exhausted at level %d", d.cfg.MaxLocalPasses, level))
			d.log.WithFields(logrus.Fields{
				"level":      level,
				"max_passes": d.cfg.MaxLocalPasses,
			}).Warn("local moving did not converge, keeping best partition")
		}

		macro := compactLabels(part)
		coarseAssign = originalAssignments(g, nodeToSuper, part, macro)
		coarseMod = d.modularity(lg, part)

		d.log.WithFields(logrus.Fields{
			"level":       level,
			"communities": len(macro),
			"modularity":  coarseMod,
		}).Info("detection level complete")

		if len(macro) == lg.n() {
			break // no merges in a full level: terminal
		}

		refined := d.refine(lg, part)
		refCompact := compactLabels(refined)
		refAssign := originalAssignments(g, nodeToSuper, refined, refCompact)
		h.appendLevel(refAssign, d.modularity(lg, refined))

		next, nextSeed := aggregate(lg, refined, refCompact, part)
		for orig := range nodeToSuper {
			nodeToSuper[orig] = refCompact[refined[nodeToSuper[orig]]]
		}

		if next.n() == lg.n() {
			break // refinement kept every unit, aggregation cannot shrink
		}
		lg, seed = next, nextSeed
	}

	if coarseAssign != nil {
		h.appendLevel(coarseAssign, coarseMod)
	}
	return h
}

// appendLevel records a partition unless it repeats the most recent level.
func (h *Hierarchy) appendLevel(assignments map[string]int, modularity float64) {
	if n := len(h.Levels); n > 0 && assignmentsEqual(h.Levels[n-1].Assignments, assignments) {
		return
	}
	h.Levels = append(h.Levels, buildLevel(assignments, modularity))
}

// originalAssignments maps every original tool identifier to the compacted
// label of its current unit's community.
func originalAssignments(g *graph.Graph, nodeToSuper, part []int, compact map[int]int) map[string]int {
	out := make(map[string]int, len(nodeToSuper))
	for orig, super := range nodeToSuper {
		out[g.NodeID(orig)] = compact[part[super]]
	}
	return out
}

// localMove runs full passes in ascending node order, greedily moving each
// node to the neighboring community with the strictly largest positive
// modularity gain (equal-gain ties resolve to the lowest community label,
// and staying wins exact ties against moving). Returns false if the pass
// budget ran out before a pass with no moves.
func (d *Detector) localMove(lg *levelGraph, part []int) bool {
	m2 := 2 * lg.total
	if m2 == 0 {
		return true
	}

	commStrength := make([]float64, lg.n())
	for v, c := range part {
		commStrength[c] += lg.strength[v]
	}

	for range d.cfg.MaxLocalPasses {
		moved := false
		for v := range lg.adj {
			current := part[v]
			commStrength[current] -= lg.strength[v]

			weightTo := make(map[int]float64, len(lg.adj[v]))
			for _, nb := range lg.adj[v] {
				weightTo[part[nb.Node]] += nb.Weight
			}

			gain := func(c int) float64 {
				return weightTo[c] - d.cfg.Resolution*lg.strength[v]*commStrength[c]/m2
			}

			best, bestGain := current, gain(current)
			for _, c := range sortedKeys(weightTo) {
				if c == current {
					continue
				}
				// Ascending candidate order makes the first maximum the
				// lowest label.
				if gc := gain(c); gc > bestGain {
					best, bestGain = c, gc
				}
			}

			if best != current {
				part[v] = best
				moved = true
			}
			commStrength[best] += lg.strength[v]
		}
		if !moved {
			return true
		}
	}
	return false
}

// refine re-partitions each community from singletons, letting nodes merge
// only into sub-communities inside their own community that they share edge
// weight with. It subdivides but never crosses community boundaries, and
// never detaches a node from everything it touches: a node either joins
// mass it is connected to or stays its own singleton.
func (d *Detector) refine(lg *levelGraph, part []int) []int {
	refined := make([]int, lg.n())
	for i := range refined {
		refined[i] = i
	}

	m2 := 2 * lg.total
	if m2 == 0 {
		return refined
	}

	refStrength := make([]float64, lg.n())
	copy(refStrength, lg.strength)

	for range d.cfg.MaxLocalPasses {
		moved := false
		for v := range lg.adj {
			current := refined[v]
			refStrength[current] -= lg.strength[v]

			weightTo := make(map[int]float64, len(lg.adj[v]))
			for _, nb := range lg.adj[v] {
				if part[nb.Node] != part[v] {
					continue
				}
				weightTo[refined[nb.Node]] += nb.Weight
			}

			gain := func(c int) float64 {
				return weightTo[c] - d.cfg.Resolution*lg.strength[v]*refStrength[c]/m2
			}

			best, bestGain := current, gain(current)
			for _, c := range sortedKeys(weightTo) {
				if c == current {
					continue
				}
				if gc := gain(c); gc > bestGain {
					best, bestGain = c, gc
				}
			}

			if best != current {
				refined[v] = best
				moved = true
			}
			refStrength[best] += lg.strength[v]
		}
		if !moved {
			break
		}
	}
	return refined
}

// aggregate collapses every refined sub-community into one super-node.
// Inter-community edge weights are summed onto super-edges; intra weight is
// retained as super-node self weight. The returned seed carries the coarse
// partition onto the aggregated graph.
func aggregate(lg *levelGraph, refined []int, refCompact map[int]int, part []int) (*levelGraph, []int) {
	k := len(refCompact)

	next := &levelGraph{
		adj:      make([][]graph.Neighbor, k),
		self:     make([]float64, k),
		strength: make([]float64, k),
		total:    lg.total,
	}

	macroCompact := make(map[int]int)
	seed := make([]int, k)

	between := make([]map[int]float64, k)
	for v := range lg.adj {
		cv := refCompact[refined[v]]
		next.self[cv] += lg.self[v]
		next.strength[cv] += lg.strength[v]

		if _, ok := macroCompact[part[v]]; !ok {
			macroCompact[part[v]] = len(macroCompact)
		}
		seed[cv] = macroCompact[part[v]]

		for _, nb := range lg.adj[v] {
			if nb.Node < v {
				continue // visit each undirected edge once
			}
			cu := refCompact[refined[nb.Node]]
			if cu == cv {
				next.self[cv] += nb.Weight
				continue
			}
			if between[cv] == nil {
				between[cv] = make(map[int]float64)
			}
			if between[cu] == nil {
				between[cu] = make(map[int]float64)
			}
			between[cv][cu] += nb.Weight
			between[cu][cv] += nb.Weight
		}
	}

	for c := range k {
		for _, nbc := range sortedKeys(between[c]) {
			next.adj[c] = append(next.adj[c], graph.Neighbor{Node: nbc, Weight: between[c][nbc]})
		}
	}

	return next, seed
}

// modularity computes Q = sum_c [W_in_c/m - resolution*(tot_c/2m)^2] where
// W_in_c includes node self weights.
func (d *Detector) modularity(lg *levelGraph, part []int) float64 {
	if lg.total == 0 {
		return 0
	}

	in := make(map[int]float64)
	tot := make(map[int]float64)
	for v := range lg.adj {
		c := part[v]
		in[c] += lg.self[v]
		tot[c] += lg.strength[v]
		for _, nb := range lg.adj[v] {
			if nb.Node > v && part[nb.Node] == c {
				in[c] += nb.Weight
			}
		}
	}

	m2 := 2 * lg.total
	q := 0.0
	for c, t := range tot {
		frac := t / m2
		q += in[c]/lg.total - d.cfg.Resolution*frac*frac
	}
	return q
}

// Modularity scores an arbitrary assignment of the graph's nodes under the
// given resolution. Used for sanity floors and reporting.
func Modularity(g *graph.Graph, assignments map[string]int, resolution float64) float64 {
	lg := fromGraph(g)
	part := make([]int, g.NodeCount())
	for i := range part {
		part[i] = assignments[g.NodeID(i)]
	}
	d := &Detector{cfg: Config{Resolution: resolution}.withDefaults()}
	return d.modularity(lg, part)
}

// compactLabels renumbers partition labels to 0..k-1 in ascending
// first-appearance order, for stable output across runs.
func compactLabels(part []int) map[int]int {
	compact := make(map[int]int)
	for _, c := range part {
		if _, ok := compact[c]; !ok {
			compact[c] = len(compact)
		}
	}
	return compact
}

func assignmentsEqual(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func sortedKeys(m map[int]float64) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
