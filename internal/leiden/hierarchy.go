package leiden

import "sort"

// Community is one cluster at a single hierarchy level.
type Community struct {
	Label   int      `json:"label"`
	Members []string `json:"members"`
}

// Level is one partition of the original node set. Assignments maps every
// original tool identifier to exactly one community label; Communities lists
// the same partition grouped by label.
type Level struct {
	Assignments map[string]int `json:"assignments"`
	Communities []Community    `json:"communities"`
	Modularity  float64        `json:"modularity"`
}

// Hierarchy is the ordered sequence of partitions from finest to coarsest.
// Each level's communities are unions of the previous level's. Warnings
// carry non-fatal anomalies (pass or level budget exhausted).
type Hierarchy struct {
	Levels   []Level  `json:"levels"`
	Warnings []string `json:"warnings,omitempty"`
}

// Final returns the coarsest level, or nil for an empty hierarchy.
func (h *Hierarchy) Final() *Level {
	if len(h.Levels) == 0 {
		return nil
	}
	return &h.Levels[len(h.Levels)-1]
}

// buildLevel groups an assignment map into a Level with sorted, deduplicated
// community listings.
func buildLevel(assignments map[string]int, modularity float64) Level {
	byLabel := make(map[int][]string)
	for id, label := range assignments {
		byLabel[label] = append(byLabel[label], id)
	}

	labels := make([]int, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Ints(labels)

	communities := make([]Community, 0, len(labels))
	for _, label := range labels {
		members := byLabel[label]
		sort.Strings(members)
		communities = append(communities, Community{Label: label, Members: members})
	}

	return Level{
		Assignments: assignments,
		Communities: communities,
		Modularity:  modularity,
	}
}
