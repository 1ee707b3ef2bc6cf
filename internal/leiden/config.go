// Package leiden partitions a weighted tool graph into a community
// hierarchy by iterative modularity optimization: local moving, refinement
// and aggregation, repeated on successively coarser graphs.
package leiden

import "fmt"

// Default detection parameters.
const (
	DefaultResolution     = 1.0
	DefaultMaxLocalPasses = 10
	DefaultMaxLevels      = 10
)

// Config controls community detection. Resolution below 1.0 yields fewer,
// larger communities; above 1.0 more, smaller ones. The pass and level caps
// are safety valves: exceeding them degrades to the best partition found so
// far with a warning, never a failure.
type Config struct {
	Resolution     float64
	MaxLocalPasses int
	MaxLevels      int
}

// Validate rejects unusable parameters before any processing starts. The
// returned error names the offending field.
func (c Config) Validate() error {
	if c.Resolution < 0 {
		return fmt.Errorf("resolution must be non-negative, got %v", c.Resolution)
	}
	if c.MaxLocalPasses < 0 {
		return fmt.Errorf("max_local_passes must be non-negative, got %d", c.MaxLocalPasses)
	}
	if c.MaxLevels < 0 {
		return fmt.Errorf("max_levels must be non-negative, got %d", c.MaxLevels)
	}
	return nil
}

// withDefaults fills zero values with defaults.
func (c Config) withDefaults() Config {
	if c.Resolution == 0 {
		c.Resolution = DefaultResolution
	}
	if c.MaxLocalPasses == 0 {
		c.MaxLocalPasses = DefaultMaxLocalPasses
	}
	if c.MaxLevels == 0 {
		c.MaxLevels = DefaultMaxLevels
	}
	return c
}
