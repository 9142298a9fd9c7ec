// pkg/filter/config.go

package filter

import (
	"AveBody/pkg/chunk"
)

// Config for body filters.
type Config struct {
	Compression string            // none, lz4 or zstd, applied to the whole body
	Directions  []chunk.Direction // directions to reconcile, both when empty
	Capture     bool              // send finalized bodies to the sink
	BufferLimit uint64            // applied to the store when non-zero
}

func (c *Config) handles(d chunk.Direction) bool {
	if len(c.Directions) == 0 {
		return true
	}
	for _, x := range c.Directions {
		if x == d {
			return true
		}
	}
	return false
}
