package search

import (
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"
)

// estimatedNodeBytes is a deliberately generous guess at the resident cost
// of one table entry: the state copy, the successor map, caches and map
// overhead. Real footprints vary per game; the point is an order of
// magnitude, not an accounting.
const estimatedNodeBytes = 512

// SuggestNodeLimit sizes a node budget so the table's estimated footprint
// stays within the given fraction of total system memory.
func SuggestNodeLimit(fraction float64) int {
	total := memory.TotalMemory()
	limit := int(fraction * float64(total) / estimatedNodeBytes)
	if limit < 1 {
		limit = 1
	}
	log.Info().Uint64("total-memory", total).Float64("fraction", fraction).
		Int("node-limit", limit).Msg("suggested-node-limit")
	return limit
}
