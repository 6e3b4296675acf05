package msgcache

import "github.com/hupe1980/msgcache/internal/ring"

// Slot is a handle to an exclusively owned byte range inside a cache.
// The zero Slot is invalid; see Slot.Valid.
type Slot = ring.Slot

const (
	// HeaderLen is the per-slot bookkeeping overhead inside the region.
	HeaderLen = ring.HeaderLen

	// MaxSlotLen is the largest payload a single slot can carry.
	MaxSlotLen = ring.MaxSlotLen
)
