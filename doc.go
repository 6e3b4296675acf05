// Package msgcache provides a fixed-capacity, contiguous byte arena that
// hands out variable-sized, caller-owned slots and reclaims their storage
// when the slots are released.
//
// A cache preallocates its entire region once and never reallocates it;
// slot storage always comes from that region. A blocking Alloc allocates a
// small waiter record per call. Slots come out in FIFO-ish ring order and
// may be released from any goroutine in any order: out-of-order releases
// are deferred through an in-band header flag until the oldest holder
// lets go.
//
// # Quick Start
//
//	cache, _ := msgcache.New(1 << 20)
//	defer cache.Close()
//
//	// Non-blocking: an invalid slot means "no space right now".
//	slot := cache.TryAlloc(512)
//	if slot.Valid() {
//	    copy(slot.Bytes(), payload)
//	    slot.Flush()
//	    // ... hand the slot to a consumer ...
//	}
//
//	// Blocking: parks until space frees up or ctx is cancelled.
//	slot, err := cache.Alloc(ctx, 512)
//
// # Ownership
//
// Each slot has exactly one owner. The owner writes the payload, calls
// Flush, and hands the slot over; the receiver calls Synchronize before
// reading and Release when done. Release is idempotent and may run on any
// goroutine.
//
// # Concurrency Model
//
// Allocation is single-producer: at most one goroutine may call TryAlloc
// at a time, and Alloc calls are serialized internally. Release is
// lock-free and multi-consumer.
//
// # Key Features
//
//   - One region allocation for the lifetime of the cache (heap or off-heap)
//   - Lock-free release with an in-place fast path for the oldest slot
//   - FIFO waiter queue with deliberate head-of-line fairness
//   - Optional shared memory budget and allocation rate limiting
package msgcache
