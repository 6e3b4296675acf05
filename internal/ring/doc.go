// Package ring implements the fixed-capacity byte arena behind the cache.
//
// The arena is a single preallocated region wrapped by two advancing
// cursors. Callers obtain variable-sized slots in FIFO-ish order; storage
// is reclaimed when slots are released, possibly out of order.
//
// # Layout
//
// Every slot is prefixed by a 4-byte header inside the region:
//
//	offset 0, width 2: payload length, little-endian uint16 (0 = no slot here)
//	offset 2, width 2: unused flag (0 = held, 0xFFFF = released, pending reclaim)
//
// The region is capacity+4 bytes long so a slot spanning the full capacity
// can always be placed with its header at offset 0.
//
// # Concurrency Model
//
// Single producer, multi-consumer release: one goroutine calls TryAlloc,
// any number of slot holders may Release from arbitrary goroutines. The
// producer advances the write cursor; the free cursor is advanced either
// by a releasing holder (CAS fast path) or by the reclaim sweep that runs
// at the start of every allocation. Header and payload visibility across
// goroutines runs through a single publish flag: writers publish with
// Flush, readers observe with Synchronize.
//
// # Allocation Cost
//
// The region is allocated once, by the caller, before the buffer is
// constructed. TryAlloc itself never blocks and never touches the heap.
package ring
