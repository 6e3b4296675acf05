package ring

import (
	"fmt"
	"strings"
)

// Slot is a handle to an exclusively owned byte range inside the arena.
// While a holder keeps its slot, the storage is not reused; releasing the
// slot (exactly one owner must do so) returns the storage.
//
// The zero Slot is invalid: it reports Valid() == false, returns nil
// bytes, and Release on it is a no-op. Slots are passed by value like
// slice headers; ownership moves with the value and must not be shared.
type Slot struct {
	buf   *Buffer
	start int // header offset within the region
	size  int // payload length, excluding the header
}

// Valid reports whether the slot references a live range.
func (s Slot) Valid() bool {
	return s.buf != nil
}

// Len returns the payload length in bytes, 0 for an invalid slot.
func (s Slot) Len() int {
	return s.size
}

// Bytes returns the slot's payload as a mutable view into the arena, or
// nil for an invalid slot. Combine with Flush/Synchronize when the bytes
// cross goroutines.
func (s Slot) Bytes() []byte {
	if s.buf == nil {
		return nil
	}
	return s.buf.region[s.start+HeaderLen : s.start+HeaderLen+s.size]
}

// Flush publishes payload writes to readers on other goroutines. Call
// after filling the slot, before handing it over.
func (s Slot) Flush() {
	if s.buf != nil {
		s.buf.Flush()
	}
}

// Synchronize observes payload writes published by the producer's Flush.
// Call before reading bytes another goroutine may have written.
func (s Slot) Synchronize() {
	if s.buf != nil {
		s.buf.Synchronize()
	}
}

// Release returns the slot's storage to the arena and invalidates the
// handle. It is idempotent; releasing an invalid slot is a no-op.
func (s *Slot) Release() {
	if s.buf == nil {
		return
	}
	buf, start, size := s.buf, s.start, s.size
	s.buf = nil
	s.start = 0
	s.size = 0
	buf.release(start, size)
}

// HexDump renders the slot's header and payload bytes as space-separated
// hex, for debugging. Returns "" for an invalid slot.
func (s Slot) HexDump() string {
	if s.buf == nil {
		return ""
	}
	s.Synchronize()
	raw := s.buf.region[s.start : s.start+HeaderLen+s.size]
	var sb strings.Builder
	for i, v := range raw {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02x", v)
	}
	return sb.String()
}
