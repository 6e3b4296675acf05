package ring

import (
	"encoding/binary"
	"errors"
	"math"
	"sync/atomic"

	"github.com/hupe1980/msgcache/internal/conv"
)

const (
	// HeaderLen is the length of the per-slot header in bytes.
	HeaderLen = 4

	// MaxSlotLen is the largest payload a single slot can carry. The
	// header length field is a uint16, so larger payloads cannot be
	// encoded regardless of capacity.
	MaxSlotLen = math.MaxUint16

	// flagReleased marks a slot whose holder is gone but whose storage
	// has not been swept yet.
	flagReleased uint16 = 0xFFFF
)

// ErrRegionTooSmall is returned when the backing region cannot hold a
// single header plus one payload byte.
var ErrRegionTooSmall = errors.New("ring: backing region too small")

// Buffer is the fixed-capacity byte arena. It does not own its backing
// region; the caller allocates (and, for off-heap regions, unmaps) it.
//
// The hot atomics are padded apart so the producer-owned write cursor and
// the contended free cursor do not share a cache line.
type Buffer struct {
	region []byte

	publish atomic.Uint32
	_       [60]byte
	write   atomic.Int64
	_       [56]byte
	free    atomic.Int64
	_       [56]byte

	onRelease func()
}

// New wraps region as a ring arena. The usable capacity is
// len(region)-HeaderLen; the extra header bytes guarantee a full-capacity
// slot can be placed at offset 0.
func New(region []byte) (*Buffer, error) {
	if len(region) <= HeaderLen {
		return nil, ErrRegionTooSmall
	}
	return &Buffer{region: region}, nil
}

// Capacity returns the usable payload capacity in bytes.
func (b *Buffer) Capacity() int {
	return len(b.region) - HeaderLen
}

// Used returns the number of region bytes between the free and write
// cursors. The value is approximate while slots are being released.
func (b *Buffer) Used() int {
	wp := b.write.Load()
	fp := b.free.Load()
	d := wp - fp
	if d < 0 {
		d += int64(len(b.region))
	}
	used, _ := conv.Int64ToInt(d)
	return used
}

// OnRelease registers fn to run after every slot release, on the
// releasing goroutine. Must be set before the buffer is shared.
func (b *Buffer) OnRelease(fn func()) {
	b.onRelease = fn
}

// Flush publishes all prior writes to the region. Pairs with Synchronize:
// a reader whose Synchronize observes this Flush also observes the writes
// that preceded it.
func (b *Buffer) Flush() {
	b.publish.Store(1)
}

// Synchronize observes writes published by an earlier Flush.
func (b *Buffer) Synchronize() {
	_ = b.publish.Load()
}

// TryAlloc attempts to carve a slot of n payload bytes out of the region.
// It returns the zero Slot when n is out of range or no contiguous gap
// fits right now; callers retry or wait. It never blocks and performs no
// heap allocation. The content of a fresh slot is unspecified.
//
// TryAlloc is single-producer: at most one goroutine may call it.
func (b *Buffer) TryAlloc(n int) Slot {
	if n <= 0 || n > MaxSlotLen {
		return Slot{}
	}
	required := n + HeaderLen
	if required > len(b.region) {
		return Slot{}
	}

	b.updateFree()

	wp := int(b.write.Load())
	fp := int(b.free.Load())

	switch {
	case wp == fp:
		// Empty arena: reset both cursors to the region start.
		b.free.Store(0)
		b.write.Store(int64(required))
		return b.placeSlot(0, n)

	case wp < fp:
		// One gap, between the cursors. The strict inequality keeps the
		// cursors separated while the arena is non-empty; coincidence is
		// the empty sentinel.
		if required < fp-wp {
			b.write.Store(int64(wp + required))
			return b.placeSlot(wp, n)
		}

	default:
		// Two candidate gaps: the tail of the region, then the front.
		if endGap := len(b.region) - wp; required <= endGap {
			b.write.Store(int64(wp + required))
			return b.placeSlot(wp, n)
		}
		if headGap := fp; required < headGap {
			// Zero the leftover tail so the reclaim sweep reads
			// "no slot here" instead of a stale header.
			clear(b.region[wp:])
			b.write.Store(int64(required))
			return b.placeSlot(0, n)
		}
	}

	return Slot{}
}

// placeSlot writes the header for a fresh slot and publishes it.
func (b *Buffer) placeSlot(start, n int) Slot {
	length, _ := conv.IntToUint16(n) // Safe: TryAlloc bounds n by MaxSlotLen
	binary.LittleEndian.PutUint16(b.region[start:], length)
	binary.LittleEndian.PutUint16(b.region[start+2:], 0)
	b.Flush()
	return Slot{buf: b, start: start, size: n}
}

// headerAt decodes the slot header at offset i.
func (b *Buffer) headerAt(i int) (length int, unused bool) {
	length = int(binary.LittleEndian.Uint16(b.region[i:]))
	unused = binary.LittleEndian.Uint16(b.region[i+2:]) > 0
	return length, unused
}

// updateFree sweeps the free cursor forward over contiguous runs of
// released slots, stopping at the first slot still held or at the write
// cursor. When the sweep drains the arena completely, both cursors are
// reset to the region start.
//
// Runs on the producer only. A release that races the sweep is picked up
// by the next one: the free cursor moves by compare-and-swap from the
// snapshot, so a fast-path release that advanced it meanwhile is kept.
func (b *Buffer) updateFree() {
	b.Synchronize()

	wp := int(b.write.Load())
	fp := int(b.free.Load())

	if wp < fp {
		// Occupied range wraps: sweep the tail first, then the front.
		for i := fp; i < len(b.region)-HeaderLen; {
			length, unused := b.headerAt(i)
			if length == 0 {
				// No slot at the end of the region.
				break
			}
			if unused {
				i += length + HeaderLen
				continue
			}
			b.free.CompareAndSwap(int64(fp), int64(i))
			return
		}
		for i := 0; i < wp; {
			length, unused := b.headerAt(i)
			if length > 0 && unused {
				i += length + HeaderLen
				continue
			}
			b.free.CompareAndSwap(int64(fp), int64(i))
			return
		}
	} else {
		for i := fp; i < wp; {
			length, unused := b.headerAt(i)
			if unused {
				i += length + HeaderLen
				continue
			}
			b.free.CompareAndSwap(int64(fp), int64(i))
			return
		}
	}

	// Every slot was released: the arena is empty again.
	b.free.Store(0)
	b.write.Store(0)
}

// release returns a slot's storage to the arena. Fast path: if the slot
// is the oldest, advance the free cursor over it in place. Slow path:
// mark the header so the next sweep steps past it. The header bytes are
// exclusively owned by the holder until this point, so the mark is a
// plain store published through the flag.
func (b *Buffer) release(start, size int) {
	if !b.free.CompareAndSwap(int64(start), int64(start+size+HeaderLen)) {
		binary.LittleEndian.PutUint16(b.region[start+2:], flagReleased)
		b.Flush()
	}
	if b.onRelease != nil {
		b.onRelease()
	}
}
