package msgcache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hupe1980/msgcache/internal/mem"
	"github.com/hupe1980/msgcache/internal/mmap"
	"github.com/hupe1980/msgcache/internal/ring"
	"github.com/hupe1980/msgcache/internal/waitq"
	"github.com/hupe1980/msgcache/resource"
)

// Cache is a fixed-capacity message cache backed by a single contiguous
// byte region. See the package documentation for the ownership and
// concurrency rules.
type Cache struct {
	buf   *ring.Buffer
	queue *waitq.Queue

	mapping *mmap.Mapping // non-nil when the region is off-heap
	ctrl    *resource.Controller

	logger  *Logger
	metrics MetricsCollector

	capacity int
	closed   atomic.Bool
}

// New creates a cache with the given payload capacity in bytes. The
// backing region (capacity plus header overhead) is allocated once, up
// front, and is never reallocated for the lifetime of the cache.
func New(capacity int, optFns ...Option) (*Cache, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}

	o := applyOptions(optFns)

	regionLen := capacity + ring.HeaderLen
	if err := o.controller.AcquireMemory(int64(regionLen)); err != nil {
		return nil, err
	}

	var (
		region  []byte
		mapping *mmap.Mapping
	)
	if o.offHeap {
		m, err := mmap.MapAnon(regionLen)
		if err != nil {
			o.controller.ReleaseMemory(int64(regionLen))
			return nil, err
		}
		mapping = m
		region = m.Bytes()
	} else {
		region = mem.AllocAligned(regionLen)
	}

	buf, err := ring.New(region)
	if err != nil {
		if mapping != nil {
			_ = mapping.Close()
		}
		o.controller.ReleaseMemory(int64(regionLen))
		return nil, err
	}

	c := &Cache{
		buf:      buf,
		queue:    waitq.New(buf),
		mapping:  mapping,
		ctrl:     o.controller,
		logger:   o.logger.WithCapacity(capacity),
		metrics:  o.metricsCollector,
		capacity: capacity,
	}

	// Waiter wakeups and release accounting both hang off the ring's
	// release notification.
	buf.OnRelease(func() {
		c.metrics.RecordRelease()
		c.queue.Notify()
	})

	return c, nil
}

// Capacity returns the payload capacity in bytes.
func (c *Cache) Capacity() int {
	return c.capacity
}

// TryAlloc attempts to allocate a slot of n payload bytes without
// blocking. An invalid slot means the request exceeds the per-slot limit
// or no contiguous space is free right now; the caller may retry, or use
// Alloc to wait.
//
// TryAlloc is the producer side of the cache: at most one goroutine may
// call it, and it must not race Alloc on another goroutine.
func (c *Cache) TryAlloc(n int) Slot {
	if c.closed.Load() {
		return Slot{}
	}

	s := c.buf.TryAlloc(n)
	c.metrics.RecordTryAlloc(n, s.Valid())
	c.logger.LogTryAlloc(n, s.Valid())
	return s
}

// Alloc allocates a slot of n payload bytes, parking the goroutine until
// space frees up, ctx is cancelled, or the cache is closed. Requests
// larger than the per-slot limit fail immediately with *ErrTooLarge
// rather than parking forever. Parked requests are served in FIFO order.
func (c *Cache) Alloc(ctx context.Context, n int) (Slot, error) {
	if c.closed.Load() {
		return Slot{}, ErrClosed
	}
	if n <= 0 {
		return Slot{}, ErrInvalidSize
	}
	if limit := c.slotLimit(); n > limit {
		return Slot{}, &ErrTooLarge{Requested: n, Limit: limit}
	}

	if err := c.ctrl.WaitAlloc(ctx, n); err != nil {
		return Slot{}, err
	}

	start := time.Now()
	s, err := c.queue.Alloc(ctx, n)
	waited := time.Since(start)

	c.metrics.RecordWait(n, waited, err)
	c.logger.LogWait(ctx, n, waited, err)

	return s, translateError(err)
}

// Put allocates a slot for msg, copies it in, and publishes the bytes
// with Flush. The returned slot is ready to hand to a consumer.
func (c *Cache) Put(ctx context.Context, msg []byte) (Slot, error) {
	s, err := c.Alloc(ctx, len(msg))
	if err != nil {
		return Slot{}, err
	}
	copy(s.Bytes(), msg)
	s.Flush()
	return s, nil
}

// Close shuts the cache down: parked waiters fail with ErrClosed, future
// allocations fail fast, and the backing region is returned (unmapped,
// for off-heap caches). All slots must be released before Close; bytes
// of outstanding slots are invalid afterwards. Close is idempotent.
func (c *Cache) Close() error {
	if c.closed.Swap(true) {
		return nil
	}

	waiters := c.queue.Len()
	c.queue.Close()
	c.logger.LogClose(waiters)

	var err error
	if c.mapping != nil {
		err = c.mapping.Close()
	}
	c.ctrl.ReleaseMemory(int64(c.capacity + ring.HeaderLen))
	return err
}

// slotLimit is the largest payload a single allocation can ask for.
func (c *Cache) slotLimit() int {
	if c.capacity < ring.MaxSlotLen {
		return c.capacity
	}
	return ring.MaxSlotLen
}
