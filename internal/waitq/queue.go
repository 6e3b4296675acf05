package waitq

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/msgcache/internal/ring"
)

// ErrClosed is returned by Alloc when the queue has been shut down.
var ErrClosed = errors.New("waitq: queue closed")

// waiter is one parked allocation request. Alloc allocates it and keeps
// it linked into the list for the duration of the wait.
type waiter struct {
	size  int
	next  *waiter
	ready chan struct{}

	// cancelled is set by the waiting goroutine when its context fires;
	// the wake loop skips marked waiters.
	cancelled atomic.Bool

	// slot, err and delivered are guarded by the queue mutex and become
	// visible to the waiter through the ready channel.
	slot      ring.Slot
	err       error
	delivered bool
}

// Queue wraps a ring buffer and parks allocation requests until space
// frees up. Waiters are woken in FIFO order.
type Queue struct {
	buf *ring.Buffer

	mu     sync.Mutex
	head   *waiter
	tail   *waiter
	closed bool
}

// New builds a queue over buf and hooks itself into the buffer's release
// notification, so every slot release drives the wake loop.
func New(buf *ring.Buffer) *Queue {
	q := &Queue{buf: buf}
	buf.OnRelease(q.Notify)
	return q
}

// Alloc obtains a slot of n payload bytes, blocking until space is
// available, ctx is cancelled, or the queue is closed. A context that is
// already cancelled fails fast without touching the arena.
//
// A direct allocation attempt is made only when nobody is already
// waiting; otherwise the request lines up behind the existing waiters.
func (q *Queue) Alloc(ctx context.Context, n int) (ring.Slot, error) {
	if err := ctx.Err(); err != nil {
		return ring.Slot{}, err
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ring.Slot{}, ErrClosed
	}

	w := &waiter{size: n, ready: make(chan struct{})}
	if q.tail != nil {
		q.tail.next = w
		q.tail = w
	} else {
		// Queue empty (head is nil whenever tail is): try inline.
		if s := q.buf.TryAlloc(n); s.Valid() {
			q.mu.Unlock()
			return s, nil
		}
		q.head = w
		q.tail = w
	}
	q.mu.Unlock()

	select {
	case <-w.ready:
		return w.slot, w.err
	case <-ctx.Done():
		w.cancelled.Store(true)
		q.mu.Lock()
		if w.delivered {
			// The wake beat the cancellation; honor the delivery.
			q.mu.Unlock()
			<-w.ready
			return w.slot, w.err
		}
		q.unlink(w)
		q.mu.Unlock()
		return ring.Slot{}, ctx.Err()
	}
}

// Len returns the number of parked waiters.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for w := q.head; w != nil; w = w.next {
		n++
	}
	return n
}

// Close wakes every parked waiter with ErrClosed and fails all future
// Alloc calls. It is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true

	for w := q.head; w != nil; w = w.next {
		w.err = ErrClosed
		close(w.ready)
	}
	q.head, q.tail = nil, nil
}

// Notify runs the wake loop; it is invoked after every slot release. It
// retries the head request and keeps waking waiters until one cannot be
// satisfied.
func (q *Queue) Notify() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.head != nil {
		w := q.head
		if w.cancelled.Load() {
			q.head = w.next
			continue
		}

		s := q.buf.TryAlloc(w.size)
		if !s.Valid() {
			// Head-of-line blocking: the oldest waiter keeps its turn.
			return
		}

		w.slot = s
		w.delivered = true
		q.head = w.next
		close(w.ready)
	}
	q.tail = nil
}

// unlink removes w from the list. Caller holds the mutex.
func (q *Queue) unlink(w *waiter) {
	var prev *waiter
	for cur := q.head; cur != nil; cur = cur.next {
		if cur == w {
			if prev == nil {
				q.head = cur.next
			} else {
				prev.next = cur.next
			}
			if q.tail == w {
				q.tail = prev
			}
			return
		}
		prev = cur
	}
}
