package waitq

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/msgcache/internal/ring"
)

func newTestQueue(t *testing.T, capacity int) (*Queue, *ring.Buffer) {
	t.Helper()
	buf, err := ring.New(make([]byte, capacity+ring.HeaderLen))
	require.NoError(t, err)
	return New(buf), buf
}

type allocResult struct {
	slot ring.Slot
	err  error
}

// startWaiter launches Alloc on its own goroutine and waits until the
// request is parked, so enqueue order is deterministic.
func startWaiter(t *testing.T, q *Queue, ctx context.Context, n, wantLen int) chan allocResult {
	t.Helper()
	res := make(chan allocResult, 1)
	go func() {
		s, err := q.Alloc(ctx, n)
		res <- allocResult{slot: s, err: err}
	}()
	require.Eventually(t, func() bool { return q.Len() == wantLen },
		time.Second, time.Millisecond)
	return res
}

func TestAlloc_FastPath(t *testing.T) {
	q, _ := newTestQueue(t, 100)

	s, err := q.Alloc(context.Background(), 50)
	require.NoError(t, err)
	require.True(t, s.Valid())
	assert.Equal(t, 50, s.Len())
	assert.Equal(t, 0, q.Len())
	s.Release()
}

func TestAlloc_WaitsForRelease(t *testing.T) {
	q, _ := newTestQueue(t, 100)

	first, err := q.Alloc(context.Background(), 90)
	require.NoError(t, err)

	res := startWaiter(t, q, context.Background(), 90, 1)

	// Releasing the only slot wakes the parked request.
	first.Release()

	r := <-res
	require.NoError(t, r.err)
	require.True(t, r.slot.Valid())
	assert.Equal(t, 90, r.slot.Len())
	r.slot.Release()
}

func TestAlloc_WakeupOrder(t *testing.T) {
	q, _ := newTestQueue(t, 100)

	first, err := q.Alloc(context.Background(), 90)
	require.NoError(t, err)

	w1 := startWaiter(t, q, context.Background(), 90, 1)
	w2 := startWaiter(t, q, context.Background(), 90, 2)

	first.Release()

	r1 := <-w1
	require.NoError(t, r1.err)
	require.True(t, r1.slot.Valid())

	// W2 is still parked: the arena is full again with W1's slot.
	assert.Equal(t, 1, q.Len())
	select {
	case <-w2:
		t.Fatal("second waiter woke too early")
	case <-time.After(20 * time.Millisecond):
	}

	r1.slot.Release()

	r2 := <-w2
	require.NoError(t, r2.err)
	require.True(t, r2.slot.Valid())
	r2.slot.Release()
}

func TestAlloc_FIFO(t *testing.T) {
	q, _ := newTestQueue(t, 64)

	first, err := q.Alloc(context.Background(), 60)
	require.NoError(t, err)

	waiters := make([]chan allocResult, 3)
	for i := range waiters {
		waiters[i] = startWaiter(t, q, context.Background(), 60, i+1)
	}

	first.Release()

	// Identical sizes, each filling the arena: every release admits exactly
	// one waiter, so wakeups must follow enqueue order.
	for i, w := range waiters {
		r := <-w
		require.NoError(t, r.err, "waiter %d", i)
		require.True(t, r.slot.Valid(), "waiter %d", i)
		r.slot.Release()
	}
}

func TestAlloc_HeadOfLineBlocking(t *testing.T) {
	q, _ := newTestQueue(t, 100)

	first, err := q.Alloc(context.Background(), 60)
	require.NoError(t, err)

	// The head request (86 bytes) cannot fit while 60 are held; a later
	// 10-byte request would fit but must not jump the queue. With their
	// headers, 86+4 and 10+4 fill the 104-byte region exactly.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	big := startWaiter(t, q, ctx, 86, 1)
	small := startWaiter(t, q, ctx, 10, 2)

	select {
	case <-small:
		t.Fatal("small request overtook the blocked head")
	case <-time.After(20 * time.Millisecond):
	}

	// Once the head is satisfied the small one follows.
	first.Release()

	rBig := <-big
	require.NoError(t, rBig.err)
	rSmall := <-small
	require.NoError(t, rSmall.err)

	rBig.slot.Release()
	rSmall.slot.Release()
}

func TestAlloc_QueueNonEmptySkipsInlineAttempt(t *testing.T) {
	q, _ := newTestQueue(t, 100)

	held, err := q.Alloc(context.Background(), 40)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Head waits for more than the remaining space.
	_ = startWaiter(t, q, ctx, 90, 1)

	// Space for 20 bytes exists, but a waiter is parked: the request must
	// line up, not allocate inline.
	_ = startWaiter(t, q, ctx, 20, 2)
	assert.Equal(t, 2, q.Len())

	held.Release()
}

func TestAlloc_ContextCancellation(t *testing.T) {
	t.Run("cancelled before call", func(t *testing.T) {
		q, _ := newTestQueue(t, 100)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		s, err := q.Alloc(ctx, 10)
		require.ErrorIs(t, err, context.Canceled)
		assert.False(t, s.Valid())
		assert.Equal(t, 0, q.Len())
	})

	t.Run("cancelled while parked", func(t *testing.T) {
		q, _ := newTestQueue(t, 100)

		first, err := q.Alloc(context.Background(), 90)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		res := startWaiter(t, q, ctx, 90, 1)

		cancel()
		r := <-res
		require.ErrorIs(t, r.err, context.Canceled)
		assert.False(t, r.slot.Valid())
		require.Eventually(t, func() bool { return q.Len() == 0 },
			time.Second, time.Millisecond)

		first.Release()
	})

	t.Run("cancelled head is skipped on wake", func(t *testing.T) {
		q, _ := newTestQueue(t, 100)

		first, err := q.Alloc(context.Background(), 90)
		require.NoError(t, err)

		ctx1, cancel1 := context.WithCancel(context.Background())
		w1 := startWaiter(t, q, ctx1, 90, 1)
		w2 := startWaiter(t, q, context.Background(), 90, 2)

		cancel1()
		r1 := <-w1
		require.ErrorIs(t, r1.err, context.Canceled)

		first.Release()

		r2 := <-w2
		require.NoError(t, r2.err)
		require.True(t, r2.slot.Valid())
		r2.slot.Release()
	})

	t.Run("cancelled middle waiter", func(t *testing.T) {
		q, _ := newTestQueue(t, 100)

		first, err := q.Alloc(context.Background(), 90)
		require.NoError(t, err)

		w1 := startWaiter(t, q, context.Background(), 90, 1)
		ctx2, cancel2 := context.WithCancel(context.Background())
		w2 := startWaiter(t, q, ctx2, 90, 2)
		w3 := startWaiter(t, q, context.Background(), 90, 3)

		cancel2()
		r2 := <-w2
		require.ErrorIs(t, r2.err, context.Canceled)

		first.Release()
		r1 := <-w1
		require.NoError(t, r1.err)

		r1.slot.Release()
		r3 := <-w3
		require.NoError(t, r3.err)
		r3.slot.Release()
	})
}

func TestClose(t *testing.T) {
	t.Run("fails parked waiters", func(t *testing.T) {
		q, _ := newTestQueue(t, 100)

		first, err := q.Alloc(context.Background(), 90)
		require.NoError(t, err)

		res := startWaiter(t, q, context.Background(), 90, 1)

		q.Close()
		r := <-res
		require.ErrorIs(t, r.err, ErrClosed)
		assert.False(t, r.slot.Valid())

		first.Release()
	})

	t.Run("fails future allocations", func(t *testing.T) {
		q, _ := newTestQueue(t, 100)
		q.Close()

		s, err := q.Alloc(context.Background(), 10)
		require.ErrorIs(t, err, ErrClosed)
		assert.False(t, s.Valid())
	})

	t.Run("idempotent", func(t *testing.T) {
		q, _ := newTestQueue(t, 100)
		q.Close()
		q.Close()
	})
}
