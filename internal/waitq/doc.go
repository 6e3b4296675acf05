// Package waitq layers a FIFO waiter queue over the ring arena, turning
// the non-blocking TryAlloc into a blocking Alloc.
//
// A request that cannot be satisfied immediately parks its goroutine on
// an intrusive singly linked list. Every slot release re-runs the head
// request; on success the head is woken and the next waiter is tried.
// A head request too large for the current free space blocks the whole
// queue even when later, smaller requests would fit — deliberate
// head-of-line blocking that keeps the oldest waiter from starving.
//
// All allocation attempts made through the queue are serialized by the
// queue mutex, so release notifications may safely call TryAlloc from
// any goroutine.
package waitq
