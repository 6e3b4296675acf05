// Package resource provides admission control for cache instances.
//
// A Controller is shared by any number of caches and enforces two
// budgets:
//
//   - Memory: every cache reserves its backing region against a weighted
//     semaphore at construction and returns it on Close. Reservation is
//     non-blocking; exceeding the budget is an immediate error so the
//     caller decides the retry policy.
//   - Allocation rate: an optional token bucket throttles the bytes/sec
//     handed out through the blocking allocation path.
//
// A nil *Controller is valid and enforces nothing, so call sites do not
// need to branch on whether admission control is configured.
package resource
