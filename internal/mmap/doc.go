// Package mmap provides anonymous memory mappings for off-heap allocation.
//
// # Overview
//
// The cache's backing region can live outside the Go heap. An anonymous
// read-write mapping keeps a large, long-lived byte region out of the
// garbage collector's scan set, which matters when the region is big and
// the process is latency-sensitive.
//
// # Usage
//
//	m, err := mmap.MapAnon(size)
//	if err != nil { ... }
//	defer m.Close()
//
//	region := m.Bytes()
//
// # Platform Support
//
// The package provides a unified API across platforms:
//
//   - Unix (Linux, macOS, BSD): Uses mmap(2) with MAP_ANON|MAP_PRIVATE
//   - Windows: Uses VirtualAlloc with MEM_RESERVE|MEM_COMMIT
//
// # Thread Safety
//
// Mapping is safe for concurrent read access. The Close() method is
// idempotent and protected by atomic operations. However, callers must
// ensure no goroutines access Bytes() after Close() returns.
package mmap
