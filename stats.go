package msgcache

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Stats is a point-in-time snapshot of cache occupancy.
//
// Used counts region bytes between the free and write cursors, including
// per-slot header overhead; it is approximate while slots are being
// released concurrently.
type Stats struct {
	Capacity int // payload capacity in bytes
	Used     int // region bytes currently spanned by live content
	Waiters  int // allocation requests parked in the queue
}

// Stats returns a snapshot of the cache's occupancy.
func (c *Cache) Stats() Stats {
	return Stats{
		Capacity: c.capacity,
		Used:     c.buf.Used(),
		Waiters:  c.queue.Len(),
	}
}

func (s Stats) String() string {
	return fmt.Sprintf("msgcache: %s of %s spanned, %d waiting",
		humanize.IBytes(uint64(s.Used)),
		humanize.IBytes(uint64(s.Capacity)),
		s.Waiters,
	)
}
