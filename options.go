package msgcache

import (
	"log/slog"

	"github.com/hupe1980/msgcache/resource"
)

type options struct {
	offHeap          bool
	metricsCollector MetricsCollector
	logger           *Logger
	controller       *resource.Controller
	allocRate        int64
}

// Option configures cache construction.
type Option func(*options)

// WithOffHeap places the backing region in an anonymous memory mapping
// instead of the Go heap. Large regions stay out of the garbage
// collector's scan set; the mapping is returned to the OS on Close.
func WithOffHeap() Option {
	return func(o *options) {
		o.offHeap = true
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &msgcache.BasicMetricsCollector{}
//	cache, _ := msgcache.New(1<<20, msgcache.WithMetricsCollector(metrics))
//	// ... use cache ...
//	fmt.Printf("allocs: %d, failed: %d\n",
//	    metrics.TryAllocCount.Load(), metrics.TryAllocFailed.Load())
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := msgcache.NewJSONLogger(slog.LevelInfo)
//	cache, _ := msgcache.New(1<<20, msgcache.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithResourceController subjects the cache to a shared admission
// controller: the backing region is reserved against the controller's
// memory budget at construction, and blocking allocations respect its
// rate limit. Takes precedence over WithAllocRate.
func WithResourceController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}

// WithAllocRate throttles the blocking allocation path to bytesPerSec.
// Convenience for a private, per-cache controller; equivalent to
// WithResourceController(resource.NewController(resource.Config{
// AllocBytesPerSec: bytesPerSec})). Ignored when WithResourceController
// is also set. If bytesPerSec <= 0, allocation is unlimited.
func WithAllocRate(bytesPerSec int64) Option {
	return func(o *options) {
		o.allocRate = bytesPerSec
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.controller == nil && o.allocRate > 0 {
		o.controller = resource.NewController(resource.Config{
			AllocBytesPerSec: o.allocRate,
		})
	}
	return o
}
