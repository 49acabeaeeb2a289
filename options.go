package chronidx

import (
	"github.com/hupe1980/chronidx/cycle"
	"github.com/hupe1980/chronidx/internal/cache"
	"github.com/hupe1980/chronidx/internal/fs"
	"github.com/hupe1980/chronidx/resource"
)

const (
	// DefaultBlockBits gives 65536 slots (512 KiB) per index file.
	DefaultBlockBits = 16
	// DefaultBlockCeiling bounds the block numbers an append may visit.
	DefaultBlockCeiling = 10000
	// MaxBlockBits keeps an index file addressable by a single mapping.
	MaxBlockBits = 27
)

// Naming maps cycles to directory names and back.
// *cycle.Naming is the standard implementation.
type Naming interface {
	FormatFor(cycle int) string
	ParseCount(name string) (int, error)
}

type options struct {
	blockBits        int
	capacity         int
	ceiling          int
	naming           Naming
	fs               fs.FileSystem
	rc               *resource.Controller
	logger           *Logger
	metricsCollector MetricsCollector
}

func defaultOptions() options {
	return options{
		blockBits:        DefaultBlockBits,
		capacity:         cache.DefaultCapacity,
		ceiling:          DefaultBlockCeiling,
		naming:           cycle.New(cycle.Daily),
		fs:               fs.Default,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
}

// Option configures Open.
type Option func(*options)

// WithBlockBits sets the size of every index file to 2^bits slots.
// Values outside 1..MaxBlockBits are ignored.
func WithBlockBits(bits int) Option {
	return func(o *options) {
		if bits > 0 && bits <= MaxBlockBits {
			o.blockBits = bits
		}
	}
}

// WithCapacity sets how many index files stay mapped at once.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithBlockCeiling sets the first block number an append may not reach.
// Running into it means the store is corrupt or misconfigured.
func WithBlockCeiling(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.ceiling = n
		}
	}
}

// WithNaming configures how cycles map to directory names.
// If nil is passed, daily naming is used.
func WithNaming(n Naming) Option {
	return func(o *options) {
		if n == nil {
			n = cycle.New(cycle.Daily)
		}
		o.naming = n
	}
}

// WithResourceController accounts mapped index files against rc.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithLogger configures the logger. Pass nil to disable logging.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &chronidx.BasicMetricsCollector{}
//	c, _ := chronidx.Open(dir, chronidx.WithMetricsCollector(metrics))
//	// ... use c ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// withFileSystem swaps the file system, for fault injection in tests.
func withFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}
