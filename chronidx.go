package chronidx

import (
	"context"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/chronidx/indexfile"
	"github.com/hupe1980/chronidx/internal/cache"
	"github.com/hupe1980/chronidx/internal/fs"
	"github.com/hupe1980/chronidx/resource"
)

// IndexPrefix starts the name of every index file; the block number follows.
const IndexPrefix = "index-"

// Cache keeps the most recently used index files of a store mapped and
// implements the lock-free append protocol on top of them.
//
// A single mutex guards the set of open files. It is held while a file is
// looked up, opened or evicted, never while slots are read or claimed.
type Cache struct {
	root      string
	blockBits int
	ceiling   int
	naming    Naming
	fs        fs.FileSystem
	rc        *resource.Controller
	logger    *Logger
	metrics   MetricsCollector

	mu     sync.Mutex
	files  *cache.BoundedFileCache[*indexfile.File]
	closed bool

	poisoned atomic.Bool
}

// Open creates a cache over the store rooted at root. Nothing is read from
// disk until the first lookup; root need not exist yet.
func Open(root string, optFns ...Option) (*Cache, error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}

	c := &Cache{
		root:      root,
		blockBits: o.blockBits,
		ceiling:   o.ceiling,
		naming:    o.naming,
		fs:        o.fs,
		rc:        o.rc,
		logger:    o.logger,
		metrics:   o.metricsCollector,
	}
	c.files = cache.NewBoundedFileCache(o.capacity, c.evict)

	return c, nil
}

// Root returns the store's root directory.
func (c *Cache) Root() string { return c.root }

// BlockBits returns log2 of the number of slots per index file.
func (c *Cache) BlockBits() int { return c.blockBits }

// CycleDir returns the directory holding the index files of cycle.
func (c *Cache) CycleDir(cycle int) string {
	return filepath.Join(c.root, c.naming.FormatFor(cycle))
}

// IndexFor returns the index file of block in cycle, mapping it on first use.
// With forAppend a missing file is created.
//
// Every successful call adds one borrow to the file's usage count; the
// caller returns it with Release.
func (c *Cache) IndexFor(cycle, block int, forAppend bool) (*indexfile.File, error) {
	if c.poisoned.Load() {
		return nil, ErrPoisoned
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}

	key := cache.NewCycleKey(cycle, block, c.blockBits)
	f, ok := c.files.Get(key)
	c.metrics.RecordLookup(ok)
	if !ok {
		var err error
		f, err = c.open(cycle, block, forAppend)
		if err != nil {
			return nil, err
		}
		c.files.Add(key, f)
	}

	f.IncrementUsage()
	return f, nil
}

func (c *Cache) open(cycle, block int, forAppend bool) (*indexfile.File, error) {
	dir := c.CycleDir(cycle)
	name := IndexPrefix + strconv.Itoa(block)

	start := time.Now()
	f, err := indexfile.Open(dir, name, 1<<c.blockBits, forAppend, func(o *indexfile.Options) {
		o.FS = c.fs
		o.Resource = c.rc
	})
	c.metrics.RecordOpen(time.Since(start), err)
	c.logger.LogOpen(context.Background(), filepath.Join(dir, name), err)
	return f, err
}

// evict runs under c.mu when the bounded cache overflows. It drops the
// cache's hold on f and leaves f's usage count alone: borrows still
// outstanding keep the mapping alive until they are released.
func (c *Cache) evict(_ cache.CycleKey, f *indexfile.File) {
	err := f.Close()
	c.metrics.RecordEviction()
	c.logger.LogEviction(context.Background(), f.Path(), f.Usage(), err)
}

// Release returns a borrow taken by IndexFor or Append. A nil file is ignored.
// Releasing a file with no borrow outstanding is logged and otherwise ignored.
func (c *Cache) Release(f *indexfile.File) {
	if f == nil {
		return
	}
	if _, err := f.DecrementUsage(); err != nil {
		c.logger.LogOverRelease(context.Background(), f.Path())
	}
}

// view returns block's index file for reading and a func that gives it back.
// A resident file is borrowed without touching its recency; any other file
// is mapped for the caller alone and never admitted to the cache, so scans
// do not evict the files appenders are using.
func (c *Cache) view(cycle, block int) (*indexfile.File, func(), error) {
	if c.poisoned.Load() {
		return nil, nil, ErrPoisoned
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, nil, ErrClosed
	}
	f, ok := c.files.Peek(cache.NewCycleKey(cycle, block, c.blockBits))
	c.metrics.RecordLookup(ok)
	if ok {
		f.IncrementUsage()
		c.mu.Unlock()
		return f, func() { c.Release(f) }, nil
	}
	c.mu.Unlock()

	f, err := c.open(cycle, block, false)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

// CheckCounts verifies that every resident file has a usage count within
// [min, max]. A violation means borrows were lost or leaked elsewhere; the
// returned *UsageCountError wraps ErrInvariant.
func (c *Cache) CheckCounts(min, max int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	c.files.Range(func(_ cache.CycleKey, f *indexfile.File) bool {
		if u := f.Usage(); u < int64(min) || u > int64(max) {
			err = &UsageCountError{Path: f.Path(), Usage: u, Min: min, Max: max}
			return false
		}
		return true
	})
	if err != nil {
		c.logger.Error("usage count check failed", "error", err)
	}
	return err
}

// Resident returns the number of index files currently mapped by the cache.
func (c *Cache) Resident() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.files.Len()
}

// Close closes every resident file and empties the cache. It is idempotent.
// Files still borrowed stay mapped until their last Release.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	var firstErr error
	n := c.files.Len()
	c.files.Clear(func(_ cache.CycleKey, f *indexfile.File) {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	})
	c.logger.LogClose(context.Background(), c.root, n, firstErr)
	return firstErr
}
