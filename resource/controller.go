package resource

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMappedLimitExceeded is returned when mapping a file would exceed the mapped-bytes budget.
var ErrMappedLimitExceeded = errors.New("resource: mapped bytes limit exceeded")

// Config holds resource limits.
type Config struct {
	// MappedBytesLimit is the hard limit for bytes mapped by open index files.
	// If 0, no hard limit is enforced (only tracking).
	MappedBytesLimit int64

	// MaxBackgroundWorkers is the maximum number of concurrent background jobs.
	// If 0, defaults to 1.
	MaxBackgroundWorkers int64

	// IOLimitBytesPerSec is the maximum IO throughput for background tasks.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages the mapped-bytes, worker and IO budgets.
type Controller struct {
	cfg Config

	mappedSem  *semaphore.Weighted // nil if unlimited
	mappedUsed atomic.Int64

	bgSem *semaphore.Weighted

	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxBackgroundWorkers <= 0 {
		cfg.MaxBackgroundWorkers = 1
	}

	c := &Controller{
		cfg:   cfg,
		bgSem: semaphore.NewWeighted(cfg.MaxBackgroundWorkers),
	}

	if cfg.MappedBytesLimit > 0 {
		c.mappedSem = semaphore.NewWeighted(cfg.MappedBytesLimit)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// AcquireMapped reserves bytes of the mapped budget.
// Returns ErrMappedLimitExceeded if the limit would be exceeded; it never blocks.
func (c *Controller) AcquireMapped(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.mappedSem != nil && !c.mappedSem.TryAcquire(bytes) {
		return ErrMappedLimitExceeded
	}

	c.mappedUsed.Add(bytes)
	return nil
}

// ReleaseMapped returns bytes to the mapped budget.
func (c *Controller) ReleaseMapped(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.mappedSem != nil {
		c.mappedSem.Release(bytes)
	}
	c.mappedUsed.Add(-bytes)
}

// MappedBytes returns the number of bytes currently mapped.
func (c *Controller) MappedBytes() int64 {
	if c == nil {
		return 0
	}
	return c.mappedUsed.Load()
}

// MappedLimit returns the configured mapped-bytes limit (0 if unlimited).
func (c *Controller) MappedLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MappedBytesLimit
}

// AcquireBackground reserves a background worker slot, blocking until one is free.
func (c *Controller) AcquireBackground(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.bgSem.Acquire(ctx, 1)
}

// TryAcquireBackground reserves a background worker slot without blocking.
func (c *Controller) TryAcquireBackground() bool {
	if c == nil {
		return true
	}
	return c.bgSem.TryAcquire(1)
}

// ReleaseBackground releases a background worker slot.
func (c *Controller) ReleaseBackground() {
	if c == nil {
		return
	}
	c.bgSem.Release(1)
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
// Requests larger than the burst are split so they never fail outright.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}

// TryAcquireIO attempts to acquire IO tokens without blocking.
func (c *Controller) TryAcquireIO(bytes int) bool {
	if c == nil || c.ioLimiter == nil {
		return true
	}
	return c.ioLimiter.AllowN(time.Now(), bytes)
}
