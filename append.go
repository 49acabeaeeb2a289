package chronidx

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/chronidx/indexfile"
)

// Append claims the first free slot of cycle for value and returns the file
// holding it together with the claimed index, block<<BlockBits | slot.
//
// The search starts at the highest block found on disk and moves forward one
// block at a time. Within a block, slots are claimed by compare-and-swap from
// zero, so concurrent appenders in this or other processes never obtain the
// same slot and never wait on a lock. With synchronous the file is flushed
// to stable storage before Append returns.
//
// The returned file carries one borrow; return it with Release. If no block
// below the ceiling has room, Append returns ErrBlockCeiling and the cache is
// poisoned.
func (c *Cache) Append(cycle int, value uint64, synchronous bool) (*indexfile.File, int64, error) {
	if value == 0 {
		return nil, 0, ErrZeroValue
	}

	start := time.Now()
	blocks := 0
	for block := c.LastIndexFile(cycle); block < c.ceiling; block++ {
		f, err := c.IndexFor(cycle, block, true)
		if err != nil {
			c.metrics.RecordAppend(time.Since(start), blocks, err)
			return nil, 0, err
		}
		blocks++

		s := f.Slots()
		for s.Remaining() >= indexfile.SlotSize {
			if s.CompareAndSwap(0, value) {
				index := int64(block)<<c.blockBits | s.Slot()
				if synchronous {
					if err := f.Force(); err != nil {
						c.Release(f)
						c.metrics.RecordAppend(time.Since(start), blocks, err)
						return nil, index, err
					}
				}
				c.metrics.RecordAppend(time.Since(start), blocks, nil)
				return f, index, nil
			}
			s.Advance()
		}

		// Only the borrow goes back; closing is the eviction policy's job.
		c.Release(f)
		c.logger.LogBlockFull(context.Background(), cycle, block)
	}

	c.poisoned.Store(true)
	c.logger.LogCeiling(context.Background(), cycle, c.ceiling)
	err := fmt.Errorf("%w: cycle %d has no free slot below block %d", ErrBlockCeiling, cycle, c.ceiling)
	c.metrics.RecordAppend(time.Since(start), blocks, err)
	return nil, 0, err
}
