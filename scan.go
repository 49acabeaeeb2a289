package chronidx

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/chronidx/indexfile"
)

// LastIndexFile returns the highest block number with an index file in
// cycle, or 0 if there is none. The scan takes no lock and may miss files
// created concurrently; Append tolerates that by moving forward.
func (c *Cache) LastIndexFile(cycle int) int {
	entries, err := c.fs.ReadDir(c.CycleDir(cycle))
	if err != nil {
		return 0
	}

	maxBlock := 0
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, IndexPrefix) {
			continue
		}
		block, err := strconv.Atoi(name[len(IndexPrefix):])
		if err != nil {
			continue
		}
		if block > maxBlock {
			maxBlock = block
		}
	}
	return maxBlock
}

// FirstIndex returns the earliest cycle with a directory under the root,
// or -1 if there is none. Names that are not cycle directories are skipped.
// Cycle -1 (daily "19691231") is a valid cycle that collides with the -1
// result; a store whose earliest cycle is -1 reads as empty.
func (c *Cache) FirstIndex() int64 {
	entries, err := c.fs.ReadDir(c.root)
	if err != nil {
		return -1
	}

	first := int64(math.MaxInt64)
	for _, e := range entries {
		cycle, err := c.naming.ParseCount(e.Name())
		if err != nil {
			continue
		}
		if int64(cycle) < first {
			first = int64(cycle)
		}
	}
	if first == math.MaxInt64 {
		return -1
	}
	return first
}

// Lookup returns the value stored at index in cycle. It returns ErrNotFound
// if the index's block file does not exist or the slot is still free.
// Lookup never creates or extends a file, and a block that is not resident
// is read without being admitted to the cache.
func (c *Cache) Lookup(cycle int, index int64) (uint64, error) {
	if index < 0 {
		return 0, fmt.Errorf("%w: negative index %d", ErrNotFound, index)
	}
	block := index >> c.blockBits
	if block >= int64(c.ceiling) {
		return 0, fmt.Errorf("%w: index %d beyond block ceiling", ErrNotFound, index)
	}

	f, done, err := c.view(cycle, int(block))
	if err != nil {
		if isAbsent(err) {
			return 0, fmt.Errorf("%w: cycle %d index %d", ErrNotFound, cycle, index)
		}
		return 0, err
	}
	defer done()

	v := f.Load(index & (1<<c.blockBits - 1))
	if v == 0 {
		return 0, fmt.Errorf("%w: cycle %d index %d", ErrNotFound, cycle, index)
	}
	return v, nil
}

// Claimed returns the set of claimed indexes in cycle. Like Lookup it leaves
// the disk and the cache's residency unchanged.
func (c *Cache) Claimed(cycle int) (*roaring64.Bitmap, error) {
	bm := roaring64.New()
	last := c.LastIndexFile(cycle)

	for block := 0; block <= last; block++ {
		f, done, err := c.view(cycle, block)
		if err != nil {
			if isAbsent(err) {
				continue
			}
			return nil, err
		}

		base := uint64(block) << c.blockBits
		for i := range f.Entries() {
			if f.Load(i) != 0 {
				bm.Add(base | uint64(i))
			}
		}
		done()
	}
	return bm, nil
}

// isAbsent reports whether err means a block file holds no claimed slot.
func isAbsent(err error) bool {
	return errors.Is(err, os.ErrNotExist) || errors.Is(err, indexfile.ErrShort)
}
