// Package chronidx keeps the index files of a cycle-partitioned append-only
// log mapped in memory and appends to them without a writer lock.
//
// # Layout
//
// A store is a root directory with one subdirectory per cycle, named by the
// cycle's start time (see package cycle). Each cycle directory holds index
// files named "index-<block>". An index file is a flat array of 2^BlockBits
// 8-byte slots with no header; a slot is 0 while free and holds a non-zero
// value once claimed. The absolute index of a slot within its cycle is
// block<<BlockBits | slot.
//
// # Quick Start
//
//	c, _ := chronidx.Open("./queue", chronidx.WithBlockBits(16))
//	defer c.Close()
//
//	f, index, err := c.Append(cycle, position, false)
//	if err != nil {
//		return err
//	}
//	c.Release(f)
//
// # Concurrency
//
// Appends claim slots by compare-and-swap on the shared mapping, so any
// number of goroutines, and processes mapping the same files, may append
// concurrently. The cache's mutex guards only its set of open files.
//
// # Borrows
//
// IndexFor and Append return a *indexfile.File carrying one borrow. Return
// it with Release once done with the file. A file evicted from the cache, or
// left open when the cache is closed, stays mapped until its last borrow is
// returned.
//
// Eviction does not decrement a file's usage count. It only closes the file,
// dropping the cache's own hold; the borrower's count is untouched and is
// returned by the borrower's Release. Releasing more often than borrowing is
// logged at warn level and leaves the count at zero.
//
// # Archiving
//
// Closed cycles can be compressed and shipped to object storage with package
// archive, using the blob stores in package blobstore.
package chronidx
