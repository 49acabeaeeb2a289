// Package mmap provides shared read-write memory mappings of index files.
//
// # Overview
//
// Index files are flat arrays of 8-byte slots that several goroutines, and
// several processes, claim concurrently with compare-and-swap. The mapping is
// therefore always MAP_SHARED and writable: a slot claimed through one
// mapping is visible to every other mapping of the same file.
//
// # Usage
//
//	m, err := mmap.Map(f, size)
//	if err != nil { ... }
//	defer m.Close()
//
//	if m.CompareAndSwapUint64(off, 0, value) {
//	    // slot at off is ours
//	}
//	m.Flush() // durable
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2), msync(2), madvise(2)
//   - Windows: CreateFileMapping/MapViewOfFile, FlushViewOfFile (advise is a no-op)
//
// # Thread Safety
//
// Word access through LoadUint64 and CompareAndSwapUint64 is safe for
// concurrent use. Close is idempotent, but callers must ensure nobody
// touches the mapping after Close returns.
package mmap
