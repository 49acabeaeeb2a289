// Package fs provides filesystem abstractions for testability and fault injection.
//
// The package defines two key interfaces:
//
//   - [File]: an open file with read/write/sync capabilities and a descriptor for mapping
//   - [FileSystem]: directory scans, opens, truncation, renames
//
// # Implementations
//
//   - [LocalFS]: Production implementation using standard os package
//   - [FaultyFS]: Test utility for fault injection (simulate I/O errors)
//
// Production code uses fs.Default; tests inject [FaultyFS]:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("index-3", fs.Fault{FailOnOpen: true})
//
// Directory scans of the index store (last block of a cycle, first cycle of
// the store) go through [FileSystem.ReadDir] so that missing or unreadable
// directories can be simulated.
//
// This package intentionally does NOT include context.Context parameters.
// Local filesystem operations are not interruptible at the syscall level.
package fs
