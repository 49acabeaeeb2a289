// Package indexfile implements memory-mapped index files.
//
// An index file is a flat array of 8-byte slots with no header. A slot holds
// zero while free and a non-zero pointer once claimed. Slots are claimed with
// an atomic compare-and-swap directly on the shared mapping, so appenders in
// different goroutines, or different processes mapping the same file, never
// need a common lock.
//
// A [File] carries a usage count of outstanding borrows. Closing a file marks
// it closed at once; its mapping is released when the last borrow is
// returned.
package indexfile
