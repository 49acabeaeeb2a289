package indexfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/hupe1980/chronidx/internal/fs"
	"github.com/hupe1980/chronidx/internal/mmap"
	"github.com/hupe1980/chronidx/resource"
)

// SlotSize is the width of one index slot in bytes.
const SlotSize = mmap.WordSize

var (
	// ErrReleased is returned when a file is used after its mapping was released.
	ErrReleased = errors.New("indexfile: mapping released")
	// ErrOverReleased is returned by DecrementUsage when no borrow is outstanding.
	ErrOverReleased = errors.New("indexfile: usage already zero")
	// ErrShort is returned when a file opened for reading is smaller than
	// its slot count. Such a file is still being created by an appender and
	// holds no claimed slot.
	ErrShort = errors.New("indexfile: file shorter than its slots")
)

// Options configures Open.
type Options struct {
	// FS is the file system used to create and open files. Defaults to fs.Default.
	FS fs.FileSystem
	// Resource, if set, accounts mapped bytes against its budget.
	Resource *resource.Controller
}

// File is an open, memory-mapped index file.
type File struct {
	path    string
	entries int64
	m       *mmap.Mapping
	rc      *resource.Controller

	usage    atomic.Int64
	closed   atomic.Bool
	released atomic.Bool

	// cursor is the byte offset below which every slot is known to be claimed.
	cursor atomic.Int64
}

// Open maps dir/name as an index file of entries slots.
//
// With forAppend the directory and file are created if missing and the file
// is extended to its full size. Without it nothing on disk is modified: a
// missing file is an error that satisfies errors.Is(err, os.ErrNotExist) and
// a short one fails with ErrShort.
func Open(dir, name string, entries int64, forAppend bool, optFns ...func(o *Options)) (*File, error) {
	opts := Options{FS: fs.Default}
	for _, fn := range optFns {
		fn(&opts)
	}

	if entries <= 0 {
		return nil, fmt.Errorf("indexfile: invalid entry count %d", entries)
	}
	size := entries * SlotSize
	path := filepath.Join(dir, name)

	flag := os.O_RDWR
	if forAppend {
		if err := opts.FS.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("indexfile: create %s: %w", dir, err)
		}
		flag |= os.O_CREATE
	}

	f, err := opts.FS.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("indexfile: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("indexfile: stat %s: %w", path, err)
	}
	if info.Size() < size {
		if !forAppend {
			return nil, fmt.Errorf("%w: %s has %d of %d bytes", ErrShort, path, info.Size(), size)
		}
		if err := opts.FS.Truncate(path, size); err != nil {
			return nil, fmt.Errorf("indexfile: extend %s: %w", path, err)
		}
	}

	if err := opts.Resource.AcquireMapped(size); err != nil {
		return nil, fmt.Errorf("indexfile: map %s: %w", path, err)
	}

	m, err := mmap.Map(f, int(size))
	if err != nil {
		opts.Resource.ReleaseMapped(size)
		return nil, fmt.Errorf("indexfile: map %s: %w", path, err)
	}
	// Slots are claimed and scanned in address order.
	_ = m.Advise(mmap.AccessSequential)

	return &File{
		path:    path,
		entries: entries,
		m:       m,
		rc:      opts.Resource,
	}, nil
}

// Path returns the file's location on disk.
func (f *File) Path() string { return f.path }

// Entries returns the number of slots in the file.
func (f *File) Entries() int64 { return f.entries }

// IncrementUsage records one more outstanding borrow.
func (f *File) IncrementUsage() {
	f.usage.Add(1)
}

// DecrementUsage returns one borrow and reports the remaining count.
// Returning the last borrow of a closed file releases its mapping. The count
// never drops below zero; a call with no borrow outstanding changes nothing
// and returns ErrOverReleased.
func (f *File) DecrementUsage() (int64, error) {
	for {
		n := f.usage.Load()
		if n <= 0 {
			return 0, ErrOverReleased
		}
		if f.usage.CompareAndSwap(n, n-1) {
			if n == 1 && f.closed.Load() {
				_ = f.release()
			}
			return n - 1, nil
		}
	}
}

// Usage returns the number of outstanding borrows.
func (f *File) Usage() int64 {
	return f.usage.Load()
}

// Close marks the file closed. It is idempotent. The mapping is released
// immediately when no borrow is outstanding, otherwise when the last one is
// returned; the returned error is from the immediate release only.
func (f *File) Close() error {
	if f.closed.Swap(true) {
		return nil
	}
	if f.usage.Load() == 0 {
		return f.release()
	}
	return nil
}

// IsClosed reports whether Close has been called.
func (f *File) IsClosed() bool {
	return f.closed.Load()
}

func (f *File) release() error {
	if f.released.Swap(true) {
		return nil
	}
	err := f.m.Close()
	f.rc.ReleaseMapped(int64(f.m.Size()))
	return err
}

// Force flushes claimed slots to stable storage.
func (f *File) Force() error {
	if f.released.Load() {
		return ErrReleased
	}
	if err := f.m.Flush(); err != nil {
		return fmt.Errorf("indexfile: force %s: %w", f.path, err)
	}
	return nil
}

// Load atomically reads slot i.
func (f *File) Load(i int64) uint64 {
	return f.m.LoadUint64(int(i * SlotSize))
}

// Slots returns a cursor over the file's slots, positioned at the first
// slot that may still be free.
func (f *File) Slots() *Slots {
	return &Slots{f: f, pos: int(f.cursor.Load())}
}

func (f *File) raiseCursor(pos int64) {
	for {
		cur := f.cursor.Load()
		if pos <= cur || f.cursor.CompareAndSwap(cur, pos) {
			return
		}
	}
}

func (f *File) String() string {
	return fmt.Sprintf("%s (usage=%d)", f.path, f.usage.Load())
}
