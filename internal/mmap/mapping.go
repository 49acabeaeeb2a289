package mmap

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// Mapping is a shared, writable memory mapping of a file.
// It owns the underlying byte slice and is responsible for unmapping it.
type Mapping struct {
	data   []byte
	size   int
	closed atomic.Bool
	// unmap is the platform-specific function to unmap the memory.
	unmap func([]byte) error
}

// Map maps the first size bytes of f read-write. The file must already be
// at least size bytes long. The descriptor may be closed once Map returns;
// the mapping keeps the file contents reachable.
func Map(f Fder, size int) (*Mapping, error) {
	if size <= 0 || size%WordSize != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	data, unmapFunc, err := osMap(f.Fd(), size)
	if err != nil {
		return nil, err
	}

	return &Mapping{
		data:  data,
		size:  size,
		unmap: unmapFunc,
	}, nil
}

// Close unmaps the memory. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	if m.unmap != nil && m.data != nil {
		return m.unmap(m.data)
	}
	return nil
}

// Size returns the size of the mapping in bytes.
func (m *Mapping) Size() int {
	return m.size
}

// Flush writes dirty pages back to the file and waits for completion.
func (m *Mapping) Flush() error {
	if m.closed.Load() {
		return ErrClosed
	}
	return osFlush(m.data)
}

// Advise provides hints to the kernel about how the memory will be accessed.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	return osAdvise(m.data, pattern)
}

// LoadUint64 atomically loads the word at byte offset off.
// off must be WordSize aligned and inside the mapping.
func (m *Mapping) LoadUint64(off int) uint64 {
	return atomic.LoadUint64(m.word(off))
}

// CompareAndSwapUint64 atomically replaces the word at byte offset off with
// new if it currently holds old. It reports whether the swap happened.
// The operation is visible to every process that maps the same file.
func (m *Mapping) CompareAndSwapUint64(off int, old, new uint64) bool {
	return atomic.CompareAndSwapUint64(m.word(off), old, new)
}

func (m *Mapping) word(off int) *uint64 {
	if off%WordSize != 0 {
		panic(fmt.Sprintf("mmap: misaligned word offset %d", off))
	}
	// Mappings are page aligned, so an aligned offset yields an aligned word.
	w := m.data[off : off+WordSize : off+WordSize]
	return (*uint64)(unsafe.Pointer(&w[0]))
}
