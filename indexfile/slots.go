package indexfile

// Slots is a cursor over the slots of one File. A Slots value belongs to a
// single goroutine; the File it points into may be shared.
//
// Slots are write-once: a claimed slot never becomes free again, so once a
// slot is seen claimed the File may skip it for every later cursor.
type Slots struct {
	f   *File
	pos int
}

// Remaining returns the number of bytes from the cursor to the end of the file.
func (s *Slots) Remaining() int {
	return s.f.m.Size() - s.pos
}

// Position returns the cursor's byte offset.
func (s *Slots) Position() int {
	return s.pos
}

// Slot returns the index of the slot under the cursor.
func (s *Slots) Slot() int64 {
	return int64(s.pos / SlotSize)
}

// CompareAndSwap atomically replaces the slot under the cursor with new if it
// holds old, and reports whether it did.
func (s *Slots) CompareAndSwap(old, new uint64) bool {
	if !s.f.m.CompareAndSwapUint64(s.pos, old, new) {
		return false
	}
	if old == 0 {
		s.f.raiseCursor(int64(s.pos + SlotSize))
	}
	return true
}

// Advance moves the cursor to the next slot. The slot being left must have
// been observed claimed.
func (s *Slots) Advance() {
	s.pos += SlotSize
	s.f.raiseCursor(int64(s.pos))
}
