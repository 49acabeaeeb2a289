package cache

import "container/list"

// DefaultCapacity is the number of index files kept open by default.
const DefaultCapacity = 32

// BoundedFileCache is an access-ordered LRU of open files.
// It is not safe for concurrent use.
type BoundedFileCache[H comparable] struct {
	capacity  int
	items     map[CycleKey]*list.Element
	evictList *list.List
	onEvict   func(CycleKey, H)
}

type entry[H comparable] struct {
	key    CycleKey
	handle H
}

// NewBoundedFileCache creates a cache holding at most capacity entries.
// onEvict is called with the least recently used entry each time an Add
// overflows the capacity, and with the old handle when Add replaces one. It is
// responsible for releasing the handle.
func NewBoundedFileCache[H comparable](capacity int, onEvict func(CycleKey, H)) *BoundedFileCache[H] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &BoundedFileCache[H]{
		capacity:  capacity,
		items:     make(map[CycleKey]*list.Element, capacity+1),
		evictList: list.New(),
		onEvict:   onEvict,
	}
}

// Get returns the resident handle for key and marks it most recently used.
func (c *BoundedFileCache[H]) Get(key CycleKey) (H, bool) {
	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)
		return ent.Value.(*entry[H]).handle, true
	}
	var zero H
	return zero, false
}

// Peek returns the resident handle for key without changing its recency.
func (c *BoundedFileCache[H]) Peek(key CycleKey) (H, bool) {
	if ent, ok := c.items[key]; ok {
		return ent.Value.(*entry[H]).handle, true
	}
	var zero H
	return zero, false
}

// Add admits handle under key as the most recently used entry. If that takes
// the cache over capacity, exactly one least recently used entry is evicted.
// Adding a key that is already resident replaces its handle and passes the
// old one, if different, to onEvict. The size does not change.
func (c *BoundedFileCache[H]) Add(key CycleKey, handle H) {
	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)
		kv := ent.Value.(*entry[H])
		old := kv.handle
		kv.handle = handle
		if old != handle && c.onEvict != nil {
			c.onEvict(key, old)
		}
		return
	}

	c.items[key] = c.evictList.PushFront(&entry[H]{key: key, handle: handle})

	if c.evictList.Len() > c.capacity {
		c.evictOldest()
	}
}

func (c *BoundedFileCache[H]) evictOldest() {
	ent := c.evictList.Back()
	if ent == nil {
		return
	}
	c.evictList.Remove(ent)
	kv := ent.Value.(*entry[H])
	delete(c.items, kv.key)
	if c.onEvict != nil {
		c.onEvict(kv.key, kv.handle)
	}
}

// Range calls fn for every resident entry until fn returns false.
// The order is unspecified. Range does not change recency.
func (c *BoundedFileCache[H]) Range(fn func(CycleKey, H) bool) {
	for key, ent := range c.items {
		if !fn(key, ent.Value.(*entry[H]).handle) {
			return
		}
	}
}

// Clear calls release for every resident entry and empties the cache.
// Clearing an empty cache does nothing.
func (c *BoundedFileCache[H]) Clear(release func(CycleKey, H)) {
	for key, ent := range c.items {
		if release != nil {
			release(key, ent.Value.(*entry[H]).handle)
		}
	}
	clear(c.items)
	c.evictList.Init()
}

// Len returns the number of resident entries.
func (c *BoundedFileCache[H]) Len() int {
	return c.evictList.Len()
}

// Capacity returns the maximum number of resident entries.
func (c *BoundedFileCache[H]) Capacity() int {
	return c.capacity
}
