// Package cache provides the bounded LRU of open index files.
//
// Entries are keyed by [CycleKey], a plain comparable value, so the key that
// is stored in the map can never change under it. The container holds at
// most a fixed number of entries; admitting one more evicts the least
// recently used entry and hands it to an eviction hook, synchronously,
// before Add returns.
//
// The container does no locking of its own. Its owner serializes access.
package cache
