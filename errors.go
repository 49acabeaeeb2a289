package chronidx

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when the cache is used after Close.
	ErrClosed = errors.New("chronidx: cache closed")

	// ErrPoisoned is returned by every IndexFor and Append after an append
	// ran past the block ceiling. The store is corrupt or misconfigured and
	// the cache must not be used further.
	ErrPoisoned = errors.New("chronidx: cache poisoned")

	// ErrBlockCeiling indicates that no block below the ceiling had a free slot.
	ErrBlockCeiling = errors.New("chronidx: block ceiling exceeded")

	// ErrZeroValue is returned when appending 0, which marks a free slot.
	ErrZeroValue = errors.New("chronidx: cannot append zero")

	// ErrNotFound is returned when an index has no claimed slot.
	ErrNotFound = errors.New("chronidx: not found")

	// ErrInvariant marks a broken internal consistency check.
	ErrInvariant = errors.New("chronidx: invariant violated")
)

// UsageCountError reports a resident file whose usage count is outside the
// range asserted by CheckCounts.
type UsageCountError struct {
	Path  string
	Usage int64
	Min   int
	Max   int
}

func (e *UsageCountError) Error() string {
	return fmt.Sprintf("%s has a count of %d (want %d..%d)", e.Path, e.Usage, e.Min, e.Max)
}

func (e *UsageCountError) Unwrap() error { return ErrInvariant }
