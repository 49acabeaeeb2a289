package cache

import "fmt"

// CycleKey identifies one index file: a cycle and a block within it.
// Block is stored already shifted by the block bits, i.e. it is the first
// index covered by the file.
type CycleKey struct {
	Cycle int
	Block int
}

// NewCycleKey builds the key of block number block in cycle.
func NewCycleKey(cycle, block, blockBits int) CycleKey {
	return CycleKey{Cycle: cycle, Block: block << blockBits}
}

// Hash mixes both fields. Keys that are equal hash equally.
func (k CycleKey) Hash() int {
	return k.Cycle*10191 ^ k.Block
}

func (k CycleKey) String() string {
	return fmt.Sprintf("%d/%d", k.Cycle, k.Block)
}
