package types

import "fmt"

// IDBlock is one rank's contiguous slice of the global cell-id space.
//
// Blocks for a process group are contiguous, non-overlapping and ordered by
// rank, and the block of rank 0 starts at 0. A rank owning no cells has an
// empty block whose First equals the previous block's Last.
type IDBlock struct {
	// First is the smallest global id owned (inclusive).
	First uint64 `json:"first"`

	// Size is the number of ids owned.
	Size uint64 `json:"size"`
}

// Last returns the exclusive upper bound of the block.
func (b IDBlock) Last() uint64 {
	return b.First + b.Size
}

// Empty reports whether the block owns no ids.
func (b IDBlock) Empty() bool {
	return b.Size == 0
}

// Contains reports whether id falls in [First, Last).
func (b IDBlock) Contains(id uint64) bool {
	return id >= b.First && id < b.Last()
}

// String returns the block as a half-open range.
func (b IDBlock) String() string {
	return fmt.Sprintf("[%d, %d) size=%d", b.First, b.Last(), b.Size)
}
