// Package partition maps the contiguous global cell-id space onto per-rank
// id blocks and answers which rank owns a given global id.
package partition

import (
	"fmt"
	"strings"

	"github.com/arloliu/randcells/types"
)

// BuildBlocks assembles one IDBlock per rank from local cell counts.
//
// Blocks are laid out in rank order starting at 0, so the result satisfies
// the contiguity invariant of types.IDBlock by construction.
//
// Parameters:
//   - counts: Local cell count of each rank, indexed by rank
//
// Returns:
//   - []types.IDBlock: Block of each rank
//   - uint64: Total population across all ranks
func BuildBlocks(counts []uint64) ([]types.IDBlock, uint64) {
	blocks := make([]types.IDBlock, len(counts))

	var total uint64
	for rank, n := range counts {
		blocks[rank] = types.IDBlock{First: total, Size: n}
		total += n
	}

	return blocks, total
}

// Locate returns the rank whose block contains id, searching ranks [low, high].
//
// Blocks must be ordered by increasing First. Empty blocks are skipped by
// walking from the midpoint toward id (left when id < First, right otherwise)
// without leaving the search range, then the remaining half strictly below or
// above the midpoint is searched. The loop runs at most log2(len(blocks))
// rounds plus the linear walks over empty blocks.
//
// Returns:
//   - int: Owning rank
//   - error: Wraps types.ErrInternalConsistency when no block contains id
func Locate(id uint64, blocks []types.IDBlock, low, high int) (int, error) {
	if low < 0 || high >= len(blocks) {
		return -1, fmt.Errorf("%w: search range [%d, %d] outside %d blocks",
			types.ErrInternalConsistency, low, high, len(blocks))
	}

	for low <= high {
		m := low + (high-low)/2

		for blocks[m].Empty() {
			if id < blocks[m].First {
				if m <= low {
					break
				}
				m--
			} else {
				if m >= high {
					break
				}
				m++
			}
		}

		b := blocks[m]
		switch {
		case b.Contains(id):
			return m, nil
		case id < b.First:
			high = m - 1
		default:
			low = m + 1
		}
	}

	return -1, fmt.Errorf("%w: cell id %d was not found on any rank", types.ErrInternalConsistency, id)
}

// Index is the partition table of one sampling pass.
type Index struct {
	blocks []types.IDBlock
	total  uint64
}

// NewIndex builds the partition table from per-rank local cell counts.
func NewIndex(counts []uint64) *Index {
	blocks, total := BuildBlocks(counts)

	return &Index{blocks: blocks, total: total}
}

// Locate returns the rank that owns global id.
func (x *Index) Locate(id uint64) (int, error) {
	if len(x.blocks) == 0 {
		return -1, fmt.Errorf("%w: partition table is empty", types.ErrInternalConsistency)
	}

	return Locate(id, x.blocks, 0, len(x.blocks)-1)
}

// LocalID converts a global id to the owning rank and its local offset.
func (x *Index) LocalID(id uint64) (rank int, local uint64, err error) {
	rank, err = x.Locate(id)
	if err != nil {
		return -1, 0, err
	}

	return rank, id - x.blocks[rank].First, nil
}

// Block returns the block owned by rank.
func (x *Index) Block(rank int) types.IDBlock {
	return x.blocks[rank]
}

// Blocks returns a copy of all blocks in rank order.
func (x *Index) Blocks() []types.IDBlock {
	out := make([]types.IDBlock, len(x.blocks))
	copy(out, x.blocks)

	return out
}

// Total returns the population across all ranks.
func (x *Index) Total() uint64 {
	return x.total
}

// Len returns the number of ranks in the table.
func (x *Index) Len() int {
	return len(x.blocks)
}

// Dump renders the table one rank per line, for error reports.
func (x *Index) Dump() string {
	var b strings.Builder
	for rank, blk := range x.blocks {
		fmt.Fprintf(&b, "rank %d has %s\n", rank, blk)
	}

	return b.String()
}
