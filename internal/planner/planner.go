// Package planner buckets selected global ids into per-rank lists of local ids.
package planner

import (
	"fmt"

	"github.com/arloliu/randcells/internal/partition"
)

// Plan holds the per-rank assignment lists of one pass.
type Plan struct {
	// Lists[rank] holds the local ids rank must copy, in sample order.
	Lists [][]uint64

	// Counts[rank] is len(Lists[rank]).
	Counts []uint64
}

// Build maps every selected global id to its owning rank.
//
// Parameters:
//   - ids: Selected global ids in sample order
//   - index: Partition table of the pass
//
// Returns:
//   - *Plan: One list per rank of index; ranks with nothing assigned get an empty list
//   - error: Locate failure (types.ErrInternalConsistency); planning stops at the first miss
func Build(ids []uint64, index *partition.Index) (*Plan, error) {
	n := index.Len()
	plan := &Plan{
		Lists:  make([][]uint64, n),
		Counts: make([]uint64, n),
	}

	for _, id := range ids {
		rank, local, err := index.LocalID(id)
		if err != nil {
			return nil, fmt.Errorf("failed to plan cell %d: %w", id, err)
		}

		plan.Lists[rank] = append(plan.Lists[rank], local)
		plan.Counts[rank]++
	}

	for rank := range plan.Lists {
		if plan.Lists[rank] == nil {
			plan.Lists[rank] = []uint64{}
		}
	}

	return plan, nil
}

// Size returns the number of assigned ids across all ranks.
func (p *Plan) Size() int {
	var n int
	for _, l := range p.Lists {
		n += len(l)
	}

	return n
}
