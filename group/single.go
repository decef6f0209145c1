package group

import (
	"context"
	"fmt"

	"github.com/arloliu/randcells/types"
)

// Single is the group of one process. It performs no communication.
type Single struct{}

var _ types.ProcessGroup = (*Single)(nil)

// NewSingle returns the single-process group.
func NewSingle() *Single {
	return &Single{}
}

// Size returns 1.
func (s *Single) Size() int { return 1 }

// Rank returns 0.
func (s *Single) Rank() int { return 0 }

// Gather returns value as the only gathered count.
func (s *Single) Gather(ctx context.Context, root int, value uint64) ([]uint64, error) {
	if root != 0 {
		return nil, fmt.Errorf("%w: root %d in a single-process group", types.ErrInvalidRank, root)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return []uint64{value}, nil
}

// Send always fails: a single process has no peer.
func (s *Single) Send(_ context.Context, dest int, _ types.Tag, _ []uint64) error {
	return fmt.Errorf("%w: send to rank %d", ErrSelfMessage, dest)
}

// Recv always fails: a single process has no peer.
func (s *Single) Recv(_ context.Context, src int, _ types.Tag) ([]uint64, error) {
	return nil, fmt.Errorf("%w: receive from rank %d", ErrSelfMessage, src)
}
