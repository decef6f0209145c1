package types

import "context"

// Tag distinguishes point-to-point messages between the same pair of ranks.
type Tag int

const (
	// TagCount carries the length of an assignment list.
	TagCount Tag = 0

	// TagIDs carries the assignment list itself.
	TagIDs Tag = 1
)

// ProcessGroup is a fixed-size group of ranks with blocking collectives.
//
// Membership is static for the lifetime of the group. Every operation blocks
// until it completes or ctx is done. Messages between one (source, destination,
// tag) triple are delivered in send order.
type ProcessGroup interface {
	// Size returns the number of ranks in the group.
	Size() int

	// Rank returns this process's rank in [0, Size()).
	Rank() int

	// Gather collects one value from every rank on root.
	//
	// Returns:
	//   - []uint64: Values indexed by rank on root, nil on every other rank
	//   - error: Transport error
	Gather(ctx context.Context, root int, value uint64) ([]uint64, error)

	// Send delivers payload to dest under tag.
	Send(ctx context.Context, dest int, tag Tag, payload []uint64) error

	// Recv blocks until a payload from src under tag is available.
	Recv(ctx context.Context, src int, tag Tag) ([]uint64, error)
}
