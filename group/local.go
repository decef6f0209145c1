package group

import (
	"context"
	"fmt"
	"slices"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/randcells/types"
)

// tagGather is the internal tag carrying gathered values.
const tagGather types.Tag = -1

// mailboxDepth bounds the messages in flight on one channel.
const mailboxDepth = 16

type mailboxKey struct {
	src, dst int
	tag      types.Tag
}

// Local is an in-process group of ranks that communicate over channels.
// Each rank is driven through its own Member, typically from its own
// goroutine.
type Local struct {
	size    int
	boxes   *xsync.Map[mailboxKey, chan []uint64]
	closed  chan struct{}
	members []*LocalMember
}

// LocalMember is one rank of a Local group.
type LocalMember struct {
	group *Local
	rank  int
}

var _ types.ProcessGroup = (*LocalMember)(nil)

// NewLocal creates an in-process group of size ranks.
//
// Example:
//
//	g, _ := group.NewLocal(4)
//	for rank := range g.Size() {
//	    go run(g.Member(rank))
//	}
func NewLocal(size int) (*Local, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: group size must be >= 1, got %d", types.ErrInvalidConfig, size)
	}

	l := &Local{
		size:   size,
		boxes:  xsync.NewMap[mailboxKey, chan []uint64](),
		closed: make(chan struct{}),
	}
	l.members = make([]*LocalMember, size)
	for rank := range size {
		l.members[rank] = &LocalMember{group: l, rank: rank}
	}

	return l, nil
}

// Size returns the number of ranks.
func (l *Local) Size() int {
	return l.size
}

// Member returns the ProcessGroup view of rank.
func (l *Local) Member(rank int) *LocalMember {
	return l.members[rank]
}

// Members returns every rank's view, indexed by rank.
func (l *Local) Members() []*LocalMember {
	return slices.Clone(l.members)
}

// Close unblocks every pending operation with ErrClosed.
func (l *Local) Close() {
	select {
	case <-l.closed:
	default:
		close(l.closed)
	}
}

func (l *Local) mailbox(src, dst int, tag types.Tag) chan []uint64 {
	key := mailboxKey{src: src, dst: dst, tag: tag}
	if box, ok := l.boxes.Load(key); ok {
		return box
	}
	box, _ := l.boxes.LoadOrStore(key, make(chan []uint64, mailboxDepth))

	return box
}

func (l *Local) checkRank(rank int) error {
	if rank < 0 || rank >= l.size {
		return fmt.Errorf("%w: rank %d outside group of size %d", types.ErrInvalidRank, rank, l.size)
	}

	return nil
}

func (l *Local) put(ctx context.Context, src, dst int, tag types.Tag, payload []uint64) error {
	msg := slices.Clone(payload)
	if msg == nil {
		msg = []uint64{}
	}

	select {
	case l.mailbox(src, dst, tag) <- msg:
		return nil
	case <-l.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Local) take(ctx context.Context, src, dst int, tag types.Tag) ([]uint64, error) {
	select {
	case msg := <-l.mailbox(src, dst, tag):
		return msg, nil
	case <-l.closed:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size returns the number of ranks in the group.
func (m *LocalMember) Size() int {
	return m.group.size
}

// Rank returns this member's rank.
func (m *LocalMember) Rank() int {
	return m.rank
}

// Gather collects one value per rank at root, indexed by rank. Non-root
// ranks get a nil slice.
func (m *LocalMember) Gather(ctx context.Context, root int, value uint64) ([]uint64, error) {
	if err := m.group.checkRank(root); err != nil {
		return nil, err
	}

	if m.rank != root {
		return nil, m.group.put(ctx, m.rank, root, tagGather, []uint64{value})
	}

	out := make([]uint64, m.group.size)
	out[root] = value
	for src := range m.group.size {
		if src == root {
			continue
		}
		msg, err := m.group.take(ctx, src, root, tagGather)
		if err != nil {
			return nil, err
		}
		if len(msg) != 1 {
			return nil, fmt.Errorf("%w: gather message from rank %d carries %d values", types.ErrTransport, src, len(msg))
		}
		out[src] = msg[0]
	}

	return out, nil
}

// Send delivers payload to dest. The payload is copied.
func (m *LocalMember) Send(ctx context.Context, dest int, tag types.Tag, payload []uint64) error {
	if err := m.group.checkRank(dest); err != nil {
		return err
	}
	if dest == m.rank {
		return fmt.Errorf("%w: rank %d", ErrSelfMessage, dest)
	}

	return m.group.put(ctx, m.rank, dest, tag, payload)
}

// Recv waits for the next message from src with the given tag.
func (m *LocalMember) Recv(ctx context.Context, src int, tag types.Tag) ([]uint64, error) {
	if err := m.group.checkRank(src); err != nil {
		return nil, err
	}
	if src == m.rank {
		return nil, fmt.Errorf("%w: rank %d", ErrSelfMessage, src)
	}

	return m.group.take(ctx, src, m.rank, tag)
}
